//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"fmt"
	"io"

	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func getCmd(a *app) *cobra.Command {
	var (
		prefs  bool
		list   bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print a dynamic store key or a preferences path",
		Long: "Print the value under a dynamic store key such as State:/Network/Global/IPv4.\n" +
			"With --prefs the argument is a preferences path such as /Sets.\n" +
			"With --list the argument is a regular expression and matching store keys are listed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "yaml" && output != "text" {
				return fmt.Errorf("unsupported output %q (want yaml or text)", output)
			}
			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if list {
				for _, k := range s.Store().Keys(args[0]) {
					fmt.Fprintln(out, k)
				}
				return nil
			}

			var (
				obj *cf.Object
				ok  bool
			)
			if prefs {
				obj, ok = s.Preferences().PathGet(args[0])
			} else {
				obj, ok = s.Store().Get(args[0])
			}
			if !ok {
				return fmt.Errorf("%s: no value", args[0])
			}
			defer obj.Release()

			v, err := cf.Unmarshal(obj)
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			return printValue(out, v, output)
		},
	}
	cmd.Flags().BoolVar(&prefs, "prefs", false, "Read a preferences path instead of a store key")
	cmd.Flags().BoolVar(&list, "list", false, "List store keys matching the argument")
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml or text")
	cmd.MarkFlagsMutuallyExclusive("prefs", "list")
	return cmd
}

func printValue(w io.Writer, v any, output string) error {
	if output == "text" {
		_, err := fmt.Fprintf(w, "%v\n", v)
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
