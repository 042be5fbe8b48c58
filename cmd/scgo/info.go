//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"fmt"
	"strings"

	"github.com/obinnaokechukwu/scgo"
	"github.com/spf13/cobra"
)

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show platform and framework diagnostics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := scgo.Diagnose()
			pairs := []pair{
				{"platform", d.GOOS + "/" + d.GOARCH},
				{"os release", orNone(d.OSRelease, true)},
				{"loaded", Bool(d.Loaded)},
				{"search paths", orNone(strings.Join(d.SearchPaths, ", "), true)},
			}
			for _, f := range d.Frameworks {
				pairs = append(pairs, pair{f.Name, orNone(f.Path, true)})
			}
			fmt.Fprint(cmd.OutOrStdout(), keyValues("", pairs...))
			return nil
		},
	}
}
