//go:build !ios && !android && (amd64 || arm64)

// Command scgo inspects and edits the network configuration held by
// configd and the SystemConfiguration preferences.
package main

import (
	"fmt"
	"os"

	"github.com/obinnaokechukwu/scgo"
	"github.com/obinnaokechukwu/scgo/reachability"
	"github.com/obinnaokechukwu/scgo/sc"
	"github.com/spf13/cobra"
)

// sessionName identifies the CLI to configd.
const sessionName = "scgo"

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ErrorMsg("%v", err))
		os.Exit(1)
	}
}

// app carries what every subcommand shares. A nil rt selects the native
// frameworks.
type app struct {
	rt    sc.Runtime
	debug bool
}

func (a *app) session() (*scgo.Session, error) {
	return scgo.NewSession(sessionName, a.sessionOptions()...)
}

func (a *app) sessionOptions(extra ...scgo.Option) []scgo.Option {
	var opts []scgo.Option
	if a.rt != nil {
		opts = append(opts, scgo.WithRuntime(a.rt))
	}
	return append(opts, extra...)
}

func (a *app) reachOptions() []reachability.Option {
	if a.rt == nil {
		return nil
	}
	return []reachability.Option{reachability.WithRuntime(a.rt)}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "scgo",
		Short:         "Inspect and edit macOS network configuration",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if a.debug {
				level = "debug"
			}
			return scgo.SetLogLevel(level)
		},
	}
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")

	root.AddCommand(dnsCmd(a))
	root.AddCommand(setDNSCmd(a))
	root.AddCommand(servicesCmd(a))
	root.AddCommand(interfacesCmd(a))
	root.AddCommand(setsCmd(a))
	root.AddCommand(getCmd(a))
	root.AddCommand(watchCmd(a))
	root.AddCommand(reachCmd(a))
	root.AddCommand(infoCmd())
	return root
}
