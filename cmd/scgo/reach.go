//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"os/signal"
	"time"

	"github.com/obinnaokechukwu/scgo/reachability"
	"github.com/spf13/cobra"
)

// newTarget accepts a host name, an address, or an address with port.
func newTarget(a *app, arg string) (reachability.Target, error) {
	if ap, err := netip.ParseAddrPort(arg); err == nil {
		return reachability.NewWithAddress(ap, a.reachOptions()...)
	}
	if addr, err := netip.ParseAddr(arg); err == nil {
		return reachability.NewWithAddress(netip.AddrPortFrom(addr, 0), a.reachOptions()...)
	}
	return reachability.NewWithName(arg, a.reachOptions()...)
}

func formatFlags(f reachability.Flags) string {
	state := ErrorStyle.Render("unreachable")
	if f.IsReachable() {
		state = SuccessStyle.Render("reachable")
	}
	return state + " " + Muted(f.String())
}

func reachCmd(a *app) *cobra.Command {
	var (
		watch   bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "reach <host|address>",
		Short: "Report whether a host is reachable without sending traffic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := newTarget(a, args[0])
			if err != nil {
				return err
			}
			defer target.Release()

			out := cmd.OutOrStdout()
			flags, err := target.Flags()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", Bold(args[0]), formatFlags(flags))
			if !watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			err = target.Watch(ctx, func(f reachability.Flags) {
				fmt.Fprintf(out, "%s %s %s\n", Muted(time.Now().Format(time.TimeOnly)), Bold(args[0]), formatFlags(f))
			})
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep printing changes until interrupted")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Stop watching after this long (0 waits for interrupt)")
	return cmd
}
