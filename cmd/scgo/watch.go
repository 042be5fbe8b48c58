//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/obinnaokechukwu/scgo"
	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/dynamicstore"
	"github.com/obinnaokechukwu/scgo/schema"
	"github.com/spf13/cobra"
)

// defaultWatchPatterns cover the primary service and every DNS change.
var defaultWatchPatterns = []string{
	schema.GlobalKey(schema.DomainState, schema.EntityIPv4),
	schema.ServicePattern(schema.DomainState, schema.EntityDNS),
	schema.ServicePattern(schema.DomainSetup, schema.EntityDNS),
}

type watchState struct {
	out    io.Writer
	values bool
}

func watchCallout(store dynamicstore.Store, changed cf.Array, w *watchState) {
	keys := changed.Strings()
	if len(keys) == 0 {
		fmt.Fprintln(w.out, InfoMsg("notification with no keys"))
		return
	}
	stamp := Muted(time.Now().Format(time.TimeOnly))
	for _, k := range keys {
		if !w.values {
			fmt.Fprintf(w.out, "%s %s\n", stamp, k)
			continue
		}
		v, ok := store.GetValue(k)
		if !ok {
			fmt.Fprintf(w.out, "%s %s %s\n", stamp, k, Muted("removed"))
			continue
		}
		fmt.Fprintf(w.out, "%s %s %v\n", stamp, k, v)
	}
}

func watchCmd(a *app) *cobra.Command {
	var (
		keys     []string
		patterns []string
		values   bool
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print dynamic store changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(keys) == 0 && len(patterns) == 0 {
				patterns = defaultWatchPatterns
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			cb := dynamicstore.WithCallback(dynamicstore.CallbackContext[watchState]{
				Callout: watchCallout,
				Info:    watchState{out: cmd.OutOrStdout(), values: values},
			})
			s, err := scgo.NewSession(sessionName, a.sessionOptions(scgo.WithStoreOptions(cb))...)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Store().SetNotificationKeys(keys, patterns); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), InfoMsg("watching %d keys, %d patterns", len(keys), len(patterns)))

			err = s.Store().Watch(ctx)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringSliceVar(&keys, "key", nil, "Store key to watch (repeatable)")
	cmd.Flags().StringSliceVar(&patterns, "pattern", nil, "Store key regular expression to watch (repeatable)")
	cmd.Flags().BoolVar(&values, "values", false, "Print the new value of each changed key")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Stop after this long (0 waits for interrupt)")
	return cmd
}
