//go:build !ios && !android && (amd64 || arm64)

package reachability

import (
	"context"
	"runtime"
	"time"

	"github.com/obinnaokechukwu/scgo/cf"
)

const watchSlice = 500 * time.Millisecond

// Watch calls fn with the target's flags on every change until ctx is
// done. fn runs on the calling goroutine, which Watch locks to its OS
// thread. Any callback installed with SetCallback is replaced, and cleared
// when Watch returns.
func (t Target) Watch(ctx context.Context, fn func(Flags)) error {
	err := SetCallback(t, CallbackContext[struct{}]{
		Callout: func(_ Target, f Flags, _ *struct{}) { fn(f) },
	})
	if err != nil {
		return err
	}
	defer ClearCallback(t)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	loop := cf.CurrentRunLoop(t.rt)
	defer loop.Release()
	if err := t.Schedule(loop, cf.DefaultMode); err != nil {
		return err
	}
	defer t.Unschedule(loop, cf.DefaultMode)

	stopper := cf.RunLoop{Object: loop.Clone()}
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer stopper.Release()
		select {
		case <-ctx.Done():
			stopper.Stop()
		case <-done:
		}
	}()

	for ctx.Err() == nil {
		if cf.RunInMode(t.rt, cf.DefaultMode, watchSlice, false) == cf.RunLoopFinished {
			break
		}
	}
	return ctx.Err()
}
