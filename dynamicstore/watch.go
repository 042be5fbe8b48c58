//go:build !ios && !android && (amd64 || arm64)

package dynamicstore

import (
	"context"
	"runtime"
	"time"

	"github.com/obinnaokechukwu/scgo/cf"
)

// watchSlice bounds how long the run loop sleeps between context checks.
const watchSlice = 500 * time.Millisecond

// Watch delivers the session's notifications to its callout until ctx is
// done. It schedules a run loop source on the calling goroutine's OS thread
// and runs that thread's run loop, so callouts run on the calling goroutine.
// Watch returns ctx.Err() when ctx ends.
func (s Store) Watch(ctx context.Context) error {
	src, err := s.CreateRunLoopSource(0)
	if err != nil {
		return err
	}
	defer src.Release()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	loop := cf.CurrentRunLoop(s.rt)
	defer loop.Release()
	loop.AddSource(src, cf.DefaultMode)
	defer loop.RemoveSource(src, cf.DefaultMode)

	// The stopper keeps its own reference so Stop never races the release above.
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
		if cf.RunInMode(s.rt, cf.DefaultMode, watchSlice, false) == cf.RunLoopFinished {
			// Nothing left to run; the source was removed from under us.
			break
		}
	}
	return ctx.Err()
}
