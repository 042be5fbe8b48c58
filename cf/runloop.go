//go:build !ios && !android && (amd64 || arm64)

package cf

import (
	"time"
)

// RunLoop is the run loop of one OS thread.
type RunLoop struct{ *Object }

var RunLoopKind = Kind[RunLoop]{ClassRunLoop, func(o *Object) RunLoop { return RunLoop{o} }}

// CurrentRunLoop returns an owned handle to the calling thread's run loop.
// Callers that run the loop should lock the goroutine to its OS thread.
func CurrentRunLoop(rt Runtime) RunLoop {
	o, _ := WrapBorrowed(rt, rt.CurrentRunLoop())
	return RunLoop{o}
}

// AddSource schedules src on the loop in mode.
func (l RunLoop) AddSource(src RunLoopSource, mode RunLoopMode) {
	if l.Object == nil || src.Object == nil {
		return
	}
	defer l.KeepAlive()
	defer src.KeepAlive()
	l.rt.RunLoopAddSource(l.ref, src.ref, mode)
}

// RemoveSource unschedules src.
func (l RunLoop) RemoveSource(src RunLoopSource, mode RunLoopMode) {
	if l.Object == nil || src.Object == nil {
		return
	}
	defer l.KeepAlive()
	defer src.KeepAlive()
	l.rt.RunLoopRemoveSource(l.ref, src.ref, mode)
}

// Stop makes the loop's current RunInMode return.
func (l RunLoop) Stop() {
	if l.Object == nil {
		return
	}
	defer l.KeepAlive()
	l.rt.RunLoopStop(l.ref)
}

// RunInMode runs the calling thread's run loop for at most d.
func RunInMode(rt Runtime, mode RunLoopMode, d time.Duration, returnAfterSourceHandled bool) RunLoopResult {
	return rt.RunLoopRunInMode(mode, d.Seconds(), returnAfterSourceHandled)
}
