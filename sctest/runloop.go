//go:build !ios && !android && (amd64 || arm64)

package sctest

import (
	"time"

	"github.com/obinnaokechukwu/scgo/cf"
)

type loopState struct {
	scheduled map[cf.Ref]map[cf.RunLoopMode]bool
	order     []cf.Ref
	wake      chan struct{}
	running   int
	stop      bool

	deliveries int
}

func newLoopState() *loopState {
	return &loopState{
		scheduled: make(map[cf.Ref]map[cf.RunLoopMode]bool),
		wake:      make(chan struct{}, 1),
	}
}

func (l *loopState) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *loopState) eligible(ref cf.Ref, mode cf.RunLoopMode) bool {
	modes := l.scheduled[ref]
	return modes[mode] || (mode == cf.DefaultMode && modes[cf.CommonModes])
}

func (r *Runtime) loopLocked(ref cf.Ref) *loopState {
	return r.mustLocked(ref, cf.ClassRunLoop).state.(*loopState)
}

func (r *Runtime) CurrentRunLoop() cf.Ref { return r.loopRef }

func (r *Runtime) RunLoopAddSource(loop, source cf.Ref, mode cf.RunLoopMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mustLocked(source, cf.ClassRunLoopSource)
	r.scheduleLocked(r.loopLocked(loop), source, mode)
}

func (r *Runtime) RunLoopRemoveSource(loop, source cf.Ref, mode cf.RunLoopMode) {
	r.mu.Lock()
	defer r.unlock()
	r.unscheduleLocked(r.loopLocked(loop), source, mode)
}

// scheduleLocked adds ref to the loop in mode. The loop retains ref while it
// is scheduled in any mode.
func (r *Runtime) scheduleLocked(l *loopState, ref cf.Ref, mode cf.RunLoopMode) {
	modes, ok := l.scheduled[ref]
	if !ok {
		r.retainLocked(ref)
		modes = make(map[cf.RunLoopMode]bool)
		l.scheduled[ref] = modes
		l.order = append(l.order, ref)
	}
	modes[mode] = true
	l.signal()
}

func (r *Runtime) unscheduleLocked(l *loopState, ref cf.Ref, mode cf.RunLoopMode) bool {
	modes, ok := l.scheduled[ref]
	if !ok || !modes[mode] {
		return false
	}
	delete(modes, mode)
	if len(modes) > 0 {
		return true
	}
	delete(l.scheduled, ref)
	for i, o := range l.order {
		if o == ref {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	r.releaseLocked(ref)
	return true
}

// workLocked collects one turn of deliveries for mode. eligible reports
// whether anything is scheduled in mode at all.
func (r *Runtime) workLocked(mode cf.RunLoopMode) (work []func(), eligible bool) {
	l := r.loop
	for _, ref := range l.order {
		if !l.eligible(ref, mode) {
			continue
		}
		eligible = true
		switch st := r.getLocked(ref).state.(type) {
		case *sourceState:
			s := r.storeLocked(st.store)
			if !s.hasCallout || (len(s.pending) == 0 && !s.forced) {
				continue
			}
			store := r.retainLocked(st.store)
			keys := r.stringArrayLocked(s.takeBatch())
			fn, info := s.callout, s.ctx.Info
			work = append(work, func() {
				defer r.Release(store)
				defer r.Release(keys)
				fn(store, keys, info)
			})
		case *reachState:
			if !st.hasCallout || !st.pending {
				continue
			}
			st.pending = false
			target := r.retainLocked(ref)
			fn, info, flags := st.callout, st.ctx.Info, r.reach[st.host]
			work = append(work, func() {
				defer r.Release(target)
				fn(target, flags, info)
			})
		}
	}
	l.deliveries += len(work)
	return work, eligible
}

func (r *Runtime) RunLoopRunInMode(mode cf.RunLoopMode, seconds float64, returnAfterSourceHandled bool) cf.RunLoopResult {
	deadline := time.Now().Add(time.Duration(seconds * float64(time.Second)))

	r.mu.Lock()
	r.loop.running++
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.loop.running--
		r.mu.Unlock()
	}()

	for {
		r.mu.Lock()
		if r.loop.stop {
			r.loop.stop = false
			r.mu.Unlock()
			return cf.RunLoopStopped
		}
		work, eligible := r.workLocked(mode)
		r.unlock()

		if !eligible {
			return cf.RunLoopFinished
		}
		for _, fn := range work {
			fn()
		}
		if len(work) > 0 && returnAfterSourceHandled {
			return cf.RunLoopHandledSource
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return cf.RunLoopTimedOut
		}
		timer := time.NewTimer(remaining)
		select {
		case <-r.loop.wake:
		case <-timer.C:
		}
		timer.Stop()
	}
}

func (r *Runtime) RunLoopStop(loop cf.Ref) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.loopLocked(loop)
	if l.running > 0 {
		l.stop = true
		l.signal()
	}
}

// Deliveries returns the number of callouts the run loop has made.
func (r *Runtime) Deliveries() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loop.deliveries
}

// Scheduled returns the number of sources and targets on the run loop.
func (r *Runtime) Scheduled() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.loop.order)
}
