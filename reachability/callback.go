//go:build !ios && !android && (amd64 || arm64)

package reachability

import (
	"errors"
	"runtime/debug"

	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/internal/handles"
	"github.com/obinnaokechukwu/scgo/internal/logging"
	"github.com/obinnaokechukwu/scgo/sc"
)

// ErrNilCallout is returned when SetCallback is given a nil Callout.
var ErrNilCallout = errors.New("reachability: nil callout")

// CallbackContext pairs a flag change handler with the state it mutates.
// Callout runs on the thread running the run loop the target is scheduled
// on. The Target it receives is a view valid for the call only.
type CallbackContext[T any] struct {
	Callout func(target Target, flags Flags, info *T)
	Info    T
}

type invoker interface {
	invoke(target cf.Ref, flags uint32)
}

type boxed[T any] struct {
	rt      sc.Runtime
	callout func(Target, Flags, *T)
	info    T
}

func (b *boxed[T]) invoke(target cf.Ref, flags uint32) {
	b.callout(Target{Object: cf.View(b.rt, target), rt: b.rt}, Flags(flags), &b.info)
}

// SetCallback installs cb on t, replacing any previous callback. The
// framework releases the previous context when it is replaced.
func SetCallback[T any](t Target, cb CallbackContext[T]) error {
	if !t.usable() {
		return cf.ErrReleased
	}
	if cb.Callout == nil {
		return ErrNilCallout
	}
	token := handles.Register(&boxed[T]{rt: t.rt, callout: cb.Callout, info: cb.Info})
	ctx := &sc.Context{Info: token, Release: releaseContext}
	defer t.KeepAlive()
	if !t.rt.ReachabilitySetCallback(t.Ref(), trampoline, ctx) {
		err := sc.LastError(t.rt, "SCNetworkReachabilitySetCallback")
		// Already released by the runtime; Take is idempotent.
		releaseContext(token)
		return err
	}
	return nil
}

// ClearCallback removes t's callback.
func ClearCallback(t Target) error {
	if !t.usable() {
		return cf.ErrReleased
	}
	defer t.KeepAlive()
	if !t.rt.ReachabilitySetCallback(t.Ref(), nil, nil) {
		return sc.LastError(t.rt, "SCNetworkReachabilitySetCallback")
	}
	return nil
}

func trampoline(target cf.Ref, flags uint32, info uintptr) {
	defer func() {
		if r := recover(); r != nil {
			logging.Logger().Error("reachability callout panicked",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	b, ok := handles.Lookup(info).(invoker)
	if !ok {
		logging.Logger().Warn("reachability callout with unknown context", "info", info)
		return
	}
	b.invoke(target, flags)
}

func releaseContext(info uintptr) {
	handles.Take(info)
}
