//go:build !ios && !android && (amd64 || arm64)

package dynamicstore

import (
	"runtime/debug"

	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/internal/handles"
	"github.com/obinnaokechukwu/scgo/internal/logging"
	"github.com/obinnaokechukwu/scgo/sc"
)

// CallbackContext pairs a change handler with the state it mutates.
//
// Callout runs on the thread running the run loop, with views of the store
// and of the changed keys that are valid only for the duration of the call.
// Info is owned by the session from New until the framework drops the
// context; Callout receives a pointer to it.
type CallbackContext[T any] struct {
	Callout func(store Store, changedKeys cf.Array, info *T)
	Info    T
}

// WithCallback installs a change handler. Pair it with SetNotificationKeys
// and a run loop (see Watch).
func WithCallback[T any](cb CallbackContext[T]) Option {
	return func(c *config) { c.callback = cb }
}

type binder interface {
	bind(rt sc.Runtime) (sc.StoreCallout, *sc.Context, error)
}

type invoker interface {
	invoke(store, changedKeys cf.Ref)
}

// boxed is the state registered with internal/handles while the framework
// holds the context.
type boxed[T any] struct {
	rt      sc.Runtime
	callout func(Store, cf.Array, *T)
	info    T
}

func (cb CallbackContext[T]) bind(rt sc.Runtime) (sc.StoreCallout, *sc.Context, error) {
	if cb.Callout == nil {
		return nil, nil, ErrNilCallout
	}
	token := handles.Register(&boxed[T]{rt: rt, callout: cb.Callout, info: cb.Info})
	return trampoline, &sc.Context{Info: token, Release: releaseContext}, nil
}

func (b *boxed[T]) invoke(store, changedKeys cf.Ref) {
	s := Store{Object: cf.View(b.rt, store), rt: b.rt}
	keys := cf.Array{Object: cf.View(b.rt, changedKeys)}
	b.callout(s, keys, &b.info)
}

// trampoline is the one callout handed to every store. Panics stop here:
// unwinding through the framework's stack frames is undefined behavior.
func trampoline(store, changedKeys cf.Ref, info uintptr) {
	defer func() {
		if r := recover(); r != nil {
			logging.Logger().Error("dynamic store callout panicked",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	b, ok := handles.Lookup(info).(invoker)
	if !ok {
		logging.Logger().Warn("dynamic store callout with unknown context", "info", info)
		return
	}
	b.invoke(store, changedKeys)
}

// releaseContext frees the boxed state. The framework calls it once when it
// drops the context.
func releaseContext(info uintptr) {
	handles.Take(info)
}
