//go:build !ios && !android && (amd64 || arm64)

// Package dynamicstore reads, writes and watches the live network
// configuration held by configd.
//
// A Store is one session with the daemon. Values are property lists keyed
// by paths such as "State:/Network/Global/IPv4" (see package schema).
// Change notifications are delivered on a run loop to the callout installed
// with WithCallback.
package dynamicstore

import (
	"errors"
	"fmt"

	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/sc"
)

// ErrNilCallout is returned when WithCallback is given a nil Callout.
var ErrNilCallout = errors.New("dynamicstore: nil callout")

// Store is a dynamic store session.
type Store struct {
	*cf.Object
	rt sc.Runtime
}

// Kind downcasts generic objects to Store.
var Kind = cf.Kind[Store]{
	Class: sc.ClassDynamicStore,
	Wrap: func(o *cf.Object) Store {
		rt, _ := o.Runtime().(sc.Runtime)
		return Store{Object: o, rt: rt}
	},
}

type config struct {
	rt          sc.Runtime
	sessionKeys bool
	callback    binder
}

// Option configures New.
type Option func(*config)

// WithRuntime selects the runtime. The default is sc.Default().
func WithRuntime(rt sc.Runtime) Option {
	return func(c *config) { c.rt = rt }
}

// WithSessionKeys makes values set through this session disappear when the
// session is released.
func WithSessionKeys(enabled bool) Option {
	return func(c *config) { c.sessionKeys = enabled }
}

// New opens a session named name.
func New(name string, opts ...Option) (Store, error) {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	if c.rt == nil {
		rt, err := sc.Default()
		if err != nil {
			return Store{}, err
		}
		c.rt = rt
	}
	rt := c.rt

	nameStr := cf.NewString(rt, name)
	defer nameStr.Release()

	var options cf.Dictionary
	if c.sessionKeys {
		on := cf.BooleanOf(rt, true)
		key := cf.View(rt, rt.Constant("kSCDynamicStoreUseSessionKeys"))
		if key == nil {
			on.Release()
			return Store{}, errors.New("dynamicstore: session keys unsupported by runtime")
		}
		options = newOptions(rt, key, on.Object)
		on.Release()
		defer options.Release()
	}

	var (
		callout sc.StoreCallout
		ctx     *sc.Context
	)
	if c.callback != nil {
		var err error
		callout, ctx, err = c.callback.bind(rt)
		if err != nil {
			return Store{}, err
		}
	}

	ref := rt.DynamicStoreCreate(nameStr.Ref(), options.Ref(), callout, ctx)
	o, ok := cf.WrapOwned(rt, ref)
	if !ok {
		err := sc.LastError(rt, "SCDynamicStoreCreate")
		if ctx != nil {
			// The store never took the context.
			releaseContext(ctx.Info)
		}
		return Store{}, err
	}
	return Store{Object: o, rt: rt}, nil
}

// newOptions builds {key: value} with a framework constant key.
func newOptions(rt cf.Runtime, key, value *cf.Object) cf.Dictionary {
	o, _ := cf.WrapOwned(rt, rt.CreateDictionary([]cf.Ref{key.Ref()}, []cf.Ref{value.Ref()}))
	return cf.Dictionary{Object: o}
}

// Runtime returns the session's runtime.
func (s Store) Runtime() sc.Runtime { return s.rt }

// Get returns an owned copy of the value stored under key. Absent keys
// return false.
func (s Store) Get(key string) (*cf.Object, bool) {
	if s.Object == nil {
		return nil, false
	}
	k := cf.NewString(s.rt, key)
	defer k.Release()
	defer s.KeepAlive()
	return cf.WrapOwned(s.rt, s.rt.DynamicStoreCopyValue(s.Ref(), k.Ref()))
}

// GetDictionary returns the value under key if it is a dictionary.
func (s Store) GetDictionary(key string) (cf.Dictionary, bool) {
	o, ok := s.Get(key)
	if !ok {
		return cf.Dictionary{}, false
	}
	d, ok := cf.Downcast(o, cf.DictionaryKind)
	if !ok {
		o.Release()
		return cf.Dictionary{}, false
	}
	return d, true
}

// GetString returns the value under key if it is a string.
func (s Store) GetString(key string) (string, bool) {
	o, ok := s.Get(key)
	if !ok {
		return "", false
	}
	defer o.Release()
	str, ok := cf.Downcast(o, cf.StringKind)
	if !ok {
		return "", false
	}
	return str.Value(), true
}

// GetValue returns the value under key converted with cf.Unmarshal.
func (s Store) GetValue(key string) (any, bool) {
	o, ok := s.Get(key)
	if !ok {
		return nil, false
	}
	defer o.Release()
	v, err := cf.Unmarshal(o)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Set stores value under key. It returns false if the daemon rejected the
// write; sc.LastError describes why.
func (s Store) Set(key string, value cf.Handle) bool {
	if s.Object == nil || value == nil || value.Base() == nil {
		return false
	}
	k := cf.NewString(s.rt, key)
	defer k.Release()
	defer s.KeepAlive()
	defer value.Base().KeepAlive()
	return s.rt.DynamicStoreSetValue(s.Ref(), k.Ref(), value.Base().Ref())
}

// SetValue marshals v with cf.Marshal and stores it under key.
func (s Store) SetValue(key string, v any) error {
	o, err := cf.Marshal(s.rt, v)
	if err != nil {
		return fmt.Errorf("dynamicstore: set %s: %w", key, err)
	}
	defer o.Release()
	if !s.Set(key, o) {
		return sc.LastError(s.rt, "SCDynamicStoreSetValue")
	}
	return nil
}

// Remove deletes key. It returns false if the key was absent or the daemon
// rejected the removal.
func (s Store) Remove(key string) bool {
	if s.Object == nil {
		return false
	}
	k := cf.NewString(s.rt, key)
	defer k.Release()
	defer s.KeepAlive()
	return s.rt.DynamicStoreRemoveValue(s.Ref(), k.Ref())
}

// Keys returns the keys matching a regular expression. The pattern is
// matched against whole keys.
func (s Store) Keys(pattern string) []string {
	if s.Object == nil {
		return nil
	}
	p := cf.NewString(s.rt, pattern)
	defer p.Release()
	defer s.KeepAlive()
	o, ok := cf.WrapOwned(s.rt, s.rt.DynamicStoreCopyKeyList(s.Ref(), p.Ref()))
	if !ok {
		return nil
	}
	defer o.Release()
	arr, ok := cf.Downcast(o, cf.ArrayKind)
	if !ok {
		return nil
	}
	return arr.Strings()
}

// Proxies returns the system proxy settings.
func (s Store) Proxies() (cf.Dictionary, bool) {
	if s.Object == nil {
		return cf.Dictionary{}, false
	}
	defer s.KeepAlive()
	o, ok := cf.WrapOwned(s.rt, s.rt.DynamicStoreCopyProxies(s.Ref()))
	if !ok {
		return cf.Dictionary{}, false
	}
	d, ok := cf.Downcast(o, cf.DictionaryKind)
	if !ok {
		o.Release()
		return cf.Dictionary{}, false
	}
	return d, true
}

// SetNotificationKeys selects the keys whose changes are delivered to the
// callout: exact keys and regular expression patterns. It replaces any
// previous selection.
func (s Store) SetNotificationKeys(keys, patterns []string) error {
	if s.Object == nil {
		return cf.ErrReleased
	}
	k := cf.NewStringArray(s.rt, keys)
	defer k.Release()
	p := cf.NewStringArray(s.rt, patterns)
	defer p.Release()
	defer s.KeepAlive()
	if !s.rt.DynamicStoreSetNotificationKeys(s.Ref(), k.Ref(), p.Ref()) {
		return sc.LastError(s.rt, "SCDynamicStoreSetNotificationKeys")
	}
	return nil
}

// CreateRunLoopSource returns a source that delivers the session's
// notifications when scheduled on a run loop. The source keeps the session
// alive until it is released.
func (s Store) CreateRunLoopSource(order int) (cf.RunLoopSource, error) {
	if s.Object == nil {
		return cf.RunLoopSource{}, cf.ErrReleased
	}
	defer s.KeepAlive()
	o, ok := cf.WrapOwned(s.rt, s.rt.DynamicStoreCreateRunLoopSource(s.Ref(), order))
	if !ok {
		return cf.RunLoopSource{}, sc.LastError(s.rt, "SCDynamicStoreCreateRunLoopSource")
	}
	return cf.RunLoopSource{Object: o}, nil
}
