//go:build !ios && !android && (amd64 || arm64)

// Package preferences opens sessions on the persistent network
// configuration (/Library/Preferences/SystemConfiguration/preferences.plist).
//
// Changes made with Set and Remove stay local to the session until Commit
// writes them and Apply asks configd to activate them. Both require root.
package preferences

import (
	"fmt"

	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/sc"
)

// Preferences is a preferences session.
type Preferences struct {
	*cf.Object
	rt sc.Runtime
}

// Kind downcasts generic objects to Preferences.
var Kind = cf.Kind[Preferences]{
	Class: sc.ClassPreferences,
	Wrap: func(o *cf.Object) Preferences {
		rt, _ := o.Runtime().(sc.Runtime)
		return Preferences{Object: o, rt: rt}
	},
}

type config struct {
	rt sc.Runtime
}

// Option configures New.
type Option func(*config)

// WithRuntime selects the runtime. The default is sc.Default().
func WithRuntime(rt sc.Runtime) Option {
	return func(c *config) { c.rt = rt }
}

// New opens the system network preferences under the session name name.
func New(name string, opts ...Option) (Preferences, error) {
	return NewGroup(name, "", opts...)
}

// NewGroup opens the preferences file prefsID, a path relative to the
// SystemConfiguration preferences directory or an absolute path. An empty
// prefsID selects the system network preferences.
func NewGroup(name, prefsID string, opts ...Option) (Preferences, error) {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	if c.rt == nil {
		rt, err := sc.Default()
		if err != nil {
			return Preferences{}, err
		}
		c.rt = rt
	}
	rt := c.rt

	n := cf.NewString(rt, name)
	defer n.Release()
	var id cf.String
	if prefsID != "" {
		id = cf.NewString(rt, prefsID)
		defer id.Release()
	}

	o, ok := cf.WrapOwned(rt, rt.PreferencesCreate(n.Ref(), id.Ref()))
	if !ok {
		return Preferences{}, sc.LastError(rt, "SCPreferencesCreate")
	}
	return Preferences{Object: o, rt: rt}, nil
}

// Runtime returns the session's runtime.
func (p Preferences) Runtime() sc.Runtime { return p.rt }

// Keys returns the top-level keys, such as "NetworkServices" and "Sets".
func (p Preferences) Keys() []string {
	if p.Object == nil {
		return nil
	}
	defer p.KeepAlive()
	o, ok := cf.WrapOwned(p.rt, p.rt.PreferencesCopyKeyList(p.Ref()))
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

// Get returns an owned handle to the top-level value key.
func (p Preferences) Get(key string) (*cf.Object, bool) {
	if p.Object == nil {
		return nil, false
	}
	k := cf.NewString(p.rt, key)
	defer k.Release()
	defer p.KeepAlive()
	return cf.WrapBorrowed(p.rt, p.rt.PreferencesGetValue(p.Ref(), k.Ref()))
}

// PathGet returns an owned handle to the value at a slash separated path
// such as "/Sets/<id>".
func (p Preferences) PathGet(path string) (*cf.Object, bool) {
	if p.Object == nil {
		return nil, false
	}
	k := cf.NewString(p.rt, path)
	defer k.Release()
	defer p.KeepAlive()
	return cf.WrapBorrowed(p.rt, p.rt.PreferencesPathGetValue(p.Ref(), k.Ref()))
}

// PathGetDictionary returns the dictionary at path.
func (p Preferences) PathGetDictionary(path string) (cf.Dictionary, bool) {
	o, ok := p.PathGet(path)
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

// Set changes the top-level value key in this session.
func (p Preferences) Set(key string, value cf.Handle) bool {
	if p.Object == nil || value == nil || value.Base() == nil {
		return false
	}
	k := cf.NewString(p.rt, key)
	defer k.Release()
	defer p.KeepAlive()
	defer value.Base().KeepAlive()
	return p.rt.PreferencesSetValue(p.Ref(), k.Ref(), value.Base().Ref())
}

// SetValue marshals v with cf.Marshal and sets it under key.
func (p Preferences) SetValue(key string, v any) error {
	o, err := cf.Marshal(p.rt, v)
	if err != nil {
		return fmt.Errorf("preferences: set %s: %w", key, err)
	}
	defer o.Release()
	if !p.Set(key, o) {
		return sc.LastError(p.rt, "SCPreferencesSetValue")
	}
	return nil
}

// Remove deletes the top-level value key in this session.
func (p Preferences) Remove(key string) bool {
	if p.Object == nil {
		return false
	}
	k := cf.NewString(p.rt, key)
	defer k.Release()
	defer p.KeepAlive()
	return p.rt.PreferencesRemoveValue(p.Ref(), k.Ref())
}

// Commit writes the session's changes to disk.
func (p Preferences) Commit() error {
	if p.Object == nil {
		return cf.ErrReleased
	}
	defer p.KeepAlive()
	if !p.rt.PreferencesCommitChanges(p.Ref()) {
		return sc.LastError(p.rt, "SCPreferencesCommitChanges")
	}
	return nil
}

// Apply asks configd to activate the committed configuration.
func (p Preferences) Apply() error {
	if p.Object == nil {
		return cf.ErrReleased
	}
	defer p.KeepAlive()
	if !p.rt.PreferencesApplyChanges(p.Ref()) {
		return sc.LastError(p.rt, "SCPreferencesApplyChanges")
	}
	return nil
}

// Lock takes the preferences write lock. With wait set it blocks until the
// lock is available.
func (p Preferences) Lock(wait bool) error {
	if p.Object == nil {
		return cf.ErrReleased
	}
	defer p.KeepAlive()
	if !p.rt.PreferencesLock(p.Ref(), wait) {
		return sc.LastError(p.rt, "SCPreferencesLock")
	}
	return nil
}

// Unlock releases the write lock.
func (p Preferences) Unlock() error {
	if p.Object == nil {
		return cf.ErrReleased
	}
	defer p.KeepAlive()
	if !p.rt.PreferencesUnlock(p.Ref()) {
		return sc.LastError(p.rt, "SCPreferencesUnlock")
	}
	return nil
}

// Update runs fn with the lock held, then commits and applies the changes.
// The lock is released whatever fn returns.
func (p Preferences) Update(fn func(Preferences) error) error {
	if err := p.Lock(true); err != nil {
		return err
	}
	defer p.Unlock()
	if err := fn(p); err != nil {
		return err
	}
	if err := p.Commit(); err != nil {
		return err
	}
	return p.Apply()
}
