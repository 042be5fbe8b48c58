//go:build !ios && !android && (amd64 || arm64)

package sctest

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/sc"
)

const proxiesKey = "State:/Network/Global/Proxies"

// daemon is the simulated configd key/value store.
type daemon struct {
	values map[string]cf.Ref // owned copies
	stores map[cf.Ref]*storeState
}

func (d *daemon) init() {
	d.values = make(map[string]cf.Ref)
	d.stores = make(map[cf.Ref]*storeState)
}

type storeState struct {
	name       string
	callout    sc.StoreCallout
	ctx        sc.Context
	hasCallout bool

	keys     map[string]bool
	patterns []*regexp.Regexp

	pending    []string
	pendingSet map[string]bool
	forced     bool

	sessionKeys  bool
	sessionOwned map[string]bool
}

func (s *storeState) watches(key string) bool {
	if s.keys[key] {
		return true
	}
	for _, p := range s.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

func (s *storeState) queue(key string) {
	if s.pendingSet[key] {
		return
	}
	s.pendingSet[key] = true
	s.pending = append(s.pending, key)
}

func (s *storeState) takeBatch() []string {
	batch := s.pending
	s.pending = nil
	s.pendingSet = make(map[string]bool)
	s.forced = false
	return batch
}

func (s *storeState) dealloc(r *Runtime, self cf.Ref) {
	delete(r.daemon.stores, self)
	owned := make([]string, 0, len(s.sessionOwned))
	for key := range s.sessionOwned {
		owned = append(owned, key)
	}
	sort.Strings(owned)
	for _, key := range owned {
		r.removeValueLocked(key)
	}
	if s.hasCallout && s.ctx.Release != nil {
		release, info := s.ctx.Release, s.ctx.Info
		r.post = append(r.post, func() { release(info) })
	}
}

// sourceState backs a run loop source created for a store. The source
// retains the store through its children.
type sourceState struct {
	store cf.Ref
}

func (r *Runtime) mustLocked(ref cf.Ref, class cf.Class) *object {
	o := r.getLocked(ref)
	if o.class != class {
		panic(fmt.Sprintf("sctest: %#x is a %s, not a %s", uintptr(ref), o.class, class))
	}
	return o
}

func (r *Runtime) storeLocked(ref cf.Ref) *storeState {
	return r.mustLocked(ref, sc.ClassDynamicStore).state.(*storeState)
}

func (r *Runtime) DynamicStoreCreate(name, options cf.Ref, callout sc.StoreCallout, ctx *sc.Context) cf.Ref {
	r.mu.Lock()
	defer r.unlock()

	if r.failLocked("DynamicStoreCreate") {
		if callout != nil && ctx != nil && ctx.Release != nil {
			release, info := ctx.Release, ctx.Info
			r.post = append(r.post, func() { release(info) })
		}
		return 0
	}

	s := &storeState{
		name:         r.mustLocked(name, cf.ClassString).str,
		keys:         make(map[string]bool),
		pendingSet:   make(map[string]bool),
		sessionOwned: make(map[string]bool),
	}
	if options != 0 {
		opts := r.mustLocked(options, cf.ClassDictionary)
		if v := r.dictValueLocked(opts, "UseSessionKeys"); v != 0 {
			s.sessionKeys = r.getLocked(v).b
		}
	}
	if callout != nil {
		s.callout, s.hasCallout = callout, true
		if ctx != nil {
			s.ctx = *ctx
		}
	}
	ref := r.allocLocked(&object{class: sc.ClassDynamicStore, state: s})
	r.daemon.stores[ref] = s
	return ref
}

func (r *Runtime) DynamicStoreCopyValue(store, key cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storeLocked(store)
	if r.failLocked("DynamicStoreCopyValue") {
		return 0
	}
	v, ok := r.daemon.values[r.mustLocked(key, cf.ClassString).str]
	if !ok {
		r.lastErr = sc.StatusNoKey
		return 0
	}
	return r.copyLocked(v)
}

func (r *Runtime) DynamicStoreSetValue(store, key, value cf.Ref) bool {
	r.mu.Lock()
	defer r.unlock()
	s := r.storeLocked(store)
	if r.failLocked("DynamicStoreSetValue") {
		return false
	}
	if !r.isPropertyListLocked(value) {
		r.lastErr = sc.StatusInvalidArgument
		return false
	}
	k := r.mustLocked(key, cf.ClassString).str
	r.setValueLocked(k, r.copyLocked(value))
	if s.sessionKeys {
		s.sessionOwned[k] = true
	}
	return true
}

// setValueLocked stores an owned value and notifies watchers if it changed.
func (r *Runtime) setValueLocked(key string, value cf.Ref) {
	old, ok := r.daemon.values[key]
	if ok && r.equalLocked(old, value) {
		r.releaseLocked(value)
		return
	}
	r.daemon.values[key] = value
	if ok {
		r.releaseLocked(old)
	}
	r.notifyLocked(key)
}

func (r *Runtime) DynamicStoreRemoveValue(store, key cf.Ref) bool {
	r.mu.Lock()
	defer r.unlock()
	s := r.storeLocked(store)
	if r.failLocked("DynamicStoreRemoveValue") {
		return false
	}
	k := r.mustLocked(key, cf.ClassString).str
	if !r.removeValueLocked(k) {
		r.lastErr = sc.StatusNoKey
		return false
	}
	delete(s.sessionOwned, k)
	return true
}

func (r *Runtime) removeValueLocked(key string) bool {
	old, ok := r.daemon.values[key]
	if !ok {
		return false
	}
	delete(r.daemon.values, key)
	r.releaseLocked(old)
	r.notifyLocked(key)
	return true
}

func (r *Runtime) notifyLocked(key string) {
	notified := false
	for _, s := range r.daemon.stores {
		if s.watches(key) {
			s.queue(key)
			notified = true
		}
	}
	if notified {
		r.loop.signal()
	}
}

func compilePattern(p string) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + p + ")$")
}

func (r *Runtime) DynamicStoreCopyKeyList(store, pattern cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storeLocked(store)
	if r.failLocked("DynamicStoreCopyKeyList") {
		return 0
	}
	re, err := compilePattern(r.mustLocked(pattern, cf.ClassString).str)
	if err != nil {
		r.lastErr = sc.StatusInvalidArgument
		return 0
	}
	var keys []string
	for k := range r.daemon.values {
		if re.MatchString(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return r.stringArrayLocked(keys)
}

func (r *Runtime) DynamicStoreCopyProxies(store cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storeLocked(store)
	if r.failLocked("DynamicStoreCopyProxies") {
		return 0
	}
	if v, ok := r.daemon.values[proxiesKey]; ok {
		return r.copyLocked(v)
	}
	return r.allocLocked(&object{class: cf.ClassDictionary})
}

func (r *Runtime) DynamicStoreSetNotificationKeys(store, keys, patterns cf.Ref) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.storeLocked(store)
	if r.failLocked("DynamicStoreSetNotificationKeys") {
		return false
	}
	var compiled []*regexp.Regexp
	for _, p := range r.stringsLocked(patterns) {
		re, err := compilePattern(p)
		if err != nil {
			r.lastErr = sc.StatusInvalidArgument
			return false
		}
		compiled = append(compiled, re)
	}
	s.keys = make(map[string]bool)
	for _, k := range r.stringsLocked(keys) {
		s.keys[k] = true
	}
	s.patterns = compiled
	return true
}

func (r *Runtime) DynamicStoreCreateRunLoopSource(store cf.Ref, order int) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storeLocked(store)
	if r.failLocked("DynamicStoreCreateRunLoopSource") {
		return 0
	}
	return r.allocLocked(&object{
		class:    cf.ClassRunLoopSource,
		state:    &sourceState{store: store},
		children: map[string]cf.Ref{"store": r.retainLocked(store)},
	})
}

// SetStoreValue writes key as another process would, notifying watchers.
func (r *Runtime) SetStoreValue(key string, v any) {
	r.mu.Lock()
	defer r.unlock()
	r.setValueLocked(key, r.valueLocked(v))
}

// RemoveStoreValue removes key as another process would.
func (r *Runtime) RemoveStoreValue(key string) bool {
	r.mu.Lock()
	defer r.unlock()
	return r.removeValueLocked(key)
}

// StoreValue returns the decoded value stored under key.
func (r *Runtime) StoreValue(key string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.daemon.values[key]
	if !ok {
		return nil, false
	}
	return r.decodeLocked(v), true
}

// StoreKeys returns every key in the daemon, sorted.
func (r *Runtime) StoreKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.daemon.values))
	for k := range r.daemon.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NotifyStore queues a delivery of keys to one store even if it does not
// watch them. With no keys it queues a delivery of an empty batch.
func (r *Runtime) NotifyStore(store cf.Ref, keys ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.storeLocked(store)
	for _, k := range keys {
		s.queue(k)
	}
	s.forced = true
	r.loop.signal()
}

// Stores returns the number of live dynamic store sessions.
func (r *Runtime) Stores() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.daemon.stores)
}
