//go:build !ios && !android && (amd64 || arm64)

package sctest

import (
	"sort"
	"strings"

	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/sc"
	"github.com/obinnaokechukwu/scgo/schema"
)

// prefsTree is the committed preferences file.
type prefsTree struct {
	committed  map[string]cf.Ref // owned
	generation int
}

func (t *prefsTree) init() {
	t.committed = make(map[string]cf.Ref)
}

type prefsState struct {
	name       string
	values     map[string]cf.Ref // owned working copy
	generation int
}

func (p *prefsState) dealloc(r *Runtime, self cf.Ref) {
	for _, v := range p.values {
		r.releaseLocked(v)
	}
	p.values = nil
	if r.lockedBy == self {
		r.lockedBy = 0
	}
}

func (r *Runtime) prefsLocked(ref cf.Ref) *prefsState {
	return r.mustLocked(ref, sc.ClassPreferences).state.(*prefsState)
}

func (r *Runtime) PreferencesCreate(name, prefsID cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failLocked("PreferencesCreate") {
		return 0
	}
	p := &prefsState{
		name:       r.mustLocked(name, cf.ClassString).str,
		values:     make(map[string]cf.Ref, len(r.prefs.committed)),
		generation: r.prefs.generation,
	}
	for k, v := range r.prefs.committed {
		p.values[k] = r.copyLocked(v)
	}
	return r.allocLocked(&object{class: sc.ClassPreferences, state: p})
}

func (r *Runtime) PreferencesCopyKeyList(prefs cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.prefsLocked(prefs)
	if r.failLocked("PreferencesCopyKeyList") {
		return 0
	}
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return r.stringArrayLocked(keys)
}

func (r *Runtime) PreferencesGetValue(prefs, key cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.prefsLocked(prefs)
	v, ok := p.values[r.mustLocked(key, cf.ClassString).str]
	if !ok {
		r.lastErr = sc.StatusNoKey
		return 0
	}
	return v
}

func (r *Runtime) PreferencesPathGetValue(prefs, path cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.prefsLocked(prefs)
	parts := strings.Split(strings.Trim(r.mustLocked(path, cf.ClassString).str, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		r.lastErr = sc.StatusInvalidArgument
		return 0
	}
	cur, ok := p.values[parts[0]]
	if !ok {
		r.lastErr = sc.StatusNoKey
		return 0
	}
	for _, part := range parts[1:] {
		o := r.getLocked(cur)
		if o.class != cf.ClassDictionary {
			r.lastErr = sc.StatusNoKey
			return 0
		}
		if cur = r.dictValueLocked(o, part); cur == 0 {
			r.lastErr = sc.StatusNoKey
			return 0
		}
	}
	return cur
}

func (r *Runtime) PreferencesSetValue(prefs, key, value cf.Ref) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.prefsLocked(prefs)
	if r.failLocked("PreferencesSetValue") {
		return false
	}
	if !r.isPropertyListLocked(value) {
		r.lastErr = sc.StatusInvalidArgument
		return false
	}
	k := r.mustLocked(key, cf.ClassString).str
	if old, ok := p.values[k]; ok {
		r.releaseLocked(old)
	}
	p.values[k] = r.copyLocked(value)
	return true
}

func (r *Runtime) PreferencesRemoveValue(prefs, key cf.Ref) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.prefsLocked(prefs)
	if r.failLocked("PreferencesRemoveValue") {
		return false
	}
	k := r.mustLocked(key, cf.ClassString).str
	old, ok := p.values[k]
	if !ok {
		r.lastErr = sc.StatusNoKey
		return false
	}
	delete(p.values, k)
	r.releaseLocked(old)
	return true
}

func (r *Runtime) PreferencesCommitChanges(prefs cf.Ref) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.prefsLocked(prefs)
	if r.failLocked("PreferencesCommitChanges") {
		return false
	}
	if p.generation != r.prefs.generation {
		r.lastErr = sc.StatusStale
		return false
	}
	for k, v := range r.prefs.committed {
		r.releaseLocked(v)
		delete(r.prefs.committed, k)
	}
	for k, v := range p.values {
		r.prefs.committed[k] = r.copyLocked(v)
	}
	r.prefs.generation++
	p.generation = r.prefs.generation
	return true
}

// PreferencesApplyChanges publishes the committed services to the Setup:
// domain of the dynamic store, as configd does.
func (r *Runtime) PreferencesApplyChanges(prefs cf.Ref) bool {
	r.mu.Lock()
	defer r.unlock()
	r.prefsLocked(prefs)
	if r.failLocked("PreferencesApplyChanges") {
		return false
	}
	r.applied++
	services, ok := r.prefs.committed[schema.PrefNetworkServices]
	if !ok {
		return true
	}
	so := r.getLocked(services)
	if so.class != cf.ClassDictionary {
		return true
	}
	for i, idRef := range so.items {
		id := r.getLocked(idRef).str
		svc := r.getLocked(so.values[i])
		if svc.class != cf.ClassDictionary {
			continue
		}
		for j, entRef := range svc.items {
			ent := r.getLocked(entRef).str
			val := svc.values[j]
			if r.getLocked(val).class != cf.ClassDictionary {
				continue
			}
			r.setValueLocked(schema.ServiceKey(schema.DomainSetup, id, schema.Entity(ent)), r.copyLocked(val))
		}
	}
	return true
}

func (r *Runtime) PreferencesLock(prefs cf.Ref, wait bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.prefsLocked(prefs)
	if r.failLocked("PreferencesLock") {
		return false
	}
	switch {
	case r.lockedBy == prefs:
		r.lastErr = sc.StatusLocked
		return false
	case r.lockedBy != 0:
		r.lastErr = sc.StatusPrefsBusy
		return false
	case p.generation != r.prefs.generation:
		r.lastErr = sc.StatusStale
		return false
	}
	r.lockedBy = prefs
	return true
}

func (r *Runtime) PreferencesUnlock(prefs cf.Ref) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefsLocked(prefs)
	if r.lockedBy != prefs {
		r.lastErr = sc.StatusNeedLock
		return false
	}
	r.lockedBy = 0
	return true
}

// SetPreference commits key as another process would. Open sessions become
// stale.
func (r *Runtime) SetPreference(key string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setPreferenceLocked(key, v)
}

func (r *Runtime) setPreferenceLocked(key string, v any) {
	if old, ok := r.prefs.committed[key]; ok {
		r.releaseLocked(old)
	}
	r.prefs.committed[key] = r.valueLocked(v)
	r.prefs.generation++
}

// Preference returns the decoded committed value of key.
func (r *Runtime) Preference(key string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.prefs.committed[key]
	if !ok {
		return nil, false
	}
	return r.decodeLocked(v), true
}

// Applied returns the number of successful PreferencesApplyChanges calls.
func (r *Runtime) Applied() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applied
}
