//go:build !ios && !android && (amd64 || arm64)

// Package handles turns Go values into integer tokens that native code can
// carry as an opaque `void *info` context and hand back to a callback.
//
// Go pointers must not be stored in memory owned by the frameworks, so the
// callback bridge stores its boxed {handler, state} here and gives the
// framework the token instead. The token is freed exactly once, from the
// framework's context-release hook.
package handles

import (
	"sync"
)

// Registry maps tokens to Go values. The zero value is not usable; use New.
type Registry struct {
	mu     sync.RWMutex
	values map[uintptr]any
	next   uintptr
}

// New returns an empty registry. Token 0 is never issued, so it can stand for "no context".
func New() *Registry {
	return &Registry{values: make(map[uintptr]any), next: 1}
}

// Register stores v and returns its token.
func (r *Registry) Register(v any) uintptr {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	r.values[id] = v
	return id
}

// Lookup returns the value for a token, or nil if it is not registered.
func (r *Registry) Lookup(id uintptr) any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.values[id]
}

// Take removes a token and returns its value. The second result is false if
// the token was not registered, which lets a release hook detect a repeat call.
func (r *Registry) Take(id uintptr) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[id]
	if ok {
		delete(r.values, id)
	}
	return v, ok
}

// Len returns the number of live tokens.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.values)
}

var contexts = New()

// Register stores v in the process-wide callback context registry.
func Register(v any) uintptr { return contexts.Register(v) }

// Lookup reads from the process-wide registry.
func Lookup(id uintptr) any { return contexts.Lookup(id) }

// Take removes a token from the process-wide registry.
func Take(id uintptr) (any, bool) { return contexts.Take(id) }

// Count returns the number of live callback contexts. Tests use it to check
// that every registration was released.
func Count() int { return contexts.Len() }
