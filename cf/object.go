//go:build !ios && !android && (amd64 || arm64)

package cf

import (
	"fmt"
	"runtime"
	"sync/atomic"
)

// Object is a Go handle to one Core Foundation reference.
//
// An owned Object holds exactly one +1 reference and gives it back exactly
// once, either through Release or, if the handle becomes unreachable first,
// through a cleanup registered with the Go runtime. A view (see View) holds
// nothing and never releases.
//
// Objects may be released from any goroutine. The underlying framework
// objects are immutable values, so concurrent reads through distinct handles
// to the same reference are safe.
type Object struct {
	rt       Runtime
	ref      Ref
	owned    bool
	released atomic.Bool
	cleanup  runtime.Cleanup
}

// Handle is implemented by *Object and by every typed wrapper embedding it.
type Handle interface {
	Base() *Object
}

type leakedRef struct {
	rt  Runtime
	ref Ref
}

func releaseLeaked(l leakedRef) {
	l.rt.Release(l.ref)
}

func newOwned(rt Runtime, ref Ref) *Object {
	o := &Object{rt: rt, ref: ref, owned: true}
	o.cleanup = runtime.AddCleanup(o, releaseLeaked, leakedRef{rt: rt, ref: ref})
	return o
}

// WrapOwned takes ownership of a reference obtained from a Create or Copy
// call. A zero ref yields (nil, false) and nothing is released.
func WrapOwned(rt Runtime, ref Ref) (*Object, bool) {
	if ref == 0 {
		return nil, false
	}
	return newOwned(rt, ref), true
}

// WrapBorrowed retains a reference obtained from a Get call and returns an
// owned handle to it. A zero ref yields (nil, false) and nothing is retained.
func WrapBorrowed(rt Runtime, ref Ref) (*Object, bool) {
	if ref == 0 {
		return nil, false
	}
	return newOwned(rt, rt.Retain(ref)), true
}

// View returns a non-owning handle valid only while the caller's own
// reference is alive, such as for the duration of a callback. Release on a
// view does nothing; Clone produces an owned handle.
func View(rt Runtime, ref Ref) *Object {
	if ref == 0 {
		return nil
	}
	return &Object{rt: rt, ref: ref}
}

// Base returns o.
func (o *Object) Base() *Object { return o }

// KeepAlive keeps o reachable, and its reference unreleased by the leak
// cleanup, until the call. Code that passes Ref() to the runtime defers it
// so the reference outlives the runtime call and any get-rule result
// borrowed from it.
func (o *Object) KeepAlive() { runtime.KeepAlive(o) }

// Ref returns the raw reference. It stays valid until o is released.
func (o *Object) Ref() Ref {
	if o == nil {
		return 0
	}
	return o.ref
}

// Runtime returns the runtime o belongs to.
func (o *Object) Runtime() Runtime {
	if o == nil {
		return nil
	}
	return o.rt
}

// Owned reports whether o releases its reference.
func (o *Object) Owned() bool {
	return o != nil && o.owned
}

// Released reports whether Release has been called on an owned handle.
func (o *Object) Released() bool {
	return o != nil && o.released.Load()
}

// Clone retains the reference and returns a new owned handle.
// Cloning a nil or released handle returns nil.
func (o *Object) Clone() *Object {
	if o == nil || o.released.Load() {
		return nil
	}
	defer o.KeepAlive()
	return newOwned(o.rt, o.rt.Retain(o.ref))
}

// Release gives the handle's reference back. Only the first call on an owned
// handle has an effect.
func (o *Object) Release() {
	if o == nil || !o.owned {
		return
	}
	if !o.released.CompareAndSwap(false, true) {
		return
	}
	o.cleanup.Stop()
	o.rt.Release(o.ref)
}

// Close calls Release. It exists so objects satisfy io.Closer.
func (o *Object) Close() error {
	o.Release()
	return nil
}

// TypeID returns the object's runtime class identifier.
func (o *Object) TypeID() TypeID {
	if o == nil {
		return 0
	}
	defer o.KeepAlive()
	return o.rt.TypeIDOf(o.ref)
}

// Is reports whether o is an instance of class.
func (o *Object) Is(class Class) bool {
	if o == nil {
		return false
	}
	defer o.KeepAlive()
	want := o.rt.ClassTypeID(class)
	return want != 0 && o.rt.TypeIDOf(o.ref) == want
}

// Equal reports whether o and other wrap the same reference.
func (o *Object) Equal(other Handle) bool {
	if other == nil {
		return o == nil
	}
	b := other.Base()
	if o == nil || b == nil {
		return o == nil && b == nil
	}
	return o.ref == b.ref
}

// Hash returns a hash consistent with Equal.
func (o *Object) Hash() uint64 {
	if o == nil {
		return 0
	}
	return uint64(o.ref)
}

func (o *Object) String() string {
	if o == nil {
		return "cf.Object(nil)"
	}
	return fmt.Sprintf("cf.Object(%#x)", uintptr(o.ref))
}

// EqualContents compares two objects with the framework's structural equality.
func EqualContents(a, b Handle) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	x, y := a.Base(), b.Base()
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	if x.ref == y.ref {
		return true
	}
	defer x.KeepAlive()
	defer y.KeepAlive()
	return x.rt.Equal(x.ref, y.ref)
}

// Kind describes a typed wrapper: the class it requires and how to build
// it around an existing handle.
type Kind[T any] struct {
	Class Class
	Wrap  func(*Object) T
}

// Downcast checks the runtime class of o and returns it as T. The result
// shares o's reference; releasing either releases both. A class mismatch
// returns the zero T and false.
func Downcast[T any](o *Object, k Kind[T]) (T, bool) {
	var zero T
	if o == nil || o.ref == 0 || !o.Is(k.Class) {
		return zero, false
	}
	return k.Wrap(o), true
}

// ReleaseAll releases every handle.
func ReleaseAll(objs ...Handle) {
	for _, h := range objs {
		if h != nil {
			h.Base().Release()
		}
	}
}

// ReleaseSlice releases every handle in items.
func ReleaseSlice[T Handle](items []T) {
	for _, h := range items {
		if b := h.Base(); b != nil {
			b.Release()
		}
	}
}
