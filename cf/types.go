//go:build !ios && !android && (amd64 || arm64)

package cf

import (
	"runtime"
	"sort"
)

// String is a CFString.
type String struct{ *Object }

// Array is a CFArray.
type Array struct{ *Object }

// Dictionary is a CFDictionary with arbitrary keys; scgo only ever builds
// dictionaries keyed by strings.
type Dictionary struct{ *Object }

// Number is a CFNumber.
type Number struct{ *Object }

// Boolean is a CFBoolean.
type Boolean struct{ *Object }

// Data is a CFData.
type Data struct{ *Object }

// RunLoopSource is a CFRunLoopSource.
type RunLoopSource struct{ *Object }

var (
	StringKind        = Kind[String]{ClassString, func(o *Object) String { return String{o} }}
	ArrayKind         = Kind[Array]{ClassArray, func(o *Object) Array { return Array{o} }}
	DictionaryKind    = Kind[Dictionary]{ClassDictionary, func(o *Object) Dictionary { return Dictionary{o} }}
	NumberKind        = Kind[Number]{ClassNumber, func(o *Object) Number { return Number{o} }}
	BooleanKind       = Kind[Boolean]{ClassBoolean, func(o *Object) Boolean { return Boolean{o} }}
	DataKind          = Kind[Data]{ClassData, func(o *Object) Data { return Data{o} }}
	RunLoopSourceKind = Kind[RunLoopSource]{ClassRunLoopSource, func(o *Object) RunLoopSource { return RunLoopSource{o} }}
)

// NewString creates an owned CFString.
func NewString(rt Runtime, s string) String {
	o, _ := WrapOwned(rt, rt.CreateString(s))
	return String{o}
}

// Value returns the string contents.
func (s String) Value() string {
	if s.Object == nil {
		return ""
	}
	defer s.KeepAlive()
	return s.rt.StringValue(s.ref)
}

func (s String) String() string { return s.Value() }

// NewInt creates an owned CFNumber holding a 64-bit integer.
func NewInt(rt Runtime, v int64) Number {
	o, _ := WrapOwned(rt, rt.CreateInt(v))
	return Number{o}
}

// NewFloat creates an owned CFNumber holding a double.
func NewFloat(rt Runtime, v float64) Number {
	o, _ := WrapOwned(rt, rt.CreateFloat(v))
	return Number{o}
}

// Int64 returns the value converted to int64.
func (n Number) Int64() int64 {
	if n.Object == nil {
		return 0
	}
	defer n.KeepAlive()
	i, _, _ := n.rt.NumberValue(n.ref)
	return i
}

// Float64 returns the value converted to float64.
func (n Number) Float64() float64 {
	if n.Object == nil {
		return 0
	}
	defer n.KeepAlive()
	_, f, _ := n.rt.NumberValue(n.ref)
	return f
}

// IsFloat reports whether the number is stored as a floating point type.
func (n Number) IsFloat() bool {
	if n.Object == nil {
		return false
	}
	defer n.KeepAlive()
	_, _, isFloat := n.rt.NumberValue(n.ref)
	return isFloat
}

// BooleanOf returns an owned handle to kCFBooleanTrue or kCFBooleanFalse.
func BooleanOf(rt Runtime, v bool) Boolean {
	o, _ := WrapBorrowed(rt, rt.Boolean(v))
	return Boolean{o}
}

// Value returns the boolean.
func (b Boolean) Value() bool {
	if b.Object == nil {
		return false
	}
	defer b.KeepAlive()
	return b.rt.BooleanValue(b.ref)
}

// NewData creates an owned CFData with a copy of p.
func NewData(rt Runtime, p []byte) Data {
	o, _ := WrapOwned(rt, rt.CreateData(p))
	return Data{o}
}

// Bytes returns a copy of the data.
func (d Data) Bytes() []byte {
	if d.Object == nil {
		return nil
	}
	defer d.KeepAlive()
	return d.rt.DataBytes(d.ref)
}

// NewArray creates an owned CFArray of items. The array retains each item;
// the caller keeps its own handles.
func NewArray(rt Runtime, items ...Handle) Array {
	defer runtime.KeepAlive(items)
	refs := make([]Ref, 0, len(items))
	for _, it := range items {
		if b := it.Base(); b != nil {
			refs = append(refs, b.ref)
		}
	}
	o, _ := WrapOwned(rt, rt.CreateArray(refs))
	return Array{o}
}

// NewStringArray creates an owned CFArray of CFStrings.
func NewStringArray(rt Runtime, values []string) Array {
	items := make([]Handle, len(values))
	for i, v := range values {
		items[i] = NewString(rt, v)
	}
	defer ReleaseAll(items...)
	return NewArray(rt, items...)
}

// Len returns the number of elements.
func (a Array) Len() int {
	if a.Object == nil {
		return 0
	}
	defer a.KeepAlive()
	return a.rt.ArrayCount(a.ref)
}

// At returns an owned handle to the element at i.
func (a Array) At(i int) (*Object, bool) {
	if a.Object == nil || i < 0 || i >= a.Len() {
		return nil, false
	}
	defer a.KeepAlive()
	return WrapBorrowed(a.rt, a.rt.ArrayValueAt(a.ref, i))
}

// Range calls fn with a view of each element until fn returns false. Views
// are valid only during the call; Clone one to keep it.
func (a Array) Range(fn func(i int, item *Object) bool) {
	defer a.KeepAlive()
	n := a.Len()
	for i := 0; i < n; i++ {
		if !fn(i, View(a.rt, a.rt.ArrayValueAt(a.ref, i))) {
			return
		}
	}
}

// Strings returns the string elements in order, skipping other types.
func (a Array) Strings() []string {
	out := make([]string, 0, a.Len())
	a.Range(func(_ int, item *Object) bool {
		if s, ok := Downcast(item, StringKind); ok {
			out = append(out, s.Value())
		}
		return true
	})
	return out
}

// NewDictionary creates an owned CFDictionary with string keys. Keys are
// inserted in sorted order.
func NewDictionary(rt Runtime, entries map[string]Handle) Dictionary {
	names := make([]string, 0, len(entries))
	for k, v := range entries {
		if v != nil && v.Base() != nil {
			names = append(names, k)
		}
	}
	sort.Strings(names)

	defer runtime.KeepAlive(entries)
	keys := make([]Ref, len(names))
	values := make([]Ref, len(names))
	owned := make([]Handle, len(names))
	for i, k := range names {
		ks := NewString(rt, k)
		owned[i] = ks
		keys[i] = ks.ref
		values[i] = entries[k].Base().ref
	}
	defer ReleaseAll(owned...)

	o, _ := WrapOwned(rt, rt.CreateDictionary(keys, values))
	return Dictionary{o}
}

// Len returns the number of entries.
func (d Dictionary) Len() int {
	if d.Object == nil {
		return 0
	}
	defer d.KeepAlive()
	return d.rt.DictionaryCount(d.ref)
}

// Get returns an owned handle to the value stored under key.
func (d Dictionary) Get(key string) (*Object, bool) {
	if d.Object == nil {
		return nil, false
	}
	defer d.KeepAlive()
	k := NewString(d.rt, key)
	defer k.Release()
	return WrapBorrowed(d.rt, d.rt.DictionaryValue(d.ref, k.ref))
}

// GetRef looks a value up by an existing key object, such as a framework
// constant. The result is owned.
func (d Dictionary) GetRef(key Ref) (*Object, bool) {
	if d.Object == nil || key == 0 {
		return nil, false
	}
	defer d.KeepAlive()
	return WrapBorrowed(d.rt, d.rt.DictionaryValue(d.ref, key))
}

// GetString returns the string stored under key.
func (d Dictionary) GetString(key string) (string, bool) {
	o, ok := d.Get(key)
	if !ok {
		return "", false
	}
	defer o.Release()
	s, ok := Downcast(o, StringKind)
	if !ok {
		return "", false
	}
	return s.Value(), true
}

// GetStrings returns the string elements of the array stored under key.
func (d Dictionary) GetStrings(key string) ([]string, bool) {
	o, ok := d.Get(key)
	if !ok {
		return nil, false
	}
	defer o.Release()
	a, ok := Downcast(o, ArrayKind)
	if !ok {
		return nil, false
	}
	return a.Strings(), true
}

// GetDictionary returns an owned handle to the dictionary stored under key.
func (d Dictionary) GetDictionary(key string) (Dictionary, bool) {
	o, ok := d.Get(key)
	if !ok {
		return Dictionary{}, false
	}
	sub, ok := Downcast(o, DictionaryKind)
	if !ok {
		o.Release()
		return Dictionary{}, false
	}
	return sub, true
}

// GetInt returns the number stored under key as int64.
func (d Dictionary) GetInt(key string) (int64, bool) {
	o, ok := d.Get(key)
	if !ok {
		return 0, false
	}
	defer o.Release()
	n, ok := Downcast(o, NumberKind)
	if !ok {
		return 0, false
	}
	return n.Int64(), true
}

// Range calls fn with views of each key and value until fn returns false.
func (d Dictionary) Range(fn func(key, value *Object) bool) {
	if d.Object == nil {
		return
	}
	defer d.KeepAlive()
	keys, values := d.rt.DictionaryEntries(d.ref)
	for i := range keys {
		if !fn(View(d.rt, keys[i]), View(d.rt, values[i])) {
			return
		}
	}
}

// Keys returns the string keys in sorted order.
func (d Dictionary) Keys() []string {
	var out []string
	d.Range(func(key, _ *Object) bool {
		if s, ok := Downcast(key, StringKind); ok {
			out = append(out, s.Value())
		}
		return true
	})
	sort.Strings(out)
	return out
}
