//go:build !ios && !android && (amd64 || arm64)

package cf

import (
	"fmt"
	"math"
	"net/netip"
	"reflect"
)

// Marshal converts a Go value to an owned property-list object.
//
// Supported inputs are string, bool, every integer kind, float32, float64,
// []byte, []string, []any, map[string]any, map[string]string, netip.Addr
// (stored as its string form) and existing handles, which are cloned.
func Marshal(rt Runtime, v any) (*Object, error) {
	switch x := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrUnsupportedType)
	case Handle:
		b := x.Base()
		if b == nil {
			return nil, fmt.Errorf("%w: nil handle", ErrUnsupportedType)
		}
		if b.Released() {
			return nil, ErrReleased
		}
		return b.Clone(), nil
	case string:
		return wrapCreated(rt, rt.CreateString(x))
	case bool:
		if b := BooleanOf(rt, x); b.Object != nil {
			return b.Object, nil
		}
		return nil, ErrNullObject
	case float32:
		return wrapCreated(rt, rt.CreateFloat(float64(x)))
	case float64:
		return wrapCreated(rt, rt.CreateFloat(x))
	case []byte:
		return wrapCreated(rt, rt.CreateData(x))
	case netip.Addr:
		if !x.IsValid() {
			return nil, fmt.Errorf("%w: invalid address", ErrUnsupportedType)
		}
		return wrapCreated(rt, rt.CreateString(x.String()))
	case []string:
		return NewStringArray(rt, x).Object, nil
	case []netip.Addr:
		values := make([]string, len(x))
		for i, a := range x {
			if !a.IsValid() {
				return nil, fmt.Errorf("index %d: %w: invalid address", i, ErrUnsupportedType)
			}
			values[i] = a.String()
		}
		return NewStringArray(rt, values).Object, nil
	case []any:
		items := make([]Handle, 0, len(x))
		defer func() { ReleaseAll(items...) }()
		for i, e := range x {
			o, err := Marshal(rt, e)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			items = append(items, o)
		}
		return NewArray(rt, items...).Object, nil
	case map[string]string:
		m := make(map[string]any, len(x))
		for k, s := range x {
			m[k] = s
		}
		return Marshal(rt, m)
	case map[string]any:
		entries := make(map[string]Handle, len(x))
		defer func() {
			for _, h := range entries {
				h.Base().Release()
			}
		}()
		for k, e := range x {
			o, err := Marshal(rt, e)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			entries[k] = o
		}
		return NewDictionary(rt, entries).Object, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return wrapCreated(rt, rt.CreateInt(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedType, u)
		}
		return wrapCreated(rt, rt.CreateInt(int64(u)))
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

func wrapCreated(rt Runtime, ref Ref) (*Object, error) {
	o, ok := WrapOwned(rt, ref)
	if !ok {
		return nil, ErrNullObject
	}
	return o, nil
}

// Unmarshal converts a property-list object to Go values: string, int64,
// float64, bool, []byte, []any and map[string]any. Dictionary keys that are
// not strings are skipped.
func Unmarshal(o Handle) (any, error) {
	if o == nil || o.Base() == nil {
		return nil, fmt.Errorf("%w: nil", ErrUnsupportedType)
	}
	b := o.Base()
	if b.Released() {
		return nil, ErrReleased
	}

	if s, ok := Downcast(b, StringKind); ok {
		return s.Value(), nil
	}
	if n, ok := Downcast(b, NumberKind); ok {
		if n.IsFloat() {
			return n.Float64(), nil
		}
		return n.Int64(), nil
	}
	if v, ok := Downcast(b, BooleanKind); ok {
		return v.Value(), nil
	}
	if d, ok := Downcast(b, DataKind); ok {
		return d.Bytes(), nil
	}
	if a, ok := Downcast(b, ArrayKind); ok {
		out := make([]any, 0, a.Len())
		var err error
		a.Range(func(i int, item *Object) bool {
			var v any
			v, err = Unmarshal(item)
			if err != nil {
				err = fmt.Errorf("index %d: %w", i, err)
				return false
			}
			out = append(out, v)
			return true
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	if d, ok := Downcast(b, DictionaryKind); ok {
		out := make(map[string]any, d.Len())
		var err error
		d.Range(func(key, value *Object) bool {
			ks, ok := Downcast(key, StringKind)
			if !ok {
				return true
			}
			var v any
			v, err = Unmarshal(value)
			if err != nil {
				err = fmt.Errorf("key %q: %w", ks.Value(), err)
				return false
			}
			out[ks.Value()] = v
			return true
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: type id %d", ErrUnsupportedType, b.TypeID())
}
