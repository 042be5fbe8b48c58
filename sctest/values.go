//go:build !ios && !android && (amd64 || arm64)

package sctest

import (
	"fmt"
	"sort"

	"github.com/obinnaokechukwu/scgo/cf"
)

// valueLocked builds an owned property list from a Go value. It supports
// the same shapes fixtures use: string, bool, int, int32, int64, float64,
// []byte, []string, []any, map[string]any and map[string]string.
func (r *Runtime) valueLocked(v any) cf.Ref {
	switch x := v.(type) {
	case string:
		return r.allocLocked(&object{class: cf.ClassString, str: x})
	case bool:
		if x {
			return r.trueRef
		}
		return r.falseRef
	case int:
		return r.allocLocked(&object{class: cf.ClassNumber, i: int64(x), f: float64(x)})
	case int32:
		return r.allocLocked(&object{class: cf.ClassNumber, i: int64(x), f: float64(x)})
	case int64:
		return r.allocLocked(&object{class: cf.ClassNumber, i: x, f: float64(x)})
	case float64:
		return r.allocLocked(&object{class: cf.ClassNumber, i: int64(x), f: x, isFloat: true})
	case []byte:
		return r.allocLocked(&object{class: cf.ClassData, data: append([]byte{}, x...)})
	case []string:
		items := make([]any, len(x))
		for i, s := range x {
			items[i] = s
		}
		return r.valueLocked(items)
	case []any:
		refs := make([]cf.Ref, len(x))
		for i, e := range x {
			refs[i] = r.valueLocked(e)
		}
		arr := r.createArrayLocked(refs)
		for _, ref := range refs {
			r.releaseLocked(ref)
		}
		return arr
	case map[string]string:
		m := make(map[string]any, len(x))
		for k, s := range x {
			m[k] = s
		}
		return r.valueLocked(m)
	case map[string]any:
		names := make([]string, 0, len(x))
		for k := range x {
			names = append(names, k)
		}
		sort.Strings(names)
		keys := make([]cf.Ref, len(names))
		values := make([]cf.Ref, len(names))
		for i, k := range names {
			keys[i] = r.valueLocked(k)
			values[i] = r.valueLocked(x[k])
		}
		d := r.createDictionaryLocked(keys, values)
		for i := range keys {
			r.releaseLocked(keys[i])
			r.releaseLocked(values[i])
		}
		return d
	default:
		panic(fmt.Sprintf("sctest: unsupported fixture value %T", v))
	}
}

// decodeLocked converts a property list to Go values.
func (r *Runtime) decodeLocked(ref cf.Ref) any {
	o := r.getLocked(ref)
	switch o.class {
	case cf.ClassString:
		return o.str
	case cf.ClassBoolean:
		return o.b
	case cf.ClassNumber:
		if o.isFloat {
			return o.f
		}
		return o.i
	case cf.ClassData:
		return append([]byte{}, o.data...)
	case cf.ClassArray:
		out := make([]any, len(o.items))
		for i, item := range o.items {
			out[i] = r.decodeLocked(item)
		}
		return out
	case cf.ClassDictionary:
		out := make(map[string]any, len(o.items))
		for i, k := range o.items {
			out[r.getLocked(k).str] = r.decodeLocked(o.values[i])
		}
		return out
	}
	return nil
}

// copyLocked deep-copies a property list, the way values are copied when
// they cross the connection to the configuration daemon. The copy is owned.
func (r *Runtime) copyLocked(ref cf.Ref) cf.Ref {
	o := r.getLocked(ref)
	switch o.class {
	case cf.ClassBoolean:
		return r.retainLocked(ref)
	case cf.ClassString, cf.ClassNumber, cf.ClassData:
		c := *o
		c.count, c.children, c.state = 0, nil, nil
		c.data = append([]byte(nil), o.data...)
		return r.allocLocked(&c)
	case cf.ClassArray:
		items := make([]cf.Ref, len(o.items))
		for i, item := range o.items {
			items[i] = r.copyLocked(item)
		}
		return r.allocLocked(&object{class: cf.ClassArray, items: items})
	case cf.ClassDictionary:
		keys := make([]cf.Ref, len(o.items))
		values := make([]cf.Ref, len(o.items))
		for i := range o.items {
			keys[i] = r.copyLocked(o.items[i])
			values[i] = r.copyLocked(o.values[i])
		}
		return r.allocLocked(&object{class: cf.ClassDictionary, items: keys, values: values})
	}
	return 0
}

func (r *Runtime) isPropertyListLocked(ref cf.Ref) bool {
	switch r.getLocked(ref).class {
	case cf.ClassString, cf.ClassNumber, cf.ClassBoolean, cf.ClassData, cf.ClassArray, cf.ClassDictionary:
		return true
	}
	return false
}

func (r *Runtime) stringsLocked(ref cf.Ref) []string {
	if ref == 0 {
		return nil
	}
	o := r.getLocked(ref)
	out := make([]string, 0, len(o.items))
	for _, item := range o.items {
		if io := r.getLocked(item); io.class == cf.ClassString {
			out = append(out, io.str)
		}
	}
	return out
}

func (r *Runtime) stringArrayLocked(values []string) cf.Ref {
	refs := make([]cf.Ref, len(values))
	for i, v := range values {
		refs[i] = r.allocLocked(&object{class: cf.ClassString, str: v})
	}
	arr := r.allocLocked(&object{class: cf.ClassArray, items: refs})
	return arr
}
