//go:build !ios && !android && (amd64 || arm64)

// Package network reads the network configuration: services, interfaces,
// protocols and sets from a preferences session, and the computed DNS and
// routing state from the dynamic store.
//
// Every handle returned by this package is owned and must be released.
package network

import (
	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/sc"
)

// collect wraps an owned array of framework objects into typed handles.
// Elements of the wrong class are skipped.
func collect[T any](rt sc.Runtime, ref cf.Ref, kind cf.Kind[T]) []T {
	o, ok := cf.WrapOwned(rt, ref)
	if !ok {
		return nil
	}
	defer o.Release()
	arr, ok := cf.Downcast(o, cf.ArrayKind)
	if !ok {
		return nil
	}
	out := make([]T, 0, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		item, ok := arr.At(i)
		if !ok {
			continue
		}
		v, ok := cf.Downcast(item, kind)
		if !ok {
			item.Release()
			continue
		}
		out = append(out, v)
	}
	return out
}

// borrowedString reads a string returned under the get rule.
func borrowedString(rt sc.Runtime, ref cf.Ref) (string, bool) {
	v := cf.View(rt, ref)
	if v == nil {
		return "", false
	}
	s, ok := cf.Downcast(v, cf.StringKind)
	if !ok {
		return "", false
	}
	return s.Value(), true
}

// borrowedDictionary retains a dictionary returned under the get rule.
func borrowedDictionary(rt sc.Runtime, ref cf.Ref) (cf.Dictionary, bool) {
	o, ok := cf.WrapBorrowed(rt, ref)
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

func runtimeOf(o *cf.Object) sc.Runtime {
	rt, _ := o.Runtime().(sc.Runtime)
	return rt
}
