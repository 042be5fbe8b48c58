//go:build !ios && !android && (amd64 || arm64)

package network

import (
	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/preferences"
	"github.com/obinnaokechukwu/scgo/sc"
)

// Set is an SCNetworkSet, a network location.
type Set struct{ *cf.Object }

// SetKind downcasts generic objects to Set.
var SetKind = cf.Kind[Set]{
	Class: sc.ClassNetworkSet,
	Wrap:  func(o *cf.Object) Set { return Set{o} },
}

// ListSets returns every set in the preferences.
func ListSets(prefs preferences.Preferences) ([]Set, error) {
	if prefs.Object == nil {
		return nil, cf.ErrReleased
	}
	rt := prefs.Runtime()
	defer prefs.KeepAlive()
	ref := rt.NetworkSetCopyAll(prefs.Ref())
	if ref == 0 {
		return nil, sc.LastError(rt, "SCNetworkSetCopyAll")
	}
	return collect(rt, ref, SetKind), nil
}

// CurrentSet returns the active set.
func CurrentSet(prefs preferences.Preferences) (Set, bool) {
	if prefs.Object == nil {
		return Set{}, false
	}
	defer prefs.KeepAlive()
	return wrapSet(prefs.Runtime(), prefs.Runtime().NetworkSetCopyCurrent(prefs.Ref()))
}

// SetByID returns the set with the given identifier.
func SetByID(prefs preferences.Preferences, id string) (Set, bool) {
	if prefs.Object == nil {
		return Set{}, false
	}
	rt := prefs.Runtime()
	s := cf.NewString(rt, id)
	defer s.Release()
	defer prefs.KeepAlive()
	return wrapSet(rt, rt.NetworkSetCopy(prefs.Ref(), s.Ref()))
}

func wrapSet(rt sc.Runtime, ref cf.Ref) (Set, bool) {
	o, ok := cf.WrapOwned(rt, ref)
	if !ok {
		return Set{}, false
	}
	set, ok := cf.Downcast(o, SetKind)
	if !ok {
		o.Release()
	}
	return set, ok
}

func (s Set) rt() sc.Runtime { return runtimeOf(s.Object) }

// ID returns the set identifier.
func (s Set) ID() string {
	if s.Object == nil {
		return ""
	}
	defer s.KeepAlive()
	id, _ := borrowedString(s.rt(), s.rt().NetworkSetGetSetID(s.Ref()))
	return id
}

// Name returns the user-visible location name.
func (s Set) Name() string {
	if s.Object == nil {
		return ""
	}
	defer s.KeepAlive()
	name, _ := borrowedString(s.rt(), s.rt().NetworkSetGetName(s.Ref()))
	return name
}

// Services returns the services in the set.
func (s Set) Services() []Service {
	if s.Object == nil {
		return nil
	}
	defer s.KeepAlive()
	return collect(s.rt(), s.rt().NetworkSetCopyServices(s.Ref()), ServiceKind)
}

// ServiceOrder returns the service IDs in the user's preferred order.
func (s Set) ServiceOrder() []string {
	if s.Object == nil {
		return nil
	}
	defer s.KeepAlive()
	v := cf.View(s.rt(), s.rt().NetworkSetGetServiceOrder(s.Ref()))
	arr, ok := cf.Downcast(v, cf.ArrayKind)
	if !ok {
		return nil
	}
	return arr.Strings()
}

// ContainsInterface reports whether a service in the set uses iface.
func (s Set) ContainsInterface(iface Interface) bool {
	if s.Object == nil || iface.Object == nil {
		return false
	}
	defer s.KeepAlive()
	defer iface.KeepAlive()
	return s.rt().NetworkSetContainsInterface(s.Ref(), iface.Ref())
}
