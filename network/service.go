//go:build !ios && !android && (amd64 || arm64)

package network

import (
	"fmt"

	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/preferences"
	"github.com/obinnaokechukwu/scgo/sc"
)

// Service is an SCNetworkService.
type Service struct{ *cf.Object }

// ServiceKind downcasts generic objects to Service.
var ServiceKind = cf.Kind[Service]{
	Class: sc.ClassNetworkService,
	Wrap:  func(o *cf.Object) Service { return Service{o} },
}

// ListServices returns every service in the preferences.
func ListServices(prefs preferences.Preferences) ([]Service, error) {
	if prefs.Object == nil {
		return nil, cf.ErrReleased
	}
	rt := prefs.Runtime()
	defer prefs.KeepAlive()
	ref := rt.NetworkServiceCopyAll(prefs.Ref())
	if ref == 0 {
		return nil, sc.LastError(rt, "SCNetworkServiceCopyAll")
	}
	return collect(rt, ref, ServiceKind), nil
}

// ServiceByID returns the service with the given identifier.
func ServiceByID(prefs preferences.Preferences, id string) (Service, bool) {
	if prefs.Object == nil {
		return Service{}, false
	}
	rt := prefs.Runtime()
	s := cf.NewString(rt, id)
	defer s.Release()
	defer prefs.KeepAlive()
	// SCNetworkServiceCopy follows the create rule.
	o, ok := cf.WrapOwned(rt, rt.NetworkServiceCopy(prefs.Ref(), s.Ref()))
	if !ok {
		return Service{}, false
	}
	svc, ok := cf.Downcast(o, ServiceKind)
	if !ok {
		o.Release()
	}
	return svc, ok
}

// ServiceOrder returns the services of the current set in the user's
// preferred order. IDs that no longer resolve are skipped.
func ServiceOrder(prefs preferences.Preferences) []Service {
	set, ok := CurrentSet(prefs)
	if !ok {
		return nil
	}
	defer set.Release()
	var out []Service
	for _, id := range set.ServiceOrder() {
		if svc, ok := ServiceByID(prefs, id); ok {
			out = append(out, svc)
		}
	}
	return out
}

func (s Service) rt() sc.Runtime { return runtimeOf(s.Object) }

// ID returns the service identifier, a UUID string.
func (s Service) ID() string {
	if s.Object == nil {
		return ""
	}
	defer s.KeepAlive()
	id, _ := borrowedString(s.rt(), s.rt().NetworkServiceGetServiceID(s.Ref()))
	return id
}

// Name returns the user-visible service name.
func (s Service) Name() string {
	if s.Object == nil {
		return ""
	}
	defer s.KeepAlive()
	name, _ := borrowedString(s.rt(), s.rt().NetworkServiceGetName(s.Ref()))
	return name
}

// Enabled reports whether the service is enabled.
func (s Service) Enabled() bool {
	defer s.KeepAlive()
	return s.Object != nil && s.rt().NetworkServiceGetEnabled(s.Ref())
}

// Interface returns the interface the service runs on.
func (s Service) Interface() (Interface, bool) {
	if s.Object == nil {
		return Interface{}, false
	}
	defer s.KeepAlive()
	o, ok := cf.WrapBorrowed(s.rt(), s.rt().NetworkServiceGetInterface(s.Ref()))
	if !ok {
		return Interface{}, false
	}
	iface, ok := cf.Downcast(o, InterfaceKind)
	if !ok {
		o.Release()
	}
	return iface, ok
}

// Protocols returns the protocols configured on the service.
func (s Service) Protocols() []Protocol {
	if s.Object == nil {
		return nil
	}
	defer s.KeepAlive()
	return collect(s.rt(), s.rt().NetworkServiceCopyProtocols(s.Ref()), ProtocolKind)
}

// Protocol returns the protocol with the given kSCNetworkProtocolType* tag.
func (s Service) Protocol(typ string) (Protocol, bool) {
	if s.Object == nil {
		return Protocol{}, false
	}
	t := cf.NewString(s.rt(), typ)
	defer t.Release()
	defer s.KeepAlive()
	o, ok := cf.WrapOwned(s.rt(), s.rt().NetworkServiceCopyProtocol(s.Ref(), t.Ref()))
	if !ok {
		return Protocol{}, false
	}
	p, ok := cf.Downcast(o, ProtocolKind)
	if !ok {
		o.Release()
	}
	return p, ok
}

func (s Service) String() string {
	if s.Object == nil {
		return "Service(nil)"
	}
	return fmt.Sprintf("Service(%s %q enabled=%t)", s.ID(), s.Name(), s.Enabled())
}
