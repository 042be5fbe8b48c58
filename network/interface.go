//go:build !ios && !android && (amd64 || arm64)

package network

import (
	"fmt"

	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/sc"
)

// Interface is an SCNetworkInterface.
type Interface struct{ *cf.Object }

// InterfaceKind downcasts generic objects to Interface.
var InterfaceKind = cf.Kind[Interface]{
	Class: sc.ClassNetworkInterface,
	Wrap:  func(o *cf.Object) Interface { return Interface{o} },
}

// ListInterfaces returns every network-capable interface on the system.
func ListInterfaces(rt sc.Runtime) ([]Interface, error) {
	ref := rt.NetworkInterfaceCopyAll()
	if ref == 0 {
		return nil, sc.LastError(rt, "SCNetworkInterfaceCopyAll")
	}
	return collect(rt, ref, InterfaceKind), nil
}

func (i Interface) rt() sc.Runtime { return runtimeOf(i.Object) }

// BSDName returns the BSD device name, such as "en0". Virtual interfaces
// may have none.
func (i Interface) BSDName() (string, bool) {
	if i.Object == nil {
		return "", false
	}
	defer i.KeepAlive()
	return borrowedString(i.rt(), i.rt().NetworkInterfaceGetBSDName(i.Ref()))
}

// TypeName returns the raw kSCNetworkInterfaceType* tag.
func (i Interface) TypeName() string {
	if i.Object == nil {
		return ""
	}
	defer i.KeepAlive()
	s, _ := borrowedString(i.rt(), i.rt().NetworkInterfaceGetInterfaceType(i.Ref()))
	return s
}

// Type returns the interface type; InterfaceUnrecognized if the tag is new.
func (i Interface) Type() InterfaceType {
	return ParseInterfaceType(i.TypeName())
}

// DisplayName returns the localized name shown in System Settings.
func (i Interface) DisplayName() (string, bool) {
	if i.Object == nil {
		return "", false
	}
	defer i.KeepAlive()
	return borrowedString(i.rt(), i.rt().NetworkInterfaceGetLocalizedDisplayName(i.Ref()))
}

// HardwareAddress returns the displayable link layer address.
func (i Interface) HardwareAddress() (string, bool) {
	if i.Object == nil {
		return "", false
	}
	defer i.KeepAlive()
	return borrowedString(i.rt(), i.rt().NetworkInterfaceGetHardwareAddressString(i.Ref()))
}

// Config returns an owned handle to the interface's configuration.
func (i Interface) Config() (cf.Dictionary, bool) {
	if i.Object == nil {
		return cf.Dictionary{}, false
	}
	defer i.KeepAlive()
	return borrowedDictionary(i.rt(), i.rt().NetworkInterfaceGetConfiguration(i.Ref()))
}

// MTU is an interface's current MTU and the range it accepts.
type MTU struct {
	Current int
	// Min and Max are -1 when the framework could not determine them.
	Min, Max int
}

// HasMin reports whether the minimum is known.
func (m MTU) HasMin() bool { return m.Min >= 0 }

// HasMax reports whether the maximum is known.
func (m MTU) HasMax() bool { return m.Max >= 0 }

func (m MTU) String() string {
	bound := func(v int) string {
		if v < 0 {
			return "?"
		}
		return fmt.Sprint(v)
	}
	return fmt.Sprintf("%d [%s, %s]", m.Current, bound(m.Min), bound(m.Max))
}

// MTU returns the interface's MTU settings.
func (i Interface) MTU() (MTU, bool) {
	if i.Object == nil {
		return MTU{}, false
	}
	defer i.KeepAlive()
	cur, lo, hi, ok := i.rt().NetworkInterfaceCopyMTU(i.Ref())
	if !ok {
		return MTU{}, false
	}
	m := MTU{Current: int(cur), Min: int(lo), Max: int(hi)}
	if lo < 0 {
		m.Min = -1
	}
	if hi < 0 {
		m.Max = -1
	}
	return m, true
}

func (i Interface) String() string {
	if i.Object == nil {
		return "Interface(nil)"
	}
	name, _ := i.BSDName()
	return fmt.Sprintf("Interface(%s %s)", name, i.TypeName())
}
