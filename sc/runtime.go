//go:build !ios && !android && (amd64 || arm64)

// Package sc is the low-level SystemConfiguration contract.
//
// Runtime lists the framework calls scgo makes, one method per C function,
// with the same create/get ownership rules as package cf. Most code uses the
// higher level packages dynamicstore, preferences, network and reachability
// instead. Tests substitute the in-memory runtime from package sctest.
package sc

import (
	"github.com/obinnaokechukwu/scgo/cf"
)

// SystemConfiguration classes.
const (
	ClassDynamicStore     cf.Class = "SCDynamicStore"
	ClassPreferences      cf.Class = "SCPreferences"
	ClassNetworkService   cf.Class = "SCNetworkService"
	ClassNetworkInterface cf.Class = "SCNetworkInterface"
	ClassNetworkProtocol  cf.Class = "SCNetworkProtocol"
	ClassNetworkSet       cf.Class = "SCNetworkSet"
	ClassReachability     cf.Class = "SCNetworkReachability"
)

// StoreCallout receives change notifications from a dynamic store.
// changedKeys is a borrowed CFArray of CFString keys, possibly empty.
type StoreCallout func(store, changedKeys cf.Ref, info uintptr)

// ReachabilityCallout receives reachability flag changes.
type ReachabilityCallout func(target cf.Ref, flags uint32, info uintptr)

// Context is the user context handed to a framework object with a callout.
// Info is passed back to every callout. Release, when set, is invoked once
// by the framework when it drops the context.
type Context struct {
	Info    uintptr
	Release func(info uintptr)
}

// Runtime is the SystemConfiguration ABI consumed by scgo.
type Runtime interface {
	cf.Runtime

	// LastError returns SCError() for the calling thread.
	LastError() int32
	ErrorString(code int32) string

	// DynamicStoreCreate calls SCDynamicStoreCreateWithOptions. options may be 0.
	// A nil callout ignores ctx. If creation fails, ctx.Release has already
	// run when DynamicStoreCreate returns.
	DynamicStoreCreate(name, options cf.Ref, callout StoreCallout, ctx *Context) cf.Ref
	DynamicStoreCopyValue(store, key cf.Ref) cf.Ref
	DynamicStoreSetValue(store, key, value cf.Ref) bool
	DynamicStoreRemoveValue(store, key cf.Ref) bool
	DynamicStoreCopyKeyList(store, pattern cf.Ref) cf.Ref
	DynamicStoreCopyProxies(store cf.Ref) cf.Ref
	DynamicStoreSetNotificationKeys(store, keys, patterns cf.Ref) bool
	DynamicStoreCreateRunLoopSource(store cf.Ref, order int) cf.Ref

	// PreferencesCreate calls SCPreferencesCreate. prefsID 0 selects the
	// system network configuration.
	PreferencesCreate(name, prefsID cf.Ref) cf.Ref
	PreferencesCopyKeyList(prefs cf.Ref) cf.Ref
	PreferencesGetValue(prefs, key cf.Ref) cf.Ref
	PreferencesPathGetValue(prefs, path cf.Ref) cf.Ref
	PreferencesSetValue(prefs, key, value cf.Ref) bool
	PreferencesRemoveValue(prefs, key cf.Ref) bool
	PreferencesCommitChanges(prefs cf.Ref) bool
	PreferencesApplyChanges(prefs cf.Ref) bool
	PreferencesLock(prefs cf.Ref, wait bool) bool
	PreferencesUnlock(prefs cf.Ref) bool

	NetworkServiceCopyAll(prefs cf.Ref) cf.Ref
	NetworkServiceCopy(prefs, serviceID cf.Ref) cf.Ref
	NetworkServiceGetServiceID(service cf.Ref) cf.Ref
	NetworkServiceGetName(service cf.Ref) cf.Ref
	NetworkServiceGetEnabled(service cf.Ref) bool
	NetworkServiceGetInterface(service cf.Ref) cf.Ref
	NetworkServiceCopyProtocols(service cf.Ref) cf.Ref
	NetworkServiceCopyProtocol(service, protocolType cf.Ref) cf.Ref

	NetworkInterfaceCopyAll() cf.Ref
	NetworkInterfaceGetBSDName(iface cf.Ref) cf.Ref
	NetworkInterfaceGetInterfaceType(iface cf.Ref) cf.Ref
	NetworkInterfaceGetHardwareAddressString(iface cf.Ref) cf.Ref
	NetworkInterfaceGetLocalizedDisplayName(iface cf.Ref) cf.Ref
	NetworkInterfaceGetConfiguration(iface cf.Ref) cf.Ref
	NetworkInterfaceCopyMTU(iface cf.Ref) (current, min, max int32, ok bool)

	NetworkProtocolGetProtocolType(protocol cf.Ref) cf.Ref
	NetworkProtocolGetEnabled(protocol cf.Ref) bool
	NetworkProtocolGetConfiguration(protocol cf.Ref) cf.Ref

	NetworkSetCopyAll(prefs cf.Ref) cf.Ref
	NetworkSetCopyCurrent(prefs cf.Ref) cf.Ref
	NetworkSetCopy(prefs, setID cf.Ref) cf.Ref
	NetworkSetGetSetID(set cf.Ref) cf.Ref
	NetworkSetGetName(set cf.Ref) cf.Ref
	NetworkSetCopyServices(set cf.Ref) cf.Ref
	NetworkSetGetServiceOrder(set cf.Ref) cf.Ref
	NetworkSetContainsInterface(set, iface cf.Ref) bool

	ReachabilityCreateWithName(name string) cf.Ref
	ReachabilityCreateWithAddress(sockaddr []byte) cf.Ref
	ReachabilityGetFlags(target cf.Ref) (flags uint32, ok bool)
	// ReachabilitySetCallback replaces the target's callout. A nil callout
	// clears it. Either way the previous context is released. On failure
	// the new ctx is released before returning.
	ReachabilitySetCallback(target cf.Ref, callout ReachabilityCallout, ctx *Context) bool
	ReachabilityScheduleWithRunLoop(target, loop cf.Ref, mode cf.RunLoopMode) bool
	ReachabilityUnscheduleFromRunLoop(target, loop cf.Ref, mode cf.RunLoopMode) bool
}

// NewString creates an owned string handle on rt. It is shorthand used by
// the higher level packages for key arguments.
func NewString(rt Runtime, s string) cf.String {
	return cf.NewString(rt, s)
}

// Constant returns a borrowed framework string constant such as
// kSCPropNetDNSServerAddresses.
func Constant(rt Runtime, name string) cf.Ref {
	return rt.Constant(name)
}
