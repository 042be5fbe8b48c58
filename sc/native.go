//go:build !ios && !android && (amd64 || arm64)

package sc

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/internal/bindings"
	"github.com/obinnaokechukwu/scgo/internal/handles"
)

// Function bindings, registered by registerBindings.
var (
	scError       func() int32
	scErrorString func(code int32) string

	scDynamicStoreCreateWithOptions   func(alloc, name, options cf.Ref, callout uintptr, ctx unsafe.Pointer) cf.Ref
	scDynamicStoreCopyValue           func(store, key cf.Ref) cf.Ref
	scDynamicStoreSetValue            func(store, key, value cf.Ref) bool
	scDynamicStoreRemoveValue         func(store, key cf.Ref) bool
	scDynamicStoreCopyKeyList         func(store, pattern cf.Ref) cf.Ref
	scDynamicStoreCopyProxies         func(store cf.Ref) cf.Ref
	scDynamicStoreSetNotificationKeys func(store, keys, patterns cf.Ref) bool
	scDynamicStoreCreateRunLoopSource func(alloc, store cf.Ref, order int) cf.Ref

	scPreferencesCreate        func(alloc, name, prefsID cf.Ref) cf.Ref
	scPreferencesCopyKeyList   func(prefs cf.Ref) cf.Ref
	scPreferencesGetValue      func(prefs, key cf.Ref) cf.Ref
	scPreferencesPathGetValue  func(prefs, path cf.Ref) cf.Ref
	scPreferencesSetValue      func(prefs, key, value cf.Ref) bool
	scPreferencesRemoveValue   func(prefs, key cf.Ref) bool
	scPreferencesCommitChanges func(prefs cf.Ref) bool
	scPreferencesApplyChanges  func(prefs cf.Ref) bool
	scPreferencesLock          func(prefs cf.Ref, wait bool) bool
	scPreferencesUnlock        func(prefs cf.Ref) bool

	scNetworkServiceCopyAll       func(prefs cf.Ref) cf.Ref
	scNetworkServiceCopy          func(prefs, serviceID cf.Ref) cf.Ref
	scNetworkServiceGetServiceID  func(service cf.Ref) cf.Ref
	scNetworkServiceGetName       func(service cf.Ref) cf.Ref
	scNetworkServiceGetEnabled    func(service cf.Ref) bool
	scNetworkServiceGetInterface  func(service cf.Ref) cf.Ref
	scNetworkServiceCopyProtocols func(service cf.Ref) cf.Ref
	scNetworkServiceCopyProtocol  func(service, protocolType cf.Ref) cf.Ref

	scNetworkInterfaceCopyAll                  func() cf.Ref
	scNetworkInterfaceGetBSDName               func(iface cf.Ref) cf.Ref
	scNetworkInterfaceGetInterfaceType         func(iface cf.Ref) cf.Ref
	scNetworkInterfaceGetHardwareAddressString func(iface cf.Ref) cf.Ref
	scNetworkInterfaceGetLocalizedDisplayName  func(iface cf.Ref) cf.Ref
	scNetworkInterfaceGetConfiguration         func(iface cf.Ref) cf.Ref
	scNetworkInterfaceCopyMTU                  func(iface cf.Ref, current, min, max *int32) bool

	scNetworkProtocolGetProtocolType  func(protocol cf.Ref) cf.Ref
	scNetworkProtocolGetEnabled       func(protocol cf.Ref) bool
	scNetworkProtocolGetConfiguration func(protocol cf.Ref) cf.Ref

	scNetworkSetCopyAll           func(prefs cf.Ref) cf.Ref
	scNetworkSetCopyCurrent       func(prefs cf.Ref) cf.Ref
	scNetworkSetCopy              func(prefs, setID cf.Ref) cf.Ref
	scNetworkSetGetSetID          func(set cf.Ref) cf.Ref
	scNetworkSetGetName           func(set cf.Ref) cf.Ref
	scNetworkSetCopyServices      func(set cf.Ref) cf.Ref
	scNetworkSetGetServiceOrder   func(set cf.Ref) cf.Ref
	scNetworkSetContainsInterface func(set, iface cf.Ref) bool

	scNetworkReachabilityCreateWithName        func(alloc cf.Ref, name string) cf.Ref
	scNetworkReachabilityCreateWithAddress     func(alloc cf.Ref, sockaddr unsafe.Pointer) cf.Ref
	scNetworkReachabilityGetFlags              func(target cf.Ref, flags *uint32) bool
	scNetworkReachabilitySetCallback           func(target cf.Ref, callout uintptr, ctx unsafe.Pointer) bool
	scNetworkReachabilityScheduleWithRunLoop   func(target, loop, mode cf.Ref) bool
	scNetworkReachabilityUnscheduleFromRunLoop func(target, loop, mode cf.Ref) bool
)

// Pre-registered trampolines. purego has a fixed number of callback slots,
// so every store and reachability target shares these three and finds its
// own callout through the token passed as the C info pointer.
var (
	callbacksOnce      sync.Once
	storeCallbackPtr   uintptr
	reachCallbackPtr   uintptr
	releaseCallbackPtr uintptr
	registeredCallouts = handles.New()
)

type callout struct {
	store   StoreCallout
	reach   ReachabilityCallout
	info    uintptr
	release func(info uintptr)
}

func initCallbacks() {
	callbacksOnce.Do(func() {
		// void (*)(SCDynamicStoreRef store, CFArrayRef changedKeys, void *info)
		storeCallbackPtr = purego.NewCallback(func(_ purego.CDecl, store, changedKeys cf.Ref, token uintptr) {
			if c, ok := registeredCallouts.Lookup(token).(*callout); ok && c.store != nil {
				c.store(store, changedKeys, c.info)
			}
		})

		// void (*)(SCNetworkReachabilityRef target, SCNetworkReachabilityFlags flags, void *info)
		reachCallbackPtr = purego.NewCallback(func(_ purego.CDecl, target cf.Ref, flags uint32, token uintptr) {
			if c, ok := registeredCallouts.Lookup(token).(*callout); ok && c.reach != nil {
				c.reach(target, flags, c.info)
			}
		})

		// void (*)(const void *info)
		releaseCallbackPtr = purego.NewCallback(func(_ purego.CDecl, token uintptr) {
			v, ok := registeredCallouts.Take(token)
			if !ok {
				return
			}
			if c := v.(*callout); c.release != nil {
				c.release(c.info)
			}
		})
	})
}

// cContext mirrors SCDynamicStoreContext and SCNetworkReachabilityContext:
// {CFIndex version; void *info; retain; release; copyDescription}.
type cContext [5]uintptr

func newCContext(c *callout) (*cContext, uintptr) {
	token := registeredCallouts.Register(c)
	return &cContext{0, token, 0, releaseCallbackPtr, 0}, token
}

var (
	nativeOnce sync.Once
	nativeRT   *native
	nativeErr  error
)

// Default returns the Runtime backed by the system frameworks, loading them
// on first use.
func Default() (Runtime, error) {
	nativeOnce.Do(func() {
		base, err := cf.Native()
		if err != nil {
			nativeErr = err
			return
		}
		if err := registerBindings(); err != nil {
			nativeErr = err
			return
		}
		initCallbacks()
		nativeRT = &native{Runtime: base}
	})
	if nativeErr != nil {
		return nil, nativeErr
	}
	return nativeRT, nil
}

func registerBindings() error {
	lib := bindings.LibSystemConfiguration()
	if lib == 0 {
		return bindings.ErrNotLoaded
	}

	purego.RegisterLibFunc(&scError, lib, "SCError")
	purego.RegisterLibFunc(&scErrorString, lib, "SCErrorString")

	purego.RegisterLibFunc(&scDynamicStoreCreateWithOptions, lib, "SCDynamicStoreCreateWithOptions")
	purego.RegisterLibFunc(&scDynamicStoreCopyValue, lib, "SCDynamicStoreCopyValue")
	purego.RegisterLibFunc(&scDynamicStoreSetValue, lib, "SCDynamicStoreSetValue")
	purego.RegisterLibFunc(&scDynamicStoreRemoveValue, lib, "SCDynamicStoreRemoveValue")
	purego.RegisterLibFunc(&scDynamicStoreCopyKeyList, lib, "SCDynamicStoreCopyKeyList")
	purego.RegisterLibFunc(&scDynamicStoreCopyProxies, lib, "SCDynamicStoreCopyProxies")
	purego.RegisterLibFunc(&scDynamicStoreSetNotificationKeys, lib, "SCDynamicStoreSetNotificationKeys")
	purego.RegisterLibFunc(&scDynamicStoreCreateRunLoopSource, lib, "SCDynamicStoreCreateRunLoopSource")

	purego.RegisterLibFunc(&scPreferencesCreate, lib, "SCPreferencesCreate")
	purego.RegisterLibFunc(&scPreferencesCopyKeyList, lib, "SCPreferencesCopyKeyList")
	purego.RegisterLibFunc(&scPreferencesGetValue, lib, "SCPreferencesGetValue")
	purego.RegisterLibFunc(&scPreferencesPathGetValue, lib, "SCPreferencesPathGetValue")
	purego.RegisterLibFunc(&scPreferencesSetValue, lib, "SCPreferencesSetValue")
	purego.RegisterLibFunc(&scPreferencesRemoveValue, lib, "SCPreferencesRemoveValue")
	purego.RegisterLibFunc(&scPreferencesCommitChanges, lib, "SCPreferencesCommitChanges")
	purego.RegisterLibFunc(&scPreferencesApplyChanges, lib, "SCPreferencesApplyChanges")
	purego.RegisterLibFunc(&scPreferencesLock, lib, "SCPreferencesLock")
	purego.RegisterLibFunc(&scPreferencesUnlock, lib, "SCPreferencesUnlock")

	purego.RegisterLibFunc(&scNetworkServiceCopyAll, lib, "SCNetworkServiceCopyAll")
	purego.RegisterLibFunc(&scNetworkServiceCopy, lib, "SCNetworkServiceCopy")
	purego.RegisterLibFunc(&scNetworkServiceGetServiceID, lib, "SCNetworkServiceGetServiceID")
	purego.RegisterLibFunc(&scNetworkServiceGetName, lib, "SCNetworkServiceGetName")
	purego.RegisterLibFunc(&scNetworkServiceGetEnabled, lib, "SCNetworkServiceGetEnabled")
	purego.RegisterLibFunc(&scNetworkServiceGetInterface, lib, "SCNetworkServiceGetInterface")
	purego.RegisterLibFunc(&scNetworkServiceCopyProtocols, lib, "SCNetworkServiceCopyProtocols")
	purego.RegisterLibFunc(&scNetworkServiceCopyProtocol, lib, "SCNetworkServiceCopyProtocol")

	purego.RegisterLibFunc(&scNetworkInterfaceCopyAll, lib, "SCNetworkInterfaceCopyAll")
	purego.RegisterLibFunc(&scNetworkInterfaceGetBSDName, lib, "SCNetworkInterfaceGetBSDName")
	purego.RegisterLibFunc(&scNetworkInterfaceGetInterfaceType, lib, "SCNetworkInterfaceGetInterfaceType")
	purego.RegisterLibFunc(&scNetworkInterfaceGetHardwareAddressString, lib, "SCNetworkInterfaceGetHardwareAddressString")
	purego.RegisterLibFunc(&scNetworkInterfaceGetLocalizedDisplayName, lib, "SCNetworkInterfaceGetLocalizedDisplayName")
	purego.RegisterLibFunc(&scNetworkInterfaceGetConfiguration, lib, "SCNetworkInterfaceGetConfiguration")
	purego.RegisterLibFunc(&scNetworkInterfaceCopyMTU, lib, "SCNetworkInterfaceCopyMTU")

	purego.RegisterLibFunc(&scNetworkProtocolGetProtocolType, lib, "SCNetworkProtocolGetProtocolType")
	purego.RegisterLibFunc(&scNetworkProtocolGetEnabled, lib, "SCNetworkProtocolGetEnabled")
	purego.RegisterLibFunc(&scNetworkProtocolGetConfiguration, lib, "SCNetworkProtocolGetConfiguration")

	purego.RegisterLibFunc(&scNetworkSetCopyAll, lib, "SCNetworkSetCopyAll")
	purego.RegisterLibFunc(&scNetworkSetCopyCurrent, lib, "SCNetworkSetCopyCurrent")
	purego.RegisterLibFunc(&scNetworkSetCopy, lib, "SCNetworkSetCopy")
	purego.RegisterLibFunc(&scNetworkSetGetSetID, lib, "SCNetworkSetGetSetID")
	purego.RegisterLibFunc(&scNetworkSetGetName, lib, "SCNetworkSetGetName")
	purego.RegisterLibFunc(&scNetworkSetCopyServices, lib, "SCNetworkSetCopyServices")
	purego.RegisterLibFunc(&scNetworkSetGetServiceOrder, lib, "SCNetworkSetGetServiceOrder")
	purego.RegisterLibFunc(&scNetworkSetContainsInterface, lib, "SCNetworkSetContainsInterface")

	purego.RegisterLibFunc(&scNetworkReachabilityCreateWithName, lib, "SCNetworkReachabilityCreateWithName")
	purego.RegisterLibFunc(&scNetworkReachabilityCreateWithAddress, lib, "SCNetworkReachabilityCreateWithAddress")
	purego.RegisterLibFunc(&scNetworkReachabilityGetFlags, lib, "SCNetworkReachabilityGetFlags")
	purego.RegisterLibFunc(&scNetworkReachabilitySetCallback, lib, "SCNetworkReachabilitySetCallback")
	purego.RegisterLibFunc(&scNetworkReachabilityScheduleWithRunLoop, lib, "SCNetworkReachabilityScheduleWithRunLoop")
	purego.RegisterLibFunc(&scNetworkReachabilityUnscheduleFromRunLoop, lib, "SCNetworkReachabilityUnscheduleFromRunLoop")
	return nil
}

// native implements Runtime with the SystemConfiguration framework.
type native struct {
	cf.Runtime
}

func (n *native) LastError() int32 { return scError() }

func (n *native) ErrorString(code int32) string { return scErrorString(code) }

func (n *native) DynamicStoreCreate(name, options cf.Ref, fn StoreCallout, ctx *Context) cf.Ref {
	if fn == nil {
		return scDynamicStoreCreateWithOptions(0, name, options, 0, nil)
	}
	c := &callout{store: fn}
	if ctx != nil {
		c.info, c.release = ctx.Info, ctx.Release
	}
	cctx, token := newCContext(c)
	ref := scDynamicStoreCreateWithOptions(0, name, options, storeCallbackPtr, unsafe.Pointer(cctx))
	if ref == 0 {
		// The framework never took the context, so release is ours to run.
		registeredCallouts.Take(token)
		if c.release != nil {
			c.release(c.info)
		}
	}
	return ref
}

func (n *native) DynamicStoreCopyValue(store, key cf.Ref) cf.Ref {
	return scDynamicStoreCopyValue(store, key)
}

func (n *native) DynamicStoreSetValue(store, key, value cf.Ref) bool {
	return scDynamicStoreSetValue(store, key, value)
}

func (n *native) DynamicStoreRemoveValue(store, key cf.Ref) bool {
	return scDynamicStoreRemoveValue(store, key)
}

func (n *native) DynamicStoreCopyKeyList(store, pattern cf.Ref) cf.Ref {
	return scDynamicStoreCopyKeyList(store, pattern)
}

func (n *native) DynamicStoreCopyProxies(store cf.Ref) cf.Ref {
	return scDynamicStoreCopyProxies(store)
}

func (n *native) DynamicStoreSetNotificationKeys(store, keys, patterns cf.Ref) bool {
	return scDynamicStoreSetNotificationKeys(store, keys, patterns)
}

func (n *native) DynamicStoreCreateRunLoopSource(store cf.Ref, order int) cf.Ref {
	return scDynamicStoreCreateRunLoopSource(0, store, order)
}

func (n *native) PreferencesCreate(name, prefsID cf.Ref) cf.Ref {
	return scPreferencesCreate(0, name, prefsID)
}

func (n *native) PreferencesCopyKeyList(prefs cf.Ref) cf.Ref { return scPreferencesCopyKeyList(prefs) }

func (n *native) PreferencesGetValue(prefs, key cf.Ref) cf.Ref {
	return scPreferencesGetValue(prefs, key)
}

func (n *native) PreferencesPathGetValue(prefs, path cf.Ref) cf.Ref {
	return scPreferencesPathGetValue(prefs, path)
}

func (n *native) PreferencesSetValue(prefs, key, value cf.Ref) bool {
	return scPreferencesSetValue(prefs, key, value)
}

func (n *native) PreferencesRemoveValue(prefs, key cf.Ref) bool {
	return scPreferencesRemoveValue(prefs, key)
}

func (n *native) PreferencesCommitChanges(prefs cf.Ref) bool {
	return scPreferencesCommitChanges(prefs)
}

func (n *native) PreferencesApplyChanges(prefs cf.Ref) bool { return scPreferencesApplyChanges(prefs) }

func (n *native) PreferencesLock(prefs cf.Ref, wait bool) bool { return scPreferencesLock(prefs, wait) }

func (n *native) PreferencesUnlock(prefs cf.Ref) bool { return scPreferencesUnlock(prefs) }

func (n *native) NetworkServiceCopyAll(prefs cf.Ref) cf.Ref { return scNetworkServiceCopyAll(prefs) }

func (n *native) NetworkServiceCopy(prefs, serviceID cf.Ref) cf.Ref {
	return scNetworkServiceCopy(prefs, serviceID)
}

func (n *native) NetworkServiceGetServiceID(service cf.Ref) cf.Ref {
	return scNetworkServiceGetServiceID(service)
}

func (n *native) NetworkServiceGetName(service cf.Ref) cf.Ref {
	return scNetworkServiceGetName(service)
}

func (n *native) NetworkServiceGetEnabled(service cf.Ref) bool {
	return scNetworkServiceGetEnabled(service)
}

func (n *native) NetworkServiceGetInterface(service cf.Ref) cf.Ref {
	return scNetworkServiceGetInterface(service)
}

func (n *native) NetworkServiceCopyProtocols(service cf.Ref) cf.Ref {
	return scNetworkServiceCopyProtocols(service)
}

func (n *native) NetworkServiceCopyProtocol(service, protocolType cf.Ref) cf.Ref {
	return scNetworkServiceCopyProtocol(service, protocolType)
}

func (n *native) NetworkInterfaceCopyAll() cf.Ref { return scNetworkInterfaceCopyAll() }

func (n *native) NetworkInterfaceGetBSDName(iface cf.Ref) cf.Ref {
	return scNetworkInterfaceGetBSDName(iface)
}

func (n *native) NetworkInterfaceGetInterfaceType(iface cf.Ref) cf.Ref {
	return scNetworkInterfaceGetInterfaceType(iface)
}

func (n *native) NetworkInterfaceGetHardwareAddressString(iface cf.Ref) cf.Ref {
	return scNetworkInterfaceGetHardwareAddressString(iface)
}

func (n *native) NetworkInterfaceGetLocalizedDisplayName(iface cf.Ref) cf.Ref {
	return scNetworkInterfaceGetLocalizedDisplayName(iface)
}

func (n *native) NetworkInterfaceGetConfiguration(iface cf.Ref) cf.Ref {
	return scNetworkInterfaceGetConfiguration(iface)
}

func (n *native) NetworkInterfaceCopyMTU(iface cf.Ref) (current, min, max int32, ok bool) {
	ok = scNetworkInterfaceCopyMTU(iface, &current, &min, &max)
	return current, min, max, ok
}

func (n *native) NetworkProtocolGetProtocolType(protocol cf.Ref) cf.Ref {
	return scNetworkProtocolGetProtocolType(protocol)
}

func (n *native) NetworkProtocolGetEnabled(protocol cf.Ref) bool {
	return scNetworkProtocolGetEnabled(protocol)
}

func (n *native) NetworkProtocolGetConfiguration(protocol cf.Ref) cf.Ref {
	return scNetworkProtocolGetConfiguration(protocol)
}

func (n *native) NetworkSetCopyAll(prefs cf.Ref) cf.Ref { return scNetworkSetCopyAll(prefs) }

func (n *native) NetworkSetCopyCurrent(prefs cf.Ref) cf.Ref { return scNetworkSetCopyCurrent(prefs) }

func (n *native) NetworkSetCopy(prefs, setID cf.Ref) cf.Ref { return scNetworkSetCopy(prefs, setID) }

func (n *native) NetworkSetGetSetID(set cf.Ref) cf.Ref { return scNetworkSetGetSetID(set) }

func (n *native) NetworkSetGetName(set cf.Ref) cf.Ref { return scNetworkSetGetName(set) }

func (n *native) NetworkSetCopyServices(set cf.Ref) cf.Ref { return scNetworkSetCopyServices(set) }

func (n *native) NetworkSetGetServiceOrder(set cf.Ref) cf.Ref {
	return scNetworkSetGetServiceOrder(set)
}

func (n *native) NetworkSetContainsInterface(set, iface cf.Ref) bool {
	return scNetworkSetContainsInterface(set, iface)
}

func (n *native) ReachabilityCreateWithName(name string) cf.Ref {
	return scNetworkReachabilityCreateWithName(0, name)
}

func (n *native) ReachabilityCreateWithAddress(sockaddr []byte) cf.Ref {
	if len(sockaddr) == 0 {
		return 0
	}
	return scNetworkReachabilityCreateWithAddress(0, unsafe.Pointer(&sockaddr[0]))
}

func (n *native) ReachabilityGetFlags(target cf.Ref) (uint32, bool) {
	var flags uint32
	ok := scNetworkReachabilityGetFlags(target, &flags)
	return flags, ok
}

func (n *native) ReachabilitySetCallback(target cf.Ref, fn ReachabilityCallout, ctx *Context) bool {
	if fn == nil {
		return scNetworkReachabilitySetCallback(target, 0, nil)
	}
	c := &callout{reach: fn}
	if ctx != nil {
		c.info, c.release = ctx.Info, ctx.Release
	}
	cctx, token := newCContext(c)
	if !scNetworkReachabilitySetCallback(target, reachCallbackPtr, unsafe.Pointer(cctx)) {
		registeredCallouts.Take(token)
		if c.release != nil {
			c.release(c.info)
		}
		return false
	}
	return true
}

func (n *native) ReachabilityScheduleWithRunLoop(target, loop cf.Ref, mode cf.RunLoopMode) bool {
	return scNetworkReachabilityScheduleWithRunLoop(target, loop, n.Constant(string(mode)))
}

func (n *native) ReachabilityUnscheduleFromRunLoop(target, loop cf.Ref, mode cf.RunLoopMode) bool {
	return scNetworkReachabilityUnscheduleFromRunLoop(target, loop, n.Constant(string(mode)))
}
