//go:build !ios && !android && (amd64 || arm64)

package network

import (
	"net/netip"

	"github.com/obinnaokechukwu/scgo/dynamicstore"
	"github.com/obinnaokechukwu/scgo/preferences"
	"github.com/obinnaokechukwu/scgo/schema"
)

// globalQuery reads a string from State:/Network/Global/IPv4.
func globalQuery(store dynamicstore.Store, key string) (string, bool) {
	d, ok := store.GetDictionary(schema.GlobalKey(schema.DomainState, schema.EntityIPv4))
	if !ok {
		return "", false
	}
	defer d.Release()
	return d.GetString(key)
}

// GlobalServiceID returns the identifier of the primary service.
func GlobalServiceID(store dynamicstore.Store) (string, bool) {
	return globalQuery(store, schema.PrimaryService)
}

// GlobalService returns the primary service: the one holding the default
// route.
func GlobalService(prefs preferences.Preferences, store dynamicstore.Store) (Service, bool) {
	id, ok := GlobalServiceID(store)
	if !ok {
		return Service{}, false
	}
	return ServiceByID(prefs, id)
}

// GlobalInterfaceName returns the BSD name of the primary interface.
func GlobalInterfaceName(store dynamicstore.Store) (string, bool) {
	return globalQuery(store, schema.PrimaryInterface)
}

// GlobalInterface returns the interface of the primary service.
func GlobalInterface(prefs preferences.Preferences, store dynamicstore.Store) (Interface, bool) {
	svc, ok := GlobalService(prefs, store)
	if !ok {
		return Interface{}, false
	}
	defer svc.Release()
	return svc.Interface()
}

// GlobalRouter returns the default router of the primary service. A value
// that does not parse as an IP address is treated as absent.
func GlobalRouter(store dynamicstore.Store) (netip.Addr, bool) {
	s, ok := globalQuery(store, schema.Router)
	if !ok {
		return netip.Addr{}, false
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr, true
}
