//go:build !ios && !android && (amd64 || arm64)

package network

import (
	"errors"
	"net/netip"

	"github.com/obinnaokechukwu/scgo/dynamicstore"
	"github.com/obinnaokechukwu/scgo/sc"
	"github.com/obinnaokechukwu/scgo/schema"
)

// ErrNoServiceID is returned when a service has no identifier.
var ErrNoServiceID = errors.New("network: service has no ID")

// DNSSetting is one DNS configuration block.
type DNSSetting struct {
	// DomainName is empty when unset.
	DomainName string
	// ServerAddresses is nil when unset. Entries that do not parse as IP
	// addresses are dropped.
	ServerAddresses []netip.Addr
}

// IsZero reports whether neither field is set.
func (d DNSSetting) IsZero() bool {
	return d.DomainName == "" && len(d.ServerAddresses) == 0
}

// DNS holds a service's active (State) and configured (Setup) DNS blocks.
type DNS struct {
	State DNSSetting
	Setup DNSSetting
}

// DNS reads the service's DNS configuration from store.
func (s Service) DNS(store dynamicstore.Store) DNS {
	id := s.ID()
	if id == "" {
		return DNS{}
	}
	return DNS{
		State: readDNS(store, schema.ServiceKey(schema.DomainState, id, schema.EntityDNS)),
		Setup: readDNS(store, schema.ServiceKey(schema.DomainSetup, id, schema.EntityDNS)),
	}
}

func readDNS(store dynamicstore.Store, key string) DNSSetting {
	var out DNSSetting
	d, ok := store.GetDictionary(key)
	if !ok {
		return out
	}
	defer d.Release()
	if name, ok := d.GetString(schema.DomainName); ok && name != schema.EmptySentinel {
		out.DomainName = name
	}
	if addrs, ok := d.GetStrings(schema.ServerAddresses); ok {
		for _, a := range addrs {
			if ip, err := netip.ParseAddr(a); err == nil {
				out.ServerAddresses = append(out.ServerAddresses, ip)
			}
		}
	}
	return out
}

// SetDNSDomainName sets the configured DNS domain name. An empty name
// removes it. Other fields of the block are kept.
func (s Service) SetDNSDomainName(store dynamicstore.Store, name string) error {
	return s.updateDNS(store, func(m map[string]any) {
		setOrDelete(m, schema.DomainName, name, name != "")
	})
}

// SetDNSServerAddresses sets the configured DNS servers. An empty list
// removes them. Other fields of the block are kept.
func (s Service) SetDNSServerAddresses(store dynamicstore.Store, addrs []netip.Addr) error {
	return s.updateDNS(store, func(m map[string]any) {
		setOrDelete(m, schema.ServerAddresses, addrs, len(addrs) > 0)
	})
}

// SetDNS sets the domain name and the servers in a single write, so either
// both change or neither does. Zero fields are removed.
func (s Service) SetDNS(store dynamicstore.Store, setting DNSSetting) error {
	return s.updateDNS(store, func(m map[string]any) {
		setOrDelete(m, schema.DomainName, setting.DomainName, setting.DomainName != "")
		setOrDelete(m, schema.ServerAddresses, setting.ServerAddresses, len(setting.ServerAddresses) > 0)
	})
}

func setOrDelete(m map[string]any, key string, v any, set bool) {
	if set {
		m[key] = v
	} else {
		delete(m, key)
	}
}

// updateDNS rewrites Setup:/Network/Service/<id>/DNS. A block left empty is
// removed from the store.
func (s Service) updateDNS(store dynamicstore.Store, edit func(map[string]any)) error {
	id := s.ID()
	if id == "" {
		return ErrNoServiceID
	}
	key := schema.ServiceKey(schema.DomainSetup, id, schema.EntityDNS)

	block := map[string]any{}
	existing, present := store.GetValue(key)
	if m, ok := existing.(map[string]any); ok {
		block = m
	}
	edit(block)

	if len(block) == 0 {
		if present && !store.Remove(key) {
			return sc.LastError(store.Runtime(), "SCDynamicStoreRemoveValue")
		}
		return nil
	}
	return store.SetValue(key, block)
}
