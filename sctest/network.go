//go:build !ios && !android && (amd64 || arm64)

package sctest

import (
	"strings"

	"github.com/google/uuid"
	"github.com/obinnaokechukwu/scgo/cf"
	"github.com/obinnaokechukwu/scgo/sc"
	"github.com/obinnaokechukwu/scgo/schema"
)

// MTU is an interface's current MTU and its allowed range.
type MTU struct {
	Current, Min, Max int32
}

// Interface is a network interface fixture.
type Interface struct {
	BSDName         string
	Type            string // schema.InterfaceType*
	DisplayName     string
	HardwareAddress string
	MTU             *MTU // nil makes SCNetworkInterfaceCopyMTU fail
	Config          map[string]any
}

// Protocol is a protocol configured on a service.
type Protocol struct {
	Type    string // schema.ProtocolType*
	Enabled bool
	Config  map[string]any
}

// Service is a network service fixture.
type Service struct {
	ID        string // generated when empty
	Name      string
	Enabled   bool
	Interface string // BSD name of an added Interface, or ""
	Protocols []Protocol
}

// Set is a network location fixture. Services lists service IDs in
// service order.
type Set struct {
	ID       string // generated when empty
	Name     string
	Services []string
}

type networkFixtures struct {
	interfaces []Interface
	services   []Service
	sets       []Set
	current    string
}

func (n *networkFixtures) iface(bsd string) (Interface, bool) {
	for _, i := range n.interfaces {
		if i.BSDName == bsd {
			return i, true
		}
	}
	return Interface{}, false
}

func (n *networkFixtures) service(id string) (Service, bool) {
	for _, s := range n.services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

func (n *networkFixtures) set(id string) (Set, bool) {
	for _, s := range n.sets {
		if s.ID == id {
			return s, true
		}
	}
	return Set{}, false
}

// AddInterface adds an interface fixture.
func (r *Runtime) AddInterface(i Interface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.network.interfaces = append(r.network.interfaces, i)
}

// AddService adds a service fixture and returns its ID. The service's
// protocol configurations are mirrored into the committed preferences
// under NetworkServices.
func (r *Runtime) AddService(s Service) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = strings.ToUpper(uuid.NewString())
	}
	r.network.services = append(r.network.services, s)
	r.syncPrefsLocked()
	return s.ID
}

// AddSet adds a set fixture and returns its ID. The first set added becomes
// the current set.
func (r *Runtime) AddSet(s Set) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = strings.ToUpper(uuid.NewString())
	}
	r.network.sets = append(r.network.sets, s)
	if r.network.current == "" {
		r.network.current = s.ID
	}
	r.syncPrefsLocked()
	return s.ID
}

// SetCurrentSet selects the current network set.
func (r *Runtime) SetCurrentSet(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.network.current = id
	r.syncPrefsLocked()
}

func (r *Runtime) syncPrefsLocked() {
	services := make(map[string]any, len(r.network.services))
	for _, s := range r.network.services {
		entry := map[string]any{schema.UserDefinedName: s.Name}
		for _, p := range s.Protocols {
			if p.Config != nil {
				entry[p.Type] = p.Config
			}
		}
		if s.Interface != "" {
			entry[string(schema.EntityInterface)] = map[string]any{"DeviceName": s.Interface}
		}
		services[s.ID] = entry
	}
	r.setPreferenceLocked(schema.PrefNetworkServices, services)

	if len(r.network.sets) == 0 {
		return
	}
	sets := make(map[string]any, len(r.network.sets))
	for _, s := range r.network.sets {
		sets[s.ID] = map[string]any{
			schema.UserDefinedName: s.Name,
			schema.CompNetwork: map[string]any{
				schema.CompGlobal: map[string]any{
					string(schema.EntityIPv4): map[string]any{schema.ServiceOrder: s.Services},
				},
			},
		}
	}
	r.setPreferenceLocked(schema.PrefSets, sets)
	if r.network.current != "" {
		r.setPreferenceLocked(schema.PrefCurrentSet, schema.PrefPath(schema.PrefSets, r.network.current))
	}
}

type serviceObj struct{ id string }
type interfaceObj struct{ bsd string }
type protocolObj struct{ service, typ string }
type setObj struct{ id string }

func (r *Runtime) newServiceLocked(id string) cf.Ref {
	return r.allocLocked(&object{class: sc.ClassNetworkService, state: &serviceObj{id}})
}

func (r *Runtime) newInterfaceLocked(bsd string) cf.Ref {
	return r.allocLocked(&object{class: sc.ClassNetworkInterface, state: &interfaceObj{bsd}})
}

func (r *Runtime) newSetLocked(id string) cf.Ref {
	return r.allocLocked(&object{class: sc.ClassNetworkSet, state: &setObj{id}})
}

// ownedArrayLocked wraps freshly created refs in an array that takes over
// their creation reference.
func (r *Runtime) ownedArrayLocked(refs []cf.Ref) cf.Ref {
	return r.allocLocked(&object{class: cf.ClassArray, items: refs})
}

func (r *Runtime) serviceLocked(ref cf.Ref) Service {
	id := r.mustLocked(ref, sc.ClassNetworkService).state.(*serviceObj).id
	s, _ := r.network.service(id)
	return s
}

func (r *Runtime) interfaceLocked(ref cf.Ref) Interface {
	bsd := r.mustLocked(ref, sc.ClassNetworkInterface).state.(*interfaceObj).bsd
	i, _ := r.network.iface(bsd)
	return i
}

func (r *Runtime) protocolLocked(ref cf.Ref) Protocol {
	st := r.mustLocked(ref, sc.ClassNetworkProtocol).state.(*protocolObj)
	s, _ := r.network.service(st.service)
	for _, p := range s.Protocols {
		if p.Type == st.typ {
			return p
		}
	}
	return Protocol{Type: st.typ}
}

func (r *Runtime) setLocked(ref cf.Ref) Set {
	id := r.mustLocked(ref, sc.ClassNetworkSet).state.(*setObj).id
	s, _ := r.network.set(id)
	return s
}

func (r *Runtime) stringChildLocked(parent cf.Ref, name, value string) cf.Ref {
	if value == "" {
		return 0
	}
	return r.childLocked(parent, name, func() cf.Ref {
		return r.allocLocked(&object{class: cf.ClassString, str: value})
	})
}

func (r *Runtime) NetworkServiceCopyAll(prefs cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefsLocked(prefs)
	if r.failLocked("NetworkServiceCopyAll") {
		return 0
	}
	refs := make([]cf.Ref, len(r.network.services))
	for i, s := range r.network.services {
		refs[i] = r.newServiceLocked(s.ID)
	}
	return r.ownedArrayLocked(refs)
}

func (r *Runtime) NetworkServiceCopy(prefs, serviceID cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefsLocked(prefs)
	if r.failLocked("NetworkServiceCopy") {
		return 0
	}
	id := r.mustLocked(serviceID, cf.ClassString).str
	if _, ok := r.network.service(id); !ok {
		r.lastErr = sc.StatusNoKey
		return 0
	}
	return r.newServiceLocked(id)
}

func (r *Runtime) NetworkServiceGetServiceID(service cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stringChildLocked(service, "id", r.serviceLocked(service).ID)
}

func (r *Runtime) NetworkServiceGetName(service cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stringChildLocked(service, "name", r.serviceLocked(service).Name)
}

func (r *Runtime) NetworkServiceGetEnabled(service cf.Ref) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.serviceLocked(service).Enabled
}

func (r *Runtime) NetworkServiceGetInterface(service cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.serviceLocked(service)
	if _, ok := r.network.iface(s.Interface); !ok {
		return 0
	}
	return r.childLocked(service, "interface", func() cf.Ref {
		return r.newInterfaceLocked(s.Interface)
	})
}

func (r *Runtime) NetworkServiceCopyProtocols(service cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.serviceLocked(service)
	if r.failLocked("NetworkServiceCopyProtocols") {
		return 0
	}
	refs := make([]cf.Ref, len(s.Protocols))
	for i, p := range s.Protocols {
		refs[i] = r.allocLocked(&object{class: sc.ClassNetworkProtocol, state: &protocolObj{s.ID, p.Type}})
	}
	return r.ownedArrayLocked(refs)
}

func (r *Runtime) NetworkServiceCopyProtocol(service, protocolType cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.serviceLocked(service)
	typ := r.mustLocked(protocolType, cf.ClassString).str
	for _, p := range s.Protocols {
		if p.Type == typ {
			return r.allocLocked(&object{class: sc.ClassNetworkProtocol, state: &protocolObj{s.ID, p.Type}})
		}
	}
	r.lastErr = sc.StatusNoKey
	return 0
}

func (r *Runtime) NetworkInterfaceCopyAll() cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failLocked("NetworkInterfaceCopyAll") {
		return 0
	}
	refs := make([]cf.Ref, len(r.network.interfaces))
	for i, iface := range r.network.interfaces {
		refs[i] = r.newInterfaceLocked(iface.BSDName)
	}
	return r.ownedArrayLocked(refs)
}

func (r *Runtime) NetworkInterfaceGetBSDName(iface cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stringChildLocked(iface, "bsd", r.interfaceLocked(iface).BSDName)
}

func (r *Runtime) NetworkInterfaceGetInterfaceType(iface cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stringChildLocked(iface, "type", r.interfaceLocked(iface).Type)
}

func (r *Runtime) NetworkInterfaceGetHardwareAddressString(iface cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stringChildLocked(iface, "hwaddr", r.interfaceLocked(iface).HardwareAddress)
}

func (r *Runtime) NetworkInterfaceGetLocalizedDisplayName(iface cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stringChildLocked(iface, "display", r.interfaceLocked(iface).DisplayName)
}

func (r *Runtime) NetworkInterfaceGetConfiguration(iface cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg := r.interfaceLocked(iface).Config
	if cfg == nil {
		return 0
	}
	return r.childLocked(iface, "config", func() cf.Ref { return r.valueLocked(cfg) })
}

func (r *Runtime) NetworkInterfaceCopyMTU(iface cf.Ref) (int32, int32, int32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.interfaceLocked(iface)
	if i.MTU == nil || r.failLocked("NetworkInterfaceCopyMTU") {
		return 0, 0, 0, false
	}
	return i.MTU.Current, i.MTU.Min, i.MTU.Max, true
}

func (r *Runtime) NetworkProtocolGetProtocolType(protocol cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stringChildLocked(protocol, "type", r.protocolLocked(protocol).Type)
}

func (r *Runtime) NetworkProtocolGetEnabled(protocol cf.Ref) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.protocolLocked(protocol).Enabled
}

func (r *Runtime) NetworkProtocolGetConfiguration(protocol cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg := r.protocolLocked(protocol).Config
	if cfg == nil {
		return 0
	}
	return r.childLocked(protocol, "config", func() cf.Ref { return r.valueLocked(cfg) })
}

func (r *Runtime) NetworkSetCopyAll(prefs cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefsLocked(prefs)
	if r.failLocked("NetworkSetCopyAll") {
		return 0
	}
	refs := make([]cf.Ref, len(r.network.sets))
	for i, s := range r.network.sets {
		refs[i] = r.newSetLocked(s.ID)
	}
	return r.ownedArrayLocked(refs)
}

func (r *Runtime) NetworkSetCopyCurrent(prefs cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefsLocked(prefs)
	if _, ok := r.network.set(r.network.current); !ok {
		r.lastErr = sc.StatusNoKey
		return 0
	}
	return r.newSetLocked(r.network.current)
}

func (r *Runtime) NetworkSetCopy(prefs, setID cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefsLocked(prefs)
	id := r.mustLocked(setID, cf.ClassString).str
	if _, ok := r.network.set(id); !ok {
		r.lastErr = sc.StatusNoKey
		return 0
	}
	return r.newSetLocked(id)
}

func (r *Runtime) NetworkSetGetSetID(set cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stringChildLocked(set, "id", r.setLocked(set).ID)
}

func (r *Runtime) NetworkSetGetName(set cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stringChildLocked(set, "name", r.setLocked(set).Name)
}

func (r *Runtime) NetworkSetCopyServices(set cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.setLocked(set)
	var refs []cf.Ref
	for _, id := range s.Services {
		if _, ok := r.network.service(id); ok {
			refs = append(refs, r.newServiceLocked(id))
		}
	}
	return r.ownedArrayLocked(refs)
}

func (r *Runtime) NetworkSetGetServiceOrder(set cf.Ref) cf.Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.setLocked(set)
	if len(s.Services) == 0 {
		return 0
	}
	return r.childLocked(set, "order", func() cf.Ref { return r.stringArrayLocked(s.Services) })
}

func (r *Runtime) NetworkSetContainsInterface(set, iface cf.Ref) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.setLocked(set)
	bsd := r.interfaceLocked(iface).BSDName
	for _, id := range s.Services {
		if svc, ok := r.network.service(id); ok && svc.Interface == bsd && bsd != "" {
			return true
		}
	}
	return false
}
