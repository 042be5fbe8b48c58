//go:build !ios && !android && (amd64 || arm64)

package network

import "github.com/obinnaokechukwu/scgo/schema"

// InterfaceType classifies a network interface. The framework's vocabulary
// grows between OS releases; tags this package does not know map to
// InterfaceUnrecognized.
type InterfaceType int

const (
	InterfaceUnrecognized InterfaceType = iota
	Interface6to4
	InterfaceBluetooth
	InterfaceBond
	InterfaceBridge
	InterfaceEthernet
	InterfaceFireWire
	InterfaceIEEE80211
	InterfaceIPSec
	InterfaceIPv4
	InterfaceIrDA
	InterfaceL2TP
	InterfaceModem
	InterfacePPP
	InterfacePPTP
	InterfaceSerial
	InterfaceVLAN
	InterfaceWWAN
)

var interfaceTypeNames = map[InterfaceType]string{
	Interface6to4:      schema.InterfaceType6to4,
	InterfaceBluetooth: schema.InterfaceTypeBluetooth,
	InterfaceBond:      schema.InterfaceTypeBond,
	InterfaceBridge:    schema.InterfaceTypeBridge,
	InterfaceEthernet:  schema.InterfaceTypeEthernet,
	InterfaceFireWire:  schema.InterfaceTypeFireWire,
	InterfaceIEEE80211: schema.InterfaceTypeIEEE80211,
	InterfaceIPSec:     schema.InterfaceTypeIPSec,
	InterfaceIPv4:      schema.InterfaceTypeIPv4,
	InterfaceIrDA:      schema.InterfaceTypeIrDA,
	InterfaceL2TP:      schema.InterfaceTypeL2TP,
	InterfaceModem:     schema.InterfaceTypeModem,
	InterfacePPP:       schema.InterfaceTypePPP,
	InterfacePPTP:      schema.InterfaceTypePPTP,
	InterfaceSerial:    schema.InterfaceTypeSerial,
	InterfaceVLAN:      schema.InterfaceTypeVLAN,
	InterfaceWWAN:      schema.InterfaceTypeWWAN,
}

var interfaceTypesByName = invert(interfaceTypeNames)

// ParseInterfaceType maps a kSCNetworkInterfaceType* tag to an InterfaceType.
func ParseInterfaceType(tag string) InterfaceType {
	return interfaceTypesByName[tag]
}

// String returns the framework tag, or "Unrecognized".
func (t InterfaceType) String() string {
	if s, ok := interfaceTypeNames[t]; ok {
		return s
	}
	return "Unrecognized"
}

// ProtocolType classifies a protocol configured on a service. Unknown tags
// map to ProtocolUnrecognized.
type ProtocolType int

const (
	ProtocolUnrecognized ProtocolType = iota
	ProtocolAppleTalk
	ProtocolDNS
	ProtocolIPv4
	ProtocolIPv6
	ProtocolProxies
	ProtocolSMB
)

var protocolTypeNames = map[ProtocolType]string{
	ProtocolAppleTalk: schema.ProtocolTypeAppleTalk,
	ProtocolDNS:       schema.ProtocolTypeDNS,
	ProtocolIPv4:      schema.ProtocolTypeIPv4,
	ProtocolIPv6:      schema.ProtocolTypeIPv6,
	ProtocolProxies:   schema.ProtocolTypeProxies,
	ProtocolSMB:       schema.ProtocolTypeSMB,
}

var protocolTypesByName = invert(protocolTypeNames)

// ParseProtocolType maps a kSCNetworkProtocolType* tag to a ProtocolType.
func ParseProtocolType(tag string) ProtocolType {
	return protocolTypesByName[tag]
}

// String returns the framework tag, or "Unrecognized".
func (t ProtocolType) String() string {
	if s, ok := protocolTypeNames[t]; ok {
		return s
	}
	return "Unrecognized"
}

func invert[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
