//go:build !ios && !android && (amd64 || arm64)

// Package schema holds the SystemConfiguration key vocabulary and builds
// dynamic store keys and preferences paths.
//
// The string values equal the framework's exported constants (for example
// kSCPropNetDNSServerAddresses is "ServerAddresses"), so no symbol lookup is
// needed to use them.
package schema

import (
	"regexp"
	"strings"
)

// Domain is the first component of a dynamic store key.
type Domain string

const (
	// DomainState holds the active, computed configuration.
	DomainState Domain = "State:"
	// DomainSetup holds configuration copied from the preferences.
	DomainSetup Domain = "Setup:"
	// DomainFile is used for file watching keys.
	DomainFile Domain = "File:"
	// DomainPlugin is used by configd plugins.
	DomainPlugin Domain = "Plugin:"
)

// Entity is the last component of a network key.
type Entity string

const (
	EntityIPv4      Entity = "IPv4"
	EntityIPv6      Entity = "IPv6"
	EntityDNS       Entity = "DNS"
	EntityProxies   Entity = "Proxies"
	EntityInterface Entity = "Interface"
	EntityLink      Entity = "Link"
	EntityAirPort   Entity = "AirPort"
	EntityEthernet  Entity = "Ethernet"
	EntitySMB       Entity = "SMB"
)

// Key components.
const (
	CompNetwork   = "Network"
	CompService   = "Service"
	CompGlobal    = "Global"
	CompInterface = "Interface"
	CompHostNames = "HostNames"
	CompSystem    = "System"
)

// Dictionary property names.
const (
	PrimaryService   = "PrimaryService"
	PrimaryInterface = "PrimaryInterface"
	Router           = "Router"
	Addresses        = "Addresses"
	SubnetMasks      = "SubnetMasks"
	DestAddresses    = "DestAddresses"
	InterfaceName    = "InterfaceName"
	ConfigMethod     = "ConfigMethod"
	ServiceOrder     = "ServiceOrder"
	Interfaces       = "Interfaces"

	ServerAddresses = "ServerAddresses"
	DomainName      = "DomainName"
	SearchDomains   = "SearchDomains"
	SearchOrder     = "SearchOrder"
	ServerPort      = "ServerPort"
	SortList        = "SortList"

	LinkActive = "Active"

	ComputerName    = "ComputerName"
	LocalHostName   = "LocalHostName"
	UserDefinedName = "UserDefinedName"
	HardwareAddress = "MACAddress"
)

// Proxy dictionary property names.
const (
	HTTPEnable             = "HTTPEnable"
	HTTPProxy              = "HTTPProxy"
	HTTPPort               = "HTTPPort"
	HTTPSEnable            = "HTTPSEnable"
	HTTPSProxy             = "HTTPSProxy"
	HTTPSPort              = "HTTPSPort"
	ProxyAutoConfig        = "ProxyAutoConfigEnable"
	ProxyAutoURL           = "ProxyAutoConfigURLString"
	ExceptionsList         = "ExceptionsList"
	ExcludeSimpleHostnames = "ExcludeSimpleHostnames"
)

// Top-level preferences keys.
const (
	PrefCurrentSet      = "CurrentSet"
	PrefNetworkServices = "NetworkServices"
	PrefSets            = "Sets"
	PrefSystem          = "System"
)

// Network interface types (kSCNetworkInterfaceType*).
const (
	InterfaceType6to4      = "6to4"
	InterfaceTypeBluetooth = "Bluetooth"
	InterfaceTypeBond      = "Bond"
	InterfaceTypeEthernet  = "Ethernet"
	InterfaceTypeFireWire  = "FireWire"
	InterfaceTypeIEEE80211 = "IEEE80211"
	InterfaceTypeIPSec     = "IPSec"
	InterfaceTypeIrDA      = "IrDA"
	InterfaceTypeL2TP      = "L2TP"
	InterfaceTypeModem     = "Modem"
	InterfaceTypePPP       = "PPP"
	InterfaceTypePPTP      = "PPTP"
	InterfaceTypeSerial    = "Serial"
	InterfaceTypeVLAN      = "VLAN"
	InterfaceTypeWWAN      = "WWAN"
	InterfaceTypeIPv4      = "IPv4"
	InterfaceTypeBridge    = "Bridge"
)

// Network protocol types (kSCNetworkProtocolType*).
const (
	ProtocolTypeDNS       = "DNS"
	ProtocolTypeIPv4      = "IPv4"
	ProtocolTypeIPv6      = "IPv6"
	ProtocolTypeProxies   = "Proxies"
	ProtocolTypeSMB       = "SMB"
	ProtocolTypeAppleTalk = "AppleTalk"
)

// EmptySentinel is the value networksetup writes to clear a DNS list.
const EmptySentinel = "Empty"

func join(domain Domain, parts ...string) string {
	var b strings.Builder
	b.WriteString(string(domain))
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(p)
	}
	return b.String()
}

// GlobalKey returns "<domain>/Network/Global/<entity>", for example
// "State:/Network/Global/IPv4".
func GlobalKey(domain Domain, entity Entity) string {
	return join(domain, CompNetwork, CompGlobal, string(entity))
}

// ServiceKey returns "<domain>/Network/Service/<serviceID>/<entity>". An
// empty entity returns the service root key.
func ServiceKey(domain Domain, serviceID string, entity Entity) string {
	if entity == "" {
		return join(domain, CompNetwork, CompService, serviceID)
	}
	return join(domain, CompNetwork, CompService, serviceID, string(entity))
}

// InterfaceKey returns "<domain>/Network/Interface/<ifname>/<entity>".
func InterfaceKey(domain Domain, ifname string, entity Entity) string {
	if entity == "" {
		return join(domain, CompNetwork, CompInterface, ifname)
	}
	return join(domain, CompNetwork, CompInterface, ifname, string(entity))
}

// InterfaceListKey returns the key listing all interface names.
func InterfaceListKey(domain Domain) string {
	return join(domain, CompNetwork, CompInterface)
}

// HostNamesKey returns "Setup:/Network/HostNames".
func HostNamesKey() string {
	return join(DomainSetup, CompNetwork, CompHostNames)
}

// ComputerNameKey returns "Setup:/System".
func ComputerNameKey() string {
	return join(DomainSetup, CompSystem)
}

// ServicePattern returns a regular expression matching the entity key of
// every service in domain. An empty domain matches both State and Setup.
func ServicePattern(domain Domain, entity Entity) string {
	return domainPattern(domain) + "/" + CompNetwork + "/" + CompService + "/[^/]+/" + string(entity)
}

// InterfacePattern returns a regular expression matching the entity key of
// every interface in domain.
func InterfacePattern(domain Domain, entity Entity) string {
	return domainPattern(domain) + "/" + CompNetwork + "/" + CompInterface + "/[^/]+/" + string(entity)
}

func domainPattern(domain Domain) string {
	if domain == "" {
		return "(State|Setup):"
	}
	return regexp.QuoteMeta(string(domain))
}

// ParsedKey is a decomposed network service or interface key.
type ParsedKey struct {
	Domain Domain
	Kind   string // CompService or CompInterface
	ID     string // service ID or interface name
	Entity Entity
}

// ParseKey splits "<domain>/Network/<Service|Interface>/<id>[/<entity>]".
func ParseKey(key string) (ParsedKey, bool) {
	i := strings.IndexByte(key, '/')
	if i <= 0 || key[i-1] != ':' {
		return ParsedKey{}, false
	}
	p := ParsedKey{Domain: Domain(key[:i])}
	parts := strings.Split(key[i+1:], "/")
	if len(parts) < 3 || len(parts) > 4 || parts[0] != CompNetwork {
		return ParsedKey{}, false
	}
	if parts[1] != CompService && parts[1] != CompInterface {
		return ParsedKey{}, false
	}
	if parts[2] == "" {
		return ParsedKey{}, false
	}
	p.Kind, p.ID = parts[1], parts[2]
	if len(parts) == 4 {
		p.Entity = Entity(parts[3])
	}
	return p, true
}

// PrefPath joins preferences path components: PrefPath("Sets", id) is
// "/Sets/<id>".
func PrefPath(components ...string) string {
	return "/" + strings.Join(components, "/")
}
