//go:build !ios && !android && (amd64 || arm64)

package reachability

import "strings"

// Flags are SCNetworkReachabilityFlags.
type Flags uint32

const (
	TransientConnection  Flags = 1 << 0
	Reachable            Flags = 1 << 1
	ConnectionRequired   Flags = 1 << 2
	ConnectionOnTraffic  Flags = 1 << 3
	InterventionRequired Flags = 1 << 4
	ConnectionOnDemand   Flags = 1 << 5
	IsLocalAddress       Flags = 1 << 16
	IsDirect             Flags = 1 << 17
	IsWWAN               Flags = 1 << 18
)

var flagNames = []struct {
	f    Flags
	name string
}{
	{TransientConnection, "TransientConnection"},
	{Reachable, "Reachable"},
	{ConnectionRequired, "ConnectionRequired"},
	{ConnectionOnTraffic, "ConnectionOnTraffic"},
	{InterventionRequired, "InterventionRequired"},
	{ConnectionOnDemand, "ConnectionOnDemand"},
	{IsLocalAddress, "IsLocalAddress"},
	{IsDirect, "IsDirect"},
	{IsWWAN, "IsWWAN"},
}

// Has reports whether all bits of g are set.
func (f Flags) Has(g Flags) bool { return f&g == g }

// IsReachable reports whether the target can be reached with the current
// configuration, without first bringing up a connection.
func (f Flags) IsReachable() bool {
	return f.Has(Reachable) && !f.Has(ConnectionRequired)
}

func (f Flags) String() string {
	if f == 0 {
		return "0"
	}
	var parts []string
	for _, n := range flagNames {
		if f&n.f != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, "|")
}
