//go:build !ios && !android && (amd64 || arm64)

package reachability

import (
	"net"
	"strconv"
)

// zoneIndex resolves an IPv6 zone such as "en0" or "4" to an interface index.
func zoneIndex(zone string) uint32 {
	if n, err := strconv.ParseUint(zone, 10, 32); err == nil {
		return uint32(n)
	}
	if ifi, err := net.InterfaceByName(zone); err == nil {
		return uint32(ifi.Index)
	}
	return 0
}
