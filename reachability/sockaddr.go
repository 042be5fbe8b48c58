//go:build !ios && !android && (amd64 || arm64)

package reachability

import (
	"encoding/binary"
	"net/netip"
)

// BSD address families as the frameworks define them.
const (
	afInet  = 2
	afInet6 = 30
)

// sockaddr encodes ap as a BSD sockaddr_in or sockaddr_in6, with the
// leading length byte and the port in network order.
func sockaddr(ap netip.AddrPort) []byte {
	addr := ap.Addr()
	if addr.Is4() || addr.Is4In6() {
		b := make([]byte, 16)
		b[0], b[1] = 16, afInet
		binary.BigEndian.PutUint16(b[2:4], ap.Port())
		a4 := addr.Unmap().As4()
		copy(b[4:8], a4[:])
		return b
	}
	b := make([]byte, 28)
	b[0], b[1] = 28, afInet6
	binary.BigEndian.PutUint16(b[2:4], ap.Port())
	a16 := addr.As16()
	copy(b[8:24], a16[:])
	// sin6_scope_id is host order.
	if zone := addr.Zone(); zone != "" {
		binary.NativeEndian.PutUint32(b[24:28], zoneIndex(zone))
	}
	return b
}
