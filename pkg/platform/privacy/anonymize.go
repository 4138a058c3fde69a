// Package privacy reduces client addresses to a form that is safe to log.
package privacy

import (
	"net"
	"net/netip"
)

// AnonymizeIP keeps the network part of an address: the /24 for IPv4 and the
// /48 for IPv6. A host:port pair is accepted, so r.RemoteAddr can be passed
// directly. Returns "unknown" for an empty input and "invalid" when the
// address cannot be parsed.
func AnonymizeIP(addr string) string {
	if addr == "" || addr == "unknown" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return "invalid"
	}
	ip = ip.Unmap()

	bits := 48
	if ip.Is4() {
		bits = 24
	}
	prefix, err := ip.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}
