// Package hosts expands scan targets into IPv4 host address sequences.
package hosts

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
)

// maxExpansion caps how many addresses a single CIDR may expand to.
const maxExpansion = 1 << 16

// Expand turns a target specification into the sequence of host addresses
// to probe. A bare IPv4 address yields itself; CIDR notation yields the
// usable hosts of the network: non-strict parsing (host bits are masked
// away), with the network and broadcast addresses excluded for prefixes
// shorter than /31. Only IPv4 is supported.
func Expand(target string) ([]string, error) {
	if addr, err := netip.ParseAddr(target); err == nil {
		if !addr.Is4() {
			return nil, errors.New("IPv6 addresses are not supported")
		}
		return []string{addr.String()}, nil
	}

	prefix, err := netip.ParsePrefix(target)
	if err != nil {
		return nil, fmt.Errorf("invalid target %q: expected IPv4 address or CIDR", target)
	}
	if !prefix.Addr().Is4() {
		return nil, errors.New("IPv6 networks are not supported")
	}

	prefix = prefix.Masked()
	bits := prefix.Bits()
	size := 1 << (32 - bits)
	if size > maxExpansion {
		return nil, fmt.Errorf("network %s expands to %d addresses, refusing more than %d", prefix, size, maxExpansion)
	}

	// /31 and /32 have no distinct network/broadcast addresses.
	if bits >= 31 {
		out := make([]string, 0, size)
		for addr := prefix.Addr(); prefix.Contains(addr); addr = addr.Next() {
			out = append(out, addr.String())
		}
		return out, nil
	}

	out := make([]string, 0, size-2)
	for addr := prefix.Addr().Next(); prefix.Contains(addr); addr = addr.Next() {
		next := addr.Next()
		if !prefix.Contains(next) {
			// Broadcast address.
			break
		}
		out = append(out, addr.String())
	}
	return out, nil
}

// ResolveIPv4 resolves a hostname or IP literal to its first IPv4 address.
func ResolveIPv4(target string) (string, error) {
	if ip := net.ParseIP(target); ip != nil {
		if ip4 := ip.To4(); ip4 != nil {
			return ip4.String(), nil
		}
		return "", errors.New("IPv6 addresses are not supported")
	}

	ips, err := net.LookupIP(target)
	if err != nil {
		return "", err
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return "", fmt.Errorf("no IPv4 address found for %q", target)
}
