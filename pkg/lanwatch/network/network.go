// Package network provides IPv4 block arithmetic and address range expansion.
package network

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ErrInvalidNetwork is returned when an address/mask pair does not describe
// a valid IPv4 block.
var ErrInvalidNetwork = errors.New("invalid network")

// Block is an IPv4 network described by its network and broadcast addresses.
type Block struct {
	Network   uint32
	Broadcast uint32
	Bits      int
}

// ParseMask parses a netmask given either as a dotted quad ("255.255.255.0")
// or as a prefix length ("24" or "/24").
func ParseMask(mask string) (net.IPMask, error) {
	mask = strings.TrimSpace(mask)
	mask = strings.TrimPrefix(mask, "/")
	if mask == "" {
		return nil, fmt.Errorf("%w: empty netmask", ErrInvalidNetwork)
	}

	if !strings.Contains(mask, ".") {
		bits, err := strconv.Atoi(mask)
		if err != nil || bits < 0 || bits > 32 {
			return nil, fmt.Errorf("%w: netmask %q", ErrInvalidNetwork, mask)
		}
		return net.CIDRMask(bits, 32), nil
	}

	ip := net.ParseIP(mask).To4()
	if ip == nil {
		return nil, fmt.Errorf("%w: netmask %q", ErrInvalidNetwork, mask)
	}
	m := net.IPMask(ip)
	if ones, bits := m.Size(); ones == 0 && bits == 0 {
		// non-canonical mask such as 255.0.255.0
		return nil, fmt.Errorf("%w: non-contiguous netmask %q", ErrInvalidNetwork, mask)
	}
	return m, nil
}

// NewBlock computes the IPv4 block containing address under mask.
func NewBlock(address, mask string) (Block, error) {
	ip := net.ParseIP(strings.TrimSpace(address))
	if ip == nil || ip.To4() == nil {
		return Block{}, fmt.Errorf("%w: address %q is not IPv4", ErrInvalidNetwork, address)
	}
	m, err := ParseMask(mask)
	if err != nil {
		return Block{}, err
	}
	ones, _ := m.Size()
	maskBits := ipToUint32(net.IP(m))
	network := ipToUint32(ip) & maskBits
	return Block{
		Network:   network,
		Broadcast: network | ^maskBits,
		Bits:      ones,
	}, nil
}

// Contains reports whether ip lies inside the block.
func (b Block) Contains(ip string) bool {
	parsed := net.ParseIP(ip).To4()
	if parsed == nil {
		return false
	}
	u := ipToUint32(parsed)
	return u >= b.Network && u <= b.Broadcast
}

// String returns the block in CIDR notation.
func (b Block) String() string {
	return fmt.Sprintf("%s/%d", uint32ToIP(b.Network), b.Bits)
}

// Hosts returns the block's addresses in ascending order. Network and
// broadcast addresses are only included when includeEndpoints is set.
// A /31 has no usable hosts and a /32 has exactly one address, which is
// returned only with includeEndpoints.
func (b Block) Hosts(includeEndpoints bool) []string {
	var res []string
	if includeEndpoints {
		res = append(res, uint32ToIP(b.Network).String())
	}
	for u := uint64(b.Network) + 1; u < uint64(b.Broadcast); u++ {
		res = append(res, uint32ToIP(uint32(u)).String())
	}
	if includeEndpoints && b.Broadcast != b.Network {
		res = append(res, uint32ToIP(b.Broadcast).String())
	}
	return res
}

// Expand returns the candidate addresses of the block containing address
// under mask, in ascending numeric order.
func Expand(address, mask string, includeEndpoints bool) ([]string, error) {
	b, err := NewBlock(address, mask)
	if err != nil {
		return nil, err
	}
	return b.Hosts(includeEndpoints), nil
}

// EnumerateIPs returns all usable host IPs in a CIDR (excludes network and broadcast).
func EnumerateIPs(cidr string) ([]net.IP, error) {
	_, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNetwork, err)
	}
	return enumerateIPsFromNet(ipnet), nil
}

// EnumerateIPStrings returns all usable host IPs in a CIDR as strings.
func EnumerateIPStrings(cidr string) ([]string, error) {
	ips, err := EnumerateIPs(cidr)
	if err != nil {
		return nil, err
	}
	result := make([]string, len(ips))
	for i, ip := range ips {
		result[i] = ip.String()
	}
	return result, nil
}

func enumerateIPsFromNet(n *net.IPNet) []net.IP {
	var res []net.IP
	base := n.IP.To4()
	if base == nil {
		return res // IPv6 not supported for enumeration
	}
	mask := net.IP(n.Mask).To4()
	if mask == nil {
		return res
	}
	network := ipToUint32(base) & ipToUint32(mask)
	broadcast := network | ^ipToUint32(mask)
	for u := uint64(network) + 1; u < uint64(broadcast); u++ {
		res = append(res, uint32ToIP(uint32(u)))
	}
	return res
}

// Compare orders two dotted-quad strings numerically. Unparseable values
// sort after valid ones and compare lexically among themselves.
func Compare(a, b string) int {
	ia, ib := net.ParseIP(a).To4(), net.ParseIP(b).To4()
	switch {
	case ia == nil && ib == nil:
		return strings.Compare(a, b)
	case ia == nil:
		return 1
	case ib == nil:
		return -1
	}
	ua, ub := ipToUint32(ia), ipToUint32(ib)
	switch {
	case ua < ub:
		return -1
	case ua > ub:
		return 1
	}
	return 0
}

func ipToUint32(ip net.IP) uint32 {
	ip = ip.To4()
	return uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3])
}

func uint32ToIP(u uint32) net.IP {
	return net.IPv4(byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
}
