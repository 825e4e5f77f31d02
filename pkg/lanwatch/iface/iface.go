// Package iface snapshots the host's network interfaces in the order the
// operating system reports them.
package iface

import (
	"fmt"
	"net"
	"strconv"
)

// Address families.
const (
	IPv4 = "IPv4"
	IPv6 = "IPv6"
)

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from interface enumeration.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Addr is one address assigned to an interface.
type Addr struct {
	Address  string // "192.168.1.10"
	Netmask  string // dotted quad for IPv4, expanded IPv6 mask otherwise
	Family   string // IPv4 or IPv6
	MAC      string // hardware address of the owning interface
	Internal bool   // loopback
	CIDR     string // "192.168.1.10/24"
}

// Interface is a named interface and its addresses, in OS order.
type Interface struct {
	Name  string
	Addrs []Addr
}

// Lister returns the current interface snapshot.
type Lister interface {
	Interfaces() ([]Interface, error)
}

// System lists interfaces with the net package.
type System struct{}

// Interfaces implements Lister.
func (System) Interfaces() ([]Interface, error) {
	ifs, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	out := make([]Interface, 0, len(ifs))
	for _, ifc := range ifs {
		addrs, err := ifc.Addrs()
		if err != nil {
			debugLog("%s: addrs: %v", ifc.Name, err)
			continue
		}
		entry := Interface{Name: ifc.Name}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			entry.Addrs = append(entry.Addrs, fromIPNet(ipNet, ifc))
		}
		debugLog("%s: %d addresses", ifc.Name, len(entry.Addrs))
		out = append(out, entry)
	}
	return out, nil
}

func fromIPNet(ipNet *net.IPNet, ifc net.Interface) Addr {
	ones, _ := ipNet.Mask.Size()
	mac := ifc.HardwareAddr.String()
	if mac == "" {
		mac = "00:00:00:00:00:00"
	}
	a := Addr{
		MAC:      mac,
		Internal: ifc.Flags&net.FlagLoopback != 0,
	}
	if ip4 := ipNet.IP.To4(); ip4 != nil {
		mask := ipNet.Mask
		if len(mask) == net.IPv6len {
			mask = mask[12:]
		}
		a.Family = IPv4
		a.Address = ip4.String()
		a.Netmask = net.IP(mask).String()
	} else {
		a.Family = IPv6
		a.Address = ipNet.IP.String()
		a.Netmask = net.IP(ipNet.Mask).String()
	}
	a.CIDR = a.Address + "/" + strconv.Itoa(ones)
	return a
}

// Static is a fixed snapshot, useful for tests and for callers that
// already know which interfaces to use.
type Static []Interface

// Interfaces implements Lister.
func (s Static) Interfaces() ([]Interface, error) {
	out := make([]Interface, len(s))
	copy(out, s)
	return out, nil
}
