// Package lanwatch discovers devices on the local IPv4 network.
//
// An Engine selects this machine's active connection, expands its subnet
// into candidate addresses, pings them, resolves the responsive ones to MAC
// addresses through ARP and enriches each host with its vendor and reverse
// DNS name. Results are cached for a configurable time and can be searched
// by IP, MAC fragment or vendor.
//
// Probes are backed by replaceable collaborators:
//   - ping: the system ping tool (ping.Command) or ICMP sockets (ping.ICMP)
//   - arp: the system arp tool (arp.Command) or raw ARP requests (arp.Arping)
//   - names: the system resolver (dns.System), explicit servers (dns.Client)
//     and optionally SSDP/UPnP responders (ssdp.Discovery)
//   - vendors: oui.Lookup tables
package lanwatch

import (
	"strings"
)

// Component identifies the part of the library that produced a log message.
type Component string

const (
	ComponentEngine    Component = "engine"
	ComponentInterface Component = "iface"
	ComponentCommand   Component = "command"
	ComponentPing      Component = "ping"
	ComponentARP       Component = "arp"
	ComponentDNS       Component = "dns"
	ComponentSSDP      Component = "ssdp"
	ComponentVendor    Component = "vendor" // MAC vendor lookup (OUI)
)

// Family is an IP address family.
type Family string

const (
	IPv4 Family = "IPv4"
	IPv6 Family = "IPv6"
)

// Connection is one OS-reported network attachment. Values are snapshots;
// a new selection pass replaces the engine's Connection wholesale.
type Connection struct {
	Name     string `json:"name" yaml:"name"`
	Internal bool   `json:"internal" yaml:"internal"`
	Family   Family `json:"family" yaml:"family"`
	Address  string `json:"address" yaml:"address"`
	Netmask  string `json:"netmask" yaml:"netmask"`
	MAC      string `json:"mac" yaml:"mac"`
	CIDR     string `json:"cidr" yaml:"cidr"`
}

// Device describes this machine's current attachment to the network.
type Device struct {
	OS         string      `json:"os" yaml:"os"`
	Connection *Connection `json:"connection,omitempty" yaml:"connection,omitempty"`
	VendorType string      `json:"vendorType,omitempty" yaml:"vendorType,omitempty"`
}

// Host is a discovered network peer.
type Host struct {
	IP         string `json:"ip" yaml:"ip"`
	MAC        string `json:"mac" yaml:"mac"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	VendorType string `json:"vendorType,omitempty" yaml:"vendorType,omitempty"`
	IsSelf     bool   `json:"isSelf" yaml:"isSelf"`

	// Matched lists the search terms that selected this host. It is only
	// set on results of SearchByMAC and is not part of the host's identity.
	Matched []string `json:"matched,omitempty" yaml:"matched,omitempty"`
}

// Key identifies a host by IP and MAC.
func (h Host) Key() string {
	return h.IP + "/" + strings.ToLower(h.MAC)
}

// Same reports whether h and o are the same entity.
func (h Host) Same(o Host) bool {
	return h.Key() == o.Key()
}

// PingResult is the outcome of a ping pass.
type PingResult struct {
	Hosts   []string `json:"hosts" yaml:"hosts"`     // responsive addresses
	Missing []string `json:"missing" yaml:"missing"` // addresses that did not answer
}

// Result is the outcome of an ARP pass or a search.
type Result struct {
	Hosts   []Host   `json:"hosts" yaml:"hosts"`
	Missing []string `json:"missing" yaml:"missing"`
}

// InterfaceFilters restricts connection selection. An empty axis accepts
// everything on that axis.
type InterfaceFilters struct {
	Interfaces []string `mapstructure:"interfaces" json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
	Internal   []bool   `mapstructure:"internal" json:"internal,omitempty" yaml:"internal,omitempty"`
	Families   []Family `mapstructure:"families" json:"families,omitempty" yaml:"families,omitempty"`
}

func (f InterfaceFilters) acceptName(name string) bool {
	if len(f.Interfaces) == 0 {
		return true
	}
	for _, n := range f.Interfaces {
		if n == name {
			return true
		}
	}
	return false
}

func (f InterfaceFilters) acceptInternal(internal bool) bool {
	if len(f.Internal) == 0 {
		return true
	}
	for _, v := range f.Internal {
		if v == internal {
			return true
		}
	}
	return false
}

func (f InterfaceFilters) acceptFamily(family Family) bool {
	if len(f.Families) == 0 {
		return true
	}
	for _, v := range f.Families {
		if strings.EqualFold(string(v), string(family)) {
			return true
		}
	}
	return false
}
