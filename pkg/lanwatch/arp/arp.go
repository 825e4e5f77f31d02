// Package arp resolves IPv4 addresses to MAC addresses.
//
// Command reads the operating system's neighbour table through the arp tool,
// which only knows hosts that recently exchanged traffic with this machine
// (a ping sweep beforehand populates it). Arping sends ARP requests itself
// and needs raw socket privileges.
package arp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/command"
)

const (
	// DefaultTimeout is the default timeout for ARP lookups.
	DefaultTimeout = 1 * time.Second
)

// Errors
var (
	// ErrNotSupported is returned when ARP is called on unsupported platforms.
	ErrNotSupported = errors.New("ARP discovery is not supported on this platform")
	// ErrInvalidIP is returned when an invalid IP address is provided.
	ErrInvalidIP = errors.New("invalid IP address")
	// ErrIPv6NotSupported is returned when attempting ARP on an IPv6 address.
	ErrIPv6NotSupported = errors.New("ARP is not supported for IPv6 addresses")
	// ErrNoEntry is returned when the neighbour table has no complete entry.
	ErrNoEntry = errors.New("no ARP entry")
	// ErrNoMAC is returned when the tool output contains no MAC address.
	ErrNoMAC = errors.New("no MAC address in ARP output")
)

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from ARP operations.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Resolver looks up the MAC address of one host.
type Resolver interface {
	Resolve(ctx context.Context, ip string, timeout time.Duration) (string, error)
}

var macPattern = regexp.MustCompile(`([0-9A-Fa-f]{1,2}[:-]){5}[0-9A-Fa-f]{1,2}`)

// Command resolves by running the arp tool ("arp -a <ip>" on Windows).
type Command struct {
	Runner command.Runner // nil uses command.Exec
	GOOS   string         // empty uses runtime.GOOS
}

// Resolve implements Resolver. The returned MAC is normalized with NormalizeMAC.
func (c *Command) Resolve(ctx context.Context, ip string, timeout time.Duration) (string, error) {
	if err := checkIPv4(ip); err != nil {
		return "", err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	goos := c.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	args := []string{ip}
	if goos == "windows" {
		args = []string{"-a", ip}
	}
	runner := c.Runner
	if runner == nil {
		runner = command.Exec{}
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := runner.Run(runCtx, "arp", args...)
	if err != nil {
		debugLog("%s: arp failed: %v", ip, err)
		return "", fmt.Errorf("arp %s: %w", ip, err)
	}
	mac, err := ParseMAC(out)
	if err != nil {
		debugLog("%s: %v", ip, err)
		return "", err
	}
	debugLog("%s -> MAC: %s", ip, mac)
	return mac, nil
}

// ParseMAC extracts the first MAC address from arp tool output.
// Output reporting a missing or incomplete entry yields ErrNoEntry.
func ParseMAC(out string) (string, error) {
	lower := strings.ToLower(out)
	if strings.Contains(lower, "no entry") ||
		strings.Contains(lower, "no arp entries") ||
		strings.Contains(lower, "(incomplete)") {
		return "", ErrNoEntry
	}
	m := macPattern.FindString(out)
	if m == "" {
		return "", ErrNoMAC
	}
	return NormalizeMAC(m), nil
}

// NormalizeMAC returns mac lowercased and colon separated with two digits
// per octet ("0:1A-2b:3:4:5" -> "00:1a:2b:03:04:05"). Input that does not
// split into octets is returned lowercased.
func NormalizeMAC(mac string) string {
	parts := strings.Split(strings.ReplaceAll(strings.TrimSpace(mac), "-", ":"), ":")
	for i, p := range parts {
		if len(p) == 1 {
			parts[i] = "0" + p
		}
	}
	return strings.ToLower(strings.Join(parts, ":"))
}

func checkIPv4(ip string) error {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ErrInvalidIP
	}
	if parsed.To4() == nil {
		return ErrIPv6NotSupported
	}
	return nil
}
