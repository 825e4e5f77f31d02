// Package dns provides reverse DNS (PTR) lookup utilities.
package dns

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// DefaultTimeout is the default timeout for DNS lookups.
const DefaultTimeout = 2 * time.Second

// ErrNoName is returned when a lookup succeeded but carried no name.
var ErrNoName = errors.New("no PTR record")

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from DNS operations.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Resolver returns the primary name registered for an address.
type Resolver interface {
	LookupAddr(ctx context.Context, ip string) (string, error)
}

// System resolves with the operating system's resolver configuration.
type System struct {
	Timeout time.Duration
}

// LookupAddr performs a reverse DNS (PTR) lookup for the given IP address.
func (d *System) LookupAddr(ctx context.Context, ip string) (string, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	resolver := &net.Resolver{}
	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	names, err := resolver.LookupAddr(lookupCtx, ip)
	if err != nil {
		debugLog("%s: lookup failed: %v", ip, err)
		return "", err
	}
	return firstName(ip, names)
}

// firstName trims the root dot from the first non-empty name.
func firstName(ip string, names []string) (string, error) {
	for _, name := range names {
		name = strings.TrimSuffix(name, ".")
		if name != "" {
			debugLog("%s -> %s", ip, name)
			return name, nil
		}
	}
	return "", ErrNoName
}
