//go:build windows

package arp

import (
	"context"
	"time"
)

// Arping is unavailable on Windows; use Command instead.
type Arping struct {
	Interface string
}

// Resolve always returns ErrNotSupported.
func (a *Arping) Resolve(ctx context.Context, ip string, timeout time.Duration) (string, error) {
	return "", ErrNotSupported
}

// ArpingSupported reports whether Arping works on this platform.
func ArpingSupported() bool {
	return false
}
