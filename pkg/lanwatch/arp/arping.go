//go:build linux || darwin || freebsd || netbsd || openbsd

package arp

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/j-keck/arping"
)

// arping keeps its timeout in a package variable.
var arpingMu sync.Mutex

// Arping resolves by sending an ARP request with j-keck/arping.
// Requires raw socket privileges.
//
// Resolves are sequential across all Arping values, whatever the engine's
// worker count, so a sweep takes up to one timeout per silent address.
type Arping struct {
	Interface string // empty lets arping pick the route's interface
}

// Resolve implements Resolver.
func (a *Arping) Resolve(ctx context.Context, ip string, timeout time.Duration) (string, error) {
	if err := checkIPv4(ip); err != nil {
		return "", err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	parsedIP := net.ParseIP(ip)

	debugLog("Looking up ARP for %s", ip)

	type arpResponse struct {
		mac net.HardwareAddr
		dur time.Duration
		err error
	}
	responseChan := make(chan arpResponse, 1)

	go func() {
		arpingMu.Lock()
		defer arpingMu.Unlock()
		arping.SetTimeout(timeout)
		var (
			mac net.HardwareAddr
			dur time.Duration
			err error
		)
		if a.Interface != "" {
			mac, dur, err = arping.PingOverIfaceByName(parsedIP, a.Interface)
		} else {
			mac, dur, err = arping.Ping(parsedIP)
		}
		responseChan <- arpResponse{mac: mac, dur: dur, err: err}
	}()

	select {
	case <-ctx.Done():
		debugLog("%s: context cancelled", ip)
		return "", ctx.Err()
	case resp := <-responseChan:
		if resp.err != nil {
			debugLog("%s: error: %v", ip, resp.err)
			if resp.err == arping.ErrTimeout {
				return "", ErrNoEntry
			}
			return "", resp.err
		}
		mac := NormalizeMAC(resp.mac.String())
		debugLog("%s -> MAC: %s (%.2fms)", ip, mac, float64(resp.dur.Microseconds())/1000)
		return mac, nil
	}
}

// ArpingSupported reports whether Arping works on this platform.
func ArpingSupported() bool {
	return true
}
