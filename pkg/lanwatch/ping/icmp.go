package ping

import (
	"context"
	"fmt"
	"net"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// ICMP pings with raw or unprivileged ICMP sockets instead of the ping tool.
// Unprivileged mode needs net.ipv4.ping_group_range to include the caller on
// Linux; privileged mode needs CAP_NET_RAW.
type ICMP struct {
	Privileged bool
}

// Ping implements Pinger.
func (p *ICMP) Ping(ctx context.Context, ip string, timeout time.Duration) error {
	if net.ParseIP(ip) == nil {
		return ErrInvalidIP
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	pinger, err := probing.NewPinger(ip)
	if err != nil {
		return fmt.Errorf("ping %s: %w", ip, err)
	}
	pinger.Count = 1
	pinger.Timeout = timeout
	pinger.SetPrivileged(p.Privileged)

	if err := pinger.RunWithContext(ctx); err != nil {
		debugLog("%s: icmp failed: %v", ip, err)
		return fmt.Errorf("ping %s: %w", ip, err)
	}
	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		debugLog("%s: no reply", ip)
		return ErrPacketLoss
	}
	debugLog("%s: reply in %v", ip, stats.AvgRtt)
	return nil
}
