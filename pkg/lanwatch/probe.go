package lanwatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/marcuoli/go-lanwatch/internal/fanout"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/network"
)

// Ping probes addrs and splits them into responsive and missing addresses.
// A nil addrs probes every address of the connection's subnet; an empty
// slice returns an empty result without probing. Individual probe failures
// only ever land in Missing; a ctx cancelled before the pass settles returns
// ctx.Err() instead of a partial result.
func (e *Engine) Ping(ctx context.Context, addrs []string) (*PingResult, error) {
	targets, err := e.targets(addrs)
	if err != nil {
		return nil, err
	}
	res := &PingResult{Hosts: []string{}, Missing: []string{}}
	if len(targets) == 0 {
		return res, nil
	}

	e.log.Debug("ping pass", zap.Int("targets", len(targets)))
	errs := fanout.Settle(ctx, len(targets), e.opts.Workers, func(ctx context.Context, i int) error {
		return e.opts.Pinger.Ping(ctx, targets[i], e.opts.Timeout)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, err := range errs {
		if err != nil {
			res.Missing = append(res.Missing, targets[i])
			continue
		}
		res.Hosts = append(res.Hosts, targets[i])
	}
	sortAddrs(res.Hosts)
	sortAddrs(res.Missing)

	e.log.Debug("ping pass complete", zap.Int("responsive", len(res.Hosts)), zap.Int("missing", len(res.Missing)))
	return res, nil
}

// ARP resolves addrs to hosts, with the same range rules as Ping.
// Resolved hosts carry their vendor and, when enabled, their name.
func (e *Engine) ARP(ctx context.Context, addrs []string) (*Result, error) {
	targets, err := e.targets(addrs)
	if err != nil {
		return nil, err
	}
	res := &Result{Hosts: []Host{}, Missing: []string{}}
	if len(targets) == 0 {
		return res, nil
	}
	self := e.Connection()

	// One SSDP sweep serves the whole pass.
	var ssdpNames chan map[string]string
	if e.opts.SSDPNames && e.opts.SSDP != nil {
		ssdpNames = make(chan map[string]string, 1)
		go func() {
			names, err := e.opts.SSDP.Names(ctx)
			if err != nil {
				e.log.Debug("ssdp sweep failed", zap.Error(err))
			}
			ssdpNames <- names
		}()
	}

	e.log.Debug("arp pass", zap.Int("targets", len(targets)))
	hosts := make([]Host, len(targets))
	errs := fanout.Settle(ctx, len(targets), e.opts.Workers, func(ctx context.Context, i int) error {
		h, err := e.resolveHost(ctx, targets[i], self)
		if err != nil {
			return err
		}
		hosts[i] = h
		return nil
	})

	var names map[string]string
	if ssdpNames != nil {
		names = <-ssdpNames
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, err := range errs {
		if err != nil {
			res.Missing = append(res.Missing, targets[i])
			continue
		}
		h := hosts[i]
		if h.Name == "" {
			h.Name = names[h.IP]
		}
		res.Hosts = append(res.Hosts, h)
	}
	sortHosts(res.Hosts)
	sortAddrs(res.Missing)

	e.log.Debug("arp pass complete", zap.Int("hosts", len(res.Hosts)), zap.Int("missing", len(res.Missing)))
	return res, nil
}

func (e *Engine) resolveHost(ctx context.Context, ip string, self *Connection) (Host, error) {
	mac, err := e.opts.Resolver.Resolve(ctx, ip, e.opts.Timeout)
	if err != nil {
		return Host{}, err
	}
	h := Host{
		IP:     ip,
		MAC:    mac,
		IsSelf: self != nil && self.Address == ip,
	}
	h.VendorType, _ = e.opts.Vendors.Vendor(mac)
	if e.opts.ResolveNames {
		if name, err := e.opts.Names.LookupAddr(ctx, ip); err == nil {
			h.Name = name
		}
	}
	return h, nil
}

// targets returns the de-duplicated probe list for addrs.
func (e *Engine) targets(addrs []string) ([]string, error) {
	conn := e.Connection()
	if conn == nil {
		return nil, ErrNoConnection
	}
	if addrs != nil {
		return dedupe(addrs), nil
	}
	all, err := network.Expand(conn.Address, conn.Netmask, e.opts.IncludeEndpoints)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: %s has no host addresses", ErrNoConnection, conn.CIDR)
	}
	return all, nil
}

func dedupe(addrs []string) []string {
	seen := make(map[string]bool, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}
