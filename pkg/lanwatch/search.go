package lanwatch

import (
	"context"
	"fmt"
	"strings"
)

// SearchByIP discovers the whole network and reports which of ips are on it.
func (e *Engine) SearchByIP(ctx context.Context, ips []string) (*Result, error) {
	if len(ips) == 0 {
		return nil, fmt.Errorf("%w: no IP addresses to search", ErrInvalidInput)
	}
	hosts, err := e.Discover(ctx, nil)
	if err != nil {
		return nil, err
	}

	terms := dedupe(ips)
	res := &Result{Hosts: []Host{}, Missing: []string{}}
	found := make(map[string]bool, len(terms))
	for _, h := range filterByIP(hosts, terms) {
		found[h.IP] = true
		res.Hosts = append(res.Hosts, h)
	}
	for _, ip := range terms {
		if !found[ip] {
			res.Missing = append(res.Missing, ip)
		}
	}
	return res, nil
}

// SearchByMAC returns the hosts whose MAC contains any of macs, ignoring
// case, so fragments such as "e0:ac" match. Each returned host lists the
// terms it matched. A term is missing when it matched no host.
func (e *Engine) SearchByMAC(ctx context.Context, macs []string, addrs []string) (*Result, error) {
	if len(macs) == 0 {
		return nil, fmt.Errorf("%w: no MAC addresses to search", ErrInvalidInput)
	}
	hosts, err := e.Discover(ctx, addrs)
	if err != nil {
		return nil, err
	}

	terms := dedupe(macs)
	hit := make(map[string]bool, len(terms))
	res := &Result{Hosts: []Host{}, Missing: []string{}}
	for _, h := range hosts {
		mac := strings.ToLower(h.MAC)
		var matched []string
		for _, term := range terms {
			if strings.Contains(mac, strings.ToLower(term)) {
				matched = append(matched, term)
				hit[term] = true
			}
		}
		if len(matched) > 0 {
			h.Matched = matched
			res.Hosts = append(res.Hosts, h)
		}
	}
	for _, term := range terms {
		if !hit[term] {
			res.Missing = append(res.Missing, term)
		}
	}
	return res, nil
}

// SearchByVendor returns the hosts whose vendor equals vendor, ignoring case.
// Hosts with an unknown vendor never match.
func (e *Engine) SearchByVendor(ctx context.Context, vendor string, addrs []string) ([]Host, error) {
	if strings.TrimSpace(vendor) == "" {
		return nil, fmt.Errorf("%w: empty vendor", ErrInvalidInput)
	}
	hosts, err := e.Discover(ctx, addrs)
	if err != nil {
		return nil, err
	}
	out := []Host{}
	for _, h := range hosts {
		if h.VendorType != "" && strings.EqualFold(h.VendorType, vendor) {
			out = append(out, h)
		}
	}
	return out, nil
}
