package dns

import (
	"context"
	"fmt"
	"net"
	"time"

	miekg "github.com/miekg/dns"
)

// ResolvConf is where DefaultServers reads the system nameservers.
const ResolvConf = "/etc/resolv.conf"

// Client sends PTR queries to explicit nameservers with miekg/dns.
// Servers are tried in order until one answers.
type Client struct {
	Servers []string // "host" or "host:port"; port defaults to 53
	Timeout time.Duration
}

// NewClient returns a Client for servers. With no servers it falls back to
// the nameservers of ResolvConf.
func NewClient(servers ...string) (*Client, error) {
	if len(servers) == 0 {
		var err error
		servers, err = DefaultServers()
		if err != nil {
			return nil, err
		}
	}
	return &Client{Servers: servers, Timeout: DefaultTimeout}, nil
}

// DefaultServers returns the nameservers listed in ResolvConf.
func DefaultServers() ([]string, error) {
	cfg, err := miekg.ClientConfigFromFile(ResolvConf)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ResolvConf, err)
	}
	out := make([]string, 0, len(cfg.Servers))
	for _, s := range cfg.Servers {
		out = append(out, net.JoinHostPort(s, cfg.Port))
	}
	return out, nil
}

// LookupAddr implements Resolver.
func (c *Client) LookupAddr(ctx context.Context, ip string) (string, error) {
	if len(c.Servers) == 0 {
		return "", fmt.Errorf("reverse lookup %s: no servers configured", ip)
	}
	arpa, err := miekg.ReverseAddr(ip)
	if err != nil {
		return "", fmt.Errorf("reverse lookup %s: %w", ip, err)
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	msg := new(miekg.Msg)
	msg.SetQuestion(arpa, miekg.TypePTR)
	client := &miekg.Client{Timeout: timeout}

	var lastErr error
	for _, server := range c.Servers {
		in, _, err := client.ExchangeContext(ctx, msg, withPort(server))
		if err != nil {
			debugLog("%s: %s: %v", ip, server, err)
			lastErr = err
			continue
		}
		if in.Rcode != miekg.RcodeSuccess {
			lastErr = fmt.Errorf("%s: %s", server, miekg.RcodeToString[in.Rcode])
			continue
		}
		var names []string
		for _, rr := range in.Answer {
			if ptr, ok := rr.(*miekg.PTR); ok {
				names = append(names, ptr.Ptr)
			}
		}
		return firstName(ip, names)
	}
	return "", fmt.Errorf("reverse lookup %s: %w", ip, lastErr)
}

func withPort(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, "53")
}
