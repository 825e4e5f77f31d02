package lanwatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/iface"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/oui"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("host down")

type fakePinger struct {
	mu    sync.Mutex
	up    map[string]bool
	calls int
}

func (p *fakePinger) Ping(ctx context.Context, ip string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if !p.up[ip] {
		return errDown
	}
	return nil
}

func (p *fakePinger) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fakeResolver struct {
	mu    sync.Mutex
	macs  map[string]string
	calls int
}

func (r *fakeResolver) Resolve(ctx context.Context, ip string, timeout time.Duration) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	mac, ok := r.macs[ip]
	if !ok {
		return "", errors.New("no entry")
	}
	return mac, nil
}

type fakeNames map[string]string

func (n fakeNames) LookupAddr(ctx context.Context, ip string) (string, error) {
	if name, ok := n[ip]; ok {
		return name, nil
	}
	return "", errors.New("nxdomain")
}

type fakeSSDP map[string]string

func (s fakeSSDP) Names(ctx context.Context) (map[string]string, error) {
	return s, nil
}

// switchLister returns whatever snapshot was set last.
type switchLister struct {
	mu  sync.Mutex
	ifs []iface.Interface
}

func (l *switchLister) Interfaces() ([]iface.Interface, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]iface.Interface(nil), l.ifs...), nil
}

func (l *switchLister) set(ifs ...iface.Interface) {
	l.mu.Lock()
	l.ifs = ifs
	l.mu.Unlock()
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

var (
	loopback = iface.Interface{Name: "lo", Addrs: []iface.Addr{{
		Address: "127.0.0.1", Netmask: "255.0.0.0", Family: iface.IPv4,
		MAC: "00:00:00:00:00:00", Internal: true, CIDR: "127.0.0.1/8",
	}}}
	eth0 = iface.Interface{Name: "eth0", Addrs: []iface.Addr{
		{Address: "fe80::1", Netmask: "ffff:ffff:ffff:ffff::", Family: iface.IPv6, MAC: "e0:ac:cb:00:00:01", CIDR: "fe80::1/64"},
		{Address: "192.168.1.10", Netmask: "255.255.255.248", Family: iface.IPv4, MAC: "e0:ac:cb:00:00:01", CIDR: "192.168.1.10/29"},
	}}
	wlan0 = iface.Interface{Name: "wlan0", Addrs: []iface.Addr{
		{Address: "10.0.0.5", Netmask: "24", Family: iface.IPv4, MAC: "00:03:93:aa:bb:cc", CIDR: "10.0.0.5/24"},
	}}
)

type harness struct {
	engine   *Engine
	lister   *switchLister
	pinger   *fakePinger
	resolver *fakeResolver
	clock    *fakeClock
}

// newHarness builds an engine on eth0's 192.168.1.8/29 network where .9,
// .10 (this machine) and .12 answer.
func newHarness(t *testing.T, mutate func(*Options)) *harness {
	t.Helper()

	h := &harness{
		lister: &switchLister{},
		pinger: &fakePinger{up: map[string]bool{
			"192.168.1.9": true, "192.168.1.10": true, "192.168.1.12": true,
		}},
		resolver: &fakeResolver{macs: map[string]string{
			"192.168.1.9":  "00:03:93:11:22:33",
			"192.168.1.10": "e0:ac:cb:00:00:01",
			"192.168.1.12": "aa:bb:cc:dd:ee:ff",
		}},
		clock: &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}
	h.lister.set(loopback, eth0)

	opts := DefaultOptions()
	opts.ConnectionInterval = 0
	opts.Interfaces = h.lister
	opts.Pinger = h.pinger
	opts.Resolver = h.resolver
	opts.Names = fakeNames{"192.168.1.9": "macbook.lan"}
	opts.Vendors = oui.New(oui.NewMap(map[string]string{
		"00:03:93": "Apple",
		"E0:AC:CB": "Apple",
	}))
	opts.now = h.clock.now
	if mutate != nil {
		mutate(&opts)
	}

	e, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	h.engine = e
	return h
}
