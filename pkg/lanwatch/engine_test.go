package lanwatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/iface"
)

func TestNew_TimeoutValidation(t *testing.T) {
	for _, timeout := range []time.Duration{0, 500 * time.Millisecond, 61 * time.Second} {
		opts := DefaultOptions()
		opts.Timeout = timeout
		opts.Interfaces = iface.Static{}

		e, err := New(opts)
		require.Error(t, err, "timeout %v", timeout)
		assert.Nil(t, e)
		assert.True(t, errors.Is(err, ErrInvalidConfig))

		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "timeout", cfgErr.Field)
	}

	for _, timeout := range []time.Duration{MinTimeout, MaxTimeout} {
		opts := DefaultOptions()
		opts.Timeout = timeout
		opts.ConnectionInterval = 0
		opts.Interfaces = iface.Static{}
		e, err := New(opts)
		require.NoError(t, err, "timeout %v", timeout)
		require.NoError(t, e.Close())
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		field  string
	}{
		{"cache timeout", func(o *Options) { o.CacheTimeout = 0 }, "cacheTimeout"},
		{"interval", func(o *Options) { o.ConnectionInterval = -time.Second }, "connectionInterval"},
		{"workers", func(o *Options) { o.Workers = -1 }, "workers"},
		{"family", func(o *Options) { o.Filters.Families = []Family{"IPX"} }, "filters.families"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	opts := DefaultOptions()
	opts.UseCache = false
	opts.CacheTimeout = 0
	assert.NoError(t, opts.Validate())
}

func TestPing_FullRange(t *testing.T) {
	h := newHarness(t, nil)

	res, err := h.engine.Ping(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"192.168.1.9", "192.168.1.10", "192.168.1.12"}, res.Hosts)
	assert.Equal(t, []string{"192.168.1.11", "192.168.1.13", "192.168.1.14"}, res.Missing)
	assert.Equal(t, 6, h.pinger.Calls())
}

func TestPing_IncludeEndpoints(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.IncludeEndpoints = true })

	res, err := h.engine.Ping(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 8, h.pinger.Calls())
	assert.Contains(t, res.Missing, "192.168.1.8")
	assert.Contains(t, res.Missing, "192.168.1.15")
}

func TestProbe_EmptyRange(t *testing.T) {
	h := newHarness(t, nil)

	pinged, err := h.engine.Ping(context.Background(), []string{})
	require.NoError(t, err)
	assert.Empty(t, pinged.Hosts)
	assert.Empty(t, pinged.Missing)

	resolved, err := h.engine.ARP(context.Background(), []string{})
	require.NoError(t, err)
	assert.NotNil(t, resolved.Hosts)
	assert.Empty(t, resolved.Hosts)
	assert.Empty(t, resolved.Missing)

	assert.Zero(t, h.pinger.Calls())
	assert.Zero(t, h.resolver.calls)
}

func TestProbe_NoConnection(t *testing.T) {
	h := newHarness(t, nil)
	h.lister.set(loopback)
	_, err := h.engine.SelectConnection(h.engine.opts.Filters)
	require.NoError(t, err)

	_, err = h.engine.Ping(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoConnection)
	_, err = h.engine.ARP(context.Background(), []string{"192.168.1.9"})
	assert.ErrorIs(t, err, ErrNoConnection)
	_, err = h.engine.Discover(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoConnection)
	assert.Zero(t, h.pinger.Calls())
}

func TestProbe_DegenerateSubnet(t *testing.T) {
	h := newHarness(t, nil)
	h.lister.set(iface.Interface{Name: "tun0", Addrs: []iface.Addr{{
		Address: "10.8.0.2", Netmask: "255.255.255.255", Family: iface.IPv4, MAC: "00:00:00:00:00:00", CIDR: "10.8.0.2/32",
	}}})
	_, err := h.engine.SelectConnection(h.engine.opts.Filters)
	require.NoError(t, err)

	_, err = h.engine.Ping(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoConnection)
	assert.Contains(t, err.Error(), "10.8.0.2/32")
}

func TestARP_BuildsHosts(t *testing.T) {
	h := newHarness(t, nil)

	res, err := h.engine.ARP(context.Background(), []string{"192.168.1.12", "192.168.1.9", "192.168.1.10", "192.168.1.11", "192.168.1.9"})
	require.NoError(t, err)
	require.Len(t, res.Hosts, 3)
	assert.Equal(t, []string{"192.168.1.11"}, res.Missing)
	assert.Equal(t, 4, h.resolver.calls, "duplicates are probed once")

	byIP := map[string]Host{}
	for _, host := range res.Hosts {
		byIP[host.IP] = host
	}
	assert.Equal(t, "192.168.1.9", res.Hosts[0].IP, "hosts are sorted numerically")

	mac := byIP["192.168.1.9"]
	assert.Equal(t, "macbook.lan", mac.Name)
	assert.Equal(t, "Apple", mac.VendorType)
	assert.False(t, mac.IsSelf)

	self := byIP["192.168.1.10"]
	assert.True(t, self.IsSelf)
	assert.Empty(t, self.Name, "DNS failure leaves the name empty")

	unknown := byIP["192.168.1.12"]
	assert.Empty(t, unknown.VendorType)
}

func TestARP_NamesDisabled(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.ResolveNames = false })

	res, err := h.engine.ARP(context.Background(), []string{"192.168.1.9"})
	require.NoError(t, err)
	require.Len(t, res.Hosts, 1)
	assert.Empty(t, res.Hosts[0].Name)
}

func TestARP_SSDPNames(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		o.SSDPNames = true
		o.SSDP = fakeSSDP{"192.168.1.12": "Living Room TV", "192.168.1.9": "ignored"}
	})

	res, err := h.engine.ARP(context.Background(), []string{"192.168.1.9", "192.168.1.12"})
	require.NoError(t, err)
	require.Len(t, res.Hosts, 2)
	assert.Equal(t, "macbook.lan", res.Hosts[0].Name, "reverse DNS wins")
	assert.Equal(t, "Living Room TV", res.Hosts[1].Name)
}

func TestDiscover_CacheIdempotent(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	first, err := h.engine.Discover(ctx, nil)
	require.NoError(t, err)
	require.Len(t, first, 3)
	calls := h.pinger.Calls()

	h.clock.advance(59 * time.Minute)
	second, err := h.engine.Discover(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, calls, h.pinger.Calls(), "a valid cache must not probe")
	require.Len(t, second, len(first))
	for i := range first {
		assert.True(t, first[i].Same(second[i]))
	}
}

func TestDiscover_CacheExpiry(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.engine.Discover(ctx, nil)
	require.NoError(t, err)
	calls := h.pinger.Calls()

	h.clock.advance(time.Hour)
	_, err = h.engine.Discover(ctx, nil)
	require.NoError(t, err)
	assert.Greater(t, h.pinger.Calls(), calls)
}

func TestDiscover_WarmCachePartialRange(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.engine.Discover(ctx, nil)
	require.NoError(t, err)
	pings, arps := h.pinger.Calls(), h.resolver.calls

	hosts, err := h.engine.Discover(ctx, []string{"192.168.1.12"})
	require.NoError(t, err)
	require.Len(t, hosts, 1)
	assert.Equal(t, "192.168.1.12", hosts[0].IP)
	assert.Equal(t, pings, h.pinger.Calls())
	assert.Equal(t, arps, h.resolver.calls)
}

func TestDiscover_ReplacesCacheWholesale(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.engine.Discover(ctx, nil)
	require.NoError(t, err)

	h.pinger.mu.Lock()
	delete(h.pinger.up, "192.168.1.12")
	h.pinger.mu.Unlock()
	h.clock.advance(2 * time.Hour)

	hosts, err := h.engine.Discover(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, hosts, 2)

	cached, updated := h.engine.CachedHosts()
	assert.Len(t, cached, 2)
	assert.Equal(t, h.clock.now(), updated)
}

func TestDiscover_CacheDisabled(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.UseCache = false })
	ctx := context.Background()

	_, err := h.engine.Discover(ctx, nil)
	require.NoError(t, err)
	_, err = h.engine.Discover(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, 12, h.pinger.Calls())
	cached, _ := h.engine.CachedHosts()
	assert.Empty(t, cached)
}

func TestInvalidateCache(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.engine.Discover(ctx, nil)
	require.NoError(t, err)
	calls := h.pinger.Calls()

	h.engine.InvalidateCache()
	_, err = h.engine.Discover(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2*calls, h.pinger.Calls())
}

func TestDiscover_ResultsAreCopies(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	hosts, err := h.engine.Discover(ctx, nil)
	require.NoError(t, err)
	hosts[0].Name = "tampered"

	again, err := h.engine.Discover(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "macbook.lan", again[0].Name)
}

func TestFlightKey(t *testing.T) {
	assert.Equal(t, "*", flightKey(nil))
	assert.Equal(t, "", flightKey([]string{}))
	assert.Equal(t, flightKey([]string{"b", "a"}), flightKey([]string{"a", "b"}))
}
