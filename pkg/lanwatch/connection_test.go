package lanwatch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/iface"
)

func TestMatchConnection(t *testing.T) {
	ifs := []iface.Interface{loopback, eth0, wlan0}

	tests := []struct {
		name    string
		filters InterfaceFilters
		want    string // address, "" for no match
	}{
		{"accept all takes first", InterfaceFilters{}, "127.0.0.1"},
		{"defaults", DefaultOptions().Filters, "192.168.1.10"},
		{"ipv6", InterfaceFilters{Families: []Family{IPv6}}, "fe80::1"},
		{"by name", InterfaceFilters{Interfaces: []string{"wlan0"}}, "10.0.0.5"},
		{"name order follows platform", InterfaceFilters{Interfaces: []string{"wlan0", "eth0"}, Families: []Family{IPv4}}, "192.168.1.10"},
		{"internal only", InterfaceFilters{Internal: []bool{true}}, "127.0.0.1"},
		{"both internal flags", InterfaceFilters{Internal: []bool{true, false}, Interfaces: []string{"eth0"}}, "fe80::1"},
		{"unknown name", InterfaceFilters{Interfaces: []string{"ppp0"}}, ""},
		{"no match", InterfaceFilters{Interfaces: []string{"lo"}, Internal: []bool{false}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchConnection(ifs, tt.filters)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Address)
		})
	}
}

func TestSelectConnection_Transitions(t *testing.T) {
	var connects []Connection
	var disconnects int
	var connDuringDisconnect *Connection

	h := newHarness(t, func(o *Options) {
		o.OnConnect = []func(Connection){func(c Connection) { connects = append(connects, c) }}
	})
	e := h.engine
	e.OnDisconnect(func() {
		disconnects++
		connDuringDisconnect = e.Connection()
	})

	// New selected eth0.
	require.Len(t, connects, 1)
	assert.Equal(t, "eth0", connects[0].Name)
	assert.Equal(t, "192.168.1.10/29", connects[0].CIDR)

	// match -> different match: silent update.
	h.lister.set(wlan0)
	c, err := e.SelectConnection(e.opts.Filters)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "wlan0", e.Connection().Name)
	assert.Len(t, connects, 1)
	assert.Zero(t, disconnects)

	// match -> none: exactly one disconnect, connection cleared afterwards.
	h.lister.set(loopback)
	c, err = e.SelectConnection(e.opts.Filters)
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Equal(t, 1, disconnects)
	assert.Nil(t, e.Connection())
	require.NotNil(t, connDuringDisconnect)
	assert.Equal(t, "wlan0", connDuringDisconnect.Name)

	// none -> none: nothing fires.
	_, err = e.SelectConnection(e.opts.Filters)
	require.NoError(t, err)
	assert.Equal(t, 1, disconnects)
	assert.Len(t, connects, 1)

	// none -> match: connect fires again.
	h.lister.set(eth0)
	_, err = e.SelectConnection(e.opts.Filters)
	require.NoError(t, err)
	assert.Len(t, connects, 2)
}

func TestSelectConnection_CallbackOrder(t *testing.T) {
	var order []int
	h := newHarness(t, nil)
	h.lister.set()
	_, err := h.engine.SelectConnection(h.engine.opts.Filters)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		i := i
		h.engine.OnConnect(func(Connection) { order = append(order, i) })
	}
	h.lister.set(eth0)
	_, err = h.engine.SelectConnection(h.engine.opts.Filters)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestDevice(t *testing.T) {
	h := newHarness(t, nil)

	d := h.engine.Device()
	require.NotNil(t, d.Connection)
	assert.NotEmpty(t, d.OS)
	assert.Equal(t, "Apple", d.VendorType, "vendor comes from the interface MAC")

	d.Connection.Address = "tampered"
	assert.Equal(t, "192.168.1.10", h.engine.Connection().Address)

	h.lister.set()
	_, err := h.engine.SelectConnection(h.engine.opts.Filters)
	require.NoError(t, err)
	d = h.engine.Device()
	assert.Nil(t, d.Connection)
	assert.Empty(t, d.VendorType)
}

func TestWatch_DetectsDisconnect(t *testing.T) {
	var mu sync.Mutex
	disconnects := 0

	h := newHarness(t, func(o *Options) {
		o.ConnectionInterval = 10 * time.Millisecond
		o.OnDisconnect = []func(){func() {
			mu.Lock()
			disconnects++
			mu.Unlock()
		}}
	})
	require.NotNil(t, h.engine.Connection())

	h.lister.set(loopback)
	require.Eventually(t, func() bool {
		return h.engine.Connection() == nil
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, h.engine.Close())
	require.NoError(t, h.engine.Close(), "Close is idempotent")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, disconnects)
}
