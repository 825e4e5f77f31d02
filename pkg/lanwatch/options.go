package lanwatch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/arp"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/dns"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/iface"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/ping"
)

const (
	// DefaultTimeout bounds each probe.
	DefaultTimeout = 3 * time.Second
	// MinTimeout and MaxTimeout bound Options.Timeout.
	MinTimeout = 1 * time.Second
	MaxTimeout = 60 * time.Second
	// DefaultCacheTimeout is how long a discovery result stays valid.
	DefaultCacheTimeout = time.Hour
	// DefaultConnectionInterval is the period of the background connection check.
	DefaultConnectionInterval = 10 * time.Minute
	// DefaultWorkers is the default concurrency level.
	DefaultWorkers = 256
)

// VendorLookup maps a MAC address to its vendor. *oui.Lookup implements it.
type VendorLookup interface {
	Vendor(mac string) (string, bool)
}

// NameSource maps IP addresses to device names in one sweep.
// *ssdp.Discovery implements it.
type NameSource interface {
	Names(ctx context.Context) (map[string]string, error)
}

// Options configures an Engine. Start from DefaultOptions.
type Options struct {
	// Timeout bounds every individual probe; must be within [MinTimeout, MaxTimeout].
	Timeout time.Duration
	// IncludeEndpoints includes the network and broadcast addresses in derived ranges.
	IncludeEndpoints bool
	// UseCache enables the discovery cache, valid for CacheTimeout.
	UseCache     bool
	CacheTimeout time.Duration
	// Filters select the connection used as this machine's attachment.
	Filters InterfaceFilters
	// ConnectionInterval is the period of the background connection check; 0 disables it.
	ConnectionInterval time.Duration
	// OnConnect and OnDisconnect run, in order, on connection transitions.
	OnConnect    []func(Connection)
	OnDisconnect []func()
	// Debug logs transitions and the probe lifecycle.
	Debug bool
	// Logger receives structured engine logs. Nil means a development
	// logger when Debug is set and a no-op logger otherwise.
	Logger *zap.Logger
	// Workers caps the number of probes in flight.
	Workers int
	// ResolveNames enables reverse DNS for discovered hosts.
	ResolveNames bool
	// DNSServers, when set, are queried directly instead of the system resolver.
	DNSServers []string
	// SSDPNames names hosts from SSDP responders when reverse DNS has nothing.
	SSDPNames bool

	// Collaborators; nil selects the system implementation.
	Interfaces iface.Lister
	Pinger     ping.Pinger
	Resolver   arp.Resolver
	Names      dns.Resolver
	Vendors    VendorLookup
	SSDP       NameSource

	now func() time.Time
}

// DefaultOptions returns the default configuration: IPv4, non-loopback
// connections, a one hour cache and a ten minute connection check.
func DefaultOptions() Options {
	return Options{
		Timeout:      DefaultTimeout,
		UseCache:     true,
		CacheTimeout: DefaultCacheTimeout,
		Filters: InterfaceFilters{
			Internal: []bool{false},
			Families: []Family{IPv4},
		},
		ConnectionInterval: DefaultConnectionInterval,
		Workers:            DefaultWorkers,
		ResolveNames:       true,
	}
}

// Validate checks the option ranges New enforces.
func (o Options) Validate() error {
	if o.Timeout < MinTimeout || o.Timeout > MaxTimeout {
		return &ConfigError{Field: "timeout", Value: o.Timeout, Reason: "must be between 1s and 60s"}
	}
	if o.UseCache && o.CacheTimeout <= 0 {
		return &ConfigError{Field: "cacheTimeout", Value: o.CacheTimeout, Reason: "must be positive when caching is enabled"}
	}
	if o.ConnectionInterval < 0 {
		return &ConfigError{Field: "connectionInterval", Value: o.ConnectionInterval, Reason: "must not be negative"}
	}
	if o.Workers < 0 {
		return &ConfigError{Field: "workers", Value: o.Workers, Reason: "must not be negative"}
	}
	for _, f := range o.Filters.Families {
		if f != IPv4 && f != IPv6 {
			return &ConfigError{Field: "filters.families", Value: f, Reason: "must be IPv4 or IPv6"}
		}
	}
	return nil
}
