package lanwatch

import (
	"context"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/arp"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/dns"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/iface"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/network"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/oui"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/ping"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/ssdp"
)

// Engine discovers hosts on the network of this machine's active connection.
// It is safe for concurrent use.
type Engine struct {
	opts Options
	log  *zap.Logger

	// selectMu serializes selection passes, including their callbacks.
	selectMu sync.Mutex

	mu           sync.RWMutex
	device       Device
	onConnect    []func(Connection)
	onDisconnect []func()

	cache *cache
	group singleflight.Group

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New validates opts, selects the initial connection and starts the
// background connection check when opts.ConnectionInterval is positive.
func New(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
		if opts.Debug {
			if dev, err := zap.NewDevelopment(); err == nil {
				log = dev
			}
		}
	}
	if opts.now == nil {
		opts.now = time.Now
	}
	if opts.Workers == 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Interfaces == nil {
		opts.Interfaces = iface.System{}
	}
	if opts.Pinger == nil {
		opts.Pinger = &ping.Command{}
	}
	if opts.Resolver == nil {
		opts.Resolver = &arp.Command{}
	}
	if opts.Names == nil {
		if len(opts.DNSServers) > 0 {
			opts.Names = &dns.Client{Servers: opts.DNSServers, Timeout: opts.Timeout}
		} else {
			opts.Names = &dns.System{Timeout: opts.Timeout}
		}
	}
	if opts.Vendors == nil {
		l, err := oui.Default()
		if err != nil {
			log.Warn("vendor database unavailable, using embedded registry", zap.Error(err))
			l = oui.New(oui.Embedded{})
		}
		opts.Vendors = l
	}
	if opts.SSDPNames && opts.SSDP == nil {
		opts.SSDP = &ssdp.Discovery{Timeout: opts.Timeout, FetchDescriptions: true}
	}

	e := &Engine{
		opts:         opts,
		log:          log.Named("lanwatch"),
		device:       Device{OS: runtime.GOOS},
		onConnect:    append(([]func(Connection))(nil), opts.OnConnect...),
		onDisconnect: append(([]func())(nil), opts.OnDisconnect...),
		cache:        &cache{},
	}

	if _, err := e.SelectConnection(opts.Filters); err != nil {
		e.log.Warn("initial connection selection failed", zap.Error(err))
	}

	if opts.ConnectionInterval > 0 {
		e.stop = make(chan struct{})
		e.done = make(chan struct{})
		go e.watch(opts.ConnectionInterval)
	}
	return e, nil
}

// Close stops the background connection check. It does not interrupt
// discoveries in flight.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		if e.stop != nil {
			close(e.stop)
			<-e.done
		}
	})
	return nil
}

// Discover returns the hosts on the network. A valid, non-empty cache
// answers without probing, filtered to addrs when addrs is non-nil.
// Otherwise addrs (nil meaning the whole subnet) is pinged, the responsive
// addresses are resolved, and the result replaces the cache.
//
// Concurrent calls for the same addresses share one probe pass. A caller
// whose ctx ends before the pass completes gets ctx.Err(); the pass itself
// runs to completion for the remaining callers and the cache.
func (e *Engine) Discover(ctx context.Context, addrs []string) ([]Host, error) {
	if e.opts.UseCache {
		if hosts, ok := e.cache.get(e.opts.now(), e.opts.CacheTimeout); ok {
			e.log.Debug("cache hit", zap.Int("hosts", len(hosts)))
			if addrs != nil {
				hosts = filterByIP(hosts, addrs)
			}
			return hosts, nil
		}
		e.log.Debug("cache miss")
	}

	// The shared pass is detached from any one caller's cancellation.
	flightCtx := context.WithoutCancel(ctx)
	ch := e.group.DoChan(flightKey(addrs), func() (interface{}, error) {
		return e.discover(flightCtx, addrs)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			e.log.Debug("joined discovery in flight")
		}
		return copyHosts(r.Val.([]Host)), nil
	}
}

func (e *Engine) discover(ctx context.Context, addrs []string) ([]Host, error) {
	start := e.opts.now()
	pinged, err := e.Ping(ctx, addrs)
	if err != nil {
		return nil, err
	}
	resolved, err := e.ARP(ctx, pinged.Hosts)
	if err != nil {
		return nil, err
	}

	// Never cache a pass cut short.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.opts.UseCache {
		e.cache.set(resolved.Hosts, e.opts.now())
	}
	e.log.Info("discovery complete",
		zap.Int("responsive", len(pinged.Hosts)),
		zap.Int("hosts", len(resolved.Hosts)),
		zap.Duration("elapsed", e.opts.now().Sub(start)))
	return resolved.Hosts, nil
}

// InvalidateCache drops the cached discovery result.
func (e *Engine) InvalidateCache() {
	e.cache.reset()
}

// CachedHosts returns the cached hosts and when they were stored, whether
// or not they are still valid.
func (e *Engine) CachedHosts() ([]Host, time.Time) {
	return e.cache.snapshot()
}

func flightKey(addrs []string) string {
	if addrs == nil {
		return "*"
	}
	sorted := append([]string(nil), addrs...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

func filterByIP(hosts []Host, addrs []string) []Host {
	want := make(map[string]bool, len(addrs))
	for _, a := range addrs {
		want[a] = true
	}
	out := make([]Host, 0, len(addrs))
	for _, h := range hosts {
		if want[h.IP] {
			out = append(out, h)
		}
	}
	return out
}

func copyHosts(hosts []Host) []Host {
	out := make([]Host, len(hosts))
	copy(out, hosts)
	return out
}

func sortHosts(hosts []Host) {
	sort.Slice(hosts, func(i, j int) bool {
		return network.Compare(hosts[i].IP, hosts[j].IP) < 0
	})
}

func sortAddrs(addrs []string) {
	sort.Slice(addrs, func(i, j int) bool {
		return network.Compare(addrs[i], addrs[j]) < 0
	})
}
