package lanwatch

import (
	"sync"
	"time"
)

// cache holds the last discovery result. Entries are only ever replaced
// as a whole and readers always get a copy.
type cache struct {
	mu      sync.RWMutex
	hosts   []Host
	updated time.Time
}

// get returns the entries when they are non-empty and younger than ttl.
func (c *cache) get(now time.Time, ttl time.Duration) ([]Host, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.hosts) == 0 || now.Sub(c.updated) >= ttl {
		return nil, false
	}
	return copyHosts(c.hosts), true
}

func (c *cache) set(hosts []Host, now time.Time) {
	entries := make([]Host, len(hosts))
	for i, h := range hosts {
		h.Matched = nil
		entries[i] = h
	}
	c.mu.Lock()
	c.hosts = entries
	c.updated = now
	c.mu.Unlock()
}

func (c *cache) reset() {
	c.mu.Lock()
	c.hosts = nil
	c.updated = time.Time{}
	c.mu.Unlock()
}

func (c *cache) snapshot() ([]Host, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyHosts(c.hosts), c.updated
}
