// Package listcache holds a single marshaled listing payload for a
// short time so that repeated list requests do not rescan the table.
// Staleness up to the TTL is acceptable; entries expire on their own
// and there is no explicit invalidation.
package listcache

import (
	"sync"
	"time"

	"github.com/juju/clock"
)

// DefaultTTL is how long a cached payload stays valid.
const DefaultTTL = 30 * time.Second

// Cache is a best-effort, TTL-bounded cache for one payload.
// It is safe for concurrent use. A nil *Cache is a valid no-op.
type Cache struct {
	clock clock.Clock
	ttl   time.Duration

	mu      sync.Mutex
	payload string
	setAt   time.Time
	valid   bool
}

// New creates a cache on the given clock. A non-positive
// ttl falls back to DefaultTTL.
func New(clk clock.Clock, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{clock: clk, ttl: ttl}
}

// Get returns the cached payload if it has not expired.
func (c *Cache) Get() (string, bool) {
	if c == nil {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.valid {
		return "", false
	}
	if c.clock.Now().Sub(c.setAt) >= c.ttl {
		c.valid = false
		c.payload = ""
		return "", false
	}

	return c.payload, true
}

// Put replaces the cached payload and restarts the TTL.
func (c *Cache) Put(payload string) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.payload = payload
	c.setAt = c.clock.Now()
	c.valid = true
}
