package reconcile

import (
	"context"
	"sync"
	"time"

	"heritage/core/dataset"

	"golang.org/x/sync/singleflight"
)

// IntervalCache holds the reign reference list between passes.
// A zero TTL disables caching. Concurrent loads are collapsed into one.
type IntervalCache struct {
	load func(ctx context.Context) ([]dataset.Interval, error)
	ttl  time.Duration
	now  func() time.Time

	mu        sync.RWMutex
	intervals []dataset.Interval
	built     time.Time
	sf        singleflight.Group
}

// NewIntervalCache creates a cache over load.
func NewIntervalCache(load func(ctx context.Context) ([]dataset.Interval, error), ttl time.Duration) *IntervalCache {
	return &IntervalCache{load: load, ttl: ttl, now: time.Now}
}

// Get returns the cached list, reloading it when expired.
func (c *IntervalCache) Get(ctx context.Context) ([]dataset.Interval, error) {
	c.mu.RLock()
	if c.fresh() {
		out := c.intervals
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.sf.Do("intervals", func() (interface{}, error) {
		c.mu.RLock()
		if c.fresh() {
			out := c.intervals
			c.mu.RUnlock()
			return out, nil
		}
		c.mu.RUnlock()

		loaded, err := c.load(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.intervals = loaded
		c.built = c.now()
		c.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dataset.Interval), nil
}

// Invalidate drops the cached list so the next Get reloads it.
func (c *IntervalCache) Invalidate() {
	c.mu.Lock()
	c.intervals = nil
	c.built = time.Time{}
	c.mu.Unlock()
}

// fresh must be called with mu held.
func (c *IntervalCache) fresh() bool {
	if c.ttl <= 0 || c.built.IsZero() {
		return false
	}
	return c.now().Sub(c.built) <= c.ttl
}
