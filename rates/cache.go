// Package rates manages the process-wide rate configuration snapshot
// consumed by the pricing engine. The snapshot is read-only and refreshed
// only by explicit action (an admin settings save, or the dev seed-file
// watcher) -- never implicitly, so the engine always reads the latest
// published snapshot rather than a stale closure.
package rates

import (
	"sync/atomic"

	"github.com/madan-prog/palletforge/pricing"
)

// Cache holds the current rate configuration behind an atomic pointer.
// Reads never block writes and vice versa.
type Cache struct {
	current atomic.Pointer[pricing.RateConfiguration]
}

// NewCache creates a cache seeded with the given configuration.
func NewCache(initial pricing.RateConfiguration) (*Cache, error) {
	c := &Cache{}
	if err := c.Refresh(initial); err != nil {
		return nil, err
	}
	return c, nil
}

// Current returns the latest published snapshot. The returned value shares
// its maps with the snapshot; callers must treat it as read-only.
func (c *Cache) Current() pricing.RateConfiguration {
	return *c.current.Load()
}

// Refresh validates and atomically publishes a new snapshot. On validation
// failure the previous snapshot stays in place.
func (c *Cache) Refresh(rates pricing.RateConfiguration) error {
	if err := pricing.ValidateRates(rates); err != nil {
		return err
	}
	c.current.Store(&rates)
	return nil
}
