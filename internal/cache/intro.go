package cache

import (
	"sync"

	"github.com/godlykids/radio-engine/internal/domain"
)

// IntroCache memoizes the station intro asset, one slot per station. The
// generator runs outside the lock, so two concurrent regenerations may both
// run and the last write wins; that duplicates a storage write but is
// harmless.
type IntroCache struct {
	mu    sync.Mutex
	slots map[string]*domain.CachedIntro
}

// NewIntroCache creates an empty cache.
func NewIntroCache() *IntroCache {
	return &IntroCache{slots: make(map[string]*domain.CachedIntro)}
}

// GetOrGenerate returns the cached intro for the station, invoking generate
// only when the slot is empty or force is set. A successful generation fully
// replaces the slot.
func (c *IntroCache) GetOrGenerate(stationID string, force bool, generate func() (*domain.CachedIntro, error)) (*domain.CachedIntro, error) {
	if !force {
		c.mu.Lock()
		cached := c.slots[stationID]
		c.mu.Unlock()
		if cached != nil {
			return cached, nil
		}
	}

	intro, err := generate()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.slots[stationID] = intro
	c.mu.Unlock()

	return intro, nil
}

// Invalidate clears the station's slot. Called whenever the station's custom
// intro script changes so the next request regenerates.
func (c *IntroCache) Invalidate(stationID string) {
	c.mu.Lock()
	delete(c.slots, stationID)
	c.mu.Unlock()
}
