// Package cache holds rendered images keyed by their canonical request.
package cache

import (
	"sync"
	"time"

	"github.com/ds124wfegd/dynimage/internal/entity"
	"golang.org/x/sync/singleflight"
)

type ComputeFunc func() (*entity.RenderResult, error)

// ResultCache is a process-local TTL cache. Entries are immutable once
// stored; concurrent misses for one key share a single computation.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]*entity.CacheEntry
	group   singleflight.Group
	now     func() time.Time
}

type Option func(*ResultCache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *ResultCache) { c.now = now }
}

func NewResultCache(opts ...Option) *ResultCache {
	c := &ResultCache{
		entries: make(map[string]*entity.CacheEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type outcome struct {
	entry *entity.CacheEntry
	hit   bool
}

// GetOrCompute returns the live entry for key, or runs compute and stores
// its result for ttl. With ttl <= 0 nothing is read or stored. The boolean
// reports whether a stored entry was reused.
func (c *ResultCache) GetOrCompute(key string, ttl time.Duration, compute ComputeFunc) (*entity.CacheEntry, bool, error) {
	if ttl <= 0 {
		res, err := compute()
		if err != nil {
			return nil, false, err
		}
		return &entity.CacheEntry{RenderResult: *res}, false, nil
	}

	if e := c.lookup(key); e != nil {
		return e, true, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// another caller may have stored it while we waited for the group
		if e := c.lookup(key); e != nil {
			return outcome{entry: e, hit: true}, nil
		}
		res, err := compute()
		if err != nil {
			return nil, err
		}
		e := &entity.CacheEntry{RenderResult: *res, ExpiresAt: c.now().Add(ttl)}

		c.mu.Lock()
		c.entries[key] = e
		c.mu.Unlock()
		return outcome{entry: e}, nil
	})
	if err != nil {
		return nil, false, err
	}
	o := v.(outcome)
	return o.entry, o.hit, nil
}

func (c *ResultCache) lookup(key string) *entity.CacheEntry {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	if c.now().Before(e.ExpiresAt) {
		return e
	}

	c.mu.Lock()
	if c.entries[key] == e {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil
}

// Sweep drops every expired entry and returns how many were removed.
func (c *ResultCache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.ExpiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
