package worker

import (
	"context"
	"time"

	"github.com/ds124wfegd/dynimage/internal/pkg/metrics"

	"github.com/sirupsen/logrus"
)

// Sweeper is the part of the result cache the janitor needs.
type Sweeper interface {
	Sweep() int
	Len() int
}

type CacheJanitor struct {
	cache    Sweeper
	interval time.Duration
}

func NewCacheJanitor(cache Sweeper, interval time.Duration) *CacheJanitor {
	return &CacheJanitor{
		cache:    cache,
		interval: interval,
	}
}

// Start blocks until ctx is done, sweeping expired entries every interval.
func (w *CacheJanitor) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.WithField("interval", w.interval).Info("Cache janitor started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Cache janitor stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *CacheJanitor) sweep() {
	removed := w.cache.Sweep()
	left := w.cache.Len()
	metrics.SetCacheEntries(left)

	if removed == 0 {
		return
	}
	logrus.WithFields(logrus.Fields{
		"removed": removed,
		"entries": left,
	}).Info("Expired cache entries evicted")
}
