package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeSweeper struct {
	sweeps atomic.Int32
}

func (f *fakeSweeper) Sweep() int {
	f.sweeps.Add(1)
	return 1
}

func (f *fakeSweeper) Len() int { return 0 }

func TestCacheJanitorSweepsUntilCancelled(t *testing.T) {
	cache := &fakeSweeper{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		NewCacheJanitor(cache, 5*time.Millisecond).Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return cache.sweeps.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}
