package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingCleaner struct {
	calls int32
	err   error
}

func (c *countingCleaner) CleanExpired(context.Context) (int64, error) {
	atomic.AddInt32(&c.calls, 1)
	return 3, c.err
}

func TestCleanIdempotencyKeys_RunsUntilCancelled(t *testing.T) {
	cleaner := &countingCleaner{err: errors.New("db down")}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		cleanIdempotencyKeys(ctx, cleaner, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&cleaner.calls) >= 2 }, time.Second, 5*time.Millisecond,
		"keeps running after a failed cleanup")
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop")
	}
}

func TestCleanIdempotencyKeys_DisabledInterval(t *testing.T) {
	cleaner := &countingCleaner{}
	cleanIdempotencyKeys(context.Background(), cleaner, 0)
	assert.Zero(t, atomic.LoadInt32(&cleaner.calls))
}
