package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRebuilder struct {
	calls    atomic.Int32
	failures atomic.Int32
	gate     chan struct{}
	started  chan struct{}
}

func (f *fakeRebuilder) Rebuild(ctx context.Context) error {
	f.calls.Add(1)
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.failures.Load() > 0 {
		f.failures.Add(-1)
		return errors.New("view locked")
	}
	return nil
}

func startNotifier(t *testing.T, n *ViewRefreshNotifier) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = n.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
}

func TestNotifier_SingleRequestTriggersOneRebuild(t *testing.T) {
	rebuilder := &fakeRebuilder{}
	n := NewViewRefreshNotifier(rebuilder)
	startNotifier(t, n)

	n.RequestRefresh(context.Background())
	require.Eventually(t, func() bool { return rebuilder.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), rebuilder.calls.Load())
}

func TestNotifier_CoalescesRequestsDuringRebuild(t *testing.T) {
	rebuilder := &fakeRebuilder{gate: make(chan struct{}), started: make(chan struct{}, 1)}
	n := NewViewRefreshNotifier(rebuilder)
	startNotifier(t, n)

	n.RequestRefresh(context.Background())
	select {
	case <-rebuilder.started:
	case <-time.After(time.Second):
		t.Fatal("rebuild did not start")
	}
	for i := 0; i < 10; i++ {
		n.RequestRefresh(context.Background())
	}
	close(rebuilder.gate)

	require.Eventually(t, func() bool { return rebuilder.calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), rebuilder.calls.Load())
}

func TestNotifier_RetriesFailuresUntilSuccess(t *testing.T) {
	rebuilder := &fakeRebuilder{}
	rebuilder.failures.Store(3)
	n := NewViewRefreshNotifier(rebuilder, WithBackoff(time.Millisecond, 4*time.Millisecond))
	startNotifier(t, n)

	n.RequestRefresh(context.Background())
	require.Eventually(t, func() bool { return rebuilder.calls.Load() == 4 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(0), rebuilder.failures.Load())
}

func TestNotifier_RequestNeverBlocks(t *testing.T) {
	n := NewViewRefreshNotifier(&fakeRebuilder{})
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			n.RequestRefresh(context.Background())
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RequestRefresh blocked without a running worker")
	}
}

func TestNotifier_FlushesPendingOnShutdown(t *testing.T) {
	rebuilder := &fakeRebuilder{}
	n := NewViewRefreshNotifier(rebuilder)
	n.RequestRefresh(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, n.Run(ctx))
	assert.Equal(t, int32(1), rebuilder.calls.Load())
}
