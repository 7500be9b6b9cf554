package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingSweeper) CloseExpired(context.Context, time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return 2, c.err
}

func (c *countingSweeper) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type onceLocker struct {
	mu    sync.Mutex
	taken map[string]bool
}

func (l *onceLocker) SetIfNotExists(_ context.Context, key, _ string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.taken == nil {
		l.taken = map[string]bool{}
	}
	if l.taken[key] {
		return false, nil
	}
	l.taken[key] = true
	return true, nil
}

func TestRunOnceHonoursLock(t *testing.T) {
	sw := &countingSweeper{}
	lock := &onceLocker{}
	a := New("@every 1h", sw, lock, "sweep", time.Minute, nil)
	b := New("@every 1h", sw, lock, "sweep", time.Minute, nil)

	assert.Equal(t, 2, a.RunOnce(context.Background()))
	assert.Zero(t, b.RunOnce(context.Background()))
	assert.Equal(t, 1, sw.Calls())
}

func TestRunOnceWithoutLocker(t *testing.T) {
	sw := &countingSweeper{err: errors.New("boom")}
	s := New("@every 1h", sw, nil, "", 0, nil)
	assert.Zero(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, sw.Calls())
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	sw := &countingSweeper{}
	s := New("@every 1h", sw, nil, "", 0, nil)
	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return sw.Calls() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()
}

type blockingSweeper struct {
	started  chan struct{}
	release  chan struct{}
	finished chan struct{}
}

func (b *blockingSweeper) CloseExpired(context.Context, time.Time) (int, error) {
	close(b.started)
	<-b.release
	close(b.finished)
	return 0, nil
}

func TestStopWaitsForInitialSweep(t *testing.T) {
	sw := &blockingSweeper{started: make(chan struct{}), release: make(chan struct{}), finished: make(chan struct{})}
	s := New("@every 1h", sw, nil, "", 0, nil)
	require.NoError(t, s.Start(context.Background()))
	<-sw.started

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the first sweep was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(sw.release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the sweep finished")
	}
	select {
	case <-sw.finished:
	default:
		t.Fatal("sweep did not finish before Stop returned")
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New("every now and then", &countingSweeper{}, nil, "", 0, nil)
	assert.Error(t, s.Start(context.Background()))
}
