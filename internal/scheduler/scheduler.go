// Package scheduler runs the periodic expired-job sweep.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper closes expired jobs as of now and reports how many it closed.
type Sweeper interface {
	CloseExpired(ctx context.Context, now time.Time) (int, error)
}

// Locker claims a key for a while so only one process sweeps per tick.
type Locker interface {
	SetIfNotExists(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	locker  Locker
	lockKey string
	lockTTL time.Duration
	spec    string
	logger  *log.Logger
	now     func() time.Time

	// initial tracks the sweep Start runs outside cron.
	initial sync.WaitGroup
}

// New builds a scheduler firing on spec, e.g. "@every 15m". locker may be nil.
func New(spec string, sweeper Sweeper, locker Locker, lockKey string, lockTTL time.Duration, logger *log.Logger) *Scheduler {
	if lockTTL <= 0 {
		lockTTL = time.Minute
	}
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sweeper: sweeper,
		locker:  locker,
		lockKey: lockKey,
		lockTTL: lockTTL,
		spec:    spec,
		logger:  logger,
		now:     time.Now,
	}
}

// Start registers the sweep, starts cron and runs one sweep right away.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron add %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logf("[Scheduler] started spec=%q", s.spec)
	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.RunOnce(ctx)
	}()
	return nil
}

// Stop halts cron and waits for every running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.initial.Wait()
	s.logf("[Scheduler] stopped")
}

// RunOnce performs one sweep unless another process holds the lock. It
// returns how many jobs were closed.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}
	if s.locker != nil && s.lockKey != "" {
		ok, err := s.locker.SetIfNotExists(ctx, s.lockKey, holder(), s.lockTTL)
		if err != nil {
			s.logf("[Scheduler] lock error key=%s err=%v", s.lockKey, err)
			return 0
		}
		if !ok {
			s.logf("[Scheduler] sweep skipped reason=locked")
			return 0
		}
	}

	closed, err := s.sweeper.CloseExpired(ctx, s.now())
	if err != nil {
		s.logf("[Scheduler] sweep failed err=%v", err)
		return 0
	}
	if closed > 0 {
		s.logf("[Scheduler] sweep closed=%d", closed)
	}
	return closed
}

func holder() string {
	host, _ := os.Hostname()
	return fmt.Sprintf("%s:%d", host, os.Getpid())
}

func (s *Scheduler) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
