package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"
)

const defaultMaxAttempts = 5

// CommitHook runs after a successful commit with the keys it changed.
type CommitHook func(ctx context.Context, keys []string)

type Store struct {
	kv          KV
	maxAttempts int
	hooks       []CommitHook
	logger      *log.Logger
}

type Option func(*Store)

func WithMaxAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithCommitHook(h CommitHook) Option {
	return func(s *Store) {
		if h != nil {
			s.hooks = append(s.hooks, h)
		}
	}
}

func New(kv KV, opts ...Option) *Store {
	s := &Store{kv: kv, maxAttempts: defaultMaxAttempts}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) KV() KV {
	return s.kv
}

func (s *Store) OnCommit(h CommitHook) {
	if h == nil {
		return
	}
	s.hooks = append(s.hooks, h)
}

// Update runs fn in a fresh transaction and commits it. On ErrConflict the
// whole function is re-run against fresh reads, up to the attempt limit.
func (s *Store) Update(ctx context.Context, fn func(ctx context.Context, tx *Txn) error) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		tx := newTxn(s.kv)
		if err := fn(ctx, tx); err != nil {
			return err
		}

		err := tx.commit(ctx)
		if err == nil {
			if tx.Dirty() {
				s.fireHooks(ctx, tx.Changed())
			}
			return nil
		}
		if !errors.Is(err, ErrConflict) {
			return fmt.Errorf("commit: %w", err)
		}

		lastErr = err
		if s.logger != nil {
			s.logger.Printf("[Store] commit conflict attempt=%d keys=%v", attempt, tx.Changed())
		}
		backoff(ctx, attempt)
	}
	return lastErr
}

// View runs fn in a read-only transaction. Staged writes are discarded.
func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx *Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, newTxn(s.kv))
}

func (s *Store) Close() error {
	if s == nil || s.kv == nil {
		return nil
	}
	return s.kv.Close()
}

func (s *Store) fireHooks(ctx context.Context, keys []string) {
	for _, h := range s.hooks {
		h(ctx, keys)
	}
}

func backoff(ctx context.Context, attempt int) {
	d := time.Duration(attempt) * 5 * time.Millisecond
	d += rand.N(d)
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
