// Package testkit builds in-memory stores preloaded with the demo dataset
// for usecase and handler tests.
package testkit

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bluujobs/internal/database/seeder"
	"bluujobs/internal/repository"
	"bluujobs/internal/session"
	"bluujobs/internal/store"
	"bluujobs/internal/usecase/integrity"
)

// Now is the seed time used by every Env. Seeded jobs expire days after it.
var Now = time.Now().UTC().Truncate(time.Second)

type Env struct {
	KV       *store.MemoryKV
	Store    *store.Store
	Keys     store.Keys
	Repos    repository.Set
	Sessions *session.Holder
}

// New returns an empty environment over a memory backend. The store retries
// conflicts generously so concurrency tests do not exhaust their attempts.
func New(t testing.TB, opts ...store.Option) *Env {
	t.Helper()
	kv := store.NewMemoryKV()
	keys := store.NewKeys("")
	st := store.New(kv, append([]store.Option{store.WithMaxAttempts(100)}, opts...)...)
	t.Cleanup(func() { _ = st.Close() })
	return &Env{
		KV:       kv,
		Store:    st,
		Keys:     keys,
		Repos:    repository.NewSet(keys),
		Sessions: session.NewHolder(keys),
	}
}

// Seeded returns an environment holding the demo dataset seeded at Now.
func Seeded(t testing.TB, opts ...store.Option) *Env {
	t.Helper()
	env := New(t, opts...)
	seeders, err := seeder.Defaults(env.Keys, Now, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	if _, err := (seeder.Runner{Seeders: seeders}).Run(context.Background(), env.KV); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return env
}

func (e *Env) Integrity() integrity.Repos {
	return integrity.Repos{
		Users:        e.Repos.Users,
		Jobs:         e.Repos.Jobs,
		Applications: e.Repos.Applications,
		Favorites:    e.Repos.Favorites,
		Reviews:      e.Repos.Reviews,
	}
}
