// Package session persists the signed-in identity. The unscoped session is
// the single current-user record; scoped sessions back API logins.
package session

import (
	"context"
	"fmt"
	"time"

	"bluujobs/internal/domain/user"
	"bluujobs/internal/store"
)

// Record is one entry of the session index. A nil ExpiresAt never expires.
type Record struct {
	Scope     string     `json:"scope"`
	UserID    string     `json:"userId"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func (r Record) expired(now time.Time) bool {
	return r.ExpiresAt != nil && !now.Before(*r.ExpiresAt)
}

type Holder struct {
	keys store.Keys
	ttl  time.Duration
	now  func() time.Time
}

type Option func(*Holder)

// WithTTL bounds the lifetime of scoped sessions. The unscoped session and a
// zero ttl never expire.
func WithTTL(ttl time.Duration) Option {
	return func(h *Holder) {
		if ttl > 0 {
			h.ttl = ttl
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(h *Holder) { h.now = now }
}

func NewHolder(keys store.Keys, opts ...Option) *Holder {
	h := &Holder{keys: keys, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Set stores a sanitized copy of u as the session for scope. Setting an
// existing scope again extends its lifetime. Expired sessions are removed in
// the same transaction.
func (h *Holder) Set(ctx context.Context, tx *store.Txn, scope string, u user.User) error {
	if err := store.PutObject(ctx, tx, h.keys.Session(scope), u.Sanitized()); err != nil {
		return fmt.Errorf("set session: %w", err)
	}

	idx, err := h.Index(ctx, tx)
	if err != nil {
		return err
	}
	now := h.now().UTC()
	idx, _, err = h.prune(ctx, tx, idx, now)
	if err != nil {
		return err
	}
	out := make([]Record, 0, len(idx)+1)
	for _, r := range idx {
		if r.Scope != scope {
			out = append(out, r)
		}
	}
	rec := Record{Scope: scope, UserID: u.ID, CreatedAt: now}
	if h.ttl > 0 && scope != "" {
		exp := now.Add(h.ttl)
		rec.ExpiresAt = &exp
	}
	out = append(out, rec)
	return store.PutObject(ctx, tx, h.keys.SessionIndex(), out)
}

// Get returns the user held by scope. ok is false when there is no session.
func (h *Holder) Get(ctx context.Context, tx *store.Txn, scope string) (user.User, bool, error) {
	u, ok, err := store.GetObject[user.User](ctx, tx, h.keys.Session(scope))
	if err != nil {
		return user.User{}, false, fmt.Errorf("get session: %w", err)
	}
	return u, ok, nil
}

// Clear removes the session for scope. Clearing an absent session is a no-op.
func (h *Holder) Clear(ctx context.Context, tx *store.Txn, scope string) error {
	key := h.keys.Session(scope)
	_, ok, err := tx.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if ok {
		if err := tx.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	return h.dropFromIndex(ctx, tx, func(r Record) bool { return r.Scope == scope })
}

// Refresh rewrites every live session holding u so it matches the stored
// user. Expired sessions are removed instead.
func (h *Holder) Refresh(ctx context.Context, tx *store.Txn, u user.User) (int, error) {
	idx, err := h.Index(ctx, tx)
	if err != nil {
		return 0, err
	}
	idx, pruned, err := h.prune(ctx, tx, idx, h.now().UTC())
	if err != nil {
		return 0, err
	}
	if pruned > 0 {
		if err := store.PutObject(ctx, tx, h.keys.SessionIndex(), idx); err != nil {
			return 0, fmt.Errorf("refresh session: %w", err)
		}
	}
	n := 0
	for _, r := range idx {
		if r.UserID != u.ID {
			continue
		}
		if err := store.PutObject(ctx, tx, h.keys.Session(r.Scope), u.Sanitized()); err != nil {
			return n, fmt.Errorf("refresh session: %w", err)
		}
		n++
	}
	return n, nil
}

// DropUser clears every session holding userID.
func (h *Holder) DropUser(ctx context.Context, tx *store.Txn, userID string) (int, error) {
	idx, err := h.Index(ctx, tx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range idx {
		if r.UserID != userID {
			continue
		}
		if err := tx.Delete(ctx, h.keys.Session(r.Scope)); err != nil {
			return n, fmt.Errorf("drop session: %w", err)
		}
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return n, h.dropFromIndex(ctx, tx, func(r Record) bool { return r.UserID == userID })
}

// Index lists the live sessions.
func (h *Holder) Index(ctx context.Context, tx *store.Txn) ([]Record, error) {
	idx, ok, err := store.GetObject[[]Record](ctx, tx, h.keys.SessionIndex())
	if err != nil {
		return nil, fmt.Errorf("session index: %w", err)
	}
	if !ok || idx == nil {
		return []Record{}, nil
	}
	return idx, nil
}

// prune deletes the session keys of expired records and returns the rest.
func (h *Holder) prune(ctx context.Context, tx *store.Txn, idx []Record, now time.Time) ([]Record, int, error) {
	live := make([]Record, 0, len(idx))
	for _, r := range idx {
		if !r.expired(now) {
			live = append(live, r)
			continue
		}
		if err := tx.Delete(ctx, h.keys.Session(r.Scope)); err != nil {
			return nil, 0, fmt.Errorf("prune session: %w", err)
		}
	}
	return live, len(idx) - len(live), nil
}

func (h *Holder) dropFromIndex(ctx context.Context, tx *store.Txn, match func(Record) bool) error {
	idx, err := h.Index(ctx, tx)
	if err != nil {
		return err
	}
	out := make([]Record, 0, len(idx))
	for _, r := range idx {
		if !match(r) {
			out = append(out, r)
		}
	}
	if len(out) == len(idx) {
		return nil
	}
	return store.PutObject(ctx, tx, h.keys.SessionIndex(), out)
}
