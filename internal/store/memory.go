package store

import (
	"context"
	"sync"
)

// MemoryKV keeps entries in process memory.
type MemoryKV struct {
	mu      sync.Mutex
	entries map[string]Entry
	closed  bool
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{entries: make(map[string]Entry)}
}

func (m *MemoryKV) Get(ctx context.Context, key string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Entry{}, ErrClosed
	}
	e, ok := m.entries[key]
	if !ok {
		return Entry{}, nil
	}
	return Entry{Value: append([]byte(nil), e.Value...), Version: e.Version, Exists: true}, nil
}

func (m *MemoryKV) Commit(ctx context.Context, writes []Write) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	for _, w := range writes {
		if !versionMatches(w, m.entries[w.Key].Version) {
			return ErrConflict
		}
	}

	for _, w := range writes {
		switch w.Kind {
		case WritePut:
			cur := m.entries[w.Key].Version
			m.entries[w.Key] = Entry{
				Value:   append([]byte(nil), w.Value...),
				Version: nextVersion(cur),
				Exists:  true,
			}
		case WriteDelete:
			delete(m.entries, w.Key)
		}
	}
	return nil
}

func (m *MemoryKV) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
