package store

import (
	"context"
	"errors"
)

var (
	ErrConflict = errors.New("store: version conflict")
	ErrCorrupt  = errors.New("store: corrupt value")
	ErrClosed   = errors.New("store: closed")
)

// AnyVersion skips the version guard on a put or delete.
const AnyVersion int64 = -1

type WriteKind int

const (
	WritePut WriteKind = iota
	WriteDelete
	// WriteCheck asserts the version of a key that was read but not written.
	WriteCheck
)

func (k WriteKind) String() string {
	switch k {
	case WritePut:
		return "put"
	case WriteDelete:
		return "delete"
	case WriteCheck:
		return "check"
	default:
		return "unknown"
	}
}

// Entry is a stored value with its version. Version is 0 when the key is absent.
type Entry struct {
	Value   []byte
	Version int64
	Exists  bool
}

type Write struct {
	Key      string
	Kind     WriteKind
	Value    []byte
	Expected int64
}

// KV is a versioned key-value backend. Commit applies every write or none of
// them and returns ErrConflict when any expected version does not match.
type KV interface {
	Get(ctx context.Context, key string) (Entry, error)
	Commit(ctx context.Context, writes []Write) error
	Close() error
}

// nextVersion returns the version a put produces given the current one.
func nextVersion(current int64) int64 {
	if current < 0 {
		return 1
	}
	return current + 1
}

// versionMatches reports whether a write may proceed against the current
// version of its key.
func versionMatches(w Write, current int64) bool {
	if w.Expected == AnyVersion && w.Kind != WriteCheck {
		return true
	}
	return w.Expected == current
}

func uniqueKeys(writes []Write) []string {
	seen := make(map[string]struct{}, len(writes))
	out := make([]string, 0, len(writes))
	for _, w := range writes {
		if _, ok := seen[w.Key]; ok {
			continue
		}
		seen[w.Key] = struct{}{}
		out = append(out, w.Key)
	}
	return out
}

// SetIfAbsent writes value under key only when the key does not exist yet.
func SetIfAbsent(ctx context.Context, kv KV, key string, value []byte) (bool, error) {
	err := kv.Commit(ctx, []Write{{Key: key, Kind: WritePut, Value: value, Expected: 0}})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
