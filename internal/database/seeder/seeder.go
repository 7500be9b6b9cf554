package seeder

import (
	"context"
	"fmt"

	"bluujobs/internal/store"
)

type Seeder interface {
	Name() string
	// Run seeds its key when absent and reports whether it wrote anything.
	Run(ctx context.Context, kv store.KV) (bool, error)
}

// CollectionSeeder writes one collection's demo records when its key is
// absent. An existing key, even holding an empty array, is left alone.
type CollectionSeeder struct {
	Collection string
	Key        string
	Records    []byte
	// Build, when set, produces the records instead of Records.
	Build func() ([]byte, error)
}

func (s CollectionSeeder) Name() string { return s.Collection }

func (s CollectionSeeder) Run(ctx context.Context, kv store.KV) (bool, error) {
	cur, err := kv.Get(ctx, s.Key)
	if err != nil {
		return false, err
	}
	if cur.Exists {
		return false, nil
	}
	records := s.Records
	if s.Build != nil {
		if records, err = s.Build(); err != nil {
			return false, fmt.Errorf("build %s: %w", s.Key, err)
		}
	}
	wrote, err := store.SetIfAbsent(ctx, kv, s.Key, records)
	if err != nil {
		return false, fmt.Errorf("write %s: %w", s.Key, err)
	}
	return wrote, nil
}
