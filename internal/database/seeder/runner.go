package seeder

import (
	"context"
	"fmt"
	"log"

	"bluujobs/internal/store"
)

type Runner struct {
	Seeders []Seeder
	Logger  *log.Logger
}

// Run applies every seeder in order and returns how many keys were written.
func (r Runner) Run(ctx context.Context, kv store.KV) (int, error) {
	if kv == nil {
		return 0, fmt.Errorf("nil kv")
	}
	written := 0
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		wrote, err := s.Run(ctx, kv)
		if err != nil {
			return written, fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		if wrote {
			written++
			r.logf("[Seed] seeded collection=%s", s.Name())
		}
	}
	r.logf("[Seed] done written=%d", written)
	return written, nil
}

func (r Runner) logf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	}
}
