package job

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"bluujobs/internal/search"
)

// SearchCache holds search results. Implementations treat an unavailable
// backend as a miss.
type SearchCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type searchCacheKeyInput struct {
	Content string         `json:"c"`
	Options search.Options `json:"o"`
}

// SearchCacheKey derives the cache key for opts against the stored bytes of
// the jobs collection. Keys follow the content rather than its version, which
// restarts when the key is deleted and written again.
func SearchCacheKey(prefix string, content []byte, opts search.Options) string {
	opts = opts.Normalize()
	opts.Query = search.NormalizeQuery(opts.Query)
	digest := sha256.Sum256(content)
	b, _ := json.Marshal(searchCacheKeyInput{Content: hex.EncodeToString(digest[:]), Options: opts})
	sum := sha256.Sum256(b)
	return fmt.Sprintf("%sjobs:search:%s", prefix, hex.EncodeToString(sum[:]))
}
