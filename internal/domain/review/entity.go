package review

import (
	"context"
	"time"

	"bluujobs/internal/store"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID           string    `json:"id"`
	FromUserID   string    `json:"fromUserId"`
	ToUserID     string    `json:"toUserId"`
	FromUserName string    `json:"fromUserName"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	JobID        string    `json:"jobId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Aggregate is the mean rating and count of reviews addressed to one user.
type Aggregate struct {
	Rating float64
	Count  int
}

// Aggregates groups reviews by recipient. Users without reviews are absent.
func Aggregates(reviews []Review) map[string]Aggregate {
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, r := range reviews {
		sums[r.ToUserID] += r.Rating
		counts[r.ToUserID]++
	}
	out := make(map[string]Aggregate, len(counts))
	for id, n := range counts {
		out[id] = Aggregate{Rating: float64(sums[id]) / float64(n), Count: n}
	}
	return out
}

type Repository interface {
	List(ctx context.Context, tx *store.Txn) ([]Review, error)
	ListByRecipient(ctx context.Context, tx *store.Txn, userID string) ([]Review, error)
	Create(ctx context.Context, tx *store.Txn, r Review) error
	DeleteWhere(ctx context.Context, tx *store.Txn, match func(Review) bool) (int, error)
}
