package review_test

import (
	"testing"

	"bluujobs/internal/domain/review"

	"github.com/stretchr/testify/assert"
)

func TestAggregates(t *testing.T) {
	got := review.Aggregates([]review.Review{
		{ToUserID: "u", Rating: 5},
		{ToUserID: "u", Rating: 4},
		{ToUserID: "v", Rating: 2},
		{ToUserID: "u", Rating: 3},
	})

	assert.InDelta(t, 4.0, got["u"].Rating, 1e-9)
	assert.Equal(t, 3, got["u"].Count)
	assert.InDelta(t, 2.0, got["v"].Rating, 1e-9)
	_, ok := got["w"]
	assert.False(t, ok)
}
