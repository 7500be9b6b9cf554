package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	s := NewHMACService("a-secret", "r-secret", time.Minute, time.Hour)
	sub := Subject{UserID: "8", Role: "employer", SessionID: "sess-1"}

	access, err := s.GenerateAccessToken(sub)
	require.NoError(t, err)
	c, err := s.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, sub, c.Subject())

	_, err = s.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrTokenInvalid, "access tokens do not refresh")

	refresh, err := s.GenerateRefreshToken(sub)
	require.NoError(t, err)
	_, err = s.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	c, err = s.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, c.TokenType)
}

func TestExpiredAndTampered(t *testing.T) {
	s := NewHMACService("a-secret", "r-secret", time.Minute, time.Hour)
	start := time.Now()
	s.now = func() time.Time { return start }

	tok, err := s.GenerateAccessToken(Subject{UserID: "2"})
	require.NoError(t, err)

	s.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = s.ValidateAccessToken(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)

	other := NewHMACService("other", "other", time.Minute, time.Hour)
	_, err = other.ValidateAccessToken(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = s.GenerateAccessToken(Subject{})
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
