package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cura-agent/roster-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 15)
	account := &domain.Account{ID: "acc-1", Name: "Admin", Email: "admin@cura.health"}

	token, issued, err := tm.GenerateToken(account)
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)

	session := claims.Session()
	assert.Equal(t, "acc-1", session.AccountID)
	assert.Equal(t, "admin@cura.health", session.Email)
	assert.Equal(t, issued.ID, session.TokenID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), session.ExpiresAt, 5*time.Second)
}

func TestParseTokenRejectsForeignAndExpiredTokens(t *testing.T) {
	account := &domain.Account{ID: "acc-1"}

	other := NewTokenManager("other-secret", 15)
	foreign, _, err := other.GenerateToken(account)
	require.NoError(t, err)

	tm := NewTokenManager("secret", 1)
	_, err = tm.ParseToken(foreign)
	assert.Error(t, err)

	token, _, err := tm.GenerateToken(account)
	require.NoError(t, err)
	tm.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!", 4)
	require.NoError(t, err)

	require.NoError(t, ComparePassword(hash, "s3cret!"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong"), ErrInvalidCredentials)
}

func TestMemoryRevocations(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewMemoryRevocations()
	r.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, r.Revoke(ctx, "live", now.Add(time.Minute)))
	require.NoError(t, r.Revoke(ctx, "stale", now.Add(-time.Minute)))

	revoked, err := r.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = r.IsRevoked(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = r.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.False(t, revoked)
}
