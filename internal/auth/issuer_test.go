package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/storefront/internal/domain"
)

func TestIssuer_IssuePair(t *testing.T) {
	clock := newTestClock()
	tm := NewTokenManager(testSecret, WithClock(clock.Now))
	issuer := NewIssuer(tm)

	pair, err := issuer.IssuePair("user-1")
	require.NoError(t, err)
	assert.Equal(t, "1d", pair.ExpiresIn)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access := tm.Verify(pair.AccessToken)
	require.True(t, access.Valid)
	assert.Equal(t, domain.TokenKindAccess, access.Payload.Kind)
	assert.Equal(t, epoch.Add(24*time.Hour), access.Payload.ExpiresAt.UTC())

	refresh := tm.Verify(pair.RefreshToken)
	require.True(t, refresh.Valid)
	assert.Equal(t, domain.TokenKindRefresh, refresh.Payload.Kind)
	assert.Equal(t, epoch.Add(7*24*time.Hour), refresh.Payload.ExpiresAt.UTC())
}

func TestIssuer_AccessExpiresBeforeRefresh(t *testing.T) {
	clock := newTestClock()
	tm := NewTokenManager(testSecret, WithClock(clock.Now))

	pair, err := NewIssuer(tm).IssuePair("user-1")
	require.NoError(t, err)

	clock.Set(epoch.Add(25 * time.Hour))
	assert.False(t, tm.Verify(pair.AccessToken).Valid)
	assert.True(t, tm.Verify(pair.RefreshToken).Valid)

	clock.Set(epoch.Add(7 * 24 * time.Hour))
	assert.False(t, tm.Verify(pair.RefreshToken).Valid)
}

func TestIssuer_EmptySubject(t *testing.T) {
	_, err := NewIssuer(NewTokenManager(testSecret)).IssuePair("")
	assert.Error(t, err)
}
