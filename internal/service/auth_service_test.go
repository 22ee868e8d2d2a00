package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/storefront/internal/auth"
	"github.com/spec-kit/storefront/internal/config"
	"github.com/spec-kit/storefront/internal/domain"
	"github.com/spec-kit/storefront/internal/events"
	"github.com/spec-kit/storefront/internal/observability"
	"github.com/spec-kit/storefront/internal/repository"
)

const (
	testSecret   = "test_secret_key_very_long_for_testing"
	testAdminID  = "store-admin"
	testPassword = "correct-horse"
)

var epoch = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc     *AuthService
	users   *repository.MemoryUserRepository
	tokens  *auth.TokenManager
	metrics *observability.Metrics
	mu      sync.Mutex
	now     time.Time
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:   repository.NewMemoryUserRepository(),
		metrics: observability.NewMetrics(),
		now:     epoch,
	}
	f.tokens = auth.NewTokenManager(testSecret, auth.WithClock(f.clock))

	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:     testSecret,
		BcryptCost:    bcrypt.MinCost,
		AdminID:       testAdminID,
		AdminEmail:    "admin@shop.test",
		AdminPassword: "admin-pass",
	}}
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.NewNop(), f.metrics).RegisterHandlers()

	f.svc = NewAuthService(cfg, AuthDependencies{
		UserRepo:   f.users,
		Tokens:     f.tokens,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})
	return f
}

func (f *fixture) register(t *testing.T) *Session {
	t.Helper()
	session, err := f.svc.RegisterUser(context.Background(), "Ada", "ada@example.com", testPassword)
	require.NoError(t, err)
	return session
}

func TestAuthService_RegisterUser(t *testing.T) {
	f := newFixture(t)

	session := f.register(t)
	assert.NotEmpty(t, session.User.ID)
	assert.NotEqual(t, testPassword, session.User.PasswordHash)
	assert.Equal(t, "1d", session.Pair.ExpiresIn)

	access := f.tokens.Verify(session.Pair.AccessToken)
	require.True(t, access.Valid)
	assert.Equal(t, session.User.ID, access.Payload.Subject)
	assert.Equal(t, domain.TokenKindAccess, access.Payload.Kind)

	_, err := f.svc.RegisterUser(context.Background(), "Ada again", "ADA@example.com", testPassword)
	assert.ErrorIs(t, err, ErrEmailTaken)

	assert.Equal(t, int64(1), f.metrics.Snapshot().Auth[string(events.EventUserRegistered)])
}

func TestAuthService_LoginUser(t *testing.T) {
	f := newFixture(t)
	registered := f.register(t)
	ctx := context.Background()

	session, err := f.svc.LoginUser(ctx, "ada@example.com", testPassword)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, session.User.ID)
	assert.True(t, f.svc.Verifier().ResolvePrincipal(ctx, session.Pair.AccessToken).Valid)

	_, err = f.svc.LoginUser(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.LoginUser(ctx, "nobody@example.com", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Equal(t, int64(2), f.metrics.Snapshot().Auth[string(events.EventLoginFailed)])
}

func TestAuthService_LoginAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.LoginAdmin(ctx, "admin@shop.test", "admin-pass")
	require.NoError(t, err)
	res := f.svc.Verifier().ResolvePrincipal(ctx, session.Pair.AccessToken)
	require.True(t, res.Valid)
	assert.True(t, res.Principal.IsAdmin())

	for _, tc := range []struct{ email, password string }{
		{"admin@shop.test", "nope"},
		{"other@shop.test", "admin-pass"},
		{"", ""},
	} {
		_, err := f.svc.LoginAdmin(ctx, tc.email, tc.password)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
}

func TestAuthService_LoginAdmin_NotConfigured(t *testing.T) {
	svc := NewAuthService(config.Config{Auth: config.AuthConfig{JWTSecret: testSecret, AdminID: testAdminID}}, AuthDependencies{
		UserRepo: repository.NewMemoryUserRepository(),
	})

	_, err := svc.LoginAdmin(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Refresh_Success(t *testing.T) {
	f := newFixture(t)
	original := f.register(t)
	ctx := context.Background()

	f.advance(time.Hour)
	refreshed, err := f.svc.Refresh(ctx, original.Pair.RefreshToken)
	require.NoError(t, err)

	assert.NotEqual(t, original.Pair.AccessToken, refreshed.Pair.AccessToken)
	assert.NotEqual(t, original.Pair.RefreshToken, refreshed.Pair.RefreshToken)
	assert.Equal(t, "1d", refreshed.Pair.ExpiresIn)
	assert.Equal(t, original.User.ID, refreshed.User.ID)

	access := f.tokens.Verify(refreshed.Pair.AccessToken)
	require.True(t, access.Valid)
	assert.Equal(t, epoch.Add(time.Hour+auth.AccessTokenLifetime), access.Payload.ExpiresAt.UTC())

	assert.Equal(t, int64(1), f.metrics.Snapshot().Auth[string(events.EventSessionRefreshed)])
}

func TestAuthService_Refresh_PreviousTokensStayValid(t *testing.T) {
	f := newFixture(t)
	original := f.register(t)
	ctx := context.Background()

	f.advance(time.Minute)
	_, err := f.svc.Refresh(ctx, original.Pair.RefreshToken)
	require.NoError(t, err)

	// No server-side revocation: the old access token lives to its natural expiry
	assert.True(t, f.svc.Verifier().ResolvePrincipal(ctx, original.Pair.AccessToken).Valid)

	// and the rotated-out refresh token keeps working as well.
	f.advance(time.Minute)
	_, err = f.svc.Refresh(ctx, original.Pair.RefreshToken)
	assert.NoError(t, err)

	f.advance(auth.AccessTokenLifetime)
	assert.False(t, f.svc.Verifier().ResolvePrincipal(ctx, original.Pair.AccessToken).Valid)
}

func TestAuthService_Refresh_Rejections(t *testing.T) {
	f := newFixture(t)
	session := f.register(t)
	ctx := context.Background()

	forged, err := auth.NewTokenManager("not-the-secret", auth.WithClock(f.clock)).
		Issue(session.User.ID, domain.TokenKindRefresh, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"missing", "", auth.ErrMissingToken},
		{"malformed", "not.a.token", auth.ErrInvalidToken},
		{"re-signed", forged, auth.ErrInvalidToken},
		{"access token", session.Pair.AccessToken, auth.ErrWrongTokenKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.Refresh(ctx, tt.token)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, got, "a rejected refresh never yields credentials")
		})
	}

	assert.Equal(t, int64(len(tests)), f.metrics.Snapshot().Auth[string(events.EventRefreshRejected)])
}

func TestAuthService_Refresh_Expired(t *testing.T) {
	f := newFixture(t)
	session := f.register(t)

	f.advance(auth.RefreshTokenLifetime)
	got, err := f.svc.Refresh(context.Background(), session.Pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	assert.Nil(t, got)
}

func TestAuthService_Refresh_DeletedUser(t *testing.T) {
	f := newFixture(t)
	session := f.register(t)
	ctx := context.Background()

	require.NoError(t, f.users.Delete(ctx, session.User.ID))

	got, err := f.svc.Refresh(ctx, session.Pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrPrincipalNotFound)
	assert.Nil(t, got)
}

func TestAuthService_Refresh_Admin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.LoginAdmin(ctx, "admin@shop.test", "admin-pass")
	require.NoError(t, err)

	f.advance(time.Second)
	refreshed, err := f.svc.Refresh(ctx, session.Pair.RefreshToken)
	require.NoError(t, err)
	assert.Nil(t, refreshed.User)

	res := f.svc.Verifier().ResolvePrincipal(ctx, refreshed.Pair.AccessToken)
	require.True(t, res.Valid)
	assert.True(t, res.Principal.IsAdmin())
}
