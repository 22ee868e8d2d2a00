package authclient

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

// RefreshFunc exchanges a refresh token for a new pair.
type RefreshFunc func(ctx context.Context, refreshToken string) (Pair, error)

// Credentials decides when the stored access token is still usable and runs
// the refresh exchange when it is not. Concurrent refreshes share one call.
type Credentials struct {
	store   SessionStore
	refresh RefreshFunc
	now     func() time.Time
	timeout time.Duration
	logger  *zap.Logger
	group   singleflight.Group
}

func newCredentials(store SessionStore, refresh RefreshFunc, now func() time.Time, timeout time.Duration, logger *zap.Logger) *Credentials {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Credentials{store: store, refresh: refresh, now: now, timeout: timeout, logger: logger}
}

// Store returns the backing store.
func (c *Credentials) Store() SessionStore {
	return c.store
}

// SetPair stores a freshly issued pair.
func (c *Credentials) SetPair(ctx context.Context, pair Pair) error {
	return c.store.SetPair(ctx, pair)
}

// Clear drops both tokens.
func (c *Credentials) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// IsExpired reports whether token is expired by the client clock.
func (c *Credentials) IsExpired(token string) bool {
	return IsExpired(token, c.now())
}

// ValidAccess returns the stored access token while it is unexpired and
// otherwise refreshes. It fails with ErrNoCredentials when there is no
// refresh token to fall back on.
func (c *Credentials) ValidAccess(ctx context.Context) (string, error) {
	access, err := c.store.Access(ctx)
	if err != nil {
		return "", transient(errors.Wrap(err, "read access token"))
	}
	if access != "" && !c.IsExpired(access) {
		return access, nil
	}
	return c.Refresh(ctx)
}

// Refresh runs the refresh exchange with the stored refresh token and stores
// the result. Callers share one in-flight exchange, which runs detached from
// any single caller's cancellation and is bounded by the client timeout. A
// caller whose ctx ends stops waiting; the exchange carries on for the rest.
// A rejected refresh clears the store.
func (c *Credentials) Refresh(ctx context.Context) (string, error) {
	ch := c.group.DoChan(refreshKey, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.doRefresh(shared)
	})

	select {
	case <-ctx.Done():
		return "", errors.Wrap(ctx.Err(), "refresh abandoned")
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("joined in-flight refresh")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Credentials) doRefresh(ctx context.Context) (string, error) {
	refreshToken, err := c.store.Refresh(ctx)
	if err != nil {
		return "", transient(errors.Wrap(err, "read refresh token"))
	}
	if refreshToken == "" {
		c.clearQuietly(ctx)
		return "", ErrNoCredentials
	}

	pair, err := c.refresh(ctx, refreshToken)
	if err != nil {
		if ctx.Err() != nil {
			return "", transient(errors.Wrap(ctx.Err(), "refresh timed out"))
		}
		c.logger.Info("refresh failed, clearing credentials", zap.Error(err))
		c.clearQuietly(ctx)
		return "", err
	}

	if err := c.store.SetPair(ctx, pair); err != nil {
		return "", transient(errors.Wrap(err, "store refreshed pair"))
	}
	c.logger.Debug("session refreshed")
	return pair.AccessToken, nil
}

func (c *Credentials) clearQuietly(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn("clear credentials", zap.Error(err))
	}
}
