package authclient

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultRefreshInterval is used when StartAutoRefresh gets a non-positive interval.
const DefaultRefreshInterval = time.Minute

// AutoRefresher refreshes the session ahead of access token expiry.
type AutoRefresher struct {
	creds    *Credentials
	logger   *zap.Logger
	interval time.Duration
	margin   time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// StartAutoRefresh checks the stored access token every interval and refreshes
// it once fewer than margin remain. It runs until ctx ends or Stop is called.
// A non-positive interval falls back to DefaultRefreshInterval.
func (c *Client) StartAutoRefresh(ctx context.Context, interval, margin time.Duration) *AutoRefresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if margin < 0 {
		margin = 0
	}
	ctx, cancel := context.WithCancel(ctx)
	r := &AutoRefresher{
		creds:    c.creds,
		logger:   c.logger,
		interval: interval,
		margin:   margin,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go r.run(ctx)
	return r
}

// Stop cancels the timer and waits for it to exit. The store is not touched
// after Stop returns.
func (r *AutoRefresher) Stop() {
	r.once.Do(r.cancel)
	<-r.done
}

// Done is closed once the refresher has exited.
func (r *AutoRefresher) Done() <-chan struct{} {
	return r.done
}

func (r *AutoRefresher) run(ctx context.Context) {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			r.tick(ctx)
		}
	}
}

func (r *AutoRefresher) tick(ctx context.Context) {
	access, err := r.creds.store.Access(ctx)
	if err != nil {
		r.logger.Warn("auto refresh: read access token", zap.Error(err))
		return
	}
	if access == "" {
		return
	}
	exp, err := Expiration(access)
	if err == nil && exp.Sub(r.creds.now()) > r.margin {
		return
	}
	// wait out a started exchange so that nothing is stored once Stop returns
	if _, err := r.creds.Refresh(context.WithoutCancel(ctx)); err != nil {
		r.logger.Info("auto refresh failed", zap.Error(err))
	}
}
