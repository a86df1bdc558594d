// Package workers holds background jobs started by the server.
package workers

import (
	"context"
	"time"

	"github.com/sbilibin2017/gw-user-accounts/internal/logger"
)

// ExpiredTokenDeleter removes token rows that expired before now.
type ExpiredTokenDeleter interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// TokenReaper periodically purges expired tokens from the store.
type TokenReaper struct {
	tokens   ExpiredTokenDeleter
	interval time.Duration
	now      func() time.Time
}

// NewTokenReaper creates a reaper. A non-positive interval disables it.
func NewTokenReaper(tokens ExpiredTokenDeleter, interval time.Duration) *TokenReaper {
	return &TokenReaper{
		tokens:   tokens,
		interval: interval,
		now:      time.Now,
	}
}

// Run blocks until ctx is done, reaping once per interval.
func (r *TokenReaper) Run(ctx context.Context) {
	if r.interval <= 0 {
		logger.Log.Infow("token reaper disabled")
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reap(ctx)
		}
	}
}

func (r *TokenReaper) reap(ctx context.Context) {
	n, err := r.tokens.DeleteExpired(ctx, r.now().UTC())
	if err != nil {
		if ctx.Err() == nil {
			logger.Log.Errorw("failed to delete expired tokens", "error", err)
		}
		return
	}
	if n > 0 {
		logger.Log.Infow("expired tokens deleted", "count", n)
	}
}
