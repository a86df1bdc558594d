package services

import (
	"context"
	"time"

	"github.com/sbilibin2017/gw-user-accounts/internal/logger"
	"github.com/sbilibin2017/gw-user-accounts/internal/models"
)

// TokenReader looks up token rows.
type TokenReader interface {
	GetByToken(ctx context.Context, token string) (*models.Token, error)
}

// UserReader looks up users by id.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// SessionGate validates bearer tokens against the token store.
type SessionGate struct {
	tokens TokenReader
	users  UserReader
	now    func() time.Time
}

// GateOpt configures a SessionGate.
type GateOpt func(*SessionGate)

// WithGateClock overrides the time source used for expiry checks.
func WithGateClock(now func() time.Time) GateOpt {
	return func(g *SessionGate) {
		g.now = now
	}
}

func NewSessionGate(tokens TokenReader, users UserReader, opts ...GateOpt) *SessionGate {
	g := &SessionGate{
		tokens: tokens,
		users:  users,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authorize returns the owner of a live token. Missing, unknown and expired
// tokens all yield ErrInvalidToken.
func (g *SessionGate) Authorize(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	row, err := g.tokens.GetByToken(ctx, token)
	if err != nil {
		logger.Log.Errorw("failed to get token", "error", err)
		return nil, err
	}
	if row == nil {
		logger.Log.Infow("token rejected", "reason", "unknown")
		return nil, ErrInvalidToken
	}
	if models.IsExpired(row, g.now().UTC()) {
		logger.Log.Infow("token rejected", "reason", "expired", "user_id", row.UserID)
		return nil, ErrInvalidToken
	}

	user, err := g.users.GetByID(ctx, row.UserID)
	if err != nil {
		logger.Log.Errorw("failed to get token owner", "user_id", row.UserID, "error", err)
		return nil, err
	}
	if user == nil {
		logger.Log.Infow("token rejected", "reason", "owner missing", "user_id", row.UserID)
		return nil, ErrInvalidToken
	}
	return user, nil
}
