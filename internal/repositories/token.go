package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-user-accounts/internal/models"
)

// TokenRepository stores access token rows in PostgreSQL.
type TokenRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewTokenRepository(db *sqlx.DB, txGetter TxGetter) *TokenRepository {
	return &TokenRepository{db: db, txGetter: txGetter}
}

// Save inserts a token row. It does not remove older tokens of the user.
func (r *TokenRepository) Save(ctx context.Context, token string, userID int64, expiresAt time.Time) (*models.Token, error) {
	query := `
		INSERT INTO tokens (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, token, user_id, expires_at, created_at
	`

	var t models.Token
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &t, query, token, userID, expiresAt.UTC())
	logQuery(query, []any{redacted, userID, expiresAt}, t.ID, err)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: token", ErrDuplicate)
		}
		return nil, fmt.Errorf("insert token: %w", err)
	}
	return &t, nil
}

// GetByToken returns the row for token, or (nil, nil) when absent.
func (r *TokenRepository) GetByToken(ctx context.Context, token string) (*models.Token, error) {
	query := `
		SELECT id, token, user_id, expires_at, created_at
		FROM tokens
		WHERE token = $1
	`

	var t models.Token
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &t, query, token)
	logQuery(query, []any{redacted}, t.ID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query token: %w", err)
	}
	return &t, nil
}

// DeleteByUserID removes every token of the user. Deleting nothing is not an error.
func (r *TokenRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	query := `DELETE FROM tokens WHERE user_id = $1`

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, userID)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, []any{userID}, rowsAffected, err)

	if err != nil {
		return fmt.Errorf("delete user tokens: %w", err)
	}
	return nil
}

// DeleteExpired removes tokens that expired strictly before now and reports how many.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM tokens WHERE expires_at < $1`

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, now.UTC())
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, []any{now}, rowsAffected, err)

	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	return rowsAffected, nil
}
