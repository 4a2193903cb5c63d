package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// TokenRepo persists revoked access-token ids in MySQL.  It is used when
// Redis is unavailable.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Revoke records jti as revoked until expiresAt.  Revoking twice is a no-op.
func (r *TokenRepo) Revoke(ctx context.Context, jti string, userID uint64, expiresAt time.Time) error {
	_, err := conn(ctx, r.DB).ExecContext(ctx,
		"INSERT INTO revoked_tokens (jti, user_id, expires_at) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE jti = jti",
		jti, userID, expiresAt.UTC())
	return err
}

// IsRevoked reports whether jti was revoked and has not expired yet.
func (r *TokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var one int
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT 1 FROM revoked_tokens WHERE jti = ? AND expires_at > ? LIMIT 1",
		jti, time.Now().UTC()).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PurgeExpired deletes rows whose token has expired anyway.
func (r *TokenRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM revoked_tokens WHERE expires_at <= ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
