package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRepoRevokeAndCheck(t *testing.T) {
	db, mock := newMock(t)
	exp := time.Now().Add(time.Hour)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO revoked_tokens (jti, user_id, expires_at) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE")).
		WithArgs("jti-1", uint64(7), exp.UTC()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM revoked_tokens WHERE jti = ? AND expires_at > ?")).
		WithArgs("jti-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM revoked_tokens")).
		WithArgs("jti-2", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	repo := NewTokenRepo(db)
	require.NoError(t, repo.Revoke(context.Background(), "jti-1", 7, exp))

	revoked, err := repo.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = repo.IsRevoked(context.Background(), "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenRepoPurgeExpired(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM revoked_tokens WHERE expires_at <= ?")).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := NewTokenRepo(db).PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestRedisTokenRepo(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	repo := NewRedisTokenRepo(rdb)
	ctx := context.Background()

	require.NoError(t, repo.Revoke(ctx, "jti-1", 7, time.Now().Add(time.Minute)))
	require.NoError(t, repo.Revoke(ctx, "jti-old", 7, time.Now().Add(-time.Minute)))

	revoked, err := repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.False(t, mr.Exists("revoked:jti-old"))

	mr.FastForward(2 * time.Minute)
	revoked, err = repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}
