package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-catalog/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var movieCols = []string{"id", "user_id", "title", "release_year", "genre", "synopsis", "duration_in_minutes", "poster_url", "created_at", "updated_at"}

func movieRow(rows *sqlmock.Rows, id, userID uint64, poster any) *sqlmock.Rows {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return rows.AddRow(id, userID, "Bacurau", 2019, "Western", "A village vanishes from the map.", 131, poster, now, now)
}

func ptr[T any](v T) *T { return &v }

func TestMovieRepoCreate(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO movies")).
		WithArgs(uint64(3), "Bacurau", 2019, "Western", "A village vanishes.", 131, sql.NullString{}).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at, updated_at FROM movies WHERE id = ?")).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	m := model.Movie{UserID: 3, Title: "Bacurau", ReleaseYear: 2019, Genre: "Western", Synopsis: "A village vanishes.", DurationInMinutes: 131}
	require.NoError(t, NewMovieRepo(db).Create(context.Background(), &m))
	assert.Equal(t, uint64(11), m.ID)
	assert.Equal(t, now, m.CreatedAt)
}

func TestMovieRepoFindByIDScoped(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM movies WHERE id = ? AND user_id = ?")).
		WithArgs(uint64(5), uint64(3)).
		WillReturnRows(movieRow(sqlmock.NewRows(movieCols), 5, 3, "https://img.example.com/b.jpg"))

	m, err := NewMovieRepo(db).FindByID(context.Background(), 5, ptr(uint64(3)))
	require.NoError(t, err)
	assert.Equal(t, "Bacurau", m.Title)
	require.NotNil(t, m.PosterURL)
	assert.Equal(t, "https://img.example.com/b.jpg", *m.PosterURL)
}

func TestMovieRepoFindByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM movies WHERE id = ? AND user_id = ?")).
		WithArgs(uint64(5), uint64(4)).
		WillReturnRows(sqlmock.NewRows(movieCols))

	_, err := NewMovieRepo(db).FindByID(context.Background(), 5, ptr(uint64(4)))
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestMovieRepoUpdate(t *testing.T) {
	db, mock := newMock(t)
	later := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE movies")).
		WithArgs("Bacurau", 2019, "Drama", "s", 131, sql.NullString{}, uint64(5), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT updated_at FROM movies WHERE id = ?")).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(later))

	m := model.Movie{ID: 5, UserID: 3, Title: "Bacurau", ReleaseYear: 2019, Genre: "Drama", Synopsis: "s", DurationInMinutes: 131}
	require.NoError(t, NewMovieRepo(db).Update(context.Background(), &m))
	assert.Equal(t, later, m.UpdatedAt)
}

func TestMovieRepoUpdateMissingRow(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE movies")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM movies WHERE id = ? AND user_id = ?")).
		WithArgs(uint64(5), uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	err := NewMovieRepo(db).Update(context.Background(), &model.Movie{ID: 5, UserID: 9})
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestMovieRepoUpdateUnchangedRow(t *testing.T) {
	db, mock := newMock(t)
	at := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE movies")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM movies WHERE id = ? AND user_id = ?")).
		WithArgs(uint64(5), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT updated_at FROM movies WHERE id = ?")).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(at))

	m := model.Movie{ID: 5, UserID: 3, Title: "Bacurau"}
	require.NoError(t, NewMovieRepo(db).Update(context.Background(), &m))
	assert.Equal(t, at, m.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieRepoDelete(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM movies WHERE id = ? AND user_id = ?")).
		WithArgs(uint64(5), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM movies WHERE id = ? AND user_id = ?")).
		WithArgs(uint64(5), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewMovieRepo(db)
	require.NoError(t, repo.Delete(context.Background(), 5, ptr(uint64(3))))
	assert.ErrorIs(t, repo.Delete(context.Background(), 5, ptr(uint64(3))), ErrMovieNotFound)
}

func TestMovieRepoPaginate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM movies WHERE user_id = ?")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(17))
	rows := sqlmock.NewRows(movieCols)
	movieRow(rows, 17, 3, nil)
	movieRow(rows, 16, 3, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM movies WHERE user_id = ? ORDER BY id DESC LIMIT ? OFFSET ?")).
		WithArgs(uint64(3), 15, 15).
		WillReturnRows(rows)

	page, err := NewMovieRepo(db).Paginate(context.Background(), ptr(uint64(3)), 2, 15)
	require.NoError(t, err)
	assert.Equal(t, 17, page.Total)
	assert.Equal(t, 2, page.LastPage())
	require.Len(t, page.Items, 2)
	assert.Equal(t, uint64(17), page.Items[0].ID)
	assert.Nil(t, page.Items[0].PosterURL)
}

func TestMovieRepoPaginateEmptySkipsSelect(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM movies")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	page, err := NewMovieRepo(db).Paginate(context.Background(), nil, 1, 15)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 1, page.LastPage())
}

func TestWithinTxCommitsAndRollsBack(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM movies")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	txm := NewSQLTxManager(db)
	repo := NewMovieRepo(db)
	err := txm.WithinTx(context.Background(), func(ctx context.Context) error {
		return repo.Delete(ctx, 1, nil)
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = txm.WithinTx(context.Background(), func(ctx context.Context) error {
		// nested calls join the outer transaction
		return txm.WithinTx(ctx, func(context.Context) error { return boom })
	})
	assert.ErrorIs(t, err, boom)
}
