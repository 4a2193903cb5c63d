package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/movie-catalog/internal/model"
)

const movieColumns = "id, user_id, title, release_year, genre, synopsis, duration_in_minutes, poster_url, created_at, updated_at"

// MovieRepo encapsulates all database queries related to movies.
type MovieRepo struct {
	db *sql.DB
}

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// Create inserts m and fills its ID and DB-default timestamps.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	q := conn(ctx, r.db)
	const qInsert = `INSERT INTO movies (user_id, title, release_year, genre, synopsis, duration_in_minutes, poster_url)
	                 VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, qInsert,
		m.UserID, m.Title, m.ReleaseYear, m.Genre, m.Synopsis, m.DurationInMinutes, nullString(m.PosterURL))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)

	const qSelect = "SELECT created_at, updated_at FROM movies WHERE id = ?"
	return q.QueryRowContext(ctx, qSelect, m.ID).Scan(&m.CreatedAt, &m.UpdatedAt)
}

// FindByID fetches a movie by id, restricted to ownerID when it is set.
func (r *MovieRepo) FindByID(ctx context.Context, id uint64, ownerID *uint64) (*model.Movie, error) {
	query := "SELECT " + movieColumns + " FROM movies WHERE id = ?"
	args := []any{id}
	if ownerID != nil {
		query += " AND user_id = ?"
		args = append(args, *ownerID)
	}
	m, err := scanMovie(conn(ctx, r.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return m, nil
}

// Update writes every mutable column of m.  The row must still belong to
// m.UserID.  UpdatedAt is refreshed from the database.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	q := conn(ctx, r.db)
	const qUpdate = `UPDATE movies
	                 SET title = ?, release_year = ?, genre = ?, synopsis = ?, duration_in_minutes = ?,
	                     poster_url = ?, updated_at = CURRENT_TIMESTAMP
	                 WHERE id = ? AND user_id = ?`
	res, err := q.ExecContext(ctx, qUpdate,
		m.Title, m.ReleaseYear, m.Genre, m.Synopsis, m.DurationInMinutes, nullString(m.PosterURL),
		m.ID, m.UserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		found, err := rowExists(ctx, q, "SELECT 1 FROM movies WHERE id = ? AND user_id = ? LIMIT 1", m.ID, m.UserID)
		if err != nil {
			return err
		}
		if !found {
			return ErrMovieNotFound
		}
	}
	return q.QueryRowContext(ctx, "SELECT updated_at FROM movies WHERE id = ?", m.ID).Scan(&m.UpdatedAt)
}

// Delete removes a movie, restricted to ownerID when it is set.
func (r *MovieRepo) Delete(ctx context.Context, id uint64, ownerID *uint64) error {
	query := "DELETE FROM movies WHERE id = ?"
	args := []any{id}
	if ownerID != nil {
		query += " AND user_id = ?"
		args = append(args, *ownerID)
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// Paginate returns one page of movies, newest first, optionally limited to
// those owned by ownerID.
func (r *MovieRepo) Paginate(ctx context.Context, ownerID *uint64, page, perPage int) (model.Page[model.Movie], error) {
	out := model.Page[model.Movie]{CurrentPage: page, PerPage: perPage, Items: []model.Movie{}}
	q := conn(ctx, r.db)

	where := ""
	var args []any
	if ownerID != nil {
		where = " WHERE user_id = ?"
		args = append(args, *ownerID)
	}
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies"+where, args...).Scan(&out.Total); err != nil {
		return out, err
	}
	if out.Total == 0 {
		return out, nil
	}

	query := "SELECT " + movieColumns + " FROM movies" + where + " ORDER BY id DESC LIMIT ? OFFSET ?"
	rows, err := q.QueryContext(ctx, query, append(args, perPage, (page-1)*perPage)...)
	if err != nil {
		return out, err
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return out, err
		}
		out.Items = append(out.Items, *m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(s rowScanner) (*model.Movie, error) {
	var (
		m      model.Movie
		poster sql.NullString
	)
	if err := s.Scan(&m.ID, &m.UserID, &m.Title, &m.ReleaseYear, &m.Genre, &m.Synopsis,
		&m.DurationInMinutes, &poster, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if poster.Valid {
		p := poster.String
		m.PosterURL = &p
	}
	return &m, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
