// Package repotest provides in-memory implementations of the repository
// contracts for tests.  They follow the same not-found and ownership rules
// as the MySQL repositories.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/repository"
)

// Movies is an in-memory repository.MovieRepository.
type Movies struct {
	mu      sync.Mutex
	rows    map[uint64]model.Movie
	next    uint64
	Updates int   // successful Update calls
	Err     error // returned by every call when set
}

func NewMovies() *Movies { return &Movies{rows: map[uint64]model.Movie{}} }

func (s *Movies) Create(_ context.Context, m *model.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.next++
	now := time.Now().UTC().Truncate(time.Second)
	m.ID, m.CreatedAt, m.UpdatedAt = s.next, now, now
	s.rows[m.ID] = *m
	return nil
}

func (s *Movies) FindByID(_ context.Context, id uint64, ownerID *uint64) (*model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	m, ok := s.rows[id]
	if !ok || (ownerID != nil && m.UserID != *ownerID) {
		return nil, repository.ErrMovieNotFound
	}
	return &m, nil
}

func (s *Movies) Update(_ context.Context, m *model.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	cur, ok := s.rows[m.ID]
	if !ok || cur.UserID != m.UserID {
		return repository.ErrMovieNotFound
	}
	m.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	s.rows[m.ID] = *m
	s.Updates++
	return nil
}

func (s *Movies) Delete(_ context.Context, id uint64, ownerID *uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	m, ok := s.rows[id]
	if !ok || (ownerID != nil && m.UserID != *ownerID) {
		return repository.ErrMovieNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *Movies) Paginate(_ context.Context, ownerID *uint64, page, perPage int) (model.Page[model.Movie], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := model.Page[model.Movie]{CurrentPage: page, PerPage: perPage, Items: []model.Movie{}}
	if s.Err != nil {
		return out, s.Err
	}
	var all []model.Movie
	for _, m := range s.rows {
		if ownerID == nil || m.UserID == *ownerID {
			all = append(all, m)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	out.Total = len(all)
	start := (page - 1) * perPage
	if start < len(all) {
		end := min(start+perPage, len(all))
		out.Items = append(out.Items, all[start:end]...)
	}
	return out, nil
}

// Users is an in-memory repository.UserRepository with a unique email
// constraint.
type Users struct {
	mu   sync.Mutex
	rows map[uint64]model.User
	next uint64
	Err  error
}

func NewUsers() *Users { return &Users{rows: map[uint64]model.User{}} }

func (s *Users) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.emailTaken(u.Email, 0) {
		return repository.ErrEmailExists
	}
	s.next++
	now := time.Now().UTC().Truncate(time.Second)
	u.ID, u.CreatedAt, u.UpdatedAt = s.next, now, now
	s.rows[u.ID] = *u
	return nil
}

func (s *Users) emailTaken(email string, except uint64) bool {
	for id, u := range s.rows {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (s *Users) FindByID(_ context.Context, id uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (s *Users) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *Users) Update(_ context.Context, id uint64, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.rows[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	if v, ok := fields["name"].(string); ok {
		u.Name = v
	}
	if v, ok := fields["email"].(string); ok {
		if s.emailTaken(v, id) {
			return repository.ErrEmailExists
		}
		u.Email = v
	}
	if v, ok := fields["password_hash"].(string); ok {
		u.PasswordHash = v
	}
	u.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	s.rows[id] = u
	return nil
}

// Tokens is an in-memory repository.TokenRepository.
type Tokens struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	Err     error
}

func NewTokens() *Tokens { return &Tokens{revoked: map[string]time.Time{}} }

func (s *Tokens) Revoke(_ context.Context, jti string, _ uint64, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.revoked[jti] = expiresAt
	return nil
}

func (s *Tokens) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	exp, ok := s.revoked[jti]
	return ok && time.Now().Before(exp), nil
}

// Tx is a repository.TxManager that counts units of work.
type Tx struct {
	mu    sync.Mutex
	Calls int
	Err   error // returned instead of running fn when set
}

func (t *Tx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	t.Calls++
	err := t.Err
	t.mu.Unlock()
	if err != nil {
		return err
	}
	return fn(ctx)
}
