package repository

import (
	"context"
	"time"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// MovieRepository persists movies.  Every lookup accepts an optional
// ownerID: when it is non-nil the row must also belong to that user, and a
// row owned by someone else is reported exactly like a missing one
// (ErrMovieNotFound).
type MovieRepository interface {
	Create(ctx context.Context, m *model.Movie) error
	FindByID(ctx context.Context, id uint64, ownerID *uint64) (*model.Movie, error)
	Update(ctx context.Context, m *model.Movie) error
	Delete(ctx context.Context, id uint64, ownerID *uint64) error
	Paginate(ctx context.Context, ownerID *uint64, page, perPage int) (model.Page[model.Movie], error)
}

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// Update writes only the given columns (name, email, password_hash).
	Update(ctx context.Context, id uint64, fields map[string]any) error
}

// TokenRepository remembers access tokens that were invalidated before
// their expiry.
type TokenRepository interface {
	Revoke(ctx context.Context, jti string, userID uint64, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TxManager runs fn as one unit of work.  Repositories called with the
// context passed to fn take part in the same transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
