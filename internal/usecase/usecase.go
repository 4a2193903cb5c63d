// Package usecase implements one type per application operation.  Each
// use-case validates ownership, runs writes inside a single unit of work,
// logs after commit and translates lower-layer failures into
// apperror kinds with a client-safe message.
package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/iliyamo/movie-catalog/internal/apperror"
	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/queue"
	"github.com/iliyamo/movie-catalog/internal/repository"
)

// EventPublisher delivers movie events after a write has been committed.
type EventPublisher interface {
	PublishMovieEvent(ctx context.Context, ev queue.MovieEvent) error
}

const msgMovieNotFound = "Movie not found"

// findMovie is the scoped lookup shared by every movie operation: with an
// owner id a movie of another user is reported as not found.
func findMovie(ctx context.Context, movies repository.MovieRepository, id uint64, ownerID *uint64) (*model.Movie, error) {
	m, err := movies.FindByID(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return nil, apperror.NotFound(msgMovieNotFound)
		}
		return nil, apperror.Internal("Failed to load movie", err)
	}
	return m, nil
}

func publish(ctx context.Context, events EventPublisher, log *slog.Logger, ev queue.MovieEvent) {
	if events == nil {
		return
	}
	if err := events.PublishMovieEvent(ctx, ev); err != nil {
		log.Warn("movie event not published", "type", ev.Type, "movie_id", ev.MovieID, "err", err)
	}
}

// Movies groups the movie use-cases.
type Movies struct {
	Create *CreateMovie
	Update *UpdateMovie
	Delete *DeleteMovie
	Get    *GetMovieByID
	All    *GetAllMovies
	ByUser *GetUserMovies
}

func NewMovies(movies repository.MovieRepository, tx repository.TxManager, events EventPublisher, log *slog.Logger) *Movies {
	return &Movies{
		Create: NewCreateMovie(movies, tx, events, log),
		Update: NewUpdateMovie(movies, tx, events, log),
		Delete: NewDeleteMovie(movies, tx, events, log),
		Get:    NewGetMovieByID(movies),
		All:    NewGetAllMovies(movies, log),
		ByUser: NewGetUserMovies(movies, log),
	}
}

// Users groups the account use-cases.
type Users struct {
	Register      *RegisterUser
	UpdateProfile *UpdateUserProfile
	Profile       *GetProfile
}

func NewUsers(users repository.UserRepository, tx repository.TxManager, bcryptCost int, log *slog.Logger) *Users {
	return &Users{
		Register:      NewRegisterUser(users, tx, bcryptCost, log),
		UpdateProfile: NewUpdateUserProfile(users, tx, bcryptCost, log),
		Profile:       NewGetProfile(users),
	}
}

// Auth groups the token use-cases.
type Auth struct {
	Login   *Login
	Logout  *Logout
	Refresh *RefreshToken
}

func NewAuth(tokens TokenProvider, log *slog.Logger) *Auth {
	return &Auth{
		Login:   NewLogin(tokens, log),
		Logout:  NewLogout(tokens, log),
		Refresh: NewRefreshToken(tokens, log),
	}
}
