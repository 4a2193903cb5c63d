package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/iliyamo/movie-catalog/internal/apperror"
	"github.com/iliyamo/movie-catalog/internal/dto"
	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/queue"
	"github.com/iliyamo/movie-catalog/internal/repository"
)

// CreateMovie persists a new movie for its owner.
type CreateMovie struct {
	movies repository.MovieRepository
	tx     repository.TxManager
	events EventPublisher
	log    *slog.Logger
}

func NewCreateMovie(movies repository.MovieRepository, tx repository.TxManager, events EventPublisher, log *slog.Logger) *CreateMovie {
	return &CreateMovie{movies: movies, tx: tx, events: events, log: log}
}

// Execute stores req for ownerID.  req must already be validated.
func (uc *CreateMovie) Execute(ctx context.Context, req dto.CreateMovieRequest, ownerID uint64) (*model.Movie, error) {
	m := req.Movie(ownerID)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		return uc.movies.Create(ctx, &m)
	})
	if err != nil {
		uc.log.Error("movie creation failed", "user_id", ownerID, "title", m.Title, "err", err)
		return nil, apperror.Creation("Failed to create movie", err)
	}
	uc.log.Info("movie created", "movie_id", m.ID, "user_id", ownerID, "title", m.Title)
	publish(ctx, uc.events, uc.log, queue.MovieEvent{
		Type: queue.MovieCreated, MovieID: m.ID, UserID: ownerID, Title: m.Title, OccurredAt: time.Now().UTC(),
	})
	return &m, nil
}

// UpdateMovie applies a partial update.
type UpdateMovie struct {
	movies repository.MovieRepository
	tx     repository.TxManager
	events EventPublisher
	log    *slog.Logger
}

func NewUpdateMovie(movies repository.MovieRepository, tx repository.TxManager, events EventPublisher, log *slog.Logger) *UpdateMovie {
	return &UpdateMovie{movies: movies, tx: tx, events: events, log: log}
}

// Execute loads movie id (scoped to ownerID when set) and writes the fields
// of req that differ from the stored values.  Nothing is written when no
// field changes.
func (uc *UpdateMovie) Execute(ctx context.Context, id uint64, req dto.UpdateMovieRequest, ownerID *uint64) (*model.Movie, error) {
	current, err := findMovie(ctx, uc.movies, id, ownerID)
	if err != nil {
		return nil, err
	}
	next, changed := req.Apply(*current)
	if len(changed) == 0 {
		return current, nil
	}

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		return uc.movies.Update(ctx, &next)
	})
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return nil, apperror.NotFound(msgMovieNotFound)
		}
		uc.log.Error("movie update failed", "movie_id", id, "user_id", current.UserID, "err", err)
		return nil, apperror.Update("Failed to update movie", err)
	}
	uc.log.Info("movie updated", "movie_id", id, "user_id", current.UserID, "fields", changed)
	publish(ctx, uc.events, uc.log, queue.MovieEvent{
		Type: queue.MovieUpdated, MovieID: id, UserID: current.UserID, Title: next.Title,
		Fields: changed, OccurredAt: time.Now().UTC(),
	})
	return &next, nil
}

// DeleteMovie removes a movie permanently.
type DeleteMovie struct {
	movies repository.MovieRepository
	tx     repository.TxManager
	events EventPublisher
	log    *slog.Logger
}

func NewDeleteMovie(movies repository.MovieRepository, tx repository.TxManager, events EventPublisher, log *slog.Logger) *DeleteMovie {
	return &DeleteMovie{movies: movies, tx: tx, events: events, log: log}
}

// Execute deletes movie id, scoped to ownerID when set.
func (uc *DeleteMovie) Execute(ctx context.Context, id uint64, ownerID *uint64) error {
	current, err := findMovie(ctx, uc.movies, id, ownerID)
	if err != nil {
		return err
	}
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		return uc.movies.Delete(ctx, id, ownerID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return apperror.NotFound(msgMovieNotFound)
		}
		uc.log.Error("movie deletion failed", "movie_id", id, "user_id", current.UserID, "err", err)
		return apperror.Internal("Failed to delete movie", err)
	}
	uc.log.Info("movie deleted", "movie_id", id, "user_id", current.UserID)
	publish(ctx, uc.events, uc.log, queue.MovieEvent{
		Type: queue.MovieDeleted, MovieID: id, UserID: current.UserID, Title: current.Title, OccurredAt: time.Now().UTC(),
	})
	return nil
}
