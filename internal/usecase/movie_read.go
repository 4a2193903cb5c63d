package usecase

import (
	"context"
	"log/slog"

	"github.com/iliyamo/movie-catalog/internal/apperror"
	"github.com/iliyamo/movie-catalog/internal/dto"
	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/repository"
)

type GetMovieByID struct {
	movies repository.MovieRepository
}

func NewGetMovieByID(movies repository.MovieRepository) *GetMovieByID {
	return &GetMovieByID{movies: movies}
}

// Execute returns movie id, scoped to ownerID when set.
func (uc *GetMovieByID) Execute(ctx context.Context, id uint64, ownerID *uint64) (*model.Movie, error) {
	return findMovie(ctx, uc.movies, id, ownerID)
}

// GetAllMovies lists every movie regardless of owner.
type GetAllMovies struct {
	movies repository.MovieRepository
	log    *slog.Logger
}

func NewGetAllMovies(movies repository.MovieRepository, log *slog.Logger) *GetAllMovies {
	return &GetAllMovies{movies: movies, log: log}
}

func (uc *GetAllMovies) Execute(ctx context.Context, p dto.Pagination) (model.Page[model.Movie], error) {
	p = p.Normalize()
	page, err := uc.movies.Paginate(ctx, nil, p.Page, p.PerPage)
	if err != nil {
		uc.log.Error("movie listing failed", "page", p.Page, "err", err)
		return page, apperror.Internal("Failed to list movies", err)
	}
	return page, nil
}

// GetUserMovies lists the movies owned by one user.
type GetUserMovies struct {
	movies repository.MovieRepository
	log    *slog.Logger
}

func NewGetUserMovies(movies repository.MovieRepository, log *slog.Logger) *GetUserMovies {
	return &GetUserMovies{movies: movies, log: log}
}

func (uc *GetUserMovies) Execute(ctx context.Context, userID uint64, p dto.Pagination) (model.Page[model.Movie], error) {
	p = p.Normalize()
	page, err := uc.movies.Paginate(ctx, &userID, p.Page, p.PerPage)
	if err != nil {
		uc.log.Error("movie listing failed", "user_id", userID, "page", p.Page, "err", err)
		return page, apperror.Internal("Failed to list movies", err)
	}
	return page, nil
}
