package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/dto"
	"github.com/iliyamo/movie-catalog/internal/usecase"
)

const msgMovieNotFound = "Movie not found"

// MovieHandler serves /movies.  Every operation is scoped to the
// authenticated user.
type MovieHandler struct {
	movies *usecase.Movies
}

func NewMovieHandler(movies *usecase.Movies) *MovieHandler {
	return &MovieHandler{movies: movies}
}

// List returns one page of the caller's movies, newest first.
func (h *MovieHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.movies.ByUser.Execute(ctx, uid, pagination(c))
	if err != nil {
		return err
	}
	return moviePage(c, page)
}

func (h *MovieHandler) Show(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, msgMovieNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	m, err := h.movies.Get.Execute(ctx, id, &uid)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, toMovieResource(m))
}

func (h *MovieHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var req dto.CreateMovieRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	m, err := h.movies.Create.Execute(ctx, req, uid)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, toMovieResource(m))
}

// Update serves both PUT and PATCH; only the fields present in the body
// are changed.
func (h *MovieHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, msgMovieNotFound)
	if err != nil {
		return err
	}
	var req dto.UpdateMovieRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	m, err := h.movies.Update.Execute(ctx, id, req, &uid)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, toMovieResource(m))
}

func (h *MovieHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, msgMovieNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.movies.Delete.Execute(ctx, id, &uid); err != nil {
		return err
	}
	return successMessage(c, "Movie deleted successfully")
}
