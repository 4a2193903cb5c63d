package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// movieResource is the JSON shape of a movie.
type movieResource struct {
	ID                uint64  `json:"id"`
	Title             string  `json:"title"`
	ReleaseYear       int     `json:"release_year"`
	Genre             string  `json:"genre"`
	Synopsis          string  `json:"synopsis"`
	DurationInMinutes int     `json:"duration_in_minutes"`
	PosterURL         *string `json:"poster_url"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

// userResource is the JSON shape of a user; the password hash never leaves
// the server.
type userResource struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type pageMeta struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

type tokenResource struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toMovieResource(m *model.Movie) movieResource {
	return movieResource{
		ID:                m.ID,
		Title:             m.Title,
		ReleaseYear:       m.ReleaseYear,
		Genre:             m.Genre,
		Synopsis:          m.Synopsis,
		DurationInMinutes: m.DurationInMinutes,
		PosterURL:         m.PosterURL,
		CreatedAt:         timestamp(m.CreatedAt),
		UpdatedAt:         timestamp(m.UpdatedAt),
	}
}

func toUserResource(u *model.User) userResource {
	return userResource{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: timestamp(u.CreatedAt),
		UpdatedAt: timestamp(u.UpdatedAt),
	}
}

func success(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func successMessage(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": message})
}

func moviePage(c echo.Context, page model.Page[model.Movie]) error {
	items := make([]movieResource, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, toMovieResource(&page.Items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    items,
		"meta": pageMeta{
			CurrentPage: page.CurrentPage,
			PerPage:     page.PerPage,
			Total:       page.Total,
			LastPage:    page.LastPage(),
		},
	})
}
