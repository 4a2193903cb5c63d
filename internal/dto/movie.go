package dto

import (
	"math"
	"strings"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// CreateMovieRequest is the body of POST /movies.
type CreateMovieRequest struct {
	Title             string  `json:"title" validate:"required,max=255"`
	ReleaseYear       int     `json:"release_year" validate:"required,min=1888,max=2100"`
	Genre             string  `json:"genre" validate:"required,max=100"`
	Synopsis          string  `json:"synopsis" validate:"required,max=5000"`
	DurationInMinutes int     `json:"duration_in_minutes" validate:"required,min=1,max=1440"`
	PosterURL         *string `json:"poster_url" validate:"omitempty,url,max=2048"`
}

// Validate trims the request in place and checks it.
func (r *CreateMovieRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Genre = strings.TrimSpace(r.Genre)
	r.Synopsis = strings.TrimSpace(r.Synopsis)
	r.PosterURL = trimPtr(r.PosterURL)
	if r.PosterURL != nil && *r.PosterURL == "" {
		r.PosterURL = nil
	}
	return check(r)
}

// Movie builds the entity to persist for ownerID.
func (r CreateMovieRequest) Movie(ownerID uint64) model.Movie {
	return model.Movie{
		UserID:            ownerID,
		Title:             r.Title,
		ReleaseYear:       r.ReleaseYear,
		Genre:             r.Genre,
		Synopsis:          r.Synopsis,
		DurationInMinutes: r.DurationInMinutes,
		PosterURL:         r.PosterURL,
	}
}

// UpdateMovieRequest is the body of PUT/PATCH /movies/:id.  Absent fields
// are left untouched; an empty poster_url clears the poster.
type UpdateMovieRequest struct {
	Title             *string `json:"title" validate:"omitnil,min=1,max=255"`
	ReleaseYear       *int    `json:"release_year" validate:"omitnil,min=1888,max=2100"`
	Genre             *string `json:"genre" validate:"omitnil,min=1,max=100"`
	Synopsis          *string `json:"synopsis" validate:"omitnil,min=1,max=5000"`
	DurationInMinutes *int    `json:"duration_in_minutes" validate:"omitnil,min=1,max=1440"`
	PosterURL         *string `json:"poster_url" validate:"omitempty,url,max=2048"`
}

// Validate trims the request in place and checks it.
func (r *UpdateMovieRequest) Validate() error {
	r.Title = trimPtr(r.Title)
	r.Genre = trimPtr(r.Genre)
	r.Synopsis = trimPtr(r.Synopsis)
	r.PosterURL = trimPtr(r.PosterURL)
	return check(r)
}

// Apply returns a copy of m with the request's values applied and the
// json names of the fields whose value actually changed.
func (r UpdateMovieRequest) Apply(m model.Movie) (model.Movie, []string) {
	var changed []string
	if r.Title != nil && *r.Title != m.Title {
		m.Title = *r.Title
		changed = append(changed, "title")
	}
	if r.ReleaseYear != nil && *r.ReleaseYear != m.ReleaseYear {
		m.ReleaseYear = *r.ReleaseYear
		changed = append(changed, "release_year")
	}
	if r.Genre != nil && *r.Genre != m.Genre {
		m.Genre = *r.Genre
		changed = append(changed, "genre")
	}
	if r.Synopsis != nil && *r.Synopsis != m.Synopsis {
		m.Synopsis = *r.Synopsis
		changed = append(changed, "synopsis")
	}
	if r.DurationInMinutes != nil && *r.DurationInMinutes != m.DurationInMinutes {
		m.DurationInMinutes = *r.DurationInMinutes
		changed = append(changed, "duration_in_minutes")
	}
	if r.PosterURL != nil {
		var next *string
		if *r.PosterURL != "" {
			v := *r.PosterURL
			next = &v
		}
		if !samePoster(m.PosterURL, next) {
			m.PosterURL = next
			changed = append(changed, "poster_url")
		}
	}
	return m, changed
}

func samePoster(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Pagination is the page and per_page query of listing endpoints.
type Pagination struct {
	Page    int
	PerPage int
}

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
	// MaxPage keeps the row offset within 32 bits.
	MaxPage = math.MaxInt32 / MaxPerPage
)

// Normalize fills defaults and clamps out-of-range values.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset is the number of rows to skip.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}
