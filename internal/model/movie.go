package model

import "time"

// MinReleaseYear is the year of the earliest surviving motion picture.
const MinReleaseYear = 1888

// Movie is a catalog entry owned by exactly one user.  This struct
// corresponds to a row in the `movies` table.
//
// Fields:
//  ID               – primary key identifier.
//  UserID           – user ID of the owner.
//  Title            – movie title.
//  ReleaseYear      – year of release, never before MinReleaseYear.
//  Genre            – free-form genre label.
//  Synopsis         – plot summary.
//  DurationInMinutes – running time.
//  PosterURL        – optional poster image URL.
//  CreatedAt        – timestamp when the movie was created.
//  UpdatedAt        – timestamp of last update.
type Movie struct {
	ID                uint64    // movies.id
	UserID            uint64    // movies.user_id
	Title             string    // movies.title
	ReleaseYear       int       // movies.release_year
	Genre             string    // movies.genre
	Synopsis          string    // movies.synopsis
	DurationInMinutes int       // movies.duration_in_minutes
	PosterURL         *string   // movies.poster_url (nullable)
	CreatedAt         time.Time // movies.created_at
	UpdatedAt         time.Time // movies.updated_at
}

// Page is one page of a listing together with the numbers needed to
// render pagination links.
type Page[T any] struct {
	Items       []T
	Total       int
	CurrentPage int
	PerPage     int
}

// LastPage returns the number of the last page, at least 1.
func (p Page[T]) LastPage() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}
