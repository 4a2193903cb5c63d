// Package repository defines the persistence contracts and their MySQL and
// Redis implementations.  The sentinel errors below let higher layers
// distinguish a missing row from an infrastructure failure without
// depending on database/sql.
package repository

import "errors"

// ErrMovieNotFound is returned when a movie does not exist or, for scoped
// lookups, belongs to another user.
var ErrMovieNotFound = errors.New("movie not found")

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when the unique email constraint rejects a
// write.
var ErrEmailExists = errors.New("email already exists")
