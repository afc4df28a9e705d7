package recommend

import "errors"

var (
	// ErrInvalidUserID is returned when the user ID is not positive.
	ErrInvalidUserID = errors.New("invalid user ID")

	// ErrInvalidMovieID is returned when the movie ID is not positive.
	ErrInvalidMovieID = errors.New("invalid movie ID")

	// ErrMovieNotFound is returned when the movie to explain does not exist.
	ErrMovieNotFound = errors.New("movie not found")

	// ErrProviderUnavailable marks a similarity provider call that was
	// rejected before reaching the backend, usually by an open circuit.
	ErrProviderUnavailable = errors.New("similarity provider unavailable")
)
