package source

import "errors"

var (
	// ErrSeasonNotFound is returned when the season directory does not exist.
	ErrSeasonNotFound = errors.New("season not found")
	// ErrInvalidSeason is returned for season numbers below 1.
	ErrInvalidSeason = errors.New("invalid season number")
)
