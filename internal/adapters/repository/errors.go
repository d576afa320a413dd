package repository

import "errors"

// Sentinel kinds for season table errors.
var (
	ErrNotFound     = errors.New("participant not found")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
	ErrInvalidEntry = errors.New("entry has no participant id")
)
