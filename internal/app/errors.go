package service

import "errors"

var (
	// ErrNotStarted is returned by reads before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrUnknownRider is returned for riders with no row in the loaded season.
	ErrUnknownRider = errors.New("rider not found")
	// ErrNoSource is returned by Refresh when no result source is configured.
	ErrNoSource = errors.New("no result source configured")
)
