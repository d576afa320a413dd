package standings

import "errors"

var (
	// ErrNoResults is returned when Build is called without a results map.
	ErrNoResults = errors.New("standings: no results map")
	// ErrNoTarget is returned when the target participant id is empty.
	ErrNoTarget = errors.New("standings: target participant id is empty")
)
