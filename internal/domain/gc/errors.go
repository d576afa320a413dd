package gc

import "errors"

// ErrNoStageResults is returned when none of the requested stages has results.
var ErrNoStageResults = errors.New("gc: no stage results")
