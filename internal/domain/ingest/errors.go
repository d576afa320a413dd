package ingest

import "errors"

// Sentinel errors for whole-file and per-row parse failures.
var (
	ErrNoHeader        = errors.New("no header row with Position and UID")
	ErrUnknownFormat   = errors.New("unknown result format")
	ErrMissingIdentity = errors.New("missing participant identity")
	ErrMissingPosition = errors.New("missing finish position")
	ErrEmptySource     = errors.New("empty source file")
)
