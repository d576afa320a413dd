package model

import "fmt"

// DiagnosticKind classifies a recoverable data-quality problem.
type DiagnosticKind string

const (
	KindMalformedRow         DiagnosticKind = "malformed_row"
	KindUnconfiguredEvent    DiagnosticKind = "unconfigured_event"
	KindMissingEvent         DiagnosticKind = "missing_event"
	KindConflictingDuplicate DiagnosticKind = "conflicting_duplicate"
	KindDuplicateSource      DiagnosticKind = "duplicate_source"
	KindUnreadableSource     DiagnosticKind = "unreadable_source"
)

// Diagnostic describes one skipped or degraded input.
type Diagnostic struct {
	Kind          DiagnosticKind `json:"kind"`
	EventNumber   int            `json:"eventNumber,omitempty"`
	Source        string         `json:"source,omitempty"`
	Row           int            `json:"row,omitempty"`
	ParticipantID string         `json:"participantId,omitempty"`
	Message       string         `json:"message"`
}

func (d Diagnostic) String() string {
	switch {
	case d.Source != "" && d.Row > 0:
		return fmt.Sprintf("%s: event %d %s row %d: %s", d.Kind, d.EventNumber, d.Source, d.Row, d.Message)
	case d.Source != "":
		return fmt.Sprintf("%s: event %d %s: %s", d.Kind, d.EventNumber, d.Source, d.Message)
	default:
		return fmt.Sprintf("%s: event %d: %s", d.Kind, d.EventNumber, d.Message)
	}
}

// Diagnostics is an append-only list of data-quality findings.
type Diagnostics []Diagnostic

// Add appends d.
func (ds *Diagnostics) Add(d Diagnostic) { *ds = append(*ds, d) }

// Merge appends all of other.
func (ds *Diagnostics) Merge(other Diagnostics) { *ds = append(*ds, other...) }

// Count returns how many findings have the given kind.
func (ds Diagnostics) Count(kind DiagnosticKind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
