package dedupe

import (
	"github.com/okian/careerstandings/internal/domain/model"
)

// Outcome describes what a merge did.
type Outcome struct {
	// Conflict is set when the rows disagreed on finish position.
	Conflict bool
	// Incoming is the finish position of the discarded row.
	Incoming model.Position
}

// Strategy decides how two rows for the same participant in one event become
// one.
type Strategy interface {
	Name() string
	Merge(kept, incoming model.EventResult) (model.EventResult, Outcome)
}

// FirstWins keeps the first-seen finish position. Team, rating and name are
// filled from later rows only where the kept row lacks them.
type FirstWins struct{}

func (FirstWins) Name() string { return "first_wins" }

func (FirstWins) Merge(kept, incoming model.EventResult) (model.EventResult, Outcome) {
	out := Outcome{
		Conflict: kept.FinishPosition != incoming.FinishPosition,
		Incoming: incoming.FinishPosition,
	}
	if kept.Team == "" {
		kept.Team = incoming.Team
	}
	if kept.Rating <= 0 {
		kept.Rating = incoming.Rating
	}
	if kept.EventRating <= 0 {
		kept.EventRating = incoming.EventRating
	}
	if kept.DisplayName == "" {
		kept.DisplayName = incoming.DisplayName
	}
	if kept.TimeSeconds <= 0 {
		kept.TimeSeconds = incoming.TimeSeconds
	}
	kept.IsSimulated = kept.IsSimulated || incoming.IsSimulated
	return kept, out
}

// Set accumulates one event's rows, collapsing duplicates by participant id.
// Rows keep first-seen order.
type Set struct {
	strategy Strategy
	index    map[string]int
	rows     []model.EventResult
}

// NewSet creates an empty set. A nil strategy means FirstWins.
func NewSet(s Strategy) *Set {
	if s == nil {
		s = FirstWins{}
	}
	return &Set{strategy: s, index: make(map[string]int)}
}

// Add inserts r. merged reports whether r collapsed into an earlier row.
func (s *Set) Add(r model.EventResult) (merged bool, out Outcome) {
	i, ok := s.index[r.ParticipantID]
	if !ok {
		s.index[r.ParticipantID] = len(s.rows)
		s.rows = append(s.rows, r)
		return false, Outcome{}
	}
	s.rows[i], out = s.strategy.Merge(s.rows[i], r)
	return true, out
}

// Len returns the number of distinct participants.
func (s *Set) Len() int { return len(s.rows) }

// Results returns a copy of the collapsed rows.
func (s *Set) Results() []model.EventResult {
	out := make([]model.EventResult, len(s.rows))
	copy(out, s.rows)
	return out
}
