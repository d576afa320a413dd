package ingest

import (
	"sort"

	"github.com/samber/lo"

	"github.com/okian/careerstandings/internal/domain/model"
)

// Pen is one start group of a multi-pen event.
type Pen struct {
	Number  int
	Results []model.EventResult
}

// PensWithHumans splits results by pen and keeps the pens that contain at
// least one human, ordered by pen number. Each pen is its own race.
func PensWithHumans(results []model.EventResult) []Pen {
	byPen := lo.GroupBy(results, func(r model.EventResult) int { return max(1, r.Pen) })
	numbers := lo.Keys(byPen)
	sort.Ints(numbers)

	pens := make([]Pen, 0, len(numbers))
	for _, n := range numbers {
		rows := byPen[n]
		if lo.SomeBy(rows, func(r model.EventResult) bool { return !r.IsSimulated }) {
			pens = append(pens, Pen{Number: n, Results: rows})
		}
	}
	return pens
}

// Humans returns the non-simulated results.
func Humans(results []model.EventResult) []model.EventResult {
	return lo.Filter(results, func(r model.EventResult, _ int) bool { return !r.IsSimulated })
}

// Bots returns the simulated results.
func Bots(results []model.EventResult) []model.EventResult {
	return lo.Filter(results, func(r model.EventResult, _ int) bool { return r.IsSimulated })
}
