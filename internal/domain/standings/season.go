package standings

import (
	"sort"
	"strconv"

	"github.com/samber/lo"

	"github.com/okian/careerstandings/internal/domain/model"
	"github.com/okian/careerstandings/internal/domain/scoring"
	"github.com/okian/careerstandings/internal/domain/types"
)

// EventScore is one scored finish in a rider's history.
type EventScore struct {
	EventNumber int            `json:"eventNumber"`
	Position    model.Position `json:"position"`
	Points      int            `json:"points"`
}

// SeasonRow is one rider of the global season table.
type SeasonRow struct {
	model.StandingsEntry
	History []EventScore `json:"history"`
}

// Entry converts the row to a ranked table entry.
func (r SeasonRow) Entry(rank int) types.Entry {
	return types.Entry{
		Rank:          rank,
		ParticipantID: r.ParticipantID,
		DisplayName:   r.DisplayName,
		Points:        r.TotalPoints,
		Events:        r.EventsCounted,
		IsSimulated:   r.IsSimulated,
	}
}

// BuildSeasonTable scores every finisher of every event, humans and bots
// alike, once per event. Nothing is simulated. Rows are ordered like
// types.Entry.Less.
func BuildSeasonTable(results model.EventResults, calc *scoring.Calculator) []SeasonRow {
	if calc == nil {
		calc = scoring.NewCalculator()
	}
	events := lo.Keys(results)
	sort.Ints(events)

	index := make(map[string]*SeasonRow)
	var order []*SeasonRow
	for _, n := range events {
		counted := make(map[string]struct{})
		for _, r := range results[n] {
			if !r.Finished() || r.ParticipantID == "" {
				continue
			}
			if _, dup := counted[r.ParticipantID]; dup {
				continue
			}
			counted[r.ParticipantID] = struct{}{}

			row, ok := index[r.ParticipantID]
			if !ok {
				row = &SeasonRow{StandingsEntry: model.StandingsEntry{
					ParticipantID: r.ParticipantID,
					DisplayName:   r.DisplayName,
					IsSimulated:   r.IsSimulated,
				}}
				index[r.ParticipantID] = row
				order = append(order, row)
			}
			points := calc.Calculate(r.FinishPosition, n).Points
			row.TotalPoints += points
			row.EventsCounted++
			row.History = append(row.History, EventScore{EventNumber: n, Position: r.FinishPosition, Points: points})
			if r.Rating > 0 {
				row.Rating = r.Rating
			}
			if r.Team != "" {
				row.Team = r.Team
			}
		}
	}

	rows := make([]SeasonRow, len(order))
	for i, row := range order {
		row.RatingBand = model.RatingBand(row.Rating)
		rows[i] = *row
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Entry(0).Less(rows[j].Entry(0))
	})
	return rows
}

// Rider is a human and the events they appear in.
type Rider struct {
	ParticipantID   string `json:"participantId"`
	DisplayName     string `json:"displayName"`
	CompletedEvents []int  `json:"completedEvents"`
}

// DiscoverRiders lists every human in results, in first-seen order scanning
// events ascending. Any row counts as a completed event, DNFs included.
func DiscoverRiders(results model.EventResults) []Rider {
	events := lo.Keys(results)
	sort.Ints(events)

	index := make(map[string]int)
	var riders []Rider
	for _, n := range events {
		for _, r := range results[n] {
			if r.IsSimulated || r.ParticipantID == "" {
				continue
			}
			i, ok := index[r.ParticipantID]
			if !ok {
				i = len(riders)
				index[r.ParticipantID] = i
				riders = append(riders, Rider{ParticipantID: r.ParticipantID, DisplayName: r.DisplayName})
			}
			if !lo.Contains(riders[i].CompletedEvents, n) {
				riders[i].CompletedEvents = append(riders[i].CompletedEvents, n)
			}
		}
	}
	return riders
}

// Ordinal formats n as 1st, 2nd, 3rd, 11th and so on.
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
