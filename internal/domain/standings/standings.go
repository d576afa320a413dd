// Package standings builds career standings relative to one rider's race
// calendar.
//
// Humans are counted only in events the target rider completed. Every bot seen
// anywhere in the season is treated as always present: events it did not
// finish are filled with a seeded simulated position, so bot totals compare
// directly with a fully participating human. Large bot fields are downsampled
// by points stratum to keep tables bounded.
//
// Tied entries keep the order riders first finish a completed event, humans
// and bots alike, after the target. Bots seen only outside the calendar
// follow in season discovery order.
package standings

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/okian/careerstandings/internal/domain/model"
	"github.com/okian/careerstandings/internal/domain/scoring"
	"github.com/okian/careerstandings/internal/domain/simulation"
	"github.com/okian/careerstandings/pkg/logger"
	"github.com/okian/careerstandings/pkg/metrics"
)

// Defaults for the bot field.
const (
	DefaultMaxBots   = 80
	DefaultQuintiles = 5
	DefaultBotRating = 900
)

// Request is the input of one standings build.
type Request struct {
	Results    model.EventResults
	TargetID   string
	TargetName string
	// CompletedEvents is the target's race calendar. Duplicates are ignored.
	CompletedEvents []int
}

// Result is a ranked standings table for one target rider.
type Result struct {
	Standings []model.StandingsEntry `json:"standings"`
	// TargetRank is 1-based; 0 means the rider has no races yet.
	TargetRank   int               `json:"targetRank"`
	TargetPoints int               `json:"targetPoints"`
	Diagnostics  model.Diagnostics `json:"diagnostics,omitempty"`
}

// Ranked reports whether the target holds a place in the table.
func (r Result) Ranked() bool { return r.TargetRank > 0 }

// Builder computes standings. It holds no state between builds.
type Builder struct {
	calc             *scoring.Calculator
	maxBots          int
	quintiles        int
	fieldSize        int
	defaultBotRating int
	log              logger.Logger
}

// NewBuilder creates a builder. Without WithCalculator every event is scored
// on the fallback curve.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		calc:             scoring.NewCalculator(),
		maxBots:          DefaultMaxBots,
		quintiles:        DefaultQuintiles,
		fieldSize:        simulation.DefaultFieldSize,
		defaultBotRating: DefaultBotRating,
		log:              logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.quintiles > b.maxBots {
		b.quintiles = b.maxBots
	}
	return b
}

// scanSlot is one first sighting during the calendar scan: a human entry or
// a bot key.
type scanSlot struct {
	human *model.StandingsEntry
	bot   string
}

type botRecord struct {
	entry  *model.StandingsEntry
	finish map[int]model.Position
}

// Build ranks the target against every human who shared one of its completed
// events and every bot known to the season.
func (b *Builder) Build(ctx context.Context, req Request) (Result, error) {
	if req.Results == nil {
		return Result{}, ErrNoResults
	}
	if strings.TrimSpace(req.TargetID) == "" {
		return Result{}, ErrNoTarget
	}

	start := time.Now()
	completed := lo.Uniq(req.CompletedEvents)

	var out Result
	if len(completed) == 0 {
		b.log.Debug(ctx, "no completed events", logger.String("target", req.TargetID))
		return out, nil
	}
	out.Diagnostics = b.eventDiagnostics(req.Results, completed)

	target := &model.StandingsEntry{
		ParticipantID:       req.TargetID,
		DisplayName:         req.TargetName,
		EventsCounted:       len(completed),
		IsTargetParticipant: true,
	}
	humans := make(map[string]*model.StandingsEntry)
	// scanned lists humans and bots in the order they first finish a
	// completed event; it fixes the order of tied entries.
	var scanned []scanSlot
	botsSeen := make(map[string]struct{})

	for _, n := range completed {
		counted := make(map[string]struct{})
		targetSeen := false
		for _, r := range req.Results[n] {
			if !r.Finished() {
				continue
			}
			points := b.calc.Calculate(r.FinishPosition, n).Points

			if r.ParticipantID == req.TargetID {
				if targetSeen {
					continue
				}
				targetSeen = true
				target.TotalPoints += points
				refresh(target, r)
				if target.DisplayName == "" {
					target.DisplayName = r.DisplayName
				}
				continue
			}
			if r.IsSimulated {
				key := botKey(r)
				if _, ok := botsSeen[key]; !ok {
					botsSeen[key] = struct{}{}
					scanned = append(scanned, scanSlot{bot: key})
				}
				continue
			}
			if _, dup := counted[r.ParticipantID]; dup {
				continue
			}
			counted[r.ParticipantID] = struct{}{}

			h, ok := humans[r.ParticipantID]
			if !ok {
				h = &model.StandingsEntry{
					ParticipantID: r.ParticipantID,
					DisplayName:   r.DisplayName,
				}
				humans[r.ParticipantID] = h
				scanned = append(scanned, scanSlot{human: h})
			}
			h.TotalPoints += points
			h.EventsCounted++
			refresh(h, r)
		}
	}
	out.TargetPoints = target.TotalPoints

	bots := b.discoverBots(req.Results, req.TargetID)
	for _, bot := range bots {
		b.scoreBot(bot, req.Results, completed)
	}

	entries := make([]model.StandingsEntry, 0, 1+len(humans)+len(bots))
	entries = append(entries, *target)
	botIndex := lo.KeyBy(bots, func(bot *botRecord) string { return bot.entry.DisplayName })
	placed := make(map[string]struct{}, len(bots))
	for _, slot := range scanned {
		if slot.human != nil {
			entries = append(entries, *slot.human)
			continue
		}
		if bot, ok := botIndex[slot.bot]; ok {
			entries = append(entries, *bot.entry)
			placed[slot.bot] = struct{}{}
		}
	}
	for _, bot := range bots {
		if _, ok := placed[bot.entry.DisplayName]; !ok {
			entries = append(entries, *bot.entry)
		}
	}
	sortEntries(entries)

	entries, dropped := b.downsample(entries)
	if dropped > 0 {
		metrics.RecordBotsDownsampled(dropped)
		b.log.Debug(ctx, "bots downsampled",
			logger.Int("bots", len(bots)), logger.Int("dropped", dropped))
	}

	for i := range entries {
		entries[i].RatingBand = model.RatingBand(entries[i].Rating)
		if entries[i].IsTargetParticipant {
			out.TargetRank = i + 1
		}
	}
	out.Standings = entries

	latency := float64(time.Since(start).Microseconds()) / 1000
	metrics.RecordStandingsBuild(latency)
	b.log.Debug(ctx, "standings built",
		logger.String("target", req.TargetID),
		logger.Int("events", len(completed)),
		logger.Int("entries", len(entries)),
		logger.Int("rank", out.TargetRank),
		logger.Int("points", out.TargetPoints))
	return out, nil
}

// discoverBots collects every bot that finished any event, in ascending event
// order. Bots are keyed by display name.
func (b *Builder) discoverBots(results model.EventResults, targetID string) []*botRecord {
	events := lo.Keys(results)
	sort.Ints(events)

	index := make(map[string]*botRecord)
	var order []*botRecord
	for _, n := range events {
		for _, r := range results[n] {
			if !r.IsSimulated || !r.Finished() || r.ParticipantID == targetID {
				continue
			}
			key := botKey(r)
			bot, ok := index[key]
			if !ok {
				bot = &botRecord{
					entry: &model.StandingsEntry{
						ParticipantID: r.ParticipantID,
						DisplayName:   key,
						IsSimulated:   true,
					},
					finish: make(map[int]model.Position),
				}
				index[key] = bot
				order = append(order, bot)
			}
			if _, raced := bot.finish[n]; !raced {
				bot.finish[n] = r.FinishPosition
			}
			bot.entry.Rating = r.Rating
			if bot.entry.Rating <= 0 {
				bot.entry.Rating = b.defaultBotRating
			}
			if r.Team != "" {
				bot.entry.Team = r.Team
			}
			if r.ParticipantID != "" {
				bot.entry.ParticipantID = r.ParticipantID
			}
		}
	}
	return order
}

// scoreBot totals a bot over the completed calendar from scratch. Events with
// no loaded results score zero for everyone, bots included.
func (b *Builder) scoreBot(bot *botRecord, results model.EventResults, completed []int) {
	e := bot.entry
	e.TotalPoints = 0
	e.SimulatedEvents = 0
	for _, n := range completed {
		if len(results[n]) == 0 {
			continue
		}
		pos, raced := bot.finish[n]
		if !raced {
			pos = model.Position(simulation.SimulatePosition(e.DisplayName, e.Rating, n, b.fieldSize))
			e.SimulatedEvents++
		}
		e.TotalPoints += b.calc.Calculate(pos, n).Points
	}
	e.EventsCounted = len(completed)
}

// downsample keeps every human and at most maxBots bots, taken from the top of
// each of the contiguous points strata.
func (b *Builder) downsample(entries []model.StandingsEntry) ([]model.StandingsEntry, int) {
	humans := lo.Filter(entries, func(e model.StandingsEntry, _ int) bool { return !e.IsSimulated })
	bots := lo.Filter(entries, func(e model.StandingsEntry, _ int) bool { return e.IsSimulated })
	if len(bots) <= b.maxBots {
		return entries, 0
	}

	size := int(math.Ceil(float64(len(bots)) / float64(b.quintiles)))
	perStratum := b.maxBots / b.quintiles

	out := humans
	for q := 0; q < b.quintiles; q++ {
		from, to := q*size, min((q+1)*size, len(bots))
		if from >= to {
			break
		}
		stratum := bots[from:to]
		out = append(out, stratum[:min(perStratum, len(stratum))]...)
	}
	sortEntries(out)
	return out, len(entries) - len(out)
}

func (b *Builder) eventDiagnostics(results model.EventResults, completed []int) model.Diagnostics {
	var diags model.Diagnostics
	for _, n := range completed {
		if len(results[n]) == 0 {
			diags.Add(model.Diagnostic{
				Kind:        model.KindMissingEvent,
				EventNumber: n,
				Message:     "no results loaded; event contributes zero",
			})
		}
		if !b.calc.Configured(n) {
			diags.Add(model.Diagnostic{
				Kind:        model.KindUnconfiguredEvent,
				EventNumber: n,
				Message:     "no scoring profile; fallback curve used",
			})
		}
	}
	return diags
}

// sortEntries orders by points descending then fewer events. Ties keep their
// current order.
func sortEntries(entries []model.StandingsEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		return entries[i].EventsCounted < entries[j].EventsCounted
	})
}

func refresh(e *model.StandingsEntry, r model.EventResult) {
	if r.Rating > 0 {
		e.Rating = r.Rating
	}
	if r.Team != "" {
		e.Team = r.Team
	}
}

func botKey(r model.EventResult) string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.ParticipantID
}
