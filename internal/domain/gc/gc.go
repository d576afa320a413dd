// Package gc computes the general classification of the season's stage race.
package gc

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"github.com/okian/careerstandings/internal/domain/model"
	"github.com/okian/careerstandings/internal/domain/simulation"
	"github.com/okian/careerstandings/pkg/logger"
)

const (
	defaultRating    = 1000
	defaultDNSRate   = 0.05
	defaultFieldSize = simulation.DefaultFieldSize
	fallbackMedian   = 3600.0
	fallbackSlowest  = 4000.0
)

// DefaultStages are the stage race events of a season.
var DefaultStages = []int{13, 14, 15}

// podium bonus awarded on the final classification.
var podium = map[int]int{1: 50, 2: 35, 3: 25}

// StageTime is one rider's time on one stage.
type StageTime struct {
	EventNumber int     `json:"eventNumber"`
	Seconds     float64 `json:"seconds"`
	Simulated   bool    `json:"simulated,omitempty"`
}

// Standing is one classified rider.
type Standing struct {
	Position          int         `json:"position"`
	ParticipantID     string      `json:"participantId"`
	DisplayName       string      `json:"displayName"`
	Team              string      `json:"team,omitempty"`
	Rating            int         `json:"rating"`
	IsSimulated       bool        `json:"isSimulated"`
	CumulativeSeconds float64     `json:"cumulativeSeconds"`
	GapSeconds        float64     `json:"gapSeconds"`
	Stages            []StageTime `json:"stages"`
	// ActualStages counts stages the rider really raced.
	ActualStages int `json:"actualStages"`
}

// Classification is the GC through some stage.
type Classification struct {
	Stages []int `json:"stages"`
	// Provisional is set until the final stage is included.
	Provisional bool       `json:"provisional"`
	Standings   []Standing `json:"standings"`
}

// Lookup returns the standing of participantID.
func (c Classification) Lookup(participantID string) (Standing, bool) {
	return lo.Find(c.Standings, func(s Standing) bool { return s.ParticipantID == participantID })
}

// BonusPoints returns the career points earned by a final GC podium.
func (c Classification) BonusPoints(participantID string) int {
	if c.Provisional {
		return 0
	}
	s, ok := c.Lookup(participantID)
	if !ok {
		return 0
	}
	return podium[s.Position]
}

// Calculator computes stage race classifications. It holds no state between
// calls.
type Calculator struct {
	stages        []int
	defaultRating int
	dnsRate       float64
	log           logger.Logger
}

// NewCalculator creates a calculator over DefaultStages.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		stages:        DefaultStages,
		defaultRating: defaultRating,
		dnsRate:       defaultDNSRate,
		log:           logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stages returns the configured stage events.
func (c *Calculator) Stages() []int {
	return append([]int(nil), c.stages...)
}

type rider struct {
	id, name, team string
	rating         int
	bot            bool
	times          map[int]StageTime
}

type stageField struct {
	size    int
	median  float64
	slowest float64
}

// Calculate classifies riders over every stage up to and including through.
// Humans classify only with a finish on every stage. Bots missing a stage get
// a seeded simulated time, unless they are drawn to not start after missing
// the second stage.
func (c *Calculator) Calculate(ctx context.Context, results model.EventResults, through int) (Classification, error) {
	stages := lo.Filter(c.stages, func(n int, _ int) bool { return n <= through })
	available := lo.Filter(stages, func(n int, _ int) bool { return len(results[n]) > 0 })
	if len(available) == 0 {
		return Classification{}, ErrNoStageResults
	}

	riders := make(map[string]*rider)
	var order []*rider
	fields := make(map[int]stageField, len(stages))
	for _, n := range stages {
		fields[n] = newStageField(results[n])
		for _, r := range results[n] {
			if !r.Finished() || r.ParticipantID == "" {
				continue
			}
			rd, ok := riders[r.ParticipantID]
			if !ok {
				rd = &rider{
					id:     r.ParticipantID,
					name:   r.DisplayName,
					team:   r.Team,
					rating: r.Rating,
					bot:    r.IsSimulated,
					times:  make(map[int]StageTime),
				}
				if rd.rating <= 0 {
					rd.rating = c.defaultRating
				}
				riders[r.ParticipantID] = rd
				order = append(order, rd)
			}
			if _, dup := rd.times[n]; !dup {
				rd.times[n] = StageTime{EventNumber: n, Seconds: r.TimeSeconds}
			}
		}
	}

	dns := c.nonStarters(order, stages, available)
	for _, rd := range order {
		if !rd.bot || dns[rd.id] {
			continue
		}
		for _, n := range stages {
			if _, raced := rd.times[n]; raced {
				continue
			}
			f := fields[n]
			pos := simulation.SimulatePosition(rd.id, rd.rating, n, f.size)
			ratio := float64(pos-1) / float64(f.size)
			rd.times[n] = StageTime{
				EventNumber: n,
				Seconds:     f.median + (f.slowest-f.median)*ratio,
				Simulated:   true,
			}
		}
	}

	var out []Standing
	for _, rd := range order {
		if dns[rd.id] || len(rd.times) != len(stages) {
			continue
		}
		s := Standing{
			ParticipantID: rd.id,
			DisplayName:   rd.name,
			Team:          rd.team,
			Rating:        rd.rating,
			IsSimulated:   rd.bot,
		}
		for _, n := range stages {
			t := rd.times[n]
			s.CumulativeSeconds += t.Seconds
			s.Stages = append(s.Stages, t)
			if !t.Simulated {
				s.ActualStages++
			}
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CumulativeSeconds < out[j].CumulativeSeconds })
	for i := range out {
		out[i].Position = i + 1
		out[i].GapSeconds = out[i].CumulativeSeconds - out[0].CumulativeSeconds
	}

	cls := Classification{
		Stages:      stages,
		Provisional: through < c.stages[len(c.stages)-1],
		Standings:   out,
	}
	c.log.Debug(ctx, "general classification computed",
		logger.Ints("stages", stages),
		logger.Int("classified", len(out)),
		logger.Int("not_started", len(dns)),
		logger.Bool("provisional", cls.Provisional))
	return cls, nil
}

// nonStarters draws which bots abandon after missing the second stage.
func (c *Calculator) nonStarters(riders []*rider, stages, available []int) map[string]bool {
	dns := make(map[string]bool)
	if len(stages) < 2 || !lo.Contains(available, stages[1]) {
		return dns
	}
	second := stages[1]
	for _, rd := range riders {
		if !rd.bot {
			continue
		}
		if _, raced := rd.times[second]; raced {
			continue
		}
		if simulation.Draw(rd.id, second) < c.dnsRate {
			dns[rd.id] = true
		}
	}
	return dns
}

// newStageField summarises a stage's finishers for time interpolation.
func newStageField(rows []model.EventResult) stageField {
	f := stageField{size: len(rows), median: fallbackMedian, slowest: fallbackSlowest}
	if f.size == 0 {
		f.size = defaultFieldSize
	}
	times := lo.FilterMap(rows, func(r model.EventResult, _ int) (float64, bool) {
		return r.TimeSeconds, r.Finished() && r.TimeSeconds > 0
	})
	if len(times) == 0 {
		return f
	}
	sort.Float64s(times)
	f.median = times[len(times)/2]
	f.slowest = times[len(times)-1]
	return f
}
