// Package scoring turns finish positions into career points.
package scoring

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/okian/careerstandings/internal/domain/model"
	"github.com/okian/careerstandings/pkg/logger"
	"github.com/okian/careerstandings/pkg/metrics"
)

// Curve constants.
const (
	standardCutoff    = 40
	standardSpan      = 78
	standardFloorGap  = 10
	eliminationCutoff = 20
	eliminationTop    = 45
	eliminationRange  = 35.0 / 19.0
	fallbackTop       = 100
	fallbackStep      = 2
)

// Profile is the scoring configuration for one event.
type Profile struct {
	EventNumber int
	Name        string
	MaxPoints   int
	// Elimination selects the 20-rider elimination curve.
	Elimination bool
}

// Result holds the points awarded for one finish.
// BonusPoints is reported separately only by CalculateWithPrediction; on the
// plain path the podium bonus is folded into Points and BonusPoints stays 0.
type Result struct {
	Points      int `json:"points"`
	BonusPoints int `json:"bonusPoints"`
}

// Calculator maps (position, event) to points. It is safe for concurrent use.
type Calculator struct {
	profiles map[int]Profile
	log      logger.Logger

	mu     sync.Mutex
	warned map[int]struct{}
}

// NewCalculator creates a calculator. Without WithProfiles every event uses
// the fallback linear curve.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		profiles: make(map[int]Profile),
		log:      logger.Nop(),
		warned:   make(map[int]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Profile returns the profile for eventNumber.
func (c *Calculator) Profile(eventNumber int) (Profile, bool) {
	p, ok := c.profiles[eventNumber]
	return p, ok
}

// Configured reports whether eventNumber has a scoring profile.
func (c *Calculator) Configured(eventNumber int) bool {
	_, ok := c.profiles[eventNumber]
	return ok
}

// Events returns the configured event numbers in ascending order.
func (c *Calculator) Events() []int {
	out := make([]int, 0, len(c.profiles))
	for n := range c.profiles {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Calculate returns the points for finishing at position in eventNumber.
func (c *Calculator) Calculate(position model.Position, eventNumber int) Result {
	if position.IsDNF() {
		return Result{}
	}
	p := position.Int()

	profile, ok := c.profiles[eventNumber]
	if !ok {
		c.warnUnconfigured(eventNumber)
		return Result{Points: max(0, fallbackTop-(p-1)*fallbackStep)}
	}

	if profile.Elimination {
		if p > eliminationCutoff {
			return Result{}
		}
		base := eliminationTop - float64(p-1)*eliminationRange
		return Result{Points: roundHalfUp(base + float64(podiumBonus(p)))}
	}

	if p > standardCutoff {
		return Result{}
	}
	maxPts := float64(profile.MaxPoints)
	slope := (maxPts - standardFloorGap) / standardSpan
	base := maxPts/2 + float64(standardCutoff-p)*slope
	return Result{Points: roundHalfUp(base + float64(podiumBonus(p)))}
}

func (c *Calculator) warnUnconfigured(eventNumber int) {
	metrics.RecordUnconfiguredEvent(eventNumber)

	c.mu.Lock()
	_, seen := c.warned[eventNumber]
	c.warned[eventNumber] = struct{}{}
	c.mu.Unlock()

	if !seen {
		c.log.Warn(context.Background(), "no scoring profile for event, using fallback curve",
			logger.Int("event", eventNumber))
	}
}

func podiumBonus(p int) int {
	switch p {
	case 1:
		return 5
	case 2:
		return 3
	case 3:
		return 2
	default:
		return 0
	}
}

// roundHalfUp rounds to the nearest integer with .5 going up, for negative
// values too.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
