package gc

import "github.com/okian/careerstandings/pkg/logger"

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithStages sets the stage event numbers, in race order.
func WithStages(stages ...int) Option {
	return func(c *Calculator) {
		if len(stages) > 0 {
			c.stages = append([]int(nil), stages...)
		}
	}
}

// WithDefaultRating sets the rating assumed for riders that report none.
func WithDefaultRating(r int) Option {
	return func(c *Calculator) {
		if r > 0 {
			c.defaultRating = r
		}
	}
}

// WithDNSRate sets the chance that a bot missing the second stage abandons
// the race.
func WithDNSRate(p float64) Option {
	return func(c *Calculator) {
		if p >= 0 && p <= 1 {
			c.dnsRate = p
		}
	}
}

// WithLogger sets the calculator's logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Calculator) {
		if l != nil {
			c.log = l
		}
	}
}
