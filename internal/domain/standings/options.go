package standings

import (
	"github.com/okian/careerstandings/internal/domain/scoring"
	"github.com/okian/careerstandings/pkg/logger"
)

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithMaxBots bounds the simulated entries kept in a table.
func WithMaxBots(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.maxBots = n
		}
	}
}

// WithQuintiles sets how many contiguous strata bots are drawn from when the
// table is downsampled.
func WithQuintiles(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.quintiles = n
		}
	}
}

// WithFieldSize sets the field size used when simulating a bot's finish.
func WithFieldSize(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.fieldSize = n
		}
	}
}

// WithDefaultBotRating sets the rating assumed for bots that never report one.
func WithDefaultBotRating(r int) Option {
	return func(b *Builder) {
		if r > 0 {
			b.defaultBotRating = r
		}
	}
}

// WithCalculator sets the points calculator.
func WithCalculator(c *scoring.Calculator) Option {
	return func(b *Builder) {
		if c != nil {
			b.calc = c
		}
	}
}

// WithLogger sets the builder's logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}
