package scoring

import "github.com/okian/careerstandings/pkg/logger"

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithProfiles installs the scoring profile table. Later profiles for the
// same event number replace earlier ones.
func WithProfiles(profiles ...Profile) Option {
	return func(c *Calculator) {
		for _, p := range profiles {
			if p.MaxPoints > 0 {
				c.profiles[p.EventNumber] = p
			}
		}
	}
}

// WithLogger sets the logger used for unconfigured-event warnings.
func WithLogger(l logger.Logger) Option {
	return func(c *Calculator) {
		if l != nil {
			c.log = l
		}
	}
}
