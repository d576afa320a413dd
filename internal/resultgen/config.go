package resultgen

import (
	"errors"
	"fmt"
	"time"
)

// Format selects the export shape of generated files.
type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatMixed Format = "mixed"
)

// ErrInvalidConfig is returned for configurations Generate cannot use.
var ErrInvalidConfig = errors.New("invalid generator config")

// Config holds configuration for one generated season.
type Config struct {
	OutDir     string  // Root directory; files go under season_N/event_M
	Season     int     // Season number
	Events     []int   // Event numbers to generate
	Riders     int     // Number of human riders
	Bots       int     // Number of simulated riders
	Pens       int     // Pens per event, one file each
	Attendance float64 // Chance a rider starts a given event
	DNFRate    float64 // Chance a starter does not finish
	Format     Format  // Export shape
	Seed       int64   // Seed for reproducible output
	Workers    int     // Concurrent file writers
}

// DefaultConfig returns a small season matching the default calendar.
func DefaultConfig() Config {
	return Config{
		OutDir:     "race_results",
		Season:     1,
		Events:     []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
		Riders:     40,
		Bots:       120,
		Pens:       3,
		Attendance: 0.8,
		DNFRate:    0.03,
		Format:     FormatMixed,
		Seed:       1,
		Workers:    4,
	}
}

func (c Config) validate() error {
	switch {
	case c.OutDir == "":
		return fmt.Errorf("%w: empty output directory", ErrInvalidConfig)
	case c.Season < 1:
		return fmt.Errorf("%w: season %d", ErrInvalidConfig, c.Season)
	case len(c.Events) == 0:
		return fmt.Errorf("%w: no events", ErrInvalidConfig)
	case c.Riders < 0 || c.Bots < 0 || c.Riders+c.Bots == 0:
		return fmt.Errorf("%w: no riders", ErrInvalidConfig)
	case c.Pens < 1:
		return fmt.Errorf("%w: pens %d", ErrInvalidConfig, c.Pens)
	case c.Attendance <= 0 || c.Attendance > 1:
		return fmt.Errorf("%w: attendance %v", ErrInvalidConfig, c.Attendance)
	case c.DNFRate < 0 || c.DNFRate >= 1:
		return fmt.Errorf("%w: dnf rate %v", ErrInvalidConfig, c.DNFRate)
	}
	for _, n := range c.Events {
		if n < 1 {
			return fmt.Errorf("%w: event %d", ErrInvalidConfig, n)
		}
	}
	switch c.Format {
	case FormatJSON, FormatCSV, FormatMixed:
	default:
		return fmt.Errorf("%w: format %q", ErrInvalidConfig, c.Format)
	}
	return nil
}

// Stats holds generation statistics.
type Stats struct {
	Events    int
	Files     int
	Rows      int
	DNFs      int
	StartTime time.Time
	Duration  time.Duration
}
