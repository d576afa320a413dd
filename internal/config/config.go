// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and CAREER_* environment variables on top.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"runtime"
	"strconv"
)

// EventConfig is one row of the scoring profile table.
type EventConfig struct {
	Number      int    `koanf:"number"`
	Name        string `koanf:"name"`
	MaxPoints   int    `koanf:"max_points"`
	Elimination bool   `koanf:"elimination"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ResultsDir is the root holding season_N/event_M result exports.
	ResultsDir string `koanf:"results_dir"`

	// Season selects the season_N directory to load.
	Season int `koanf:"season"`

	// QueueSize bounds the in-memory rider job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of standings workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the source digest cache used during ingestion.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// MaxBots and Quintiles drive stratified downsampling of simulated riders.
	MaxBots   int `koanf:"max_bots"`
	Quintiles int `koanf:"quintiles"`

	// FieldSize is the simulated field size used to clamp bot positions.
	FieldSize int `koanf:"field_size"`

	// BotIDPrefix and BotCategory mark simulated riders in result exports.
	BotIDPrefix string `koanf:"bot_id_prefix"`
	BotCategory string `koanf:"bot_category"`

	// DefaultBotRating applies to bots that never reported a rating.
	DefaultBotRating int `koanf:"default_bot_rating"`

	// StageEvents lists the stage race events in order for the GC.
	StageEvents []int `koanf:"stage_events"`

	// Events is the scoring profile table.
	Events []EventConfig `koanf:"events"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		ResultsDir:          "race_results",
		Season:              1,
		QueueSize:           10_000,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          4_096,
		MaxLeaderboardLimit: 100,
		MaxBots:             80,
		Quintiles:           5,
		FieldSize:           50,
		BotIDPrefix:         "Bot",
		BotCategory:         "Bot",
		DefaultBotRating:    900,
		StageEvents:         []int{13, 14, 15},
		Events:              DefaultEvents(),
	}
}

// DefaultEvents returns the season one calendar.
func DefaultEvents() []EventConfig {
	return []EventConfig{
		{Number: 1, Name: "Coast and Roast Crit", MaxPoints: 65},
		{Number: 2, Name: "Island Classic", MaxPoints: 95},
		{Number: 3, Name: "The Forest Velodrome Elimination", MaxPoints: 50, Elimination: true},
		{Number: 4, Name: "Coastal Loop Time Challenge", MaxPoints: 50},
		{Number: 5, Name: "North Lake Points Race", MaxPoints: 80},
		{Number: 6, Name: "Easy Hill Climb", MaxPoints: 50},
		{Number: 7, Name: "Flat Eight Criterium", MaxPoints: 70},
		{Number: 8, Name: "The Grand Gilbert Fondo", MaxPoints: 185},
		{Number: 9, Name: "Base Camp Classic", MaxPoints: 85},
		{Number: 10, Name: "Beach and Pine TT", MaxPoints: 70},
		{Number: 11, Name: "South Lake Points Race", MaxPoints: 60},
		{Number: 12, Name: "Unbound - Little Egypt", MaxPoints: 145},
		{Number: 13, Name: "Local Tour Stage 1", MaxPoints: 120},
		{Number: 14, Name: "Local Tour Stage 2", MaxPoints: 95},
		{Number: 15, Name: "Local Tour Stage 3", MaxPoints: 135},
		{Number: 102, Name: "The Leveller", MaxPoints: 40},
	}
}

// EventName returns the configured display name, or "Event N".
func (c *Config) EventName(number int) string {
	for _, e := range c.Events {
		if e.Number == number && e.Name != "" {
			return e.Name
		}
	}
	return "Event " + strconv.Itoa(number)
}
