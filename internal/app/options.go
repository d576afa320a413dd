package service

import (
	"github.com/samber/lo"

	"github.com/okian/careerstandings/internal/config"
	"github.com/okian/careerstandings/internal/domain/scoring"
	"github.com/okian/careerstandings/internal/domain/standings"
	"github.com/okian/careerstandings/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of standings workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the rider job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the source digest cache used per event.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSeason selects the season to load.
func WithSeason(season int) Option {
	return func(s *Service) {
		if season > 0 {
			s.season = season
		}
	}
}

// WithSource sets where result files come from.
func WithSource(src Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithProfiles sets the scoring profile table.
func WithProfiles(profiles ...scoring.Profile) Option {
	return func(s *Service) {
		s.profiles = profiles
	}
}

// WithBotMarkers sets the id prefix and category that mark simulated riders.
func WithBotMarkers(idPrefix, category string) Option {
	return func(s *Service) {
		s.botIDPrefix = idPrefix
		s.botCategory = category
	}
}

// WithStandingsOptions passes options through to the standings builder.
func WithStandingsOptions(opts ...standings.Option) Option {
	return func(s *Service) {
		s.standingsOpts = append(s.standingsOpts, opts...)
	}
}

// WithStages sets the stage race events used for the general classification.
func WithStages(stages ...int) Option {
	return func(s *Service) {
		if len(stages) > 0 {
			s.stages = append([]int(nil), stages...)
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// FromConfig maps a loaded Config onto service options.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithSeason(cfg.Season),
		WithProfiles(ProfilesFromConfig(cfg.Events)...),
		WithBotMarkers(cfg.BotIDPrefix, cfg.BotCategory),
		WithStages(cfg.StageEvents...),
		WithStandingsOptions(
			standings.WithMaxBots(cfg.MaxBots),
			standings.WithQuintiles(cfg.Quintiles),
			standings.WithFieldSize(cfg.FieldSize),
			standings.WithDefaultBotRating(cfg.DefaultBotRating),
		),
	}
}

// ProfilesFromConfig converts the configured event table to scoring profiles.
func ProfilesFromConfig(events []config.EventConfig) []scoring.Profile {
	return lo.Map(events, func(e config.EventConfig, _ int) scoring.Profile {
		return scoring.Profile{
			EventNumber: e.Number,
			Name:        e.Name,
			MaxPoints:   e.MaxPoints,
			Elimination: e.Elimination,
		}
	})
}
