// Package service wires ingestion, scoring and standings into the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"

	"github.com/okian/careerstandings/internal/adapters/mq/queue"
	"github.com/okian/careerstandings/internal/adapters/mq/worker"
	"github.com/okian/careerstandings/internal/adapters/repository"
	"github.com/okian/careerstandings/internal/domain/gc"
	"github.com/okian/careerstandings/internal/domain/ingest"
	"github.com/okian/careerstandings/internal/domain/model"
	"github.com/okian/careerstandings/internal/domain/scoring"
	"github.com/okian/careerstandings/internal/domain/standings"
	"github.com/okian/careerstandings/internal/domain/types"
	"github.com/okian/careerstandings/pkg/logger"
)

// Source lists the result files of one season keyed by event number.
type Source interface {
	Season(ctx context.Context, season int) (map[int][]ingest.RawFile, error)
}

// Service implements the API dependencies for the standings system.
type Service struct {
	mu sync.RWMutex

	// Core components
	table      repository.Store
	queue      queue.Queue
	pool       *worker.Pool
	aggregator *ingest.Aggregator
	calc       *scoring.Calculator
	builder    *standings.Builder
	gc         *gc.Calculator
	cache      *standingsCache
	source     Source

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	season        int
	profiles      []scoring.Profile
	botIDPrefix   string
	botCategory   string
	stages        []int
	standingsOpts []standings.Option

	// State
	started     bool
	cancel      context.CancelFunc
	results     model.EventResults
	riders      map[string]standings.Rider
	diagnostics model.Diagnostics
	generation  uint64
	lastRefresh time.Time
	inline      atomic.Int64

	// Logging
	logger logger.Logger
}

// New constructs a new Service. Domain components are ready immediately;
// the season table, queue and workers are created by Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   10_000,
		dedupeSize:  4_096,
		season:      1,
		botIDPrefix: "Bot",
		botCategory: "Bot",
		results:     model.EventResults{},
		riders:      map[string]standings.Rider{},
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.calc = scoring.NewCalculator(
		scoring.WithProfiles(s.profiles...),
		scoring.WithLogger(s.logger.Named("scoring")),
	)
	s.aggregator = ingest.NewAggregator(
		ingest.WithBotIDPrefix(s.botIDPrefix),
		ingest.WithBotCategory(s.botCategory),
		ingest.WithDigestCacheSize(s.dedupeSize),
		ingest.WithLogger(s.logger.Named("ingest")),
	)
	builderOpts := append([]standings.Option{
		standings.WithCalculator(s.calc),
		standings.WithLogger(s.logger.Named("standings")),
	}, s.standingsOpts...)
	s.builder = standings.NewBuilder(builderOpts...)
	s.gc = gc.NewCalculator(
		gc.WithStages(s.stages...),
		gc.WithLogger(s.logger.Named("gc")),
	)
	s.cache = newStandingsCache(s.logger)

	return s
}

// Start creates the season table and worker pool, then loads the configured
// season when a source is set.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}

	s.logger.Info(ctx, "starting standings service...")

	s.table = repository.NewTreapStore()
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s, s.cache, worker.WithLogger(s.logger))

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)
	s.started = true
	s.mu.Unlock()

	s.logger.Info(ctx, "standings service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("season", s.season),
	)

	if s.source == nil {
		return nil
	}
	return s.Refresh(ctx)
}

// Stop drains queued jobs and shuts the workers down.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	pool, cancel := s.pool, s.cancel
	s.started = false
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping standings service...")

	// Workers read results under the read lock, so wait for them unlocked.
	err := pool.Shutdown(ctx)
	cancel()

	s.logger.Info(ctx, "standings service stopped")
	return err
}

// Refresh reloads the configured season from the source.
func (s *Service) Refresh(ctx context.Context) error {
	if s.source == nil {
		return ErrNoSource
	}
	files, err := s.source.Season(ctx, s.season)
	if err != nil {
		return fmt.Errorf("read season %d: %w", s.season, err)
	}
	return s.Ingest(ctx, files)
}

// Ingest replaces the loaded results with files, rebuilds the season table
// and queues a standings job for every human rider. When the queue is full
// the job is built inline.
func (s *Service) Ingest(ctx context.Context, files map[int][]ingest.RawFile) error {
	s.mu.RLock()
	started, table, q := s.started, s.table, s.queue
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}

	start := time.Now()
	results, diags := s.aggregator.LoadSeason(ctx, files)

	rows := standings.BuildSeasonTable(results, s.calc)
	entries := lo.Map(rows, func(r standings.SeasonRow, i int) types.Entry { return r.Entry(i + 1) })
	if err := table.Replace(ctx, entries); err != nil {
		return fmt.Errorf("replace season table: %w", err)
	}

	riders := standings.DiscoverRiders(results)

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.results = results
	s.riders = lo.KeyBy(riders, func(r standings.Rider) string { return r.ParticipantID })
	s.diagnostics = diags
	s.lastRefresh = time.Now()
	s.cache.reset(gen)
	s.mu.Unlock()

	inline := 0
	for _, r := range riders {
		j := riderJob(gen, r)
		err := q.Enqueue(ctx, j)
		switch {
		case err == nil:
		case errors.Is(err, queue.ErrFull):
			inline++
			s.buildInline(ctx, j)
		default:
			return fmt.Errorf("enqueue standings for %s: %w", r.ParticipantID, err)
		}
	}

	s.logger.Info(ctx, "season loaded",
		logger.Int("season", s.season),
		logger.Int("events", len(results)),
		logger.Int("participants", len(entries)),
		logger.Int("riders", len(riders)),
		logger.Int("diagnostics", len(diags)),
		logger.Int("inline_builds", inline),
		logger.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
	)
	for _, d := range diags {
		s.logger.Debug(ctx, "diagnostic", logger.String("detail", d.String()))
	}
	return nil
}

// BuildRider builds one rider's standings against the loaded results.
// It implements worker.Builder.
func (s *Service) BuildRider(ctx context.Context, j model.RiderJob) (standings.Result, error) {
	s.mu.RLock()
	results := s.results
	s.mu.RUnlock()

	return s.builder.Build(ctx, standings.Request{
		Results:         results,
		TargetID:        j.ParticipantID,
		TargetName:      j.DisplayName,
		CompletedEvents: j.CompletedEvents,
	})
}

func (s *Service) buildInline(ctx context.Context, j model.RiderJob) {
	s.inline.Add(1)
	res, err := s.BuildRider(ctx, j)
	if err != nil {
		s.cache.Fail(ctx, j, err)
		return
	}
	s.cache.Put(ctx, j, res)
}

// Standings returns a rider's standings table, building it on demand when
// the workers have not reached it yet.
func (s *Service) Standings(ctx context.Context, participantID string) (standings.Result, error) {
	s.mu.RLock()
	rider, ok := s.riders[participantID]
	gen := s.generation
	s.mu.RUnlock()
	if !ok {
		return standings.Result{}, fmt.Errorf("%s: %w", participantID, ErrUnknownRider)
	}

	if res, ok := s.cache.get(participantID); ok {
		return res, nil
	}
	j := riderJob(gen, rider)
	res, err := s.BuildRider(ctx, j)
	if err != nil {
		return standings.Result{}, err
	}
	s.cache.Put(ctx, j, res)
	return res, nil
}

// Rider returns a loaded human rider.
func (s *Service) Rider(participantID string) (standings.Rider, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.riders[participantID]
	return r, ok
}

// TopN returns the first n rows of the season table.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	table, err := s.seasonTable()
	if err != nil {
		return nil, err
	}
	return table.TopN(ctx, n)
}

// Rank returns a participant's season table row.
func (s *Service) Rank(ctx context.Context, participantID string) (types.Entry, error) {
	table, err := s.seasonTable()
	if err != nil {
		return types.Entry{}, err
	}
	return table.Rank(ctx, participantID)
}

// GC computes the general classification through stage event through.
func (s *Service) GC(ctx context.Context, through int) (gc.Classification, error) {
	s.mu.RLock()
	results := s.results
	s.mu.RUnlock()
	return s.gc.Calculate(ctx, results, through)
}

// Stages returns the stage race events in order.
func (s *Service) Stages() []int { return s.gc.Stages() }

// Diagnostics returns the findings of the last load.
func (s *Service) Diagnostics() model.Diagnostics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(model.Diagnostics(nil), s.diagnostics...)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"season":      s.season,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"generation":  s.generation,
		"events":      len(s.results),
		"riders":      len(s.riders),
		"diagnostics": diagnosticCounts(s.diagnostics),
	}
	if !s.lastRefresh.IsZero() {
		stats["lastRefresh"] = s.lastRefresh.UTC().Format(time.RFC3339)
	}

	built, failed := s.cache.counts()
	stats["standingsBuilt"] = built
	stats["standingsFailed"] = failed
	stats["inlineBuilds"] = s.inline.Load()

	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["participants"] = s.table.Count(ctx)
		stats["jobsProcessed"] = s.pool.Processed()
	}

	return stats
}

func (s *Service) seasonTable() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return nil, ErrNotStarted
	}
	return s.table, nil
}

func riderJob(gen uint64, r standings.Rider) model.RiderJob {
	return model.RiderJob{
		Generation:      gen,
		ParticipantID:   r.ParticipantID,
		DisplayName:     r.DisplayName,
		CompletedEvents: r.CompletedEvents,
	}
}

func diagnosticCounts(ds model.Diagnostics) map[string]int {
	counts := lo.CountValuesBy(ds, func(d model.Diagnostic) string { return string(d.Kind) })
	if counts == nil {
		counts = map[string]int{}
	}
	return counts
}
