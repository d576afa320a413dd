package service

import (
	"context"
	"sync"

	"github.com/okian/careerstandings/internal/domain/model"
	"github.com/okian/careerstandings/internal/domain/standings"
	"github.com/okian/careerstandings/pkg/logger"
)

// standingsCache holds the latest built table per rider for the current
// results generation. Results from older generations are dropped.
type standingsCache struct {
	mu         sync.RWMutex
	generation uint64
	tables     map[string]standings.Result
	failures   map[string]error
	log        logger.Logger
}

func newStandingsCache(log logger.Logger) *standingsCache {
	return &standingsCache{
		tables:   make(map[string]standings.Result),
		failures: make(map[string]error),
		log:      log,
	}
}

// reset starts a new generation and forgets every cached table.
func (c *standingsCache) reset(generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation = generation
	c.tables = make(map[string]standings.Result)
	c.failures = make(map[string]error)
}

// Put implements worker.Sink.
func (c *standingsCache) Put(ctx context.Context, j model.RiderJob, res standings.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if j.Generation != c.generation {
		c.log.Debug(ctx, "dropping stale standings",
			logger.String("participant_id", j.ParticipantID),
			logger.Any("job_generation", j.Generation),
			logger.Any("generation", c.generation))
		return
	}
	c.tables[j.ParticipantID] = res
	delete(c.failures, j.ParticipantID)
}

// Fail implements worker.Sink.
func (c *standingsCache) Fail(ctx context.Context, j model.RiderJob, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if j.Generation != c.generation {
		return
	}
	c.failures[j.ParticipantID] = err
	c.log.Warn(ctx, "standings build failed",
		logger.String("participant_id", j.ParticipantID),
		logger.Error(err))
}

func (c *standingsCache) get(participantID string) (standings.Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.tables[participantID]
	return res, ok
}

func (c *standingsCache) counts() (built, failed int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables), len(c.failures)
}
