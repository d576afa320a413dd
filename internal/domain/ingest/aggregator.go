// Package ingest normalises per-event result exports into one record shape
// and collapses duplicate participants.
package ingest

import (
	"context"
	"sort"
	"strings"

	"github.com/okian/careerstandings/internal/domain/dedupe"
	"github.com/okian/careerstandings/internal/domain/model"
	"github.com/okian/careerstandings/pkg/logger"
	"github.com/okian/careerstandings/pkg/metrics"
)

const (
	defaultBotMarker       = "Bot"
	defaultDigestCacheSize = 256
)

// EventLoad is the aggregated outcome of loading one event's sources.
type EventLoad struct {
	EventNumber int
	Results     []model.EventResult
	Diagnostics model.Diagnostics
	// Sources counts files actually parsed.
	Sources int
	// Merged counts duplicate rows collapsed into an earlier row.
	Merged int
}

// Aggregator loads and de-duplicates event results. It holds no state between
// loads and is safe for concurrent use.
type Aggregator struct {
	strategy        dedupe.Strategy
	botIDPrefix     string
	botCategory     string
	digestCacheSize int
	adapters        map[Format]Adapter
	log             logger.Logger
}

// NewAggregator creates an aggregator with the CSV and JSON adapters.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		strategy:        dedupe.FirstWins{},
		botIDPrefix:     defaultBotMarker,
		botCategory:     defaultBotMarker,
		digestCacheSize: defaultDigestCacheSize,
		adapters: map[Format]Adapter{
			FormatCSV:  CSVAdapter{},
			FormatJSON: JSONAdapter{},
		},
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load parses every file for eventNumber into one de-duplicated result list.
// Data problems become diagnostics; Load never fails.
func (a *Aggregator) Load(ctx context.Context, eventNumber int, files []RawFile) EventLoad {
	load := EventLoad{EventNumber: eventNumber}
	set := dedupe.NewSet(a.strategy)
	digests := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(a.digestCacheSize))

	for _, file := range files {
		digest := dedupe.Digest(file.Data)
		if digests.SeenAndRecord(ctx, digest) {
			metrics.RecordDuplicateSource()
			load.Diagnostics.Add(model.Diagnostic{
				Kind:        model.KindDuplicateSource,
				EventNumber: eventNumber,
				Source:      file.Name,
				Message:     "identical to an earlier source in this event",
			})
			continue
		}

		format := DetectFormat(file)
		adapter, ok := a.adapters[format]
		if !ok {
			digests.Unrecord(ctx, digest)
			load.Diagnostics.Add(a.unreadable(eventNumber, file.Name, ErrUnknownFormat))
			continue
		}
		records, err := adapter.Parse(file)
		if err != nil {
			// Each unreadable copy is reported on its own.
			digests.Unrecord(ctx, digest)
			a.log.Warn(ctx, "unreadable result source",
				logger.Int("event", eventNumber), logger.String("source", file.Name), logger.Error(err))
			load.Diagnostics.Add(a.unreadable(eventNumber, file.Name, err))
			continue
		}
		load.Sources++

		for _, rec := range records {
			res, err := a.normalise(rec, eventNumber, file.Name)
			if err != nil {
				metrics.RecordRowSkipped(string(model.KindMalformedRow))
				load.Diagnostics.Add(model.Diagnostic{
					Kind:          model.KindMalformedRow,
					EventNumber:   eventNumber,
					Source:        file.Name,
					Row:           rec.Row,
					ParticipantID: rec.Result.ParticipantID,
					Message:       err.Error(),
				})
				continue
			}
			metrics.RecordResultLoaded(string(format))

			merged, out := set.Add(res)
			if !merged {
				continue
			}
			load.Merged++
			metrics.RecordDuplicateMerged()
			if out.Conflict {
				metrics.RecordDuplicateConflict()
				load.Diagnostics.Add(model.Diagnostic{
					Kind:          model.KindConflictingDuplicate,
					EventNumber:   eventNumber,
					Source:        file.Name,
					Row:           rec.Row,
					ParticipantID: res.ParticipantID,
					Message:       "position " + out.Incoming.String() + " ignored, " + a.strategy.Name() + " kept the earlier row",
				})
			}
		}
	}

	load.Results = set.Results()
	a.log.Debug(ctx, "event results loaded",
		logger.Int("event", eventNumber),
		logger.Int("sources", load.Sources),
		logger.Int("results", len(load.Results)),
		logger.Int("merged", load.Merged),
		logger.Int("diagnostics", len(load.Diagnostics)))
	return load
}

// LoadSeason loads every event in files and returns results keyed by event.
// Events are processed in ascending order so diagnostics are stable.
func (a *Aggregator) LoadSeason(ctx context.Context, files map[int][]RawFile) (model.EventResults, model.Diagnostics) {
	events := make([]int, 0, len(files))
	for n := range files {
		events = append(events, n)
	}
	sort.Ints(events)

	results := make(model.EventResults, len(events))
	var diags model.Diagnostics
	for _, n := range events {
		load := a.Load(ctx, n, files[n])
		results[n] = load.Results
		diags.Merge(load.Diagnostics)
	}
	return results, diags
}

// IsSimulated applies the bot rules: explicit flag, id prefix, or category.
func (a *Aggregator) IsSimulated(flag bool, participantID, category string) bool {
	if flag {
		return true
	}
	if a.botIDPrefix != "" && strings.HasPrefix(participantID, a.botIDPrefix) {
		return true
	}
	return a.botCategory != "" && category == a.botCategory
}

func (a *Aggregator) normalise(rec Record, eventNumber int, source string) (model.EventResult, error) {
	if rec.Err != nil {
		return model.EventResult{}, rec.Err
	}
	res := rec.Result
	res.ParticipantID = strings.TrimSpace(res.ParticipantID)
	res.DisplayName = strings.TrimSpace(res.DisplayName)
	res.EventNumber = eventNumber
	res.Source = source
	res.IsSimulated = a.IsSimulated(res.IsSimulated, res.ParticipantID, rec.Category)

	if res.ParticipantID == "" {
		// Bots are keyed by name downstream, so a name is enough identity.
		if !res.IsSimulated || res.DisplayName == "" {
			return model.EventResult{}, ErrMissingIdentity
		}
		res.ParticipantID = res.DisplayName
	}
	return res, nil
}

func (a *Aggregator) unreadable(eventNumber int, source string, err error) model.Diagnostic {
	metrics.RecordRowSkipped(string(model.KindUnreadableSource))
	return model.Diagnostic{
		Kind:        model.KindUnreadableSource,
		EventNumber: eventNumber,
		Source:      source,
		Message:     err.Error(),
	}
}
