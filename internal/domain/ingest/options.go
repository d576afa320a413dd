package ingest

import (
	"github.com/okian/careerstandings/internal/domain/dedupe"
	"github.com/okian/careerstandings/pkg/logger"
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithStrategy sets the duplicate merge strategy.
func WithStrategy(s dedupe.Strategy) Option {
	return func(a *Aggregator) {
		if s != nil {
			a.strategy = s
		}
	}
}

// WithBotIDPrefix sets the participant id prefix that marks bots.
func WithBotIDPrefix(prefix string) Option {
	return func(a *Aggregator) {
		a.botIDPrefix = prefix
	}
}

// WithBotCategory sets the category/gender value that marks bots.
func WithBotCategory(category string) Option {
	return func(a *Aggregator) {
		a.botCategory = category
	}
}

// WithDigestCacheSize bounds the per-load source digest cache.
func WithDigestCacheSize(n int) Option {
	return func(a *Aggregator) {
		a.digestCacheSize = n
	}
}

// WithAdapter registers or replaces the adapter for its format.
func WithAdapter(ad Adapter) Option {
	return func(a *Aggregator) {
		if ad != nil {
			a.adapters[ad.Format()] = ad
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}
