// Package repository holds the ranked season table.
package repository

import (
	"context"

	"github.com/okian/careerstandings/internal/domain/types"
)

// Store provides read/write access to the season table.
// Rank fields of stored entries are ignored and recomputed on read.
type Store interface {
	// Upsert inserts or replaces one participant's row.
	Upsert(ctx context.Context, e types.Entry) error
	// Replace swaps the whole table for entries.
	Replace(ctx context.Context, entries []types.Entry) error

	// Rank returns the participant's row with its 1-based rank.
	// Returns ErrNotFound if the participant is unknown.
	Rank(ctx context.Context, participantID string) (types.Entry, error)

	// TopN returns the first n rows in table order.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	// Count returns the number of participants in the table.
	Count(ctx context.Context) int
}
