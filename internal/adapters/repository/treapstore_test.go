package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/okian/careerstandings/internal/domain/types"
)

func entry(id string, points, events int) types.Entry {
	return types.Entry{ParticipantID: id, DisplayName: "Rider " + id, Points: points, Events: events}
}

func TestTreapStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	if err := store.Upsert(ctx, entry("a", 100, 3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	got, err := store.Rank(ctx, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Rank != 1 || got.Points != 100 || got.Events != 3 {
		t.Errorf("unexpected entry %+v", got)
	}

	top, err := store.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(top) != 1 || top[0].ParticipantID != "a" || top[0].Rank != 1 {
		t.Errorf("unexpected top %+v", top)
	}
}

func TestTreapStore_Ordering(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	rows := []types.Entry{
		entry("c", 90, 2),
		entry("a", 100, 4),
		entry("b", 100, 3),
		entry("d", 90, 2),
		entry("e", 10, 1),
	}
	for _, e := range rows {
		if err := store.Upsert(ctx, e); err != nil {
			t.Fatalf("upsert %s: %v", e.ParticipantID, err)
		}
	}

	want := []string{"b", "a", "c", "d", "e"}
	top, _ := store.TopN(ctx, 10)
	for i, id := range want {
		if top[i].ParticipantID != id {
			t.Fatalf("position %d: expected %s, got %s", i+1, id, top[i].ParticipantID)
		}
		if top[i].Rank != i+1 {
			t.Errorf("%s: expected rank %d, got %d", id, i+1, top[i].Rank)
		}
		got, err := store.Rank(ctx, id)
		if err != nil {
			t.Fatalf("rank %s: %v", id, err)
		}
		if got.Rank != i+1 {
			t.Errorf("Rank(%s) = %d, want %d", id, got.Rank, i+1)
		}
	}
}

func TestTreapStore_UpsertReplacesRow(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	_ = store.Upsert(ctx, entry("a", 50, 1))
	_ = store.Upsert(ctx, entry("b", 40, 1))
	_ = store.Upsert(ctx, entry("a", 30, 2))

	if count := store.Count(ctx); count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}
	got, _ := store.Rank(ctx, "a")
	if got.Rank != 2 || got.Points != 30 {
		t.Errorf("expected a at rank 2 with 30 points, got %+v", got)
	}
	top, _ := store.TopN(ctx, 5)
	if len(top) != 2 || top[0].ParticipantID != "b" {
		t.Errorf("unexpected top %+v", top)
	}
}

func TestTreapStore_Replace(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()
	_ = store.Upsert(ctx, entry("old", 1000, 1))

	err := store.Replace(ctx, []types.Entry{entry("x", 5, 1), entry("y", 7, 1), entry("x", 9, 2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Rank(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for replaced row, got %v", err)
	}
	if count := store.Count(ctx); count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}
	got, _ := store.Rank(ctx, "x")
	if got.Rank != 1 || got.Points != 9 {
		t.Errorf("later duplicate should win, got %+v", got)
	}

	if err := store.Replace(ctx, []types.Entry{entry("z", 1, 1), {Points: 3}}); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry, got %v", err)
	}
	if count := store.Count(ctx); count != 2 {
		t.Errorf("failed replace must not change the table, count %d", count)
	}
}

func TestTreapStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	if _, err := store.Rank(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	for _, n := range []int{0, -1} {
		if _, err := store.TopN(ctx, n); !errors.Is(err, ErrInvalidLimit) {
			t.Errorf("TopN(%d): expected ErrInvalidLimit, got %v", n, err)
		}
	}
	if err := store.Upsert(ctx, types.Entry{Points: 1}); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry, got %v", err)
	}
}

func TestTreapStore_TopNBeyondCache(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(WithTopCacheSize(3))

	rows := make([]types.Entry, 0, 20)
	for i := 0; i < 20; i++ {
		rows = append(rows, entry(fmt.Sprintf("r%02d", i), i*10, 1))
	}
	_ = store.Replace(ctx, rows)

	top, err := store.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(top) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(top))
	}
	if top[0].ParticipantID != "r19" || top[9].ParticipantID != "r10" || top[9].Rank != 10 {
		t.Errorf("unexpected rows %+v", top)
	}

	small, _ := store.TopN(ctx, 2)
	if len(small) != 2 || small[1].ParticipantID != "r18" {
		t.Errorf("unexpected cached rows %+v", small)
	}

	all, _ := store.TopN(ctx, 100)
	if len(all) != 20 {
		t.Errorf("expected all 20 rows, got %d", len(all))
	}
}

func TestTreapStore_MatchesSortedOrder(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()
	rng := rand.New(rand.NewSource(42))

	latest := make(map[string]types.Entry)
	for i := 0; i < 2000; i++ {
		e := entry(fmt.Sprintf("p%03d", rng.Intn(400)), rng.Intn(300), 1+rng.Intn(10))
		latest[e.ParticipantID] = e
		if err := store.Upsert(ctx, e); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	want := make([]types.Entry, 0, len(latest))
	for _, e := range latest {
		want = append(want, e)
	}
	sort.Slice(want, func(i, j int) bool { return want[i].Less(want[j]) })

	got, _ := store.TopN(ctx, len(want))
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ParticipantID != want[i].ParticipantID {
			t.Fatalf("row %d: expected %s, got %s", i, want[i].ParticipantID, got[i].ParticipantID)
		}
		r, _ := store.Rank(ctx, want[i].ParticipantID)
		if r.Rank != i+1 {
			t.Fatalf("Rank(%s) = %d, want %d", want[i].ParticipantID, r.Rank, i+1)
		}
	}
}

func TestTreapStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("w%d-%d", w, i%50)
				_ = store.Upsert(ctx, entry(id, i, 1))
				_, _ = store.Rank(ctx, id)
				_, _ = store.TopN(ctx, 10)
			}
		}(w)
	}
	wg.Wait()

	if count := store.Count(ctx); count != 400 {
		t.Errorf("expected 400 participants, got %d", count)
	}
}

func BenchmarkTreapStore_Upsert(b *testing.B) {
	ctx := context.Background()
	store := NewTreapStore(WithTopCacheSize(100))
	ids := make([]string, 10_000)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%05d", i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Upsert(ctx, entry(ids[i%len(ids)], i%1000, 1+i%15))
	}
}

func BenchmarkTreapStore_Rank(b *testing.B) {
	ctx := context.Background()
	store := NewTreapStore()
	rows := make([]types.Entry, 10_000)
	for i := range rows {
		rows[i] = entry(fmt.Sprintf("p%05d", i), i%1000, 1+i%15)
	}
	_ = store.Replace(ctx, rows)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.Rank(ctx, rows[i%len(rows)].ParticipantID)
	}
}
