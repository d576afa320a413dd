package source

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func fixture() fstest.MapFS {
	return fstest.MapFS{
		"season_1/event_2/b.json":    {Data: []byte(`{"results":[]}`)},
		"season_1/event_2/a.csv":     {Data: []byte("position,id\n1,u1\n")},
		"season_1/event_10/x.csv":    {Data: []byte("position,id\n")},
		"season_1/event_10/notes.md": {Data: []byte("ignored")},
		"season_1/event_x/y.csv":     {Data: []byte("ignored")},
		"season_1/readme.txt":        {Data: []byte("ignored")},
		"season_3/event_1/z.json":    {Data: []byte(`[]`)},
		"scratch/event_1/z.json":     {Data: []byte(`[]`)},
	}
}

func TestWalker_Seasons(t *testing.T) {
	w := NewWalker(fixture())
	got, err := w.Seasons(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]int{1, 3}, got); diff != "" {
		t.Errorf("seasons mismatch (-want +got):\n%s", diff)
	}
}

func TestWalker_Season(t *testing.T) {
	w := NewWalker(fixture(), WithConcurrency(2))
	files, err := w.Season(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("expected events 2 and 10, got %v", files)
	}
	var names []string
	for _, f := range files[2] {
		names = append(names, f.Name)
	}
	want := []string{"season_1/event_2/a.csv", "season_1/event_2/b.json"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("event 2 files mismatch (-want +got):\n%s", diff)
	}
	if string(files[2][0].Data) != "position,id\n1,u1\n" {
		t.Errorf("unexpected data %q", files[2][0].Data)
	}
	if len(files[10]) != 1 || files[10][0].Name != "season_1/event_10/x.csv" {
		t.Errorf("unexpected event 10 files %+v", files[10])
	}
}

func TestWalker_SeasonErrors(t *testing.T) {
	w := NewWalker(fixture())
	ctx := context.Background()

	if _, err := w.Season(ctx, 0); !errors.Is(err, ErrInvalidSeason) {
		t.Errorf("expected ErrInvalidSeason, got %v", err)
	}
	if _, err := w.Season(ctx, 2); !errors.Is(err, ErrSeasonNotFound) {
		t.Errorf("expected ErrSeasonNotFound, got %v", err)
	}
}

func TestWalker_EmptyEventDirectory(t *testing.T) {
	fsys := fstest.MapFS{
		"season_1/event_4": {Mode: fs.ModeDir | 0o755},
	}
	files, err := NewWalker(fsys).Season(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := files[4]
	if !ok || len(got) != 0 {
		t.Errorf("expected an empty file list for event 4, got %v (present %v)", got, ok)
	}
}
