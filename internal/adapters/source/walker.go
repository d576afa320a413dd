// Package source reads result exports laid out as
// season_<N>/event_<M>/<file>.{json,csv} from a file system.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/okian/careerstandings/internal/domain/ingest"
	"github.com/okian/careerstandings/pkg/logger"
)

const defaultConcurrency = 8

var (
	seasonDir = regexp.MustCompile(`^season_(\d+)$`)
	eventDir  = regexp.MustCompile(`^event_(\d+)$`)
)

// Walker lists and reads result files.
type Walker struct {
	fsys        fs.FS
	concurrency int
	log         logger.Logger
}

// NewWalker creates a walker rooted at fsys.
func NewWalker(fsys fs.FS, opts ...Option) *Walker {
	w := &Walker{
		fsys:        fsys,
		concurrency: defaultConcurrency,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Seasons returns the season numbers present, ascending.
func (w *Walker) Seasons(ctx context.Context) ([]int, error) {
	entries, err := fs.ReadDir(w.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	return numbered(entries, seasonDir), nil
}

// Season reads every result file of one season keyed by event number.
// Files within an event are ordered by name, which fixes which duplicate
// row is seen first.
func (w *Walker) Season(ctx context.Context, season int) (map[int][]ingest.RawFile, error) {
	if season < 1 {
		return nil, ErrInvalidSeason
	}
	root := "season_" + strconv.Itoa(season)
	entries, err := fs.ReadDir(w.fsys, root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", root, ErrSeasonNotFound)
		}
		return nil, fmt.Errorf("list events in %s: %w", root, err)
	}

	type pending struct {
		event int
		name  string
		slot  int
	}
	var work []pending
	out := make(map[int][]ingest.RawFile)

	for _, event := range numbered(entries, eventDir) {
		dir := path.Join(root, "event_"+strconv.Itoa(event))
		files, err := fs.ReadDir(w.fsys, dir)
		if err != nil {
			return nil, fmt.Errorf("list files in %s: %w", dir, err)
		}
		names := lo.FilterMap(files, func(f fs.DirEntry, _ int) (string, bool) {
			return f.Name(), !f.IsDir() && isResultFile(f.Name())
		})
		sort.Strings(names)
		out[event] = make([]ingest.RawFile, len(names))
		for i, name := range names {
			work = append(work, pending{event: event, name: path.Join(dir, name), slot: i})
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, p := range work {
		p := p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(w.fsys, p.name)
			if err != nil {
				return fmt.Errorf("read %s: %w", p.name, err)
			}
			// each goroutine owns a distinct slot
			out[p.event][p.slot] = ingest.RawFile{Name: p.name, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	w.log.Debug(ctx, "season read",
		logger.Int("season", season),
		logger.Int("events", len(out)),
		logger.Int("files", len(work)))
	return out, nil
}

func isResultFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".csv":
		return true
	}
	return false
}

// numbered extracts the numbers of directories matching re, ascending.
func numbered(entries []fs.DirEntry, re *regexp.Regexp) []int {
	nums := lo.FilterMap(entries, func(e fs.DirEntry, _ int) (int, bool) {
		if !e.IsDir() {
			return 0, false
		}
		m := re.FindStringSubmatch(e.Name())
		if m == nil {
			return 0, false
		}
		n, err := strconv.Atoi(m[1])
		return n, err == nil && n > 0
	})
	sort.Ints(nums)
	return lo.Uniq(nums)
}
