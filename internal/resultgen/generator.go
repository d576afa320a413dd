// Package resultgen writes synthetic TPVirtual-style result exports for
// local runs and checks a running service against them.
package resultgen

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/okian/careerstandings/pkg/logger"
)

const (
	dirPermission  = 0o750
	filePermission = 0o600

	performanceSpread = 150.0
	baseTimeMs        = 3_600_000.0
	minGapMs          = 2_000.0
	gapRangeMs        = 20_000.0
)

// finish is one generated row.
type finish struct {
	rider    Rider
	position int // 0 means DNF
	timeMs   float64
	pen      int
}

// penFile is one export file of one event.
type penFile struct {
	event  int
	pen    int
	format Format
	rows   []finish
}

// Option configures Generate.
type Option func(*generator)

// WithLogger sets the generator logger.
func WithLogger(l logger.Logger) Option {
	return func(g *generator) {
		if l != nil {
			g.log = l
		}
	}
}

type generator struct {
	cfg Config
	rng *rand.Rand
	log logger.Logger
}

// Generate writes one season of results under cfg.OutDir. The same Config
// always produces the same files.
func Generate(ctx context.Context, cfg Config, opts ...Option) (Stats, error) {
	stats := Stats{StartTime: time.Now()}
	if err := cfg.validate(); err != nil {
		return stats, err
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	g := &generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed)), log: logger.Nop()}
	for _, opt := range opts {
		opt(g)
	}

	riders, err := roster(g.rng, cfg.Riders, cfg.Bots)
	if err != nil {
		return stats, err
	}
	g.log.Info(ctx, "generating season",
		logger.Int("season", cfg.Season),
		logger.Ints("events", cfg.Events),
		logger.Int("riders", cfg.Riders),
		logger.Int("bots", cfg.Bots))

	events := lo.Uniq(cfg.Events)
	sort.Ints(events)

	var files []penFile
	for _, n := range events {
		files = append(files, g.event(n, riders)...)
	}

	wg, ctx := errgroup.WithContext(ctx)
	wg.SetLimit(cfg.Workers)
	for _, f := range files {
		f := f
		wg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return g.write(f)
		})
	}
	if err := wg.Wait(); err != nil {
		return stats, err
	}

	stats.Events = len(events)
	stats.Files = len(files)
	for _, f := range files {
		stats.Rows += len(f.rows)
		stats.DNFs += lo.CountBy(f.rows, func(r finish) bool { return r.position == 0 })
	}
	stats.Duration = time.Since(stats.StartTime)

	g.log.Info(ctx, "season generated",
		logger.String("dir", cfg.OutDir),
		logger.Int("files", stats.Files),
		logger.Int("rows", stats.Rows),
		logger.Int("dnfs", stats.DNFs),
		logger.String("duration", stats.Duration.String()))
	return stats, nil
}

// event races one event: starters are split into pens by rating and each
// pen is ordered by rating plus noise.
func (g *generator) event(number int, riders []Rider) []penFile {
	starters := lo.Filter(riders, func(Rider, int) bool { return g.rng.Float64() < g.cfg.Attendance })
	sort.SliceStable(starters, func(i, j int) bool { return starters[i].Rating > starters[j].Rating })

	size := int(math.Ceil(float64(len(starters)) / float64(g.cfg.Pens)))
	var files []penFile
	for pen := 1; pen <= g.cfg.Pens; pen++ {
		from := (pen - 1) * size
		if from >= len(starters) {
			break
		}
		to := min(from+size, len(starters))
		files = append(files, penFile{
			event:  number,
			pen:    pen,
			format: g.format(pen),
			rows:   g.race(starters[from:to], pen),
		})
	}
	return files
}

func (g *generator) race(field []Rider, pen int) []finish {
	type run struct {
		rider Rider
		perf  float64
		dnf   bool
	}
	runs := lo.Map(field, func(r Rider, _ int) run {
		return run{
			rider: r,
			perf:  float64(r.Rating) + g.rng.NormFloat64()*performanceSpread,
			dnf:   g.rng.Float64() < g.cfg.DNFRate,
		}
	})
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].dnf != runs[j].dnf {
			return !runs[i].dnf
		}
		return runs[i].perf > runs[j].perf
	})

	out := make([]finish, 0, len(runs))
	elapsed := baseTimeMs
	for i, r := range runs {
		if r.dnf {
			out = append(out, finish{rider: r.rider, pen: pen})
			continue
		}
		if i > 0 {
			elapsed += minGapMs + g.rng.Float64()*gapRangeMs
		}
		out = append(out, finish{rider: r.rider, position: i + 1, timeMs: math.Round(elapsed), pen: pen})
	}
	return out
}

func (g *generator) format(pen int) Format {
	if g.cfg.Format != FormatMixed {
		return g.cfg.Format
	}
	if pen%2 == 1 {
		return FormatJSON
	}
	return FormatCSV
}

func (g *generator) write(f penFile) error {
	dir := filepath.Join(g.cfg.OutDir, "season_"+strconv.Itoa(g.cfg.Season), "event_"+strconv.Itoa(f.event))
	if err := os.MkdirAll(dir, dirPermission); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	var (
		data []byte
		err  error
	)
	switch f.format {
	case FormatCSV:
		data, err = encodeCSV(f.rows)
	default:
		data, err = encodeJSON(f.rows)
	}
	if err != nil {
		return fmt.Errorf("encode event %d pen %d: %w", f.event, f.pen, err)
	}

	name := filepath.Join(dir, "pen_"+strconv.Itoa(f.pen)+"."+string(f.format))
	if err := os.WriteFile(name, data, filePermission); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
