package main

import (
	"context"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	app "github.com/okian/careerstandings/internal/app"
	"github.com/okian/careerstandings/internal/config"
	"github.com/okian/careerstandings/internal/resultgen"
	"github.com/okian/careerstandings/pkg/logger"
)

const (
	defaultTimeout = 10 * time.Second
	defaultTopN    = 50
	runTimeout     = 5 * time.Minute
)

func main() {
	def := resultgen.DefaultConfig()
	var (
		out       = flag.String("out", def.OutDir, "Root directory for generated results")
		season    = flag.Int("season", def.Season, "Season number")
		events    = flag.String("events", "1-15", "Event numbers, e.g. 1-15 or 1,2,5")
		riders    = flag.Int("riders", def.Riders, "Number of human riders")
		bots      = flag.Int("bots", def.Bots, "Number of bots")
		pens      = flag.Int("pens", def.Pens, "Pens per event")
		dnf       = flag.Float64("dnf", def.DNFRate, "Chance a starter does not finish")
		format    = flag.String("format", string(def.Format), "Export format: json, csv or mixed")
		seed      = flag.Int64("seed", def.Seed, "Random seed")
		workers   = flag.Int("workers", def.Workers, "Concurrent file writers")
		verifyURL = flag.String("verify", "", "Base URL of a running service to check after generating")
		top       = flag.Int("top", defaultTopN, "Leaderboard rows to verify")
		verbose   = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}
	log := logger.Get().Named("generate-results")

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	numbers, err := parseEvents(*events)
	if err != nil {
		log.Error(ctx, "invalid -events", logger.Error(err))
		os.Exit(2)
	}

	cfg := def
	cfg.OutDir = *out
	cfg.Season = *season
	cfg.Events = numbers
	cfg.Riders = *riders
	cfg.Bots = *bots
	cfg.Pens = *pens
	cfg.DNFRate = *dnf
	cfg.Format = resultgen.Format(*format)
	cfg.Seed = *seed
	cfg.Workers = *workers

	if _, err := resultgen.Generate(ctx, cfg, resultgen.WithLogger(log)); err != nil {
		log.Error(ctx, "generation failed", logger.Error(err))
		os.Exit(1)
	}

	if *verifyURL == "" {
		return
	}
	if err := verify(ctx, log, *verifyURL, cfg, *top); err != nil {
		log.Error(ctx, "verification failed", logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "leaderboard verified", logger.String("url", *verifyURL), logger.Int("top", *top))
}

func verify(ctx context.Context, log logger.Logger, url string, cfg resultgen.Config, top int) error {
	client := resultgen.NewClient(url, defaultTimeout)
	if err := client.Healthy(ctx); err != nil {
		return err
	}

	profiles := app.ProfilesFromConfig(config.DefaultEvents())
	want, err := resultgen.Expected(ctx, cfg.OutDir, cfg.Season, profiles)
	if err != nil {
		return err
	}
	got, err := client.Leaderboard(ctx, top)
	if err != nil {
		return err
	}
	log.Debug(ctx, "comparing leaderboard", logger.Int("expected", len(want)), logger.Int("received", len(got)))
	return resultgen.Compare(want, got)
}

// parseEvents reads "1-15", "1,3,5" or a mix of both.
func parseEvents(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		first, last, isRange := strings.Cut(part, "-")
		from, err := strconv.Atoi(first)
		if err != nil {
			return nil, err
		}
		to := from
		if isRange {
			if to, err = strconv.Atoi(last); err != nil {
				return nil, err
			}
		}
		for n := from; n <= to; n++ {
			out = append(out, n)
		}
	}
	return out, nil
}
