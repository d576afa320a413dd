// Command standings-report prints career standings from a results directory
// without starting the service.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/samber/lo"

	"github.com/okian/careerstandings/internal/adapters/source"
	app "github.com/okian/careerstandings/internal/app"
	"github.com/okian/careerstandings/internal/config"
	"github.com/okian/careerstandings/internal/domain/ingest"
	"github.com/okian/careerstandings/internal/domain/model"
	"github.com/okian/careerstandings/internal/domain/scoring"
	"github.com/okian/careerstandings/internal/domain/standings"
	"github.com/okian/careerstandings/pkg/logger"
)

func main() {
	var (
		dir       = flag.String("dir", "", "Results directory (default: results_dir from config)")
		season    = flag.Int("season", 0, "Season number (default: season from config)")
		rider     = flag.String("rider", "", "Print the full table for one rider id")
		table     = flag.Bool("table", false, "Print the season points table instead of per-rider summaries")
		showDiags = flag.Bool("diagnostics", false, "Print load diagnostics")
	)
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.SetLevelString(cfg.LogLevel)
	log := logger.Get().Named("standings-report")

	if *dir != "" {
		cfg.ResultsDir = *dir
	}
	if *season > 0 {
		cfg.Season = *season
	}

	r, err := load(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "load failed", logger.Error(err))
		os.Exit(1)
	}

	out := os.Stdout
	switch {
	case *rider != "":
		err = r.riderTable(ctx, out, *rider)
	case *table:
		err = r.seasonTable(out)
	default:
		err = r.summaries(ctx, out)
	}
	if err != nil {
		log.Error(ctx, "report failed", logger.Error(err))
		os.Exit(1)
	}
	if *showDiags {
		for _, d := range r.diagnostics {
			fmt.Fprintln(os.Stderr, d.String())
		}
	}
}

type report struct {
	results     model.EventResults
	diagnostics model.Diagnostics
	calc        *scoring.Calculator
	builder     *standings.Builder
}

func load(ctx context.Context, cfg *config.Config, log logger.Logger) (*report, error) {
	files, err := source.NewWalker(os.DirFS(cfg.ResultsDir), source.WithLogger(log)).Season(ctx, cfg.Season)
	if err != nil {
		return nil, err
	}

	calc := scoring.NewCalculator(scoring.WithProfiles(app.ProfilesFromConfig(cfg.Events)...))
	agg := ingest.NewAggregator(
		ingest.WithBotIDPrefix(cfg.BotIDPrefix),
		ingest.WithBotCategory(cfg.BotCategory),
		ingest.WithDigestCacheSize(cfg.DedupeSize),
		ingest.WithLogger(log),
	)
	results, diags := agg.LoadSeason(ctx, files)

	return &report{
		results:     results,
		diagnostics: diags,
		calc:        calc,
		builder: standings.NewBuilder(
			standings.WithCalculator(calc),
			standings.WithMaxBots(cfg.MaxBots),
			standings.WithQuintiles(cfg.Quintiles),
			standings.WithFieldSize(cfg.FieldSize),
			standings.WithDefaultBotRating(cfg.DefaultBotRating),
			standings.WithLogger(log),
		),
	}, nil
}

// summaries prints one line per rider: name, races completed and place in
// their own standings.
func (r *report) summaries(ctx context.Context, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, rider := range standings.DiscoverRiders(r.results) {
		res, err := r.build(ctx, rider)
		if err != nil {
			return err
		}
		place := "unranked"
		if res.Ranked() {
			place = standings.Ordinal(res.TargetRank) + " place"
		}
		fmt.Fprintf(tw, "%s\t%d races\t%s\t%d pts\n", rider.DisplayName, len(rider.CompletedEvents), place, res.TargetPoints)
	}
	return tw.Flush()
}

func (r *report) riderTable(ctx context.Context, w io.Writer, id string) error {
	rider, ok := lo.Find(standings.DiscoverRiders(r.results), func(x standings.Rider) bool { return x.ParticipantID == id })
	if !ok {
		return fmt.Errorf("rider %q not found", id)
	}
	res, err := r.build(ctx, rider)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Rank\tRider\tTeam\tBand\tPoints\tEvents\t")
	for i, e := range res.Standings {
		name := e.DisplayName
		if e.IsTargetParticipant {
			name = "> " + name
		}
		if e.IsSimulated {
			name += " (bot)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t\n", i+1, name, e.Team, e.RatingBand, e.TotalPoints, events(e))
	}
	return tw.Flush()
}

func (r *report) seasonTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Rank\tRider\tPoints\tEvents\t")
	for i, row := range standings.BuildSeasonTable(r.results, r.calc) {
		name := row.DisplayName
		if row.IsSimulated {
			name += " (bot)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t\n", i+1, name, row.TotalPoints, row.EventsCounted)
	}
	return tw.Flush()
}

func (r *report) build(ctx context.Context, rider standings.Rider) (standings.Result, error) {
	return r.builder.Build(ctx, standings.Request{
		Results:         r.results,
		TargetID:        rider.ParticipantID,
		TargetName:      rider.DisplayName,
		CompletedEvents: rider.CompletedEvents,
	})
}

func events(e model.StandingsEntry) string {
	if e.SimulatedEvents == 0 {
		return strconv.Itoa(e.EventsCounted)
	}
	return fmt.Sprintf("%d (%d sim)", e.EventsCounted, e.SimulatedEvents)
}
