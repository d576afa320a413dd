package resultgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/okian/careerstandings/internal/adapters/source"
	"github.com/okian/careerstandings/internal/domain/ingest"
	"github.com/okian/careerstandings/internal/domain/scoring"
	"github.com/okian/careerstandings/internal/domain/standings"
	"github.com/okian/careerstandings/internal/domain/types"
)

// ErrMismatch is returned when the service disagrees with the local table.
var ErrMismatch = errors.New("leaderboard mismatch")

// Client reads the season table from a running service.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates a client with a request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Healthy checks that the service answers /healthz.
func (c *Client) Healthy(ctx context.Context) error {
	resp, err := c.get(ctx, "/healthz")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// Leaderboard fetches the first limit rows of the season table.
func (c *Client) Leaderboard(ctx context.Context, limit int) ([]types.Entry, error) {
	resp, err := c.get(ctx, "/leaderboard?limit="+strconv.Itoa(limit))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("leaderboard request failed with status: %d", resp.StatusCode)
	}

	var entries []types.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode leaderboard: %w", err)
	}
	return entries, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return resp, nil
}

// Expected computes the season table a service loading dir should serve.
func Expected(ctx context.Context, dir string, season int, profiles []scoring.Profile) ([]types.Entry, error) {
	files, err := source.NewWalker(os.DirFS(dir)).Season(ctx, season)
	if err != nil {
		return nil, err
	}
	results, _ := ingest.NewAggregator().LoadSeason(ctx, files)
	rows := standings.BuildSeasonTable(results, scoring.NewCalculator(scoring.WithProfiles(profiles...)))
	return lo.Map(rows, func(r standings.SeasonRow, i int) types.Entry { return r.Entry(i + 1) }), nil
}

// Compare checks that got is the head of want, row for row.
func Compare(want, got []types.Entry) error {
	if len(got) > len(want) {
		return fmt.Errorf("%w: service returned %d rows, expected at most %d", ErrMismatch, len(got), len(want))
	}
	if len(got) == 0 && len(want) > 0 {
		return fmt.Errorf("%w: service returned no rows", ErrMismatch)
	}
	for i, g := range got {
		w := want[i]
		if g.ParticipantID != w.ParticipantID || g.Points != w.Points || g.Events != w.Events || g.Rank != w.Rank {
			return fmt.Errorf("%w: row %d: want %s (%d pts, %d events, rank %d), got %s (%d pts, %d events, rank %d)",
				ErrMismatch, i+1,
				w.ParticipantID, w.Points, w.Events, w.Rank,
				g.ParticipantID, g.Points, g.Events, g.Rank)
		}
	}
	return nil
}
