// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/careerstandings/internal/domain/model"
	"github.com/okian/careerstandings/internal/domain/standings"
)

// StandingsDependencies defines the interface for rider standings reads.
type StandingsDependencies interface {
	Standings(ctx context.Context, participantID string) (standings.Result, error)
}

// StandingsHandler handles rider-relative standings requests.
type StandingsHandler struct {
	deps StandingsDependencies
}

// NewStandingsHandler creates a new standings handler.
func NewStandingsHandler(deps StandingsDependencies) *StandingsHandler {
	return &StandingsHandler{deps: deps}
}

type standingsResponse struct {
	ParticipantID string                 `json:"participantId"`
	Ranked        bool                   `json:"ranked"`
	TargetRank    int                    `json:"targetRank"`
	TargetPoints  int                    `json:"targetPoints"`
	Standings     []model.StandingsEntry `json:"standings"`
	Diagnostics   model.Diagnostics      `json:"diagnostics,omitempty"`
}

// HandleGetStandings handles GET /standings/{participantId} requests.
func (h *StandingsHandler) HandleGetStandings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_standings"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := pathID(r.URL.Path, "/standings/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	res, err := h.deps.Standings(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	table := res.Standings
	if table == nil {
		table = []model.StandingsEntry{}
	}
	writeJSON(w, http.StatusOK, standingsResponse{
		ParticipantID: id,
		Ranked:        res.Ranked(),
		TargetRank:    res.TargetRank,
		TargetPoints:  res.TargetPoints,
		Standings:     table,
		Diagnostics:   res.Diagnostics,
	})
}
