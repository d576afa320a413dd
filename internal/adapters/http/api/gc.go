// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/careerstandings/internal/domain/gc"
)

// GCDependencies defines the interface for general classification reads.
type GCDependencies interface {
	GC(ctx context.Context, through int) (gc.Classification, error)
	Stages() []int
}

// GCHandler handles general classification requests.
type GCHandler struct {
	deps GCDependencies
}

// NewGCHandler creates a new GC handler.
func NewGCHandler(deps GCDependencies) *GCHandler {
	return &GCHandler{deps: deps}
}

// HandleGetGC handles GET /gc?through=N. Without through the classification
// covers every configured stage.
func (h *GCHandler) HandleGetGC(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_gc"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	through := 0
	if raw := r.URL.Query().Get("through"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		through = n
	} else if stages := h.deps.Stages(); len(stages) > 0 {
		through = stages[len(stages)-1]
	}

	c, err := h.deps.GC(r.Context(), through)
	if err != nil {
		if errors.Is(err, gc.ErrNoStageResults) {
			writeError(w, http.StatusNotFound, "no_stage_results", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if c.Standings == nil {
		c.Standings = []gc.Standing{}
	}
	writeJSON(w, http.StatusOK, c)
}
