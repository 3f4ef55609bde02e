package api

import (
	"net/http"
)

// LeaderboardHandler handles cross-project leaderboard reads.
type LeaderboardHandler struct {
	deps Dependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps Dependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleProjectLeaderboard handles GET /leaderboard?range=24h|7d|all&limit=N
// requests, ranking projects by their share of positive net score.
func (h *LeaderboardHandler) HandleProjectLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	rng, ok := parseRange(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	rows, err := h.deps.ProjectLeaderboard(r.Context(), rng, parseLimit(r))
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
