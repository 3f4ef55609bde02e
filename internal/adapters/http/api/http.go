// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/Base-InfoFi/Backend/internal/app"
	"github.com/Base-InfoFi/Backend/internal/adapters/repository"
	"github.com/Base-InfoFi/Backend/internal/domain/leaderboard"
	"github.com/Base-InfoFi/Backend/internal/domain/model"
	"github.com/Base-InfoFi/Backend/internal/domain/report"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Submit(ctx context.Context, req service.SubmitRequest) (service.Evaluation, error)
	SubmitAsync(ctx context.Context, req service.SubmitRequest) (model.ContentItem, error)
	RunBatch(ctx context.Context, query string, maxItems int) (service.BatchResult, error)

	CreateProject(ctx context.Context, p model.Project) (model.Project, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
	ProjectBySlug(ctx context.Context, slug string) (model.Project, error)
	GenerateProjectInfo(ctx context.Context, projectSlug string) (model.Project, error)

	Content(ctx context.Context, id string) (model.ContentItem, *model.Judgment, error)
	ListUnjudged(ctx context.Context, query string, limit int) ([]model.ContentItem, error)

	ProjectLeaderboard(ctx context.Context, rng leaderboard.TimeRange, limit int) ([]leaderboard.ProjectRow, error)
	UserLeaderboard(ctx context.Context, projectSlug string, rng leaderboard.TimeRange, limit int) ([]leaderboard.UserRow, error)
	Ledger(ctx context.Context, projectSlug, userID string) (model.LedgerEntry, error)
	Report(ctx context.Context, projectSlug string) (report.Report, error)

	GetStats(ctx context.Context) map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	projectsHandler    *ProjectsHandler
	postsHandler       *PostsHandler
	batchHandler       *BatchHandler
	leaderboardHandler *LeaderboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		projectsHandler:    NewProjectsHandler(deps),
		postsHandler:       NewPostsHandler(deps),
		batchHandler:       NewBatchHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/projects", MetricsMiddleware(s.projectsHandler.HandleProjects, "projects"))
	mux.HandleFunc("/projects/", MetricsMiddleware(s.projectsHandler.HandleProjectSubroutes, "projects"))
	mux.HandleFunc("/posts", MetricsMiddleware(s.postsHandler.HandlePosts, "posts"))
	mux.HandleFunc("/posts/async", MetricsMiddleware(s.postsHandler.HandlePostAsync, "posts_async"))
	mux.HandleFunc("/posts/", MetricsMiddleware(s.postsHandler.HandleGetPost, "posts"))
	mux.HandleFunc("/batch", MetricsMiddleware(s.batchHandler.HandleRunBatch, "batch"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleProjectLeaderboard, "leaderboard"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service and repository sentinels into HTTP
// status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, repository.ErrInvalidIdentity):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, report.ErrNoData):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrDuplicate):
		writeError(w, http.StatusConflict, "duplicate", err)
	case errors.Is(err, service.ErrInFlight), errors.Is(err, repository.ErrAlreadyJudged):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, service.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// parseRange reads the range query parameter, defaulting to all time.
func parseRange(r *http.Request) (leaderboard.TimeRange, bool) {
	raw := r.URL.Query().Get("range")
	if raw == "" {
		return leaderboard.RangeAll, true
	}
	return leaderboard.ParseTimeRange(raw)
}
