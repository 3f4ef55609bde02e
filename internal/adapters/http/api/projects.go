package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/Base-InfoFi/Backend/internal/domain/model"
)

// ProjectsHandler handles project registration and project-scoped reads.
type ProjectsHandler struct {
	deps Dependencies
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(deps Dependencies) *ProjectsHandler {
	return &ProjectsHandler{deps: deps}
}

// createProjectRequest mirrors the schema for POST /projects.
type createProjectRequest struct {
	Name           string `json:"name"`
	Slug           string `json:"slug,omitempty"`
	ContextSummary string `json:"contextSummary,omitempty"`
}

// HandleProjects handles GET and POST /projects requests.
func (h *ProjectsHandler) HandleProjects(w http.ResponseWriter, r *http.Request) {
	const op = "api.projects"
	switch r.Method {
	case http.MethodGet:
		projects, err := h.deps.ListProjects(r.Context())
		if err != nil {
			writeServiceError(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, projects)
	case http.MethodPost:
		var req createProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		project, err := h.deps.CreateProject(r.Context(), model.Project{
			Name:           req.Name,
			Slug:           req.Slug,
			ContextSummary: req.ContextSummary,
		})
		if err != nil {
			writeServiceError(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusCreated, project)
	default:
		http.NotFound(w, r)
	}
}

// HandleProjectSubroutes dispatches /projects/{slug} and its nested routes:
//
//	GET  /projects/{slug}
//	GET  /projects/{slug}/leaderboard?range=24h|7d|all&limit=N
//	GET  /projects/{slug}/report
//	GET  /projects/{slug}/ledger/{userID}
//	POST /projects/{slug}/generate-info
func (h *ProjectsHandler) HandleProjectSubroutes(w http.ResponseWriter, r *http.Request) {
	const op = "api.project"

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/projects/"), "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	slug := parts[0]

	if len(parts) == 2 && parts[1] == "generate-info" {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		project, err := h.deps.GenerateProjectInfo(r.Context(), slug)
		if err != nil {
			writeServiceError(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, project)
		return
	}

	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(parts) == 1:
		project, err := h.deps.ProjectBySlug(r.Context(), slug)
		if err != nil {
			writeServiceError(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, project)

	case len(parts) == 2 && parts[1] == "leaderboard":
		rng, ok := parseRange(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit := parseLimit(r)
		rows, err := h.deps.UserLeaderboard(r.Context(), slug, rng, limit)
		if err != nil {
			writeServiceError(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, rows)

	case len(parts) == 2 && parts[1] == "report":
		rep, err := h.deps.Report(r.Context(), slug)
		if err != nil {
			writeServiceError(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, rep)

	case len(parts) == 3 && parts[1] == "ledger":
		entry, err := h.deps.Ledger(r.Context(), slug, parts[2])
		if err != nil {
			writeServiceError(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, entry)

	default:
		http.NotFound(w, r)
	}
}

// parseLimit reads the limit query parameter; zero means service default.
func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0
	}
	return n
}
