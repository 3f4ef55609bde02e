package api

import (
	"encoding/json"
	"net/http"
	"strings"

	service "github.com/Base-InfoFi/Backend/internal/app"
	"github.com/Base-InfoFi/Backend/internal/domain/model"
)

// PostsHandler handles content submission and content reads.
type PostsHandler struct {
	deps Dependencies
}

// NewPostsHandler creates a new posts handler.
func NewPostsHandler(deps Dependencies) *PostsHandler {
	return &PostsHandler{deps: deps}
}

// postResponse is the read shape for one content item.
type postResponse struct {
	Content  model.ContentItem `json:"content"`
	Judgment *model.Judgment   `json:"judgment,omitempty"`
}

// HandlePosts handles POST /posts (synchronous submit and score) and
// GET /posts?query=&limit= (unjudged content listing).
func (h *PostsHandler) HandlePosts(w http.ResponseWriter, r *http.Request) {
	const op = "api.posts"
	switch r.Method {
	case http.MethodPost:
		var req service.SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		ev, err := h.deps.Submit(r.Context(), req)
		if err != nil {
			writeServiceError(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, ev)
	case http.MethodGet:
		items, err := h.deps.ListUnjudged(r.Context(), r.URL.Query().Get("query"), parseLimit(r))
		if err != nil {
			writeServiceError(w, Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, items)
	default:
		http.NotFound(w, r)
	}
}

type asyncAckResponse struct {
	Status  string            `json:"status"`
	Content model.ContentItem `json:"content"`
}

// HandlePostAsync handles POST /posts/async requests. The item is persisted
// and queued; scoring happens on the worker pool.
func (h *PostsHandler) HandlePostAsync(w http.ResponseWriter, r *http.Request) {
	const op = "api.posts_async"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req service.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	item, err := h.deps.SubmitAsync(r.Context(), req)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, asyncAckResponse{Status: "accepted", Content: item})
}

// HandleGetPost handles GET /posts/{id} requests.
func (h *PostsHandler) HandleGetPost(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_post"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/posts/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	item, judgment, err := h.deps.Content(r.Context(), id)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, postResponse{Content: item, Judgment: judgment})
}
