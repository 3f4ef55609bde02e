package api

import (
	"encoding/json"
	"io"
	"net/http"
)

// BatchHandler triggers batch evaluation runs.
type BatchHandler struct {
	deps Dependencies
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(deps Dependencies) *BatchHandler {
	return &BatchHandler{deps: deps}
}

// batchRequest mirrors the schema for POST /batch. Both fields are
// optional; the service applies its configured defaults.
type batchRequest struct {
	Query    string `json:"query,omitempty"`
	MaxItems int    `json:"maxItems,omitempty"`
}

// HandleRunBatch handles POST /batch requests. The run is synchronous; the
// response carries the scored and skipped counts.
func (h *BatchHandler) HandleRunBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.run_batch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	result, err := h.deps.RunBatch(r.Context(), req.Query, req.MaxItems)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}
