package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/roadreport/internal/adapters/repository"
	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/internal/domain/types"
	"github.com/okian/roadreport/pkg/errkind"
	"github.com/okian/roadreport/pkg/logger"
)

// ReportsHandler serves the report store endpoints.
type ReportsHandler struct {
	deps         Dependencies
	defaultLimit int
	logger       logger.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(deps Dependencies, o options) *ReportsHandler {
	return &ReportsHandler{deps: deps, defaultLimit: o.defaultLimit, logger: o.logger}
}

// HandleCreateDraft handles POST /api/reports/draft requests.
func (h *ReportsHandler) HandleCreateDraft(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_draft"
	var req types.DraftRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errkind.WrapKind(op, ErrBadRequest, err))
		return
	}
	resp, err := h.deps.CreateDraft(r.Context(), req)
	if err != nil {
		writeKindError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// HandleSubmit handles POST /api/reports/submit/{uuid} requests. A ticket
// that is already submitted is returned unchanged.
func (h *ReportsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("uuid"))
	t, _, err := h.deps.Submit(r.Context(), id)
	if err != nil {
		writeKindError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleGet handles GET /api/reports/{uuid} requests.
func (h *ReportsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("uuid"))
	t, err := h.deps.Get(r.Context(), id)
	if err != nil {
		writeKindError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleList handles GET /api/tickets and GET /api/reports requests.
// Query: user_id, status, skip (default 0), limit.
func (h *ReportsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list"
	f, err := h.parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errkind.WrapKind(op, ErrBadRequest, err))
		return
	}
	list, err := h.deps.List(r.Context(), f)
	if err != nil {
		writeKindError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ReportsHandler) parseFilter(r *http.Request) (repository.Filter, error) {
	q := r.URL.Query()
	f := repository.Filter{
		Owner:  q.Get("user_id"),
		Status: model.Status(q.Get("status")),
		Limit:  h.defaultLimit,
	}
	if s := q.Get("skip"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return f, fmt.Errorf("invalid skip %q", s)
		}
		f.Skip = n
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return f, fmt.Errorf("invalid limit %q", s)
		}
		f.Limit = n
	}
	return f, nil
}
