// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/roadreport/internal/adapters/repository"
	service "github.com/okian/roadreport/internal/app"
	"github.com/okian/roadreport/internal/domain/model"
	"github.com/okian/roadreport/internal/domain/types"
	"github.com/okian/roadreport/pkg/errkind"
	"github.com/okian/roadreport/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CreateDraft(ctx context.Context, req types.DraftRequest) (types.DraftResponse, error)
	Submit(ctx context.Context, uuid string) (types.Ticket, bool, error)
	Get(ctx context.Context, uuid string) (types.Ticket, error)
	List(ctx context.Context, f repository.Filter) (types.TicketList, error)
	StatsProvider
}

// Server wires HTTP routes for the report API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	reportsHandler *ReportsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := newOptions(opts)
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		reportsHandler: NewReportsHandler(deps, o),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /api/reports/draft", MetricsMiddleware(s.reportsHandler.HandleCreateDraft, "draft"))
	mux.HandleFunc("POST /api/reports/submit/{uuid}", MetricsMiddleware(s.reportsHandler.HandleSubmit, "submit"))
	mux.HandleFunc("GET /api/reports/{uuid}", MetricsMiddleware(s.reportsHandler.HandleGet, "report"))
	mux.HandleFunc("GET /api/reports", MetricsMiddleware(s.reportsHandler.HandleList, "reports"))
	mux.HandleFunc("GET /api/tickets", MetricsMiddleware(s.reportsHandler.HandleList, "tickets"))
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
	writeJSON(w, status, types.ErrorResponse{Code: code, Message: msg})
}

// writeKindError maps the error kind to a status and error code.
func writeKindError(ctx context.Context, w http.ResponseWriter, l logger.Logger, err error) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrInvalidDraft):
		writeError(w, http.StatusBadRequest, "invalid_draft", err)
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrNotSubmittable):
		writeError(w, http.StatusConflict, "not_submittable", err)
	case errors.Is(err, repository.ErrExists):
		writeError(w, http.StatusConflict, "conflict", err)
	default:
		l.Error(ctx, "request failed", logger.String("kind", errkind.Name(err)), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
