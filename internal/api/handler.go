package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/compliance"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/incident"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/integration"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/payrate"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/pricing"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/recruitment"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/shift"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/worker"
)

const maxBodyBytes = 1 << 20

// Services holds the dependencies the API exposes.
type Services struct {
	Repo        domain.Repository
	Cache       domain.Cache
	Bus         domain.EventBus
	Requester   domain.SyncRequester
	Pricing     *pricing.Service
	PayRate     *payrate.Calculator
	Shifts      *shift.Service
	Compliance  *compliance.Aggregator
	Incidents   *incident.Service
	Recruitment *recruitment.Service
	Sync        *integration.Dispatcher
	Worker      *worker.Worker

	MaxSyncAttempts int
	Version         string
}

// Handler holds dependencies for API handlers.
type Handler struct {
	svc Services
}

// NewHandler creates a new API handler.
func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc}
}

type healthResponse struct {
	Status  string        `json:"status"`
	Version string        `json:"version"`
	Worker  *worker.Stats `json:"worker,omitempty"`
}

// Health reports the status of the backing infrastructure and the
// integration worker. A worker with no subscriptions is degraded.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	if h.svc.Repo != nil {
		if err := h.svc.Repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}
	if h.svc.Cache != nil {
		if err := h.svc.Cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}
	if h.svc.Bus != nil {
		if err := h.svc.Bus.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	resp := healthResponse{Version: h.svc.Version}
	if h.svc.Worker != nil {
		stats := h.svc.Worker.GetStats()
		if stats.SubscriptionCount == 0 {
			status = "degraded"
		}
		resp.Worker = &stats
	}
	resp.Status = status

	writeJSON(w, http.StatusOK, resp)
}

// Ready handles GET /ready.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps domain errors to status codes. Unexpected errors are
// logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"trace_id", GetTraceID(r.Context()),
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// decodeJSON reads the request body into v. An empty body leaves v as is
// when optional is true.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": "invalid JSON request body",
	})
	return false
}
