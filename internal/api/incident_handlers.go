package api

import (
	"net/http"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/incident"
	"github.com/go-chi/chi/v5"
)

// ClassifyRequest is the request body for POST /incidents/classify.
type ClassifyRequest struct {
	Type string `json:"type"`
}

// ClassifyIncident handles POST /incidents/classify.
func (h *Handler) ClassifyIncident(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	class, err := h.svc.Incidents.Classify(req.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, class)
}

// ReportIncident handles POST /incidents.
func (h *Handler) ReportIncident(w http.ResponseWriter, r *http.Request) {
	var in incident.ReportInput
	if !decodeJSON(w, r, &in, false) {
		return
	}
	inc, err := h.svc.Incidents.Report(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inc)
}

// GetIncident handles GET /incidents/{id}.
func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	inc, err := h.svc.Incidents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inc)
}

// MarkIncidentNotified handles POST /incidents/{id}/notified.
func (h *Handler) MarkIncidentNotified(w http.ResponseWriter, r *http.Request) {
	inc, err := h.svc.Incidents.MarkNotified(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inc)
}

// OverdueIncidents handles GET /incidents/overdue.
func (h *Handler) OverdueIncidents(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Incidents.Overdue(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*domain.Incident{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"incidents": list,
		"count":     len(list),
	})
}
