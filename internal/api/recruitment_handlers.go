package api

import (
	"net/http"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/recruitment"
	"github.com/go-chi/chi/v5"
)

// CreateCandidate handles POST /candidates.
func (h *Handler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	var c domain.Candidate
	if !decodeJSON(w, r, &c, false) {
		return
	}
	if err := h.svc.Recruitment.CreateCandidate(r.Context(), &c); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// CreateJob handles POST /jobs.
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var j domain.Job
	if !decodeJSON(w, r, &j, false) {
		return
	}
	if err := h.svc.Recruitment.CreateJob(r.Context(), &j); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, j)
}

// ApplicationRequest is the request body for POST /applications.
type ApplicationRequest struct {
	CandidateID string `json:"candidateId"`
	JobID       string `json:"jobId"`
}

// ApplicationResponse pairs an application with its screening result.
type ApplicationResponse struct {
	Application *domain.CandidateApplication `json:"application"`
	Screening   *domain.ScreeningResult      `json:"screening"`
}

// CreateApplication handles POST /applications. The application is
// auto-screened before the response is written.
func (h *Handler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var req ApplicationRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	app, result, err := h.svc.Recruitment.CreateApplication(r.Context(), req.CandidateID, req.JobID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ApplicationResponse{Application: app, Screening: result})
}

// GetApplication handles GET /applications/{id}.
func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	app, err := h.svc.Recruitment.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	history, err := h.svc.Recruitment.History(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if history == nil {
		history = []*domain.ApplicationStatusChange{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"application": app,
		"history":     history,
	})
}

// ScreenApplication handles POST /applications/{id}/screen.
func (h *Handler) ScreenApplication(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Recruitment.AutoScreen(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// UpdateApplicationStatus handles PUT /applications/{id}/status.
func (h *Handler) UpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	var req recruitment.StatusUpdate
	if !decodeJSON(w, r, &req, false) {
		return
	}
	app, err := h.svc.Recruitment.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}
