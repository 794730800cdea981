package api

import (
	"net/http"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"github.com/go-chi/chi/v5"
)

// ShiftEventRequest is the optional body of check-in and check-out.
// A zero time means now.
type ShiftEventRequest struct {
	Time            time.Time `json:"time"`
	IsPublicHoliday bool      `json:"isPublicHoliday"`
}

// ScheduleShift handles POST /shifts.
func (h *Handler) ScheduleShift(w http.ResponseWriter, r *http.Request) {
	var sh domain.Shift
	if !decodeJSON(w, r, &sh, false) {
		return
	}
	if err := h.svc.Shifts.Schedule(r.Context(), &sh); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sh)
}

// GetShift handles GET /shifts/{id}.
func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	sh, err := h.svc.Shifts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

// CheckIn handles POST /shifts/{id}/check-in.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req ShiftEventRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	sh, err := h.svc.Shifts.CheckIn(r.Context(), chi.URLParam(r, "id"), req.Time)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

// CheckOut handles POST /shifts/{id}/check-out.
func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req ShiftEventRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	sh, err := h.svc.Shifts.CheckOut(r.Context(), chi.URLParam(r, "id"), req.Time, req.IsPublicHoliday)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}
