package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"github.com/go-chi/chi/v5"
)

// GetPrice handles GET /prices/{code}?area=&age=.
func (h *Handler) GetPrice(w http.ResponseWriter, r *http.Request) {
	var age *int
	if raw := r.URL.Query().Get("age"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "age must be a non-negative integer"})
			return
		}
		age = &n
	}

	price, err := h.svc.Pricing.GetPrice(r.Context(), chi.URLParam(r, "code"), r.URL.Query().Get("area"), age)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, price)
}

// SaveSupportItem handles POST /support-items.
func (h *Handler) SaveSupportItem(w http.ResponseWriter, r *http.Request) {
	var item domain.SupportItem
	if !decodeJSON(w, r, &item, false) {
		return
	}
	if err := h.svc.Pricing.SaveSupportItem(r.Context(), &item); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// SavePriceEntry handles POST /prices.
func (h *Handler) SavePriceEntry(w http.ResponseWriter, r *http.Request) {
	var entry domain.PriceEntry
	if !decodeJSON(w, r, &entry, false) {
		return
	}
	if err := h.svc.Pricing.SavePriceEntry(r.Context(), &entry); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// PayRateRequest is the request body for POST /pay-rates/calculate.
type PayRateRequest struct {
	CheckIn         time.Time `json:"checkIn"`
	CheckOut        time.Time `json:"checkOut"`
	IsPublicHoliday bool      `json:"isPublicHoliday"`
}

// CalculatePayRate handles POST /pay-rates/calculate.
func (h *Handler) CalculatePayRate(w http.ResponseWriter, r *http.Request) {
	var req PayRateRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	result, err := h.svc.PayRate.Calculate(req.CheckIn, req.CheckOut, req.IsPublicHoliday)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
