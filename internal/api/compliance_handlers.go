package api

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// SaveStaffMember handles POST /staff.
func (h *Handler) SaveStaffMember(w http.ResponseWriter, r *http.Request) {
	var staff domain.StaffMember
	if !decodeJSON(w, r, &staff, false) {
		return
	}
	if strings.TrimSpace(staff.Name) == "" {
		writeError(w, r, domain.NewValidationError("name", "is required"))
		return
	}
	if staff.ID == "" {
		staff.ID = uuid.New().String()
	}
	if err := h.svc.Repo.SaveStaffMember(r.Context(), &staff); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, staff)
}

// SaveReferral handles POST /referrals.
func (h *Handler) SaveReferral(w http.ResponseWriter, r *http.Request) {
	var ref domain.Referral
	if !decodeJSON(w, r, &ref, false) {
		return
	}
	if strings.TrimSpace(ref.ParticipantName) == "" {
		writeError(w, r, domain.NewValidationError("participantName", "is required"))
		return
	}
	if ref.Stage == "" {
		ref.Stage = domain.ReferralReceived
	}
	if !slices.Contains(domain.ReferralStages, ref.Stage) {
		writeError(w, r, domain.NewValidationError("stage", "unknown referral stage %q", ref.Stage))
		return
	}
	if ref.ID == "" {
		ref.ID = uuid.New().String()
	}
	if err := h.svc.Repo.SaveReferral(r.Context(), &ref); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ref)
}

// SaveServiceAgreement handles POST /service-agreements. The participant
// is synced to accounting, and an unsigned agreement is sent out for
// e-signature.
func (h *Handler) SaveServiceAgreement(w http.ResponseWriter, r *http.Request) {
	var ag domain.ServiceAgreement
	if !decodeJSON(w, r, &ag, false) {
		return
	}
	if strings.TrimSpace(ag.ParticipantID) == "" {
		writeError(w, r, domain.NewValidationError("participantId", "is required"))
		return
	}
	if !ag.StartDate.IsZero() && !ag.EndDate.IsZero() && !ag.EndDate.After(ag.StartDate) {
		writeError(w, r, domain.NewValidationError("endDate", "must be after start date"))
		return
	}
	if ag.ID == "" {
		ag.ID = uuid.New().String()
	}

	ctx := r.Context()
	if err := h.svc.Repo.SaveServiceAgreement(ctx, &ag); err != nil {
		writeError(w, r, err)
		return
	}

	if h.svc.Requester != nil {
		contact := domain.ContactPayload{
			ParticipantID: ag.ParticipantID,
			Name:          ag.ParticipantName,
			Email:         ag.ParticipantEmail,
			NDISNumber:    ag.NDISNumber,
		}
		if err := h.svc.Requester.Request(ctx, domain.SyncAccountingContact, ag.ParticipantID, contact); err != nil {
			slog.Error("failed to queue contact sync", "agreement_id", ag.ID, "error", err)
		}

		if !ag.Signed && ag.ParticipantEmail != "" {
			env := domain.EnvelopePayload{
				AgreementID: ag.ID,
				SignerName:  ag.ParticipantName,
				SignerEmail: ag.ParticipantEmail,
				Subject:     "Service agreement for " + ag.ParticipantName,
			}
			if err := h.svc.Requester.Request(ctx, domain.SyncESignEnvelope, ag.ID, env); err != nil {
				slog.Error("failed to queue e-signature", "agreement_id", ag.ID, "error", err)
			}
		}
	}

	writeJSON(w, http.StatusCreated, ag)
}

// RunCompliance handles POST /compliance/{entityType}/{id}.
func (h *Handler) RunCompliance(w http.ResponseWriter, r *http.Request) {
	entityType, err := domain.ParseEntityType(chi.URLParam(r, "entityType"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := h.svc.Compliance.Run(r.Context(), entityType, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ComplianceHistory handles GET /compliance/{entityType}/{id}/history.
func (h *Handler) ComplianceHistory(w http.ResponseWriter, r *http.Request) {
	entityType, err := domain.ParseEntityType(chi.URLParam(r, "entityType"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	logs, err := h.svc.Repo.ListComplianceScores(r.Context(), entityType, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if logs == nil {
		logs = []*domain.ComplianceScoreLog{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scores": logs,
		"count":  len(logs),
	})
}
