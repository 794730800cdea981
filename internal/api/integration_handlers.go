package api

import (
	"net/http"
	"strconv"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
)

// ListSyncRecords handles GET /integrations/sync?status=&limit=.
func (h *Handler) ListSyncRecords(w http.ResponseWriter, r *http.Request) {
	status := domain.SyncStatus(r.URL.Query().Get("status"))
	switch status {
	case "", domain.SyncPending, domain.SyncSynced, domain.SyncFailed:
	default:
		writeError(w, r, domain.NewValidationError("status", "unknown sync status %q", status))
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, r, domain.NewValidationError("limit", "must be a positive integer"))
			return
		}
		limit = n
	}

	records, err := h.svc.Repo.ListSyncRecords(r.Context(), status, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if records == nil {
		records = []*domain.SyncRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}

// RetrySync handles POST /integrations/sync/retry.
func (h *Handler) RetrySync(w http.ResponseWriter, r *http.Request) {
	maxAttempts := h.svc.MaxSyncAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	synced, err := h.svc.Sync.Retry(r.Context(), maxAttempts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"synced": synced})
}
