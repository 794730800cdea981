package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
)

const (
	providerSMS   = "sms"
	providerEmail = "email"

	baseRetryDelay = 5 * time.Minute
	maxRetryDelay  = 6 * time.Hour
)

// Accounting is the accounting provider.
type Accounting interface {
	SyncInvoice(ctx context.Context, inv domain.InvoicePayload) (string, error)
	SyncContact(ctx context.Context, contact domain.ContactPayload) (string, error)
}

// ESigner is the e-signature provider.
type ESigner interface {
	CreateEnvelope(ctx context.Context, env domain.EnvelopePayload) (string, error)
}

// Providers groups the third-party clients. A nil provider fails its
// requests so they stay in the reconciliation log.
type Providers struct {
	Accounting Accounting
	ESign      ESigner
	SMS        Notifier
	Email      Notifier
}

// Dispatcher executes sync requests and records each attempt.
type Dispatcher struct {
	store     domain.SyncStore
	providers Providers
	now       func() time.Time
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(store domain.SyncStore, providers Providers) *Dispatcher {
	return &Dispatcher{
		store:     store,
		providers: providers,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for retry scheduling.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Dispatch performs req once. The outcome is written to the sync record
// keyed by req.ID. Requests already synced are skipped. Provider failures
// are returned as *domain.IntegrationError.
func (d *Dispatcher) Dispatch(ctx context.Context, req domain.SyncRequest) (*domain.SyncRecord, error) {
	rec, err := d.store.GetSyncRecord(ctx, req.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		rec = &domain.SyncRecord{
			ID:       req.ID,
			Kind:     req.Kind,
			EntityID: req.EntityID,
			Payload:  req.Payload,
			Status:   domain.SyncPending,
		}
	case err != nil:
		return nil, fmt.Errorf("load sync record %s: %w", req.ID, err)
	}

	if rec.Status == domain.SyncSynced {
		return rec, nil
	}

	rec.Attempts++
	ref, execErr := d.execute(ctx, req)

	if execErr != nil {
		next := d.now().UTC().Add(retryDelay(rec.Attempts))
		rec.Status = domain.SyncFailed
		rec.LastError = execErr.Error()
		rec.NextAttemptAt = &next
	} else {
		rec.Status = domain.SyncSynced
		rec.LastError = ""
		rec.ExternalRef = ref
		rec.NextAttemptAt = nil
	}

	if err := d.store.SaveSyncRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("save sync record %s: %w", rec.ID, err)
	}

	if execErr != nil {
		slog.Warn("integration request failed",
			"sync_id", rec.ID,
			"kind", rec.Kind,
			"entity_id", rec.EntityID,
			"attempts", rec.Attempts,
			"error", execErr,
		)
		return rec, execErr
	}

	slog.Info("integration request synced",
		"sync_id", rec.ID,
		"kind", rec.Kind,
		"entity_id", rec.EntityID,
		"external_ref", ref,
	)
	return rec, nil
}

// Retry re-dispatches failed and stale pending records that are due and
// still under maxAttempts. It returns how many succeeded.
func (d *Dispatcher) Retry(ctx context.Context, maxAttempts int) (int, error) {
	records, err := d.store.ListRetryableSyncRecords(ctx, d.now(), maxAttempts)
	if err != nil {
		return 0, fmt.Errorf("list retryable sync records: %w", err)
	}

	synced := 0
	for _, rec := range records {
		if ctx.Err() != nil {
			return synced, ctx.Err()
		}
		_, err := d.Dispatch(ctx, domain.SyncRequest{
			ID:       rec.ID,
			Kind:     rec.Kind,
			EntityID: rec.EntityID,
			Payload:  rec.Payload,
		})
		if err == nil {
			synced++
		}
	}

	if len(records) > 0 {
		slog.Info("integration retry complete", "due", len(records), "synced", synced)
	}
	return synced, nil
}

func (d *Dispatcher) execute(ctx context.Context, req domain.SyncRequest) (string, error) {
	switch req.Kind {
	case domain.SyncAccountingInvoice:
		var inv domain.InvoicePayload
		if err := json.Unmarshal(req.Payload, &inv); err != nil {
			return "", integrationErr(providerAccounting, "invoice", err)
		}
		if d.providers.Accounting == nil {
			return "", integrationErr(providerAccounting, "invoice", errNotConfigured)
		}
		ref, err := d.providers.Accounting.SyncInvoice(ctx, inv)
		return ref, integrationErr(providerAccounting, "invoice", err)

	case domain.SyncAccountingContact:
		var contact domain.ContactPayload
		if err := json.Unmarshal(req.Payload, &contact); err != nil {
			return "", integrationErr(providerAccounting, "contact", err)
		}
		if d.providers.Accounting == nil {
			return "", integrationErr(providerAccounting, "contact", errNotConfigured)
		}
		ref, err := d.providers.Accounting.SyncContact(ctx, contact)
		return ref, integrationErr(providerAccounting, "contact", err)

	case domain.SyncESignEnvelope:
		var env domain.EnvelopePayload
		if err := json.Unmarshal(req.Payload, &env); err != nil {
			return "", integrationErr(providerESign, "envelope", err)
		}
		if d.providers.ESign == nil {
			return "", integrationErr(providerESign, "envelope", errNotConfigured)
		}
		ref, err := d.providers.ESign.CreateEnvelope(ctx, env)
		return ref, integrationErr(providerESign, "envelope", err)

	case domain.SyncSMS:
		return "", d.send(ctx, providerSMS, d.providers.SMS, req.Payload)

	case domain.SyncEmail:
		return "", d.send(ctx, providerEmail, d.providers.Email, req.Payload)
	}

	return "", integrationErr("dispatcher", string(req.Kind), fmt.Errorf("unknown sync kind %q", req.Kind))
}

func (d *Dispatcher) send(ctx context.Context, provider string, n Notifier, payload json.RawMessage) error {
	var msg domain.MessagePayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		return integrationErr(provider, "send", err)
	}
	if n == nil {
		return integrationErr(provider, "send", errNotConfigured)
	}
	return integrationErr(provider, "send", n.Send(ctx, msg))
}

var errNotConfigured = errors.New("provider not configured")

func integrationErr(provider, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &domain.IntegrationError{Provider: provider, Operation: operation, Err: err}
}

// retryDelay doubles from baseRetryDelay per attempt up to maxRetryDelay.
func retryDelay(attempts int) time.Duration {
	delay := baseRetryDelay
	for i := 1; i < attempts && delay < maxRetryDelay; i++ {
		delay *= 2
	}
	return min(delay, maxRetryDelay)
}
