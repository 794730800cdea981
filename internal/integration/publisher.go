// Package integration talks to the accounting, e-signature and messaging
// providers. Requests travel over the event bus and are executed by the
// Dispatcher, which records every attempt for reconciliation and retry.
package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"github.com/google/uuid"
)

// PendingGrace is how long a published request may stay pending before
// the retry job treats its message as lost and dispatches it itself.
const PendingGrace = 10 * time.Minute

// Publisher records sync requests as pending and queues them on the event
// bus. The pending row survives a dropped or failed publish, so the retry
// job still finds the request.
type Publisher struct {
	bus   domain.EventBus
	store domain.SyncStore
	now   func() time.Time
}

// NewPublisher creates a Publisher.
func NewPublisher(bus domain.EventBus, store domain.SyncStore) *Publisher {
	return &Publisher{bus: bus, store: store, now: time.Now}
}

// WithClock replaces the clock used to stamp pending records.
func (p *Publisher) WithClock(now func() time.Time) *Publisher {
	p.now = now
	return p
}

// Request saves a pending SyncRecord and publishes the SyncRequest on
// TopicIntegrationRequested. A publish failure is logged, not returned;
// the record is picked up by Dispatcher.Retry once PendingGrace passes.
func (p *Publisher) Request(ctx context.Context, kind domain.SyncKind, entityID string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", kind, err)
	}

	req := domain.SyncRequest{
		ID:       uuid.New().String(),
		Kind:     kind,
		EntityID: entityID,
		Payload:  raw,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal sync request: %w", err)
	}

	due := p.now().UTC().Add(PendingGrace)
	rec := &domain.SyncRecord{
		ID:            req.ID,
		Kind:          req.Kind,
		EntityID:      req.EntityID,
		Payload:       req.Payload,
		Status:        domain.SyncPending,
		NextAttemptAt: &due,
	}
	if err := p.store.SaveSyncRecord(ctx, rec); err != nil {
		return fmt.Errorf("record sync request: %w", err)
	}

	if err := p.bus.Publish(ctx, domain.TopicIntegrationRequested, body); err != nil {
		slog.Warn("sync request not published, left pending for retry",
			"sync_id", req.ID,
			"kind", kind,
			"error", err,
		)
	}
	return nil
}
