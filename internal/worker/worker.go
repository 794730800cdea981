// Package worker executes queued integration requests from the EventBus.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("primacy-worker")

// errStopped is returned for messages delivered after Stop began. Their
// sync records stay pending and are picked up by the retry job.
var errStopped = errors.New("worker stopped")

// Dispatcher performs one sync request.
type Dispatcher interface {
	Dispatch(ctx context.Context, req domain.SyncRequest) (*domain.SyncRecord, error)
}

// Worker consumes sync requests from the EventBus.
type Worker struct {
	bus        domain.EventBus
	dispatcher Dispatcher

	mu            sync.Mutex
	subscriptions []domain.Subscription
	stopped       bool
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewWorker creates a new async worker.
func NewWorker(bus domain.EventBus, dispatcher Dispatcher) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:        bus,
		dispatcher: dispatcher,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start subscribes to the integration topic. A stopped worker cannot be
// restarted.
func (w *Worker) Start() error {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return errStopped
	}

	sub, err := w.bus.Subscribe(w.ctx, domain.TopicIntegrationRequested, w.handleMessage)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.subscriptions = append(w.subscriptions, sub)
	w.mu.Unlock()

	slog.Info("integration worker started",
		"topic", domain.TopicIntegrationRequested,
	)
	return nil
}

// handleMessage decodes and dispatches one request. Provider failures are
// already recorded for retry, so they are not returned to the bus.
func (w *Worker) handleMessage(ctx context.Context, msg *domain.Message) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return errStopped
	}
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	start := time.Now()

	var req domain.SyncRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		slog.Error("failed to parse sync request",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}
	if req.ID == "" {
		req.ID = msg.ID
	}

	// ctx descends from the worker's context and carries the publisher's
	// trace, so the dispatch span joins the originating API request.
	ctx, span := tracer.Start(ctx, "integration.dispatch",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("sync.id", req.ID),
			attribute.String("sync.kind", string(req.Kind)),
			attribute.String("messaging.message.id", msg.ID),
		),
	)
	defer span.End()

	rec, err := w.dispatcher.Dispatch(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	var ie *domain.IntegrationError
	switch {
	case errors.As(err, &ie):
		return nil
	case err != nil:
		slog.Error("failed to dispatch sync request",
			"sync_id", req.ID,
			"kind", req.Kind,
			"error", err,
		)
		return err
	}

	slog.Debug("sync request processed",
		"sync_id", rec.ID,
		"kind", rec.Kind,
		"status", rec.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Stop unsubscribes and waits for in-flight requests.
func (w *Worker) Stop() error {
	w.mu.Lock()
	w.stopped = true
	subs := w.subscriptions
	w.subscriptions = nil
	w.mu.Unlock()

	for _, sub := range subs {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}

	w.wg.Wait()
	w.cancel()

	slog.Info("integration worker stopped")
	return nil
}

// Stats returns worker statistics.
type Stats struct {
	SubscriptionCount int      `json:"subscriptionCount"`
	Topics            []string `json:"topics"`
}

// GetStats returns current worker statistics.
func (w *Worker) GetStats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	topics := make([]string, len(w.subscriptions))
	for i, sub := range w.subscriptions {
		topics[i] = sub.Topic()
	}
	return Stats{
		SubscriptionCount: len(w.subscriptions),
		Topics:            topics,
	}
}
