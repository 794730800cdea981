package incident

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"github.com/google/uuid"
)

// AlertWindow limits overdue alerts to one per incident per window.
const AlertWindow = 24 * time.Hour

// ReportInput is the data needed to record an incident.
type ReportInput struct {
	Type          string    `json:"type"`
	ParticipantID string    `json:"participantId"`
	ReportedBy    string    `json:"reportedBy"`
	Description   string    `json:"description"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Contacts is who receives incident alerts.
type Contacts struct {
	Phone string
	Email string
}

// Service records incidents and raises alerts.
type Service struct {
	store      domain.IncidentStore
	classifier *Classifier
	requester  domain.SyncRequester
	cache      domain.Cache
	contacts   Contacts
}

// NewService creates an incident service. requester and cache may be nil.
func NewService(store domain.IncidentStore, classifier *Classifier, requester domain.SyncRequester, c domain.Cache, contacts Contacts) *Service {
	return &Service{
		store:      store,
		classifier: classifier,
		requester:  requester,
		cache:      c,
		contacts:   contacts,
	}
}

// Classify buckets an incident type against the current time.
func (s *Service) Classify(incidentType string) (domain.Classification, error) {
	if NormaliseType(incidentType) == "" {
		return domain.Classification{}, domain.NewValidationError("type", "is required")
	}
	return s.classifier.Classify(incidentType), nil
}

// Report records an incident. The reporting deadline is computed here once
// and never changes afterwards. Immediate incidents alert the compliance
// officer by SMS and email.
func (s *Service) Report(ctx context.Context, in ReportInput) (*domain.Incident, error) {
	if NormaliseType(in.Type) == "" {
		return nil, domain.NewValidationError("type", "is required")
	}
	if in.ParticipantID == "" {
		return nil, domain.NewValidationError("participantId", "is required")
	}

	now := s.classifier.now().UTC()
	class := s.classifier.ClassifyAt(in.Type, now)

	occurred := in.OccurredAt
	if occurred.IsZero() {
		occurred = now
	}

	inc := &domain.Incident{
		ID:                uuid.New().String(),
		Type:              class.IncidentType,
		Severity:          class.NotificationType,
		ParticipantID:     in.ParticipantID,
		ReportedBy:        in.ReportedBy,
		Description:       in.Description,
		OccurredAt:        occurred.UTC(),
		ReportingDeadline: class.Deadline.UTC(),
		CreatedAt:         now,
	}

	if err := s.store.SaveIncident(ctx, inc); err != nil {
		return nil, fmt.Errorf("save incident: %w", err)
	}

	slog.Info("incident reported",
		"incident_id", inc.ID,
		"type", inc.Type,
		"notification_type", inc.Severity,
		"deadline", inc.ReportingDeadline.Format(time.RFC3339),
	)

	if inc.Severity == domain.NotifyImmediate {
		s.alert(ctx, inc, fmt.Sprintf("IMMEDIATE incident %s (%s) for participant %s. Notify the NDIS Commission by %s.",
			inc.ID, inc.Type, inc.ParticipantID, inc.ReportingDeadline.Format(time.RFC3339)))
	}

	return inc, nil
}

// Get returns an incident by ID.
func (s *Service) Get(ctx context.Context, id string) (*domain.Incident, error) {
	return s.store.GetIncident(ctx, id)
}

// MarkNotified records that the regulator has been notified. The reporting
// deadline is not touched. Marking twice keeps the first timestamp.
func (s *Service) MarkNotified(ctx context.Context, id string) (*domain.Incident, error) {
	inc, err := s.store.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}
	if inc.NDISReported {
		return inc, nil
	}

	reportedAt := s.classifier.now().UTC()
	if err := s.store.MarkIncidentReported(ctx, id, reportedAt); err != nil {
		return nil, fmt.Errorf("mark incident reported: %w", err)
	}

	inc.NDISReported = true
	inc.ReportedAt = &reportedAt

	slog.Info("incident notified",
		"incident_id", id,
		"late", reportedAt.After(inc.ReportingDeadline),
	)
	return inc, nil
}

// Overdue lists unreported incidents past their deadline.
func (s *Service) Overdue(ctx context.Context) ([]*domain.Incident, error) {
	return s.store.ListOverdueIncidents(ctx, s.classifier.now().UTC())
}

// SweepOverdue alerts on overdue incidents, at most once per incident per
// AlertWindow. It returns the number of alerts raised.
func (s *Service) SweepOverdue(ctx context.Context) (int, error) {
	overdue, err := s.Overdue(ctx)
	if err != nil {
		return 0, fmt.Errorf("list overdue incidents: %w", err)
	}

	alerted := 0
	for _, inc := range overdue {
		if s.cache != nil {
			n, err := s.cache.IncrementCounter(ctx, "incident-overdue:"+inc.ID, AlertWindow)
			if err != nil {
				slog.Warn("overdue alert throttle unavailable", "incident_id", inc.ID, "error", err)
			} else if n > 1 {
				continue
			}
		}

		s.alert(ctx, inc, fmt.Sprintf("OVERDUE incident %s (%s) for participant %s. Deadline was %s.",
			inc.ID, inc.Type, inc.ParticipantID, inc.ReportingDeadline.Format(time.RFC3339)))
		alerted++
	}

	if len(overdue) > 0 {
		slog.Warn("overdue incidents", "count", len(overdue), "alerted", alerted)
	}
	return alerted, nil
}

func (s *Service) alert(ctx context.Context, inc *domain.Incident, body string) {
	if s.requester == nil {
		return
	}

	if s.contacts.Phone != "" {
		msg := domain.MessagePayload{Recipient: s.contacts.Phone, Body: body}
		if err := s.requester.Request(ctx, domain.SyncSMS, inc.ID, msg); err != nil {
			slog.Error("failed to queue incident sms", "incident_id", inc.ID, "error", err)
		}
	}
	if s.contacts.Email != "" {
		msg := domain.MessagePayload{
			Recipient: s.contacts.Email,
			Subject:   "Incident " + strings.ReplaceAll(string(inc.Severity), "_", " ") + ": " + inc.Type,
			Body:      body,
		}
		if err := s.requester.Request(ctx, domain.SyncEmail, inc.ID, msg); err != nil {
			slog.Error("failed to queue incident email", "incident_id", inc.ID, "error", err)
		}
	}
}
