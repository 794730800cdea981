package recruitment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"github.com/google/uuid"
)

// ActorAuto is the history actor for automatic transitions.
const ActorAuto = "auto"

// StatusUpdate is a requested pipeline move.
type StatusUpdate struct {
	Status   domain.ApplicationStatus `json:"status"`
	Actor    string                   `json:"actor"`
	Override bool                     `json:"override"`
	Reason   string                   `json:"reason"`
}

// Service manages candidates, jobs and applications.
type Service struct {
	store     domain.RecruitmentStore
	screener  *Screener
	requester domain.SyncRequester
	now       func() time.Time
}

// NewService creates a recruitment service. requester may be nil.
func NewService(store domain.RecruitmentStore, screener *Screener, requester domain.SyncRequester) *Service {
	return &Service{
		store:     store,
		screener:  screener,
		requester: requester,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for history timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateCandidate validates and stores a candidate.
func (s *Service) CreateCandidate(ctx context.Context, c *domain.Candidate) error {
	if strings.TrimSpace(c.Name) == "" {
		return domain.NewValidationError("name", "is required")
	}
	if c.ExperienceYears < 0 {
		return domain.NewValidationError("experienceYears", "must not be negative")
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return s.store.SaveCandidate(ctx, c)
}

// CreateJob validates and stores a job.
func (s *Service) CreateJob(ctx context.Context, j *domain.Job) error {
	if strings.TrimSpace(j.Title) == "" {
		return domain.NewValidationError("title", "is required")
	}
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	return s.store.SaveJob(ctx, j)
}

// CreateApplication records an application and auto-screens it once.
// The application ends in shortlisted, rejected, or screening when it
// needs a human review.
func (s *Service) CreateApplication(ctx context.Context, candidateID, jobID string) (*domain.CandidateApplication, *domain.ScreeningResult, error) {
	if candidateID == "" {
		return nil, nil, domain.NewValidationError("candidateId", "is required")
	}
	if jobID == "" {
		return nil, nil, domain.NewValidationError("jobId", "is required")
	}
	if _, err := s.store.GetCandidate(ctx, candidateID); err != nil {
		return nil, nil, fmt.Errorf("candidate %s: %w", candidateID, err)
	}
	if _, err := s.store.GetJob(ctx, jobID); err != nil {
		return nil, nil, fmt.Errorf("job %s: %w", jobID, err)
	}

	app := &domain.CandidateApplication{
		ID:          uuid.New().String(),
		CandidateID: candidateID,
		JobID:       jobID,
		Status:      domain.ApplicationReceived,
	}
	if err := s.store.SaveApplication(ctx, app); err != nil {
		return nil, nil, fmt.Errorf("save application: %w", err)
	}

	result, err := s.AutoScreen(ctx, app.ID)
	if err != nil {
		return nil, nil, err
	}

	app, err = s.store.GetApplication(ctx, app.ID)
	if err != nil {
		return nil, nil, err
	}
	return app, result, nil
}

// AutoScreen runs the screening rules on an application that has not yet
// left screening.
func (s *Service) AutoScreen(ctx context.Context, applicationID string) (*domain.ScreeningResult, error) {
	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.ApplicationReceived && app.Status != domain.ApplicationScreening {
		return nil, fmt.Errorf("%w: application %s is %s, screening needs received or screening",
			domain.ErrInvalidTransition, app.ID, app.Status)
	}

	candidate, err := s.store.GetCandidate(ctx, app.CandidateID)
	if err != nil {
		return nil, fmt.Errorf("candidate %s: %w", app.CandidateID, err)
	}
	job, err := s.store.GetJob(ctx, app.JobID)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", app.JobID, err)
	}

	rule, err := s.screener.Screen(candidate, job)
	if err != nil {
		return nil, err
	}

	if app.Status == domain.ApplicationReceived {
		if err := s.move(ctx, app, domain.ApplicationScreening, ActorAuto, false, ""); err != nil {
			return nil, err
		}
	}

	app.Score = rule.Score
	app.ScreeningResult = rule.Outcome
	app.ScreeningReason = rule.Reason

	if next := statusFor(rule.Outcome); next != app.Status {
		if err := s.move(ctx, app, next, ActorAuto, false, rule.Reason); err != nil {
			return nil, err
		}
	} else if err := s.store.SaveApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("save application: %w", err)
	}

	slog.Info("application screened",
		"application_id", app.ID,
		"result", rule.Outcome,
		"score", rule.Score,
		"rule_id", rule.ID,
		"status", app.Status,
	)

	s.notifyCandidate(ctx, app, candidate)

	return &domain.ScreeningResult{
		ApplicationID: app.ID,
		Result:        rule.Outcome,
		Score:         rule.Score,
		Reason:        rule.Reason,
		RuleID:        rule.ID,
		Status:        app.Status,
	}, nil
}

// UpdateStatus moves an application. Moves outside the state machine need
// Override and a reason.
func (s *Service) UpdateStatus(ctx context.Context, applicationID string, upd StatusUpdate) (*domain.CandidateApplication, error) {
	to, err := ParseStatus(string(upd.Status))
	if err != nil {
		return nil, err
	}
	if upd.Actor == "" {
		return nil, domain.NewValidationError("actor", "is required")
	}

	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status == to {
		return app, nil
	}

	if !IsTransitionAllowed(app.Status, to) {
		if !upd.Override {
			return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, app.Status, to)
		}
		if strings.TrimSpace(upd.Reason) == "" {
			return nil, domain.NewValidationError("reason", "is required for an override")
		}
	} else {
		upd.Override = false
	}

	if err := s.move(ctx, app, to, upd.Actor, upd.Override, upd.Reason); err != nil {
		return nil, err
	}

	slog.Info("application status updated",
		"application_id", app.ID,
		"status", to,
		"actor", upd.Actor,
		"override", upd.Override,
	)

	if to == domain.ApplicationShortlisted || to == domain.ApplicationRejected {
		if candidate, err := s.store.GetCandidate(ctx, app.CandidateID); err == nil {
			s.notifyCandidate(ctx, app, candidate)
		}
	}

	return app, nil
}

// Get returns an application.
func (s *Service) Get(ctx context.Context, applicationID string) (*domain.CandidateApplication, error) {
	return s.store.GetApplication(ctx, applicationID)
}

// History returns the status changes of an application, oldest first.
func (s *Service) History(ctx context.Context, applicationID string) ([]*domain.ApplicationStatusChange, error) {
	if _, err := s.store.GetApplication(ctx, applicationID); err != nil {
		return nil, err
	}
	return s.store.ListStatusChanges(ctx, applicationID)
}

func (s *Service) move(ctx context.Context, app *domain.CandidateApplication, to domain.ApplicationStatus, actor string, override bool, reason string) error {
	change := &domain.ApplicationStatusChange{
		ID:            uuid.New().String(),
		ApplicationID: app.ID,
		From:          app.Status,
		To:            to,
		Actor:         actor,
		Override:      override,
		Reason:        reason,
		ChangedAt:     s.now().UTC(),
	}

	app.Status = to
	if err := s.store.SaveApplication(ctx, app); err != nil {
		return fmt.Errorf("save application: %w", err)
	}
	if err := s.store.SaveStatusChange(ctx, change); err != nil {
		return fmt.Errorf("save status change: %w", err)
	}
	return nil
}

func (s *Service) notifyCandidate(ctx context.Context, app *domain.CandidateApplication, c *domain.Candidate) {
	if s.requester == nil || c.Email == "" {
		return
	}

	var msg domain.MessagePayload
	switch app.Status {
	case domain.ApplicationShortlisted:
		msg = domain.MessagePayload{
			Recipient: c.Email,
			Subject:   "Your application has been shortlisted",
			Body:      fmt.Sprintf("Hi %s, thanks for applying. We would like to invite you to an interview and will be in touch shortly.", c.Name),
		}
	case domain.ApplicationRejected:
		msg = domain.MessagePayload{
			Recipient: c.Email,
			Subject:   "Your application",
			Body:      fmt.Sprintf("Hi %s, thank you for your interest. Unfortunately we will not be progressing your application at this time.", c.Name),
		}
	default:
		return
	}

	if err := s.requester.Request(ctx, domain.SyncEmail, app.ID, msg); err != nil {
		slog.Error("failed to queue candidate email", "application_id", app.ID, "error", err)
	}
}
