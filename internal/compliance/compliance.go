// Package compliance runs named compliance checks against staff, referrals
// and service agreements and aggregates them into a weighted score.
package compliance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"github.com/google/uuid"
)

// Status values used in the weighted score.
var statusValues = map[domain.CheckStatus]float64{
	domain.CheckPass:    100,
	domain.CheckWarning: 50,
	domain.CheckFail:    0,
}

// Aggregator loads a compliance subject, runs its checks and scores them.
type Aggregator struct {
	store    domain.ComplianceStore
	weights  map[domain.Criticality]int
	staff    []Check[*domain.StaffMember]
	referral []Check[*domain.Referral]
	service  []Check[*domain.ServiceAgreement]
	now      func() time.Time
}

// NewAggregator creates an aggregator with the built-in check lists.
func NewAggregator(store domain.ComplianceStore, prices PriceLookup, weights map[domain.Criticality]int) *Aggregator {
	return &Aggregator{
		store:    store,
		weights:  weights,
		staff:    StaffChecks(),
		referral: ReferralChecks(),
		service:  ServiceChecks(prices),
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Run checks one entity and persists the resulting score.
func (a *Aggregator) Run(ctx context.Context, entityType domain.EntityType, entityID string) (*domain.ComplianceReport, error) {
	if entityID == "" {
		return nil, domain.NewValidationError("entityId", "is required")
	}

	now := a.now().UTC()
	var checks []domain.CheckResult
	var skipped []string
	var err error

	switch entityType {
	case domain.EntityStaff:
		var s *domain.StaffMember
		if s, err = a.store.GetStaffMember(ctx, entityID); err == nil {
			checks, skipped, err = runChecks(ctx, a.staff, s, now)
		}
	case domain.EntityReferral:
		var r *domain.Referral
		if r, err = a.store.GetReferral(ctx, entityID); err == nil {
			checks, skipped, err = runChecks(ctx, a.referral, r, now)
		}
	case domain.EntityService:
		var sa *domain.ServiceAgreement
		if sa, err = a.store.GetServiceAgreement(ctx, entityID); err == nil {
			checks, skipped, err = runChecks(ctx, a.service, sa, now)
		}
	default:
		return nil, domain.NewValidationError("entityType", "unknown entity type %q", entityType)
	}
	if err != nil {
		return nil, fmt.Errorf("compliance %s %s: %w", entityType, entityID, err)
	}

	report := Aggregate(checks, a.weights, now)
	report.EntityType = entityType
	report.EntityID = entityID
	report.NotImplemented = skipped

	log := &domain.ComplianceScoreLog{
		ID:             uuid.New().String(),
		EntityType:     entityType,
		EntityID:       entityID,
		Score:          report.Score,
		NextReviewDate: report.NextReviewDate,
		CheckedAt:      now,
	}
	if err := a.store.SaveComplianceScore(ctx, log); err != nil {
		return nil, fmt.Errorf("save compliance score: %w", err)
	}

	slog.Info("compliance check completed",
		"entity_type", entityType,
		"entity_id", entityID,
		"score", report.Score,
		"checks", len(report.Checks),
		"not_implemented", len(skipped),
		"next_review", report.NextReviewDate.Format(time.DateOnly),
	)

	return report, nil
}

// runChecks executes checks in order. Checks that report
// ErrCheckNotImplemented are returned by type in skipped.
func runChecks[T any](ctx context.Context, checks []Check[T], subject T, now time.Time) (results []domain.CheckResult, skipped []string, err error) {
	for _, c := range checks {
		out, err := c.Run(ctx, subject, now)
		if errors.Is(err, ErrCheckNotImplemented) {
			skipped = append(skipped, c.Type)
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("check %s: %w", c.Type, err)
		}
		results = append(results, domain.CheckResult{
			CheckType:   c.Type,
			Label:       c.Label,
			Status:      out.Status,
			Criticality: c.Criticality,
			Detail:      out.Detail,
		})
	}
	return results, skipped, nil
}

// Aggregate scores check results: the weighted mean of pass 100, warning 50
// and fail 0, rounded to an integer. No weighted checks scores 0.
func Aggregate(checks []domain.CheckResult, weights map[domain.Criticality]int, checkedAt time.Time) *domain.ComplianceReport {
	var total, weightSum float64
	recommendations := []string{}

	for _, c := range checks {
		w := float64(weights[c.Criticality])
		total += statusValues[c.Status] * w
		weightSum += w

		switch c.Status {
		case domain.CheckFail:
			recommendations = append(recommendations, "Address "+c.Label)
		case domain.CheckWarning:
			recommendations = append(recommendations, "Review "+c.Label)
		}
	}

	score := 0
	if weightSum > 0 {
		score = int(math.Round(total / weightSum))
	}

	if checks == nil {
		checks = []domain.CheckResult{}
	}

	return &domain.ComplianceReport{
		Score:           score,
		Checks:          checks,
		Recommendations: recommendations,
		CheckedAt:       checkedAt,
		NextReviewDate:  checkedAt.AddDate(0, 0, ReviewIntervalDays(score)),
	}
}

// ReviewIntervalDays returns days until the next review for a score.
func ReviewIntervalDays(score int) int {
	switch {
	case score >= 90:
		return 90
	case score >= 75:
		return 60
	}
	return 30
}
