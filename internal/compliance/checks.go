package compliance

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
)

// ErrCheckNotImplemented marks a check whose logic does not exist yet.
// Such checks are reported but never scored.
var ErrCheckNotImplemented = errors.New("compliance check not implemented")

// ExpiryWarningWindow is how far ahead an expiring credential is flagged.
const ExpiryWarningWindow = 30 * 24 * time.Hour

// PriceLookup resolves support item prices for the service checks.
type PriceLookup interface {
	GetPrice(ctx context.Context, code, area string, participantAge *int) (*domain.PriceResult, error)
}

// Outcome is what a single check function reports.
type Outcome struct {
	Status domain.CheckStatus
	Detail string
}

// Check is a named compliance check over a subject of type T.
type Check[T any] struct {
	Type        string
	Label       string
	Criticality domain.Criticality
	Run         func(ctx context.Context, subject T, now time.Time) (Outcome, error)
}

func pass(detail string) Outcome { return Outcome{Status: domain.CheckPass, Detail: detail} }
func warn(detail string) Outcome { return Outcome{Status: domain.CheckWarning, Detail: detail} }
func fail(detail string) Outcome { return Outcome{Status: domain.CheckFail, Detail: detail} }

func notImplemented(context.Context, any, time.Time) (Outcome, error) {
	return Outcome{}, ErrCheckNotImplemented
}

// credentialExpiry grades an optional expiry date.
func credentialExpiry(name string, expiry *time.Time, now time.Time) Outcome {
	switch {
	case expiry == nil:
		return fail(name + " not on file")
	case !expiry.After(now):
		return fail(fmt.Sprintf("%s expired %s", name, expiry.Format(time.DateOnly)))
	case expiry.Sub(now) <= ExpiryWarningWindow:
		return warn(fmt.Sprintf("%s expires %s", name, expiry.Format(time.DateOnly)))
	}
	return pass(fmt.Sprintf("%s valid until %s", name, expiry.Format(time.DateOnly)))
}

// StaffChecks returns the credential checks for a support worker.
func StaffChecks() []Check[*domain.StaffMember] {
	return []Check[*domain.StaffMember]{
		{
			Type:        "worker_screening",
			Label:       "NDIS worker screening clearance",
			Criticality: domain.CriticalityCritical,
			Run: func(_ context.Context, s *domain.StaffMember, now time.Time) (Outcome, error) {
				return credentialExpiry("Worker screening clearance", s.WorkerScreeningExpiry, now), nil
			},
		},
		{
			Type:        "police_check",
			Label:       "National police check",
			Criticality: domain.CriticalityHigh,
			Run: func(_ context.Context, s *domain.StaffMember, now time.Time) (Outcome, error) {
				return credentialExpiry("Police check", s.PoliceCheckExpiry, now), nil
			},
		},
		{
			Type:        "first_aid",
			Label:       "First aid certificate",
			Criticality: domain.CriticalityMedium,
			Run: func(_ context.Context, s *domain.StaffMember, now time.Time) (Outcome, error) {
				return credentialExpiry("First aid certificate", s.FirstAidExpiry, now), nil
			},
		},
		{
			Type:        "ndis_orientation",
			Label:       "NDIS worker orientation module",
			Criticality: domain.CriticalityLow,
			Run: func(_ context.Context, s *domain.StaffMember, _ time.Time) (Outcome, error) {
				if s.NDISOrientationCompleted {
					return pass("Orientation module completed"), nil
				}
				return fail("Orientation module not completed"), nil
			},
		},
	}
}

// RequiredReferralDocuments must all be on file before onboarding.
var RequiredReferralDocuments = []string{
	domain.DocConsentForm,
	domain.DocNDISPlan,
	domain.DocServiceAgreement,
}

// ValidNDISNumber reports whether s looks like an NDIS participant number:
// nine digits beginning with 43.
func ValidNDISNumber(s string) bool {
	if len(s) != 9 || s[:2] != "43" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func missingDocuments(have []string) []string {
	var missing []string
	for _, doc := range RequiredReferralDocuments {
		if !slices.Contains(have, doc) {
			missing = append(missing, doc)
		}
	}
	return missing
}

// ReferralChecks returns the intake checks for a referral.
func ReferralChecks() []Check[*domain.Referral] {
	return []Check[*domain.Referral]{
		{
			Type:        "ndis_number",
			Label:       "NDIS number",
			Criticality: domain.CriticalityCritical,
			Run: func(_ context.Context, r *domain.Referral, _ time.Time) (Outcome, error) {
				if ValidNDISNumber(r.NDISNumber) {
					return pass("NDIS number format valid"), nil
				}
				return fail(fmt.Sprintf("NDIS number %q is not a valid participant number", r.NDISNumber)), nil
			},
		},
		{
			Type:        "required_documents",
			Label:       "Required intake documents",
			Criticality: domain.CriticalityHigh,
			Run: func(_ context.Context, r *domain.Referral, _ time.Time) (Outcome, error) {
				missing := missingDocuments(r.Documents)
				switch {
				case len(missing) == 0:
					return pass("All intake documents on file"), nil
				case len(missing) == len(RequiredReferralDocuments):
					return fail("No intake documents on file"), nil
				}
				return warn(fmt.Sprintf("Missing documents: %v", missing)), nil
			},
		},
		{
			Type:        "workflow_stage",
			Label:       "Referral workflow stage",
			Criticality: domain.CriticalityMedium,
			Run: func(_ context.Context, r *domain.Referral, _ time.Time) (Outcome, error) {
				if !slices.Contains(domain.ReferralStages, r.Stage) {
					return fail(fmt.Sprintf("Unknown stage %q", r.Stage)), nil
				}
				switch r.Stage {
				case domain.ReferralOnboarded, domain.ReferralApproved:
					if missing := missingDocuments(r.Documents); len(missing) > 0 {
						return fail(fmt.Sprintf("Stage %s reached without %v", r.Stage, missing)), nil
					}
				case domain.ReferralDeclined:
					return warn("Referral declined"), nil
				}
				return pass(fmt.Sprintf("Stage %s", r.Stage)), nil
			},
		},
		{
			Type:        "service_eligibility",
			Label:       "Service eligibility",
			Criticality: domain.CriticalityHigh,
			Run: func(ctx context.Context, r *domain.Referral, now time.Time) (Outcome, error) {
				return notImplemented(ctx, r, now)
			},
		},
	}
}

// ServiceChecks returns the checks for a service agreement.
func ServiceChecks(prices PriceLookup) []Check[*domain.ServiceAgreement] {
	return []Check[*domain.ServiceAgreement]{
		{
			Type:        "agreement_signed",
			Label:       "Service agreement signed",
			Criticality: domain.CriticalityCritical,
			Run: func(_ context.Context, a *domain.ServiceAgreement, _ time.Time) (Outcome, error) {
				if a.Signed {
					return pass("Agreement signed"), nil
				}
				return fail("Agreement not signed"), nil
			},
		},
		{
			Type:        "agreement_current",
			Label:       "Service agreement current",
			Criticality: domain.CriticalityHigh,
			Run: func(_ context.Context, a *domain.ServiceAgreement, now time.Time) (Outcome, error) {
				switch {
				case now.Before(a.StartDate):
					return warn(fmt.Sprintf("Agreement starts %s", a.StartDate.Format(time.DateOnly))), nil
				case !a.EndDate.After(now):
					return fail(fmt.Sprintf("Agreement ended %s", a.EndDate.Format(time.DateOnly))), nil
				case a.EndDate.Sub(now) <= ExpiryWarningWindow:
					return warn(fmt.Sprintf("Agreement ends %s", a.EndDate.Format(time.DateOnly))), nil
				}
				return pass(fmt.Sprintf("Agreement current until %s", a.EndDate.Format(time.DateOnly))), nil
			},
		},
		{
			Type:        "support_items_priced",
			Label:       "Support items in price catalogue",
			Criticality: domain.CriticalityMedium,
			Run: func(ctx context.Context, a *domain.ServiceAgreement, _ time.Time) (Outcome, error) {
				if len(a.SupportItemCodes) == 0 {
					return fail("No support items listed"), nil
				}
				var unknown, defaulted []string
				for _, code := range a.SupportItemCodes {
					price, err := prices.GetPrice(ctx, code, string(domain.AreaStandard), nil)
					if err != nil {
						return Outcome{}, err
					}
					switch price.Source {
					case domain.PriceSourceUnknown:
						unknown = append(unknown, code)
					case domain.PriceSourceDefault:
						defaulted = append(defaulted, code)
					}
				}
				switch {
				case len(unknown) > 0:
					return fail(fmt.Sprintf("Unknown support items: %v", unknown)), nil
				case len(defaulted) > 0:
					return warn(fmt.Sprintf("Priced from default table: %v", defaulted)), nil
				}
				return pass("All support items priced from catalogue"), nil
			},
		},
		{
			Type:        "documentation_complete",
			Label:       "Service documentation",
			Criticality: domain.CriticalityMedium,
			Run: func(ctx context.Context, a *domain.ServiceAgreement, now time.Time) (Outcome, error) {
				return notImplemented(ctx, a, now)
			},
		},
	}
}
