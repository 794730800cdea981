// Package recruitment auto-screens candidate applications and moves them
// through the hiring pipeline.
package recruitment

import (
	"fmt"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/rules"
)

// Screener evaluates the ordered screening rules. It is immutable after
// construction and safe for concurrent use.
type Screener struct {
	rules *rules.RuleSet[domain.ScreeningRule]
}

// NewScreener compiles the screening rules. An empty list uses the defaults.
func NewScreener(defs []domain.ScreeningRule) (*Screener, error) {
	if len(defs) == 0 {
		defs = domain.DefaultScreeningRules()
	}

	engine, err := rules.NewEngine(
		rules.Bool("requires_screening"),
		rules.Bool("has_screening"),
		rules.Bool("requires_license"),
		rules.Bool("has_license"),
		rules.Double("experience_years"),
		rules.Bool("ndis_experience"),
	)
	if err != nil {
		return nil, err
	}

	list := make([]rules.Rule[domain.ScreeningRule], 0, len(defs))
	for _, d := range defs {
		switch d.Outcome {
		case domain.ScreenShortlist, domain.ScreenReject, domain.ScreenNeedsReview:
		default:
			return nil, fmt.Errorf("screening rule %s: unknown outcome %q", d.ID, d.Outcome)
		}
		list = append(list, rules.Rule[domain.ScreeningRule]{ID: d.ID, Expression: d.Expression, Outcome: d})
	}

	set, err := rules.Compile(engine, list)
	if err != nil {
		return nil, fmt.Errorf("compile screening rules: %w", err)
	}
	return &Screener{rules: set}, nil
}

// Screen returns the first screening rule that matches the candidate and job.
func (s *Screener) Screen(c *domain.Candidate, j *domain.Job) (domain.ScreeningRule, error) {
	rule, err := s.rules.First(map[string]any{
		"requires_screening": j.RequiresWorkerScreening,
		"has_screening":      c.HasWorkerScreening,
		"requires_license":   j.RequiresDriversLicense,
		"has_license":        c.HasDriversLicense,
		"experience_years":   c.ExperienceYears,
		"ndis_experience":    c.NDISExperience,
	})
	if err != nil {
		return domain.ScreeningRule{}, fmt.Errorf("screen candidate %s: %w", c.ID, err)
	}
	return rule.Outcome, nil
}

// RuleIDs returns the screening rule IDs in evaluation order.
func (s *Screener) RuleIDs() []string {
	list := s.rules.Rules()
	ids := make([]string, len(list))
	for i, r := range list {
		ids[i] = r.ID
	}
	return ids
}

// statusFor maps a screening outcome to the application status it leads to.
func statusFor(outcome domain.ScreeningOutcome) domain.ApplicationStatus {
	switch outcome {
	case domain.ScreenShortlist:
		return domain.ApplicationShortlisted
	case domain.ScreenReject:
		return domain.ApplicationRejected
	}
	return domain.ApplicationScreening
}
