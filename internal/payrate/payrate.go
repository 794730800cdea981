// Package payrate computes support worker pay for a completed shift.
package payrate

import (
	"fmt"
	"log/slog"
	"math"
	"time"
	_ "time/tzdata"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/rules"
)

// Calculator applies the ordered penalty multiplier rules to a shift.
// It is immutable after construction and safe for concurrent use.
type Calculator struct {
	rules    *rules.RuleSet[float64]
	baseRate float64
	location *time.Location
}

// NewCalculator compiles the multiplier rules from cfg.
func NewCalculator(cfg domain.RulesConfig) (*Calculator, error) {
	if cfg.BaseHourlyRate <= 0 {
		return nil, fmt.Errorf("base hourly rate must be positive, got %.2f", cfg.BaseHourlyRate)
	}

	engine, err := rules.NewEngine(
		rules.Bool("is_public_holiday"),
		rules.Int("weekday"),
		rules.Int("start_hour"),
		rules.Int("end_hour"),
	)
	if err != nil {
		return nil, err
	}

	defs := cfg.PayMultipliers
	if len(defs) == 0 {
		defs = domain.DefaultPayMultipliers()
	}

	list := make([]rules.Rule[float64], 0, len(defs))
	for _, d := range defs {
		if d.Multiplier <= 0 {
			return nil, fmt.Errorf("pay rule %s: multiplier must be positive", d.ID)
		}
		list = append(list, rules.Rule[float64]{ID: d.ID, Expression: d.Expression, Outcome: d.Multiplier})
	}

	set, err := rules.Compile(engine, list)
	if err != nil {
		return nil, fmt.Errorf("compile pay rules: %w", err)
	}

	return &Calculator{
		rules:    set,
		baseRate: cfg.BaseHourlyRate,
		location: loadLocation(cfg.Timezone),
	}, nil
}

// Calculate returns the pay for a shift worked between checkIn and checkOut.
// The weekday and hours are read in the provider's timezone. The first
// matching rule sets the multiplier; multipliers never stack.
func (c *Calculator) Calculate(checkIn, checkOut time.Time, isPublicHoliday bool) (*domain.PayResult, error) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return nil, domain.NewValidationError("checkOutTime", "check-in and check-out times are required")
	}
	if !checkOut.After(checkIn) {
		return nil, domain.NewValidationError("checkOutTime", "must be after check-in time")
	}

	start := checkIn.In(c.location)
	end := checkOut.In(c.location)

	rule, err := c.rules.First(map[string]any{
		"is_public_holiday": isPublicHoliday,
		"weekday":           int64(start.Weekday()),
		"start_hour":        int64(start.Hour()),
		"end_hour":          int64(end.Hour()),
	})
	if err != nil {
		return nil, fmt.Errorf("select pay multiplier: %w", err)
	}

	hours := QuarterHours(checkOut.Sub(checkIn))

	return &domain.PayResult{
		Hours:      hours,
		BaseRate:   c.baseRate,
		Multiplier: rule.Outcome,
		RuleID:     rule.ID,
		Amount:     math.Round(c.baseRate*hours*rule.Outcome*100) / 100,
	}, nil
}

// Location returns the timezone used to read shift days and hours.
func (c *Calculator) Location() *time.Location {
	return c.location
}

// RuleIDs returns the multiplier rule IDs in evaluation order.
func (c *Calculator) RuleIDs() []string {
	list := c.rules.Rules()
	ids := make([]string, len(list))
	for i, r := range list {
		ids[i] = r.ID
	}
	return ids
}

// QuarterHours converts a duration to hours rounded to the nearest quarter
// hour. Exact halves round up.
func QuarterHours(d time.Duration) float64 {
	return math.Floor(d.Hours()*4+0.5) / 4
}

func loadLocation(name string) *time.Location {
	if name == "" {
		name = "Australia/Sydney"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("unknown timezone, using UTC", "timezone", name, "error", err)
		return time.UTC
	}
	return loc
}
