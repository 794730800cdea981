package domain

import "time"

// ShiftStatus is the lifecycle state of a shift.
type ShiftStatus string

const (
	ShiftScheduled  ShiftStatus = "scheduled"
	ShiftInProgress ShiftStatus = "in_progress"
	ShiftCompleted  ShiftStatus = "completed"
)

// Shift is a unit of support delivered by a staff member to a participant.
type Shift struct {
	ID              string         `json:"id"`
	ParticipantID   string         `json:"participantId"`
	StaffID         string         `json:"staffId"`
	ServiceItemCode string         `json:"serviceItemCode"`
	Area            GeographicArea `json:"area"`
	ParticipantAge  *int           `json:"participantAge,omitempty"`
	ScheduledStart  time.Time      `json:"scheduledStart"`
	ScheduledEnd    time.Time      `json:"scheduledEnd"`
	CheckInTime     *time.Time     `json:"checkInTime,omitempty"`
	CheckOutTime    *time.Time     `json:"checkOutTime,omitempty"`
	IsPublicHoliday bool           `json:"isPublicHoliday"`
	Status          ShiftStatus    `json:"status"`

	// Populated at check-out
	Hours         float64 `json:"hours,omitempty"`
	PayMultiplier float64 `json:"payMultiplier,omitempty"`
	PayAmount     float64 `json:"payAmount,omitempty"`
	InvoiceAmount float64 `json:"invoiceAmount,omitempty"`
	PayRuleID     string  `json:"payRuleId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PayMultiplierRule maps a predicate over shift facts to a penalty multiplier.
//
// Expressions can reference is_public_holiday (bool), weekday (int, 0 is
// Sunday), start_hour (int) and end_hour (int).
type PayMultiplierRule struct {
	ID         string  `json:"id"`
	Expression string  `json:"expression"`
	Multiplier float64 `json:"multiplier"`
}

// DefaultPayMultipliers returns the award penalty rates in priority order.
func DefaultPayMultipliers() []PayMultiplierRule {
	return []PayMultiplierRule{
		{ID: "public_holiday", Expression: "is_public_holiday", Multiplier: 2.5},
		{ID: "sunday", Expression: "weekday == 0", Multiplier: 2.0},
		{ID: "saturday", Expression: "weekday == 6", Multiplier: 1.5},
		{ID: "night", Expression: "start_hour < 7 || end_hour > 20", Multiplier: 1.3},
		{ID: "standard", Expression: "true", Multiplier: 1.0},
	}
}

// PayResult is the output of a pay-rate calculation.
type PayResult struct {
	Hours      float64 `json:"hours"`
	BaseRate   float64 `json:"baseRate"`
	Multiplier float64 `json:"multiplier"`
	RuleID     string  `json:"ruleId"`
	Amount     float64 `json:"amount"`
}
