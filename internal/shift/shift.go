// Package shift schedules shifts and settles pay and invoicing at check-out.
package shift

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/payrate"
	"github.com/google/uuid"
)

// PriceLookup resolves the unit price of a support item.
type PriceLookup interface {
	GetPrice(ctx context.Context, code, area string, participantAge *int) (*domain.PriceResult, error)
}

// Service manages the shift lifecycle.
type Service struct {
	store     domain.ShiftStore
	pay       *payrate.Calculator
	prices    PriceLookup
	requester domain.SyncRequester
	now       func() time.Time
}

// NewService creates a shift service. requester may be nil.
func NewService(store domain.ShiftStore, pay *payrate.Calculator, prices PriceLookup, requester domain.SyncRequester) *Service {
	return &Service{
		store:     store,
		pay:       pay,
		prices:    prices,
		requester: requester,
		now:       time.Now,
	}
}

// WithClock replaces the clock used when no explicit time is given.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Schedule validates and stores a new shift.
func (s *Service) Schedule(ctx context.Context, sh *domain.Shift) error {
	switch {
	case strings.TrimSpace(sh.ParticipantID) == "":
		return domain.NewValidationError("participantId", "is required")
	case strings.TrimSpace(sh.StaffID) == "":
		return domain.NewValidationError("staffId", "is required")
	case strings.TrimSpace(sh.ServiceItemCode) == "":
		return domain.NewValidationError("serviceItemCode", "is required")
	case sh.ScheduledStart.IsZero() || sh.ScheduledEnd.IsZero():
		return domain.NewValidationError("scheduledStart", "start and end are required")
	case !sh.ScheduledEnd.After(sh.ScheduledStart):
		return domain.NewValidationError("scheduledEnd", "must be after scheduled start")
	}
	if sh.ParticipantAge != nil && *sh.ParticipantAge < 0 {
		return domain.NewValidationError("participantAge", "must not be negative")
	}

	area, err := domain.ParseArea(string(sh.Area))
	if err != nil {
		return err
	}
	sh.Area = area

	if sh.ID == "" {
		sh.ID = uuid.New().String()
	}
	sh.Status = domain.ShiftScheduled
	sh.CheckInTime = nil
	sh.CheckOutTime = nil

	if err := s.store.SaveShift(ctx, sh); err != nil {
		return fmt.Errorf("save shift: %w", err)
	}

	slog.Info("shift scheduled",
		"shift_id", sh.ID,
		"participant_id", sh.ParticipantID,
		"staff_id", sh.StaffID,
		"service_item_code", sh.ServiceItemCode,
	)
	return nil
}

// Get returns a shift.
func (s *Service) Get(ctx context.Context, id string) (*domain.Shift, error) {
	return s.store.GetShift(ctx, id)
}

// CheckIn starts a scheduled shift. A zero at means now.
func (s *Service) CheckIn(ctx context.Context, id string, at time.Time) (*domain.Shift, error) {
	sh, err := s.store.GetShift(ctx, id)
	if err != nil {
		return nil, err
	}
	if sh.Status != domain.ShiftScheduled {
		return nil, domain.NewValidationError("status", "shift %s is %s, check-in needs scheduled", sh.ID, sh.Status)
	}

	if at.IsZero() {
		at = s.now()
	}
	at = at.UTC()
	sh.CheckInTime = &at
	sh.Status = domain.ShiftInProgress

	if err := s.store.SaveShift(ctx, sh); err != nil {
		return nil, fmt.Errorf("save shift: %w", err)
	}

	slog.Info("shift checked in", "shift_id", sh.ID, "staff_id", sh.StaffID, "at", at)
	return sh, nil
}

// CheckOut completes an in-progress shift. It settles pay with the pay-rate
// rules, prices the invoice from the catalogue and queues the invoice with
// the accounting integration. A zero at means now.
func (s *Service) CheckOut(ctx context.Context, id string, at time.Time, isPublicHoliday bool) (*domain.Shift, error) {
	sh, err := s.store.GetShift(ctx, id)
	if err != nil {
		return nil, err
	}
	if sh.Status != domain.ShiftInProgress || sh.CheckInTime == nil {
		return nil, domain.NewValidationError("status", "shift %s is %s, check-out needs in_progress", sh.ID, sh.Status)
	}

	if at.IsZero() {
		at = s.now()
	}
	at = at.UTC()

	pay, err := s.pay.Calculate(*sh.CheckInTime, at, isPublicHoliday)
	if err != nil {
		return nil, err
	}

	price, err := s.prices.GetPrice(ctx, sh.ServiceItemCode, string(sh.Area), sh.ParticipantAge)
	if err != nil {
		return nil, fmt.Errorf("price shift %s: %w", sh.ID, err)
	}

	sh.CheckOutTime = &at
	sh.IsPublicHoliday = isPublicHoliday
	sh.Status = domain.ShiftCompleted
	sh.Hours = pay.Hours
	sh.PayMultiplier = pay.Multiplier
	sh.PayAmount = pay.Amount
	sh.PayRuleID = pay.RuleID
	sh.InvoiceAmount = math.Round(price.UnitPrice*pay.Hours*100) / 100

	if err := s.store.SaveShift(ctx, sh); err != nil {
		return nil, fmt.Errorf("save shift: %w", err)
	}

	slog.Info("shift checked out",
		"shift_id", sh.ID,
		"hours", sh.Hours,
		"pay_rule", sh.PayRuleID,
		"pay_amount", sh.PayAmount,
		"invoice_amount", sh.InvoiceAmount,
		"price_source", price.Source,
	)

	s.requestInvoice(ctx, sh, price)
	return sh, nil
}

func (s *Service) requestInvoice(ctx context.Context, sh *domain.Shift, price *domain.PriceResult) {
	if s.requester == nil {
		return
	}
	if price.Source == domain.PriceSourceUnknown {
		slog.Warn("skipping invoice for unpriced support item",
			"shift_id", sh.ID,
			"service_item_code", sh.ServiceItemCode,
		)
		return
	}

	invoice := domain.InvoicePayload{
		ShiftID:         sh.ID,
		ParticipantID:   sh.ParticipantID,
		ServiceItemCode: sh.ServiceItemCode,
		Description:     price.Name,
		Quantity:        sh.Hours,
		UnitAmount:      price.UnitPrice,
		ServiceDate:     sh.CheckInTime.In(s.pay.Location()),
	}
	if err := s.requester.Request(ctx, domain.SyncAccountingInvoice, sh.ID, invoice); err != nil {
		slog.Error("failed to queue invoice", "shift_id", sh.ID, "error", err)
	}
}
