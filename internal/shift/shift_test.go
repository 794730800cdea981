package shift

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/payrate"
)

type fakeStore struct {
	mu     sync.Mutex
	shifts map[string]*domain.Shift
}

func (f *fakeStore) SaveShift(_ context.Context, s *domain.Shift) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.shifts[s.ID] = &cp
	return nil
}

func (f *fakeStore) GetShift(_ context.Context, id string) (*domain.Shift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.shifts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

type fakePrices struct {
	price  float64
	source domain.PriceSource
}

func (f fakePrices) GetPrice(_ context.Context, code, area string, _ *int) (*domain.PriceResult, error) {
	return &domain.PriceResult{
		ItemCode:  code,
		Name:      "Assistance With Self-Care Activities",
		Area:      domain.GeographicArea(area),
		UnitPrice: f.price,
		Source:    f.source,
	}, nil
}

type fakeRequester struct {
	mu       sync.Mutex
	kinds    []domain.SyncKind
	payloads []any
}

func (f *fakeRequester) Request(_ context.Context, kind domain.SyncKind, _ string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
	f.payloads = append(f.payloads, payload)
	return nil
}

func newTestService(t *testing.T, prices fakePrices) (*Service, *fakeRequester) {
	t.Helper()
	calc, err := payrate.NewCalculator(domain.DefaultRulesConfig())
	if err != nil {
		t.Fatalf("failed to create calculator: %v", err)
	}
	req := &fakeRequester{}
	store := &fakeStore{shifts: make(map[string]*domain.Shift)}
	return NewService(store, calc, prices, req), req
}

func saturdayShift() *domain.Shift {
	// Saturday 8 March 2025, 10:00 in Sydney (UTC+11)
	start := time.Date(2025, 3, 7, 23, 0, 0, 0, time.UTC)
	return &domain.Shift{
		ParticipantID:   "participant-1",
		StaffID:         "staff-1",
		ServiceItemCode: "01_011_0107_1_1",
		ScheduledStart:  start,
		ScheduledEnd:    start.Add(3 * time.Hour),
	}
}

func TestScheduleValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, fakePrices{price: 65.47, source: domain.PriceSourceCatalogue})

	tests := []struct {
		name   string
		mutate func(*domain.Shift)
	}{
		{"MissingParticipant", func(s *domain.Shift) { s.ParticipantID = "" }},
		{"MissingStaff", func(s *domain.Shift) { s.StaffID = " " }},
		{"MissingItem", func(s *domain.Shift) { s.ServiceItemCode = "" }},
		{"EndBeforeStart", func(s *domain.Shift) { s.ScheduledEnd = s.ScheduledStart.Add(-time.Hour) }},
		{"UnknownArea", func(s *domain.Shift) { s.Area = "offshore" }},
		{"NegativeAge", func(s *domain.Shift) { age := -1; s.ParticipantAge = &age }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sh := saturdayShift()
			tt.mutate(sh)
			if err := svc.Schedule(ctx, sh); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestShiftLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, req := newTestService(t, fakePrices{price: 65.47, source: domain.PriceSourceCatalogue})

	sh := saturdayShift()
	if err := svc.Schedule(ctx, sh); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if sh.ID == "" || sh.Status != domain.ShiftScheduled || sh.Area != domain.AreaStandard {
		t.Fatalf("unexpected scheduled shift %+v", sh)
	}

	if _, err := svc.CheckOut(ctx, sh.ID, sh.ScheduledEnd, false); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for check-out before check-in, got %v", err)
	}

	checkIn := sh.ScheduledStart
	if _, err := svc.CheckIn(ctx, sh.ID, checkIn); err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	if _, err := svc.CheckIn(ctx, sh.ID, checkIn); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for double check-in, got %v", err)
	}

	done, err := svc.CheckOut(ctx, sh.ID, checkIn.Add(3*time.Hour+10*time.Minute), false)
	if err != nil {
		t.Fatalf("CheckOut failed: %v", err)
	}

	if done.Status != domain.ShiftCompleted {
		t.Errorf("expected completed, got %s", done.Status)
	}
	if done.Hours != 3.25 {
		t.Errorf("expected 3.25 hours, got %.2f", done.Hours)
	}
	if done.PayRuleID != "saturday" || done.PayMultiplier != 1.5 {
		t.Errorf("expected saturday x1.5, got %s x%.2f", done.PayRuleID, done.PayMultiplier)
	}
	if done.PayAmount != 170.63 {
		t.Errorf("expected pay 170.63, got %.2f", done.PayAmount)
	}
	if done.InvoiceAmount != 212.78 {
		t.Errorf("expected invoice 212.78, got %.2f", done.InvoiceAmount)
	}

	if len(req.kinds) != 1 || req.kinds[0] != domain.SyncAccountingInvoice {
		t.Fatalf("expected one invoice request, got %v", req.kinds)
	}
	invoice := req.payloads[0].(domain.InvoicePayload)
	if invoice.Quantity != 3.25 || invoice.UnitAmount != 65.47 || invoice.ShiftID != sh.ID {
		t.Errorf("unexpected invoice payload %+v", invoice)
	}
	if invoice.ServiceDate.Weekday() != time.Saturday {
		t.Errorf("expected service date on Saturday local time, got %s", invoice.ServiceDate.Weekday())
	}
}

func TestCheckOutUnknownItemSkipsInvoice(t *testing.T) {
	ctx := context.Background()
	svc, req := newTestService(t, fakePrices{price: 0, source: domain.PriceSourceUnknown})

	sh := saturdayShift()
	if err := svc.Schedule(ctx, sh); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if _, err := svc.CheckIn(ctx, sh.ID, sh.ScheduledStart); err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	done, err := svc.CheckOut(ctx, sh.ID, sh.ScheduledEnd, true)
	if err != nil {
		t.Fatalf("CheckOut failed: %v", err)
	}
	if done.PayRuleID != "public_holiday" {
		t.Errorf("expected public_holiday, got %s", done.PayRuleID)
	}
	if done.InvoiceAmount != 0 {
		t.Errorf("expected zero invoice, got %.2f", done.InvoiceAmount)
	}
	if len(req.kinds) != 0 {
		t.Errorf("expected no invoice request, got %v", req.kinds)
	}
}

func TestShiftNotFound(t *testing.T) {
	svc, _ := newTestService(t, fakePrices{})
	if _, err := svc.CheckIn(context.Background(), "missing", time.Time{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
