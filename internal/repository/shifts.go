package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
)

// SaveShift upserts a shift.
func (r *SQLRepository) SaveShift(ctx context.Context, s *domain.Shift) error {
	if err := requireID("id", s.ID); err != nil {
		return err
	}

	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	var age sql.NullInt64
	if s.ParticipantAge != nil {
		age = sql.NullInt64{Int64: int64(*s.ParticipantAge), Valid: true}
	}

	query := `
		INSERT INTO shifts (
			id, participant_id, staff_id, service_item_code, area, participant_age,
			scheduled_start, scheduled_end, check_in_time, check_out_time,
			is_public_holiday, status, hours, pay_multiplier, pay_amount,
			invoice_amount, pay_rule_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			check_in_time = excluded.check_in_time,
			check_out_time = excluded.check_out_time,
			is_public_holiday = excluded.is_public_holiday,
			status = excluded.status,
			hours = excluded.hours,
			pay_multiplier = excluded.pay_multiplier,
			pay_amount = excluded.pay_amount,
			invoice_amount = excluded.invoice_amount,
			pay_rule_id = excluded.pay_rule_id,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		s.ID, s.ParticipantID, s.StaffID, s.ServiceItemCode, string(s.Area), age,
		s.ScheduledStart.UTC(), s.ScheduledEnd.UTC(), nullTime(s.CheckInTime), nullTime(s.CheckOutTime),
		s.IsPublicHoliday, string(s.Status), s.Hours, s.PayMultiplier, s.PayAmount,
		s.InvoiceAmount, s.PayRuleID, s.CreatedAt.UTC(), s.UpdatedAt,
	)
	return err
}

// GetShift retrieves a shift by ID.
func (r *SQLRepository) GetShift(ctx context.Context, id string) (*domain.Shift, error) {
	query := `
		SELECT id, participant_id, staff_id, service_item_code, area, participant_age,
			   scheduled_start, scheduled_end, check_in_time, check_out_time,
			   is_public_holiday, status, hours, pay_multiplier, pay_amount,
			   invoice_amount, pay_rule_id, created_at, updated_at
		FROM shifts
		WHERE id = ?
	`

	var s domain.Shift
	var area, status string
	var age sql.NullInt64
	var checkIn, checkOut sql.NullTime

	err := r.db.QueryRowContext(ctx, r.rebind(query), id).Scan(
		&s.ID, &s.ParticipantID, &s.StaffID, &s.ServiceItemCode, &area, &age,
		&s.ScheduledStart, &s.ScheduledEnd, &checkIn, &checkOut,
		&s.IsPublicHoliday, &status, &s.Hours, &s.PayMultiplier, &s.PayAmount,
		&s.InvoiceAmount, &s.PayRuleID, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	s.Area = domain.GeographicArea(area)
	s.Status = domain.ShiftStatus(status)
	if age.Valid {
		a := int(age.Int64)
		s.ParticipantAge = &a
	}
	s.CheckInTime = timePtr(checkIn)
	s.CheckOutTime = timePtr(checkOut)
	return &s, nil
}
