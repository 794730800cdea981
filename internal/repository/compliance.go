package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
)

// SaveStaffMember upserts a staff member.
func (r *SQLRepository) SaveStaffMember(ctx context.Context, s *domain.StaffMember) error {
	if err := requireID("id", s.ID); err != nil {
		return err
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO staff_members (
			id, name, email, phone, worker_screening_expiry, police_check_expiry,
			first_aid_expiry, ndis_orientation_completed, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			worker_screening_expiry = excluded.worker_screening_expiry,
			police_check_expiry = excluded.police_check_expiry,
			first_aid_expiry = excluded.first_aid_expiry,
			ndis_orientation_completed = excluded.ndis_orientation_completed
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		s.ID, s.Name, s.Email, s.Phone,
		nullTime(s.WorkerScreeningExpiry), nullTime(s.PoliceCheckExpiry), nullTime(s.FirstAidExpiry),
		s.NDISOrientationCompleted, s.CreatedAt.UTC(),
	)
	return err
}

// GetStaffMember retrieves a staff member by ID.
func (r *SQLRepository) GetStaffMember(ctx context.Context, id string) (*domain.StaffMember, error) {
	query := `
		SELECT id, name, email, phone, worker_screening_expiry, police_check_expiry,
			   first_aid_expiry, ndis_orientation_completed, created_at
		FROM staff_members
		WHERE id = ?
	`

	var s domain.StaffMember
	var screening, police, firstAid sql.NullTime

	err := r.db.QueryRowContext(ctx, r.rebind(query), id).Scan(
		&s.ID, &s.Name, &s.Email, &s.Phone,
		&screening, &police, &firstAid,
		&s.NDISOrientationCompleted, &s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	s.WorkerScreeningExpiry = timePtr(screening)
	s.PoliceCheckExpiry = timePtr(police)
	s.FirstAidExpiry = timePtr(firstAid)
	return &s, nil
}

// SaveReferral upserts a referral.
func (r *SQLRepository) SaveReferral(ctx context.Context, ref *domain.Referral) error {
	if err := requireID("id", ref.ID); err != nil {
		return err
	}
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO referrals (id, participant_name, ndis_number, stage, documents, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			participant_name = excluded.participant_name,
			ndis_number = excluded.ndis_number,
			stage = excluded.stage,
			documents = excluded.documents
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		ref.ID, ref.ParticipantName, ref.NDISNumber, string(ref.Stage),
		encodeStrings(ref.Documents), ref.CreatedAt.UTC(),
	)
	return err
}

// GetReferral retrieves a referral by ID.
func (r *SQLRepository) GetReferral(ctx context.Context, id string) (*domain.Referral, error) {
	query := `
		SELECT id, participant_name, ndis_number, stage, documents, created_at
		FROM referrals
		WHERE id = ?
	`

	var ref domain.Referral
	var stage, documents string

	err := r.db.QueryRowContext(ctx, r.rebind(query), id).Scan(
		&ref.ID, &ref.ParticipantName, &ref.NDISNumber, &stage, &documents, &ref.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	ref.Stage = domain.ReferralStage(stage)
	ref.Documents = decodeStrings(documents)
	return &ref, nil
}

// SaveServiceAgreement upserts a service agreement.
func (r *SQLRepository) SaveServiceAgreement(ctx context.Context, a *domain.ServiceAgreement) error {
	if err := requireID("id", a.ID); err != nil {
		return err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO service_agreements (
			id, participant_id, participant_name, participant_email, ndis_number,
			start_date, end_date, signed, support_item_codes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			participant_name = excluded.participant_name,
			participant_email = excluded.participant_email,
			ndis_number = excluded.ndis_number,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			signed = excluded.signed,
			support_item_codes = excluded.support_item_codes
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		a.ID, a.ParticipantID, a.ParticipantName, a.ParticipantEmail, a.NDISNumber,
		a.StartDate.UTC(), a.EndDate.UTC(), a.Signed, encodeStrings(a.SupportItemCodes), a.CreatedAt.UTC(),
	)
	return err
}

// GetServiceAgreement retrieves a service agreement by ID.
func (r *SQLRepository) GetServiceAgreement(ctx context.Context, id string) (*domain.ServiceAgreement, error) {
	query := `
		SELECT id, participant_id, participant_name, participant_email, ndis_number,
			   start_date, end_date, signed, support_item_codes, created_at
		FROM service_agreements
		WHERE id = ?
	`

	var a domain.ServiceAgreement
	var codes string

	err := r.db.QueryRowContext(ctx, r.rebind(query), id).Scan(
		&a.ID, &a.ParticipantID, &a.ParticipantName, &a.ParticipantEmail, &a.NDISNumber,
		&a.StartDate, &a.EndDate, &a.Signed, &codes, &a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	a.SupportItemCodes = decodeStrings(codes)
	return &a, nil
}

// SaveComplianceScore appends a compliance score log row.
func (r *SQLRepository) SaveComplianceScore(ctx context.Context, log *domain.ComplianceScoreLog) error {
	if err := requireID("id", log.ID); err != nil {
		return err
	}

	query := `
		INSERT INTO compliance_scores (id, entity_type, entity_id, score, next_review_date, checked_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		log.ID, string(log.EntityType), log.EntityID, log.Score,
		log.NextReviewDate.UTC(), log.CheckedAt.UTC(),
	)
	return err
}

// ListComplianceScores returns the score history of an entity, newest first.
func (r *SQLRepository) ListComplianceScores(ctx context.Context, entityType domain.EntityType, entityID string) ([]*domain.ComplianceScoreLog, error) {
	query := `
		SELECT id, entity_type, entity_id, score, next_review_date, checked_at
		FROM compliance_scores
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY checked_at DESC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), string(entityType), entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.ComplianceScoreLog
	for rows.Next() {
		var l domain.ComplianceScoreLog
		var et string
		if err := rows.Scan(&l.ID, &et, &l.EntityID, &l.Score, &l.NextReviewDate, &l.CheckedAt); err != nil {
			return nil, err
		}
		l.EntityType = domain.EntityType(et)
		logs = append(logs, &l)
	}

	return logs, rows.Err()
}
