package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
)

// SaveCandidate upserts a candidate.
func (r *SQLRepository) SaveCandidate(ctx context.Context, c *domain.Candidate) error {
	if err := requireID("id", c.ID); err != nil {
		return err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO candidates (
			id, name, email, phone, experience_years, ndis_experience,
			has_worker_screening, has_drivers_license, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			experience_years = excluded.experience_years,
			ndis_experience = excluded.ndis_experience,
			has_worker_screening = excluded.has_worker_screening,
			has_drivers_license = excluded.has_drivers_license
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		c.ID, c.Name, c.Email, c.Phone, c.ExperienceYears, c.NDISExperience,
		c.HasWorkerScreening, c.HasDriversLicense, c.CreatedAt.UTC(),
	)
	return err
}

// GetCandidate retrieves a candidate by ID.
func (r *SQLRepository) GetCandidate(ctx context.Context, id string) (*domain.Candidate, error) {
	query := `
		SELECT id, name, email, phone, experience_years, ndis_experience,
			   has_worker_screening, has_drivers_license, created_at
		FROM candidates
		WHERE id = ?
	`

	var c domain.Candidate
	err := r.db.QueryRowContext(ctx, r.rebind(query), id).Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.ExperienceYears, &c.NDISExperience,
		&c.HasWorkerScreening, &c.HasDriversLicense, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveJob upserts a job.
func (r *SQLRepository) SaveJob(ctx context.Context, j *domain.Job) error {
	if err := requireID("id", j.ID); err != nil {
		return err
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO jobs (id, title, requires_worker_screening, requires_drivers_license, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			requires_worker_screening = excluded.requires_worker_screening,
			requires_drivers_license = excluded.requires_drivers_license
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		j.ID, j.Title, j.RequiresWorkerScreening, j.RequiresDriversLicense, j.CreatedAt.UTC(),
	)
	return err
}

// GetJob retrieves a job by ID.
func (r *SQLRepository) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	query := `
		SELECT id, title, requires_worker_screening, requires_drivers_license, created_at
		FROM jobs
		WHERE id = ?
	`

	var j domain.Job
	err := r.db.QueryRowContext(ctx, r.rebind(query), id).Scan(
		&j.ID, &j.Title, &j.RequiresWorkerScreening, &j.RequiresDriversLicense, &j.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// SaveApplication upserts an application.
func (r *SQLRepository) SaveApplication(ctx context.Context, a *domain.CandidateApplication) error {
	if err := requireID("id", a.ID); err != nil {
		return err
	}

	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	query := `
		INSERT INTO applications (
			id, candidate_id, job_id, status, score, screening_result,
			screening_reason, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			score = excluded.score,
			screening_result = excluded.screening_result,
			screening_reason = excluded.screening_reason,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		a.ID, a.CandidateID, a.JobID, string(a.Status), a.Score,
		string(a.ScreeningResult), a.ScreeningReason, a.CreatedAt.UTC(), a.UpdatedAt,
	)
	return err
}

// GetApplication retrieves an application by ID.
func (r *SQLRepository) GetApplication(ctx context.Context, id string) (*domain.CandidateApplication, error) {
	query := `
		SELECT id, candidate_id, job_id, status, score, screening_result,
			   screening_reason, created_at, updated_at
		FROM applications
		WHERE id = ?
	`

	var a domain.CandidateApplication
	var status, result string

	err := r.db.QueryRowContext(ctx, r.rebind(query), id).Scan(
		&a.ID, &a.CandidateID, &a.JobID, &status, &a.Score, &result,
		&a.ScreeningReason, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	a.Status = domain.ApplicationStatus(status)
	a.ScreeningResult = domain.ScreeningOutcome(result)
	return &a, nil
}

// SaveStatusChange appends an application history row.
func (r *SQLRepository) SaveStatusChange(ctx context.Context, c *domain.ApplicationStatusChange) error {
	if err := requireID("id", c.ID); err != nil {
		return err
	}
	if c.ChangedAt.IsZero() {
		c.ChangedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO application_status_changes (
			id, application_id, from_status, to_status, actor, override, reason, changed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		c.ID, c.ApplicationID, string(c.From), string(c.To),
		c.Actor, c.Override, c.Reason, c.ChangedAt.UTC(),
	)
	return err
}

// ListStatusChanges returns the history of an application, oldest first.
func (r *SQLRepository) ListStatusChanges(ctx context.Context, applicationID string) ([]*domain.ApplicationStatusChange, error) {
	query := `
		SELECT id, application_id, from_status, to_status, actor, override, reason, changed_at
		FROM application_status_changes
		WHERE application_id = ?
		ORDER BY changed_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []*domain.ApplicationStatusChange
	for rows.Next() {
		var c domain.ApplicationStatusChange
		var from, to string
		if err := rows.Scan(&c.ID, &c.ApplicationID, &from, &to, &c.Actor, &c.Override, &c.Reason, &c.ChangedAt); err != nil {
			return nil, err
		}
		c.From = domain.ApplicationStatus(from)
		c.To = domain.ApplicationStatus(to)
		changes = append(changes, &c)
	}

	return changes, rows.Err()
}
