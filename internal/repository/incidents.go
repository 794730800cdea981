package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
)

const incidentColumns = `
	id, type, severity, participant_id, reported_by, description,
	occurred_at, ndis_reported, reported_at, reporting_deadline, created_at
`

// SaveIncident inserts an incident. Incidents are immutable apart from
// MarkIncidentReported, so an existing ID is rejected.
func (r *SQLRepository) SaveIncident(ctx context.Context, inc *domain.Incident) error {
	if err := requireID("id", inc.ID); err != nil {
		return err
	}
	if inc.CreatedAt.IsZero() {
		inc.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO incidents (` + incidentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		inc.ID, inc.Type, string(inc.Severity), inc.ParticipantID, inc.ReportedBy, inc.Description,
		inc.OccurredAt.UTC(), inc.NDISReported, nullTime(inc.ReportedAt),
		inc.ReportingDeadline.UTC(), inc.CreatedAt.UTC(),
	)
	return err
}

// GetIncident retrieves an incident by ID.
func (r *SQLRepository) GetIncident(ctx context.Context, id string) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = ?`

	inc, err := scanIncident(r.db.QueryRowContext(ctx, r.rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return inc, err
}

// MarkIncidentReported flags an incident as notified to the regulator.
// reporting_deadline is left untouched.
func (r *SQLRepository) MarkIncidentReported(ctx context.Context, id string, reportedAt time.Time) error {
	query := `
		UPDATE incidents
		SET ndis_reported = ?, reported_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, r.rebind(query), true, reportedAt.UTC(), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ListOverdueIncidents returns unreported incidents whose deadline has passed.
func (r *SQLRepository) ListOverdueIncidents(ctx context.Context, now time.Time) ([]*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + `
		FROM incidents
		WHERE ndis_reported = ? AND reporting_deadline < ?
		ORDER BY reporting_deadline ASC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), false, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incidents []*domain.Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		incidents = append(incidents, inc)
	}

	return incidents, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncident(row rowScanner) (*domain.Incident, error) {
	var inc domain.Incident
	var severity string
	var reportedAt sql.NullTime

	err := row.Scan(
		&inc.ID, &inc.Type, &severity, &inc.ParticipantID, &inc.ReportedBy, &inc.Description,
		&inc.OccurredAt, &inc.NDISReported, &reportedAt, &inc.ReportingDeadline, &inc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	inc.Severity = domain.NotificationType(severity)
	inc.ReportedAt = timePtr(reportedAt)
	return &inc, nil
}
