package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
)

const syncColumns = `
	id, kind, entity_id, payload, status, attempts, last_error,
	external_ref, next_attempt_at, created_at, updated_at
`

// SaveSyncRecord upserts an integration sync record.
func (r *SQLRepository) SaveSyncRecord(ctx context.Context, rec *domain.SyncRecord) error {
	if err := requireID("id", rec.ID); err != nil {
		return err
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	query := `INSERT INTO sync_records (` + syncColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			attempts = excluded.attempts,
			last_error = excluded.last_error,
			external_ref = excluded.external_ref,
			next_attempt_at = excluded.next_attempt_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		rec.ID, string(rec.Kind), rec.EntityID, string(rec.Payload), string(rec.Status),
		rec.Attempts, rec.LastError, rec.ExternalRef, nullTime(rec.NextAttemptAt),
		rec.CreatedAt.UTC(), rec.UpdatedAt,
	)
	return err
}

// GetSyncRecord retrieves a sync record by ID.
func (r *SQLRepository) GetSyncRecord(ctx context.Context, id string) (*domain.SyncRecord, error) {
	query := `SELECT ` + syncColumns + ` FROM sync_records WHERE id = ?`

	rec, err := scanSyncRecord(r.db.QueryRowContext(ctx, r.rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// ListSyncRecords returns records with the given status, newest first.
// An empty status lists every record.
func (r *SQLRepository) ListSyncRecords(ctx context.Context, status domain.SyncStatus, limit int) ([]*domain.SyncRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + syncColumns + ` FROM sync_records`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY updated_at DESC LIMIT ?`
	args = append(args, limit)

	return r.querySyncRecords(ctx, query, args...)
}

// ListRetryableSyncRecords returns failed or pending records that are due
// for another attempt and have not exhausted maxAttempts. A pending record
// is due once its publish grace has passed without a dispatch.
func (r *SQLRepository) ListRetryableSyncRecords(ctx context.Context, now time.Time, maxAttempts int) ([]*domain.SyncRecord, error) {
	query := `SELECT ` + syncColumns + `
		FROM sync_records
		WHERE status IN (?, ?) AND attempts < ? AND (next_attempt_at IS NULL OR next_attempt_at <= ?)
		ORDER BY updated_at ASC, id ASC
	`

	return r.querySyncRecords(ctx, query, string(domain.SyncFailed), string(domain.SyncPending), maxAttempts, now.UTC())
}

func (r *SQLRepository) querySyncRecords(ctx context.Context, query string, args ...any) ([]*domain.SyncRecord, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.SyncRecord
	for rows.Next() {
		rec, err := scanSyncRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func scanSyncRecord(row rowScanner) (*domain.SyncRecord, error) {
	var rec domain.SyncRecord
	var kind, payload, status string
	var next sql.NullTime

	err := row.Scan(
		&rec.ID, &kind, &rec.EntityID, &payload, &status, &rec.Attempts, &rec.LastError,
		&rec.ExternalRef, &next, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Kind = domain.SyncKind(kind)
	rec.Payload = []byte(payload)
	rec.Status = domain.SyncStatus(status)
	rec.NextAttemptAt = timePtr(next)
	return &rec, nil
}
