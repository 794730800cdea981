// Package domain defines the core interfaces and types for the rules service.
package domain

import (
	"context"
	"time"
)

// PriceStore persists the support item catalogue.
type PriceStore interface {
	SaveSupportItem(ctx context.Context, item *SupportItem) error
	GetSupportItem(ctx context.Context, code string) (*SupportItem, error)
	SavePriceEntry(ctx context.Context, entry *PriceEntry) error
	GetPriceEntry(ctx context.Context, code string, area GeographicArea) (*PriceEntry, error)
}

// ShiftStore persists shifts.
type ShiftStore interface {
	SaveShift(ctx context.Context, shift *Shift) error
	GetShift(ctx context.Context, id string) (*Shift, error)
}

// ComplianceStore reads compliance subjects and logs scores.
type ComplianceStore interface {
	SaveStaffMember(ctx context.Context, staff *StaffMember) error
	GetStaffMember(ctx context.Context, id string) (*StaffMember, error)
	SaveReferral(ctx context.Context, referral *Referral) error
	GetReferral(ctx context.Context, id string) (*Referral, error)
	SaveServiceAgreement(ctx context.Context, agreement *ServiceAgreement) error
	GetServiceAgreement(ctx context.Context, id string) (*ServiceAgreement, error)
	SaveComplianceScore(ctx context.Context, log *ComplianceScoreLog) error
	ListComplianceScores(ctx context.Context, entityType EntityType, entityID string) ([]*ComplianceScoreLog, error)
}

// IncidentStore persists incidents.
type IncidentStore interface {
	SaveIncident(ctx context.Context, incident *Incident) error
	GetIncident(ctx context.Context, id string) (*Incident, error)
	MarkIncidentReported(ctx context.Context, id string, reportedAt time.Time) error
	ListOverdueIncidents(ctx context.Context, now time.Time) ([]*Incident, error)
}

// RecruitmentStore persists candidates, jobs and applications.
type RecruitmentStore interface {
	SaveCandidate(ctx context.Context, candidate *Candidate) error
	GetCandidate(ctx context.Context, id string) (*Candidate, error)
	SaveJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	SaveApplication(ctx context.Context, app *CandidateApplication) error
	GetApplication(ctx context.Context, id string) (*CandidateApplication, error)
	SaveStatusChange(ctx context.Context, change *ApplicationStatusChange) error
	ListStatusChanges(ctx context.Context, applicationID string) ([]*ApplicationStatusChange, error)
}

// SyncStore persists the integration reconciliation log.
type SyncStore interface {
	SaveSyncRecord(ctx context.Context, rec *SyncRecord) error
	GetSyncRecord(ctx context.Context, id string) (*SyncRecord, error)
	ListSyncRecords(ctx context.Context, status SyncStatus, limit int) ([]*SyncRecord, error)
	ListRetryableSyncRecords(ctx context.Context, now time.Time, maxAttempts int) ([]*SyncRecord, error)
}

// Repository defines the interface for data persistence.
type Repository interface {
	PriceStore
	ShiftStore
	ComplianceStore
	IncidentStore
	RecruitmentStore
	SyncStore

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific. PostgresURL, when set, wins over the fields.
	PostgresURL      string
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
