package repository

// Schema definitions for the rules service database.
// Compatible with both SQLite and PostgreSQL.

const schemaPricing = `
CREATE TABLE IF NOT EXISTS support_items (
    code TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    category TEXT NOT NULL,
    unit_type TEXT NOT NULL,
    base_price REAL NOT NULL,
    version TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS price_entries (
    support_item_code TEXT NOT NULL,
    area TEXT NOT NULL,
    price_limit REAL NOT NULL,
    effective_date TIMESTAMP NOT NULL,
    PRIMARY KEY (support_item_code, area)
);
`

const schemaShifts = `
CREATE TABLE IF NOT EXISTS shifts (
    id TEXT PRIMARY KEY,
    participant_id TEXT NOT NULL,
    staff_id TEXT NOT NULL,
    service_item_code TEXT NOT NULL,
    area TEXT NOT NULL,
    participant_age INTEGER,
    scheduled_start TIMESTAMP NOT NULL,
    scheduled_end TIMESTAMP NOT NULL,
    check_in_time TIMESTAMP,
    check_out_time TIMESTAMP,
    is_public_holiday BOOLEAN NOT NULL DEFAULT FALSE,
    status TEXT NOT NULL,
    hours REAL NOT NULL DEFAULT 0,
    pay_multiplier REAL NOT NULL DEFAULT 0,
    pay_amount REAL NOT NULL DEFAULT 0,
    invoice_amount REAL NOT NULL DEFAULT 0,
    pay_rule_id TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_shifts_staff ON shifts(staff_id);
CREATE INDEX IF NOT EXISTS idx_shifts_participant ON shifts(participant_id);
`

const schemaCompliance = `
CREATE TABLE IF NOT EXISTS staff_members (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    worker_screening_expiry TIMESTAMP,
    police_check_expiry TIMESTAMP,
    first_aid_expiry TIMESTAMP,
    ndis_orientation_completed BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS referrals (
    id TEXT PRIMARY KEY,
    participant_name TEXT NOT NULL,
    ndis_number TEXT NOT NULL,
    stage TEXT NOT NULL,
    documents TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS service_agreements (
    id TEXT PRIMARY KEY,
    participant_id TEXT NOT NULL,
    participant_name TEXT NOT NULL,
    participant_email TEXT NOT NULL DEFAULT '',
    ndis_number TEXT NOT NULL,
    start_date TIMESTAMP NOT NULL,
    end_date TIMESTAMP NOT NULL,
    signed BOOLEAN NOT NULL DEFAULT FALSE,
    support_item_codes TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS compliance_scores (
    id TEXT PRIMARY KEY,
    entity_type TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    score INTEGER NOT NULL,
    next_review_date TIMESTAMP NOT NULL,
    checked_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_compliance_scores_entity ON compliance_scores(entity_type, entity_id, checked_at);
`

// schemaIncidents defines the incidents table.
// reporting_deadline is written once on insert and never updated.
const schemaIncidents = `
CREATE TABLE IF NOT EXISTS incidents (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    severity TEXT NOT NULL,
    participant_id TEXT NOT NULL,
    reported_by TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    occurred_at TIMESTAMP NOT NULL,
    ndis_reported BOOLEAN NOT NULL DEFAULT FALSE,
    reported_at TIMESTAMP,
    reporting_deadline TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_incidents_overdue ON incidents(ndis_reported, reporting_deadline);
`

const schemaRecruitment = `
CREATE TABLE IF NOT EXISTS candidates (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    experience_years REAL NOT NULL DEFAULT 0,
    ndis_experience BOOLEAN NOT NULL DEFAULT FALSE,
    has_worker_screening BOOLEAN NOT NULL DEFAULT FALSE,
    has_drivers_license BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS jobs (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    requires_worker_screening BOOLEAN NOT NULL DEFAULT FALSE,
    requires_drivers_license BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS applications (
    id TEXT PRIMARY KEY,
    candidate_id TEXT NOT NULL,
    job_id TEXT NOT NULL,
    status TEXT NOT NULL,
    score INTEGER NOT NULL DEFAULT 0,
    screening_result TEXT NOT NULL DEFAULT '',
    screening_reason TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_applications_job ON applications(job_id, status);

CREATE TABLE IF NOT EXISTS application_status_changes (
    id TEXT PRIMARY KEY,
    application_id TEXT NOT NULL,
    from_status TEXT NOT NULL,
    to_status TEXT NOT NULL,
    actor TEXT NOT NULL,
    override BOOLEAN NOT NULL DEFAULT FALSE,
    reason TEXT NOT NULL DEFAULT '',
    changed_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_status_changes_app ON application_status_changes(application_id, changed_at);
`

// schemaSyncRecords defines the integration reconciliation log.
const schemaSyncRecords = `
CREATE TABLE IF NOT EXISTS sync_records (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    payload TEXT NOT NULL,
    status TEXT NOT NULL,
    attempts INTEGER NOT NULL DEFAULT 0,
    last_error TEXT NOT NULL DEFAULT '',
    external_ref TEXT NOT NULL DEFAULT '',
    next_attempt_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sync_records_status ON sync_records(status, next_attempt_at);
CREATE INDEX IF NOT EXISTS idx_sync_records_entity ON sync_records(entity_id);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaPricing,
		schemaShifts,
		schemaCompliance,
		schemaIncidents,
		schemaRecruitment,
		schemaSyncRecords,
	}
}
