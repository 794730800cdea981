package domain

import (
	"context"
	"encoding/json"
	"time"
)

// SyncKind names an outbound integration operation.
type SyncKind string

const (
	SyncAccountingInvoice SyncKind = "accounting.invoice"
	SyncAccountingContact SyncKind = "accounting.contact"
	SyncESignEnvelope     SyncKind = "esign.envelope"
	SyncSMS               SyncKind = "notify.sms"
	SyncEmail             SyncKind = "notify.email"
)

// SyncStatus is the reconciliation state of a sync record.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncFailed  SyncStatus = "failed"
)

// SyncRequest asks the integration dispatcher to perform one operation.
type SyncRequest struct {
	ID       string          `json:"id"`
	Kind     SyncKind        `json:"kind"`
	EntityID string          `json:"entityId"`
	Payload  json.RawMessage `json:"payload"`
}

// SyncRequester queues an integration operation without waiting for it.
// Failures are logged and retried; they never reach the caller's user.
type SyncRequester interface {
	Request(ctx context.Context, kind SyncKind, entityID string, payload any) error
}

// SyncRecord is the persisted log row of an integration attempt.
type SyncRecord struct {
	ID            string          `json:"id"`
	Kind          SyncKind        `json:"kind"`
	EntityID      string          `json:"entityId"`
	Payload       json.RawMessage `json:"payload"`
	Status        SyncStatus      `json:"status"`
	Attempts      int             `json:"attempts"`
	LastError     string          `json:"lastError,omitempty"`
	ExternalRef   string          `json:"externalRef,omitempty"`
	NextAttemptAt *time.Time      `json:"nextAttemptAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// InvoicePayload is the accounting invoice for a completed shift.
type InvoicePayload struct {
	ShiftID         string    `json:"shiftId"`
	ParticipantID   string    `json:"participantId"`
	ServiceItemCode string    `json:"serviceItemCode"`
	Description     string    `json:"description"`
	Quantity        float64   `json:"quantity"`
	UnitAmount      float64   `json:"unitAmount"`
	ServiceDate     time.Time `json:"serviceDate"`
}

// ContactPayload is an accounting contact for a participant.
type ContactPayload struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	NDISNumber    string `json:"ndisNumber,omitempty"`
}

// EnvelopePayload asks the e-signature provider to collect a signature.
type EnvelopePayload struct {
	AgreementID string `json:"agreementId"`
	SignerName  string `json:"signerName"`
	SignerEmail string `json:"signerEmail"`
	Subject     string `json:"subject"`
}

// MessagePayload is an SMS or email notification.
type MessagePayload struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body"`
}

// IntegrationConfig holds third-party endpoints and credentials.
type IntegrationConfig struct {
	// Accounting (OAuth2 + REST)
	AccountingURL      string
	AccountingTenantID string
	TokenURL           string
	ClientID           string
	ClientSecret       string
	RefreshToken       string

	// E-signature
	ESignURL   string
	ESignToken string

	// Messaging providers: log, noop, webhook, or an http(s) URL
	SMSProvider   string
	EmailProvider string

	// Compliance officer contact for incident alerts
	AlertPhone string
	AlertEmail string

	Timeout time.Duration
}
