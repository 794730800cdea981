package domain

import "time"

// NotificationType is the regulator notification bucket of an incident.
type NotificationType string

const (
	NotifyImmediate NotificationType = "immediate" // within 24 hours
	NotifyFiveDay   NotificationType = "five_day"  // within 5 business days
	NotifyMonthly   NotificationType = "monthly"   // by the 5th of next month
)

// Classification is the result of classifying an incident type.
type Classification struct {
	IncidentType     string           `json:"incidentType"`
	NotificationType NotificationType `json:"notificationType"`
	Deadline         time.Time        `json:"deadline"`
}

// Incident is a reported event involving a participant.
type Incident struct {
	ID                string           `json:"id"`
	Type              string           `json:"type"`
	Severity          NotificationType `json:"severity"`
	ParticipantID     string           `json:"participantId"`
	ReportedBy        string           `json:"reportedBy,omitempty"`
	Description       string           `json:"description,omitempty"`
	OccurredAt        time.Time        `json:"occurredAt"`
	NDISReported      bool             `json:"ndisReported"`
	ReportedAt        *time.Time       `json:"reportedAt,omitempty"`
	ReportingDeadline time.Time        `json:"reportingDeadline"`
	CreatedAt         time.Time        `json:"createdAt"`
}
