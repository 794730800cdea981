package domain

import "time"

// EntityType names the kind of record a compliance run targets.
type EntityType string

const (
	EntityReferral EntityType = "referral"
	EntityService  EntityType = "service"
	EntityStaff    EntityType = "staff"
)

// ParseEntityType validates an entity type string.
func ParseEntityType(s string) (EntityType, error) {
	switch t := EntityType(s); t {
	case EntityReferral, EntityService, EntityStaff:
		return t, nil
	}
	return "", NewValidationError("entityType", "unknown entity type %q", s)
}

// CheckStatus is the outcome of a single compliance check.
type CheckStatus string

const (
	CheckPass    CheckStatus = "pass"
	CheckWarning CheckStatus = "warning"
	CheckFail    CheckStatus = "fail"
)

// Criticality ranks how much a check counts toward the score.
type Criticality string

const (
	CriticalityCritical Criticality = "critical"
	CriticalityHigh     Criticality = "high"
	CriticalityMedium   Criticality = "medium"
	CriticalityLow      Criticality = "low"
)

// CheckResult is the ephemeral output of one compliance check.
type CheckResult struct {
	CheckType   string      `json:"checkType"`
	Label       string      `json:"label"`
	Status      CheckStatus `json:"status"`
	Criticality Criticality `json:"criticality"`
	Detail      string      `json:"detail,omitempty"`
}

// ComplianceReport is the aggregated result of a compliance run.
type ComplianceReport struct {
	EntityType      EntityType    `json:"entityType"`
	EntityID        string        `json:"entityId"`
	Score           int           `json:"score"`
	Checks          []CheckResult `json:"checks"`
	NotImplemented  []string      `json:"notImplemented,omitempty"`
	Recommendations []string      `json:"recommendations"`
	CheckedAt       time.Time     `json:"checkedAt"`
	NextReviewDate  time.Time     `json:"nextReviewDate"`
}

// ComplianceScoreLog is the persisted trace of a compliance run.
type ComplianceScoreLog struct {
	ID             string     `json:"id"`
	EntityType     EntityType `json:"entityType"`
	EntityID       string     `json:"entityId"`
	Score          int        `json:"score"`
	NextReviewDate time.Time  `json:"nextReviewDate"`
	CheckedAt      time.Time  `json:"checkedAt"`
}

// StaffMember is a support worker whose credentials are checked.
type StaffMember struct {
	ID                       string     `json:"id"`
	Name                     string     `json:"name"`
	Email                    string     `json:"email,omitempty"`
	Phone                    string     `json:"phone,omitempty"`
	WorkerScreeningExpiry    *time.Time `json:"workerScreeningExpiry,omitempty"`
	PoliceCheckExpiry        *time.Time `json:"policeCheckExpiry,omitempty"`
	FirstAidExpiry           *time.Time `json:"firstAidExpiry,omitempty"`
	NDISOrientationCompleted bool       `json:"ndisOrientationCompleted"`
	CreatedAt                time.Time  `json:"createdAt"`
}

// ReferralStage is the intake workflow position of a referral.
type ReferralStage string

const (
	ReferralReceived   ReferralStage = "received"
	ReferralAssessment ReferralStage = "assessment"
	ReferralApproved   ReferralStage = "approved"
	ReferralOnboarded  ReferralStage = "onboarded"
	ReferralDeclined   ReferralStage = "declined"
)

// ReferralStages lists the known workflow stages in order.
var ReferralStages = []ReferralStage{
	ReferralReceived, ReferralAssessment, ReferralApproved, ReferralOnboarded, ReferralDeclined,
}

// Document types a referral must carry before onboarding.
const (
	DocConsentForm      = "consent_form"
	DocNDISPlan         = "ndis_plan"
	DocServiceAgreement = "service_agreement"
)

// Referral is an intake request for a prospective participant.
type Referral struct {
	ID              string        `json:"id"`
	ParticipantName string        `json:"participantName"`
	NDISNumber      string        `json:"ndisNumber"`
	Stage           ReferralStage `json:"stage"`
	Documents       []string      `json:"documents"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// ServiceAgreement binds a participant to the supports delivered.
type ServiceAgreement struct {
	ID               string    `json:"id"`
	ParticipantID    string    `json:"participantId"`
	ParticipantName  string    `json:"participantName"`
	ParticipantEmail string    `json:"participantEmail,omitempty"`
	NDISNumber       string    `json:"ndisNumber"`
	StartDate        time.Time `json:"startDate"`
	EndDate          time.Time `json:"endDate"`
	Signed           bool      `json:"signed"`
	SupportItemCodes []string  `json:"supportItemCodes"`
	CreatedAt        time.Time `json:"createdAt"`
}
