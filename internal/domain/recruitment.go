package domain

import "time"

// ApplicationStatus is the recruitment pipeline stage of an application.
type ApplicationStatus string

const (
	ApplicationReceived       ApplicationStatus = "received"
	ApplicationScreening      ApplicationStatus = "screening"
	ApplicationShortlisted    ApplicationStatus = "shortlisted"
	ApplicationInterviewed    ApplicationStatus = "interviewed"
	ApplicationReferenceCheck ApplicationStatus = "reference_check"
	ApplicationOffer          ApplicationStatus = "offer"
	ApplicationHired          ApplicationStatus = "hired"
	ApplicationRejected       ApplicationStatus = "rejected"
)

// ScreeningOutcome is the verdict of the auto-screen rules.
type ScreeningOutcome string

const (
	ScreenShortlist   ScreeningOutcome = "auto_shortlist"
	ScreenReject      ScreeningOutcome = "auto_reject"
	ScreenNeedsReview ScreeningOutcome = "needs_review"
)

// Candidate is a person applying for support-worker roles.
type Candidate struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	ExperienceYears    float64   `json:"experienceYears"`
	NDISExperience     bool      `json:"ndisExperience"`
	HasWorkerScreening bool      `json:"hasWorkerScreening"`
	HasDriversLicense  bool      `json:"hasDriversLicense"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Job is an open position.
type Job struct {
	ID                      string    `json:"id"`
	Title                   string    `json:"title"`
	RequiresWorkerScreening bool      `json:"requiresWorkerScreening"`
	RequiresDriversLicense  bool      `json:"requiresDriversLicense"`
	CreatedAt               time.Time `json:"createdAt"`
}

// CandidateApplication links a candidate to a job.
type CandidateApplication struct {
	ID              string            `json:"id"`
	CandidateID     string            `json:"candidateId"`
	JobID           string            `json:"jobId"`
	Status          ApplicationStatus `json:"status"`
	Score           int               `json:"score"`
	ScreeningResult ScreeningOutcome  `json:"screeningResult,omitempty"`
	ScreeningReason string            `json:"screeningReason,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// ApplicationStatusChange records one move through the pipeline.
type ApplicationStatusChange struct {
	ID            string            `json:"id"`
	ApplicationID string            `json:"applicationId"`
	From          ApplicationStatus `json:"from"`
	To            ApplicationStatus `json:"to"`
	Actor         string            `json:"actor"` // "auto" or a staff identifier
	Override      bool              `json:"override"`
	Reason        string            `json:"reason,omitempty"`
	ChangedAt     time.Time         `json:"changedAt"`
}

// ScreeningRule maps a predicate over candidate/job facts to an outcome.
//
// Expressions can reference requires_screening, has_screening,
// requires_license, has_license, ndis_experience (bool) and
// experience_years (double).
type ScreeningRule struct {
	ID         string           `json:"id"`
	Expression string           `json:"expression"`
	Outcome    ScreeningOutcome `json:"outcome"`
	Score      int              `json:"score"`
	Reason     string           `json:"reason"`
}

// DefaultScreeningRules returns the auto-screen rules in priority order.
func DefaultScreeningRules() []ScreeningRule {
	return []ScreeningRule{
		{
			ID:         "missing_worker_screening",
			Expression: "requires_screening && !has_screening",
			Outcome:    ScreenReject,
			Score:      20,
			Reason:     "NDIS worker screening clearance required",
		},
		{
			ID:         "missing_license",
			Expression: "requires_license && !has_license",
			Outcome:    ScreenReject,
			Score:      15,
			Reason:     "Driver's licence required",
		},
		{
			ID:         "experienced_ndis",
			Expression: "experience_years >= 2.0 && ndis_experience",
			Outcome:    ScreenShortlist,
			Score:      85,
			Reason:     "Two or more years of experience including NDIS work",
		},
		{
			ID:         "some_experience",
			Expression: "experience_years >= 1.0",
			Outcome:    ScreenNeedsReview,
			Score:      70,
			Reason:     "At least one year of experience",
		},
		{
			ID:         "default",
			Expression: "true",
			Outcome:    ScreenNeedsReview,
			Score:      50,
			Reason:     "Manual review required",
		},
	}
}

// ScreeningResult is the output of an auto-screen run.
type ScreeningResult struct {
	ApplicationID string            `json:"applicationId"`
	Result        ScreeningOutcome  `json:"result"`
	Score         int               `json:"score"`
	Reason        string            `json:"reason"`
	RuleID        string            `json:"ruleId"`
	Status        ApplicationStatus `json:"status"`
}
