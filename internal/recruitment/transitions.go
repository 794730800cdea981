package recruitment

import (
	"slices"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
)

// Valid status graph:
//
//	received ──► screening ──► shortlisted ──► interviewed ──► reference_check ──► offer ──► hired
//	    │            │              │               │                 │              │
//	    └────────────┴──────────────┴───────────────┴─────────────────┴──────────────┴──► rejected
//
// hired and rejected are terminal. A manual override may move an
// application anywhere and is recorded as such in its history.
var validTransitions = map[domain.ApplicationStatus][]domain.ApplicationStatus{
	domain.ApplicationReceived:       {domain.ApplicationScreening, domain.ApplicationRejected},
	domain.ApplicationScreening:      {domain.ApplicationShortlisted, domain.ApplicationRejected},
	domain.ApplicationShortlisted:    {domain.ApplicationInterviewed, domain.ApplicationRejected},
	domain.ApplicationInterviewed:    {domain.ApplicationReferenceCheck, domain.ApplicationRejected},
	domain.ApplicationReferenceCheck: {domain.ApplicationOffer, domain.ApplicationRejected},
	domain.ApplicationOffer:          {domain.ApplicationHired, domain.ApplicationRejected},
}

// ParseStatus converts a raw string to an ApplicationStatus.
func ParseStatus(s string) (domain.ApplicationStatus, error) {
	st := domain.ApplicationStatus(s)
	switch st {
	case domain.ApplicationReceived, domain.ApplicationScreening, domain.ApplicationShortlisted,
		domain.ApplicationInterviewed, domain.ApplicationReferenceCheck, domain.ApplicationOffer,
		domain.ApplicationHired, domain.ApplicationRejected:
		return st, nil
	}
	return "", domain.NewValidationError("status", "unknown application status %q", s)
}

// IsTransitionAllowed reports whether from → to is permitted without an
// override.
func IsTransitionAllowed(from, to domain.ApplicationStatus) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal
	}
	return slices.Contains(allowed, to)
}

// IsTerminal reports whether no ordinary transition leaves s.
func IsTerminal(s domain.ApplicationStatus) bool {
	_, ok := validTransitions[s]
	return !ok
}
