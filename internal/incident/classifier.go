// Package incident classifies reportable incidents and tracks their
// regulator notification deadlines.
package incident

import (
	"strings"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
)

// immediateTypes must be notified within 24 hours.
var immediateTypes = map[string]bool{
	"death":                     true,
	"serious_injury":            true,
	"abuse":                     true,
	"neglect":                   true,
	"unlawful_sexual_contact":   true,
	"unlawful_physical_contact": true,
	"sexual_misconduct":         true,
}

// fiveDayTypes must be notified within five business days.
var fiveDayTypes = map[string]bool{
	"unauthorised_restrictive_practice": true,
	"restrictive_practice":              true,
}

// Classifier maps an incident type to a notification bucket and deadline.
type Classifier struct {
	location *time.Location
	now      func() time.Time
}

// NewClassifier creates a classifier reading calendar days in loc.
func NewClassifier(loc *time.Location) *Classifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Classifier{location: loc, now: time.Now}
}

// WithClock replaces the time source.
func (c *Classifier) WithClock(now func() time.Time) *Classifier {
	c.now = now
	return c
}

// Classify buckets incidentType and computes its deadline from now.
func (c *Classifier) Classify(incidentType string) domain.Classification {
	return c.ClassifyAt(incidentType, c.now())
}

// ClassifyAt buckets incidentType and computes its deadline from now.
// Unknown types fall into the monthly bucket.
func (c *Classifier) ClassifyAt(incidentType string, now time.Time) domain.Classification {
	norm := NormaliseType(incidentType)
	local := now.In(c.location)

	result := domain.Classification{IncidentType: norm}
	switch {
	case immediateTypes[norm]:
		result.NotificationType = domain.NotifyImmediate
		result.Deadline = now.Add(24 * time.Hour)
	case fiveDayTypes[norm]:
		result.NotificationType = domain.NotifyFiveDay
		result.Deadline = AddBusinessDays(local, 5)
	default:
		result.NotificationType = domain.NotifyMonthly
		result.Deadline = time.Date(local.Year(), local.Month()+1, 5, 0, 0, 0, 0, c.location)
	}
	return result
}

// NormaliseType lower-cases a type and joins words with underscores.
func NormaliseType(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), "_")
}

// AddBusinessDays advances t one calendar day at a time until n weekdays
// (Monday to Friday) have been counted. The time of day is kept.
func AddBusinessDays(t time.Time, n int) time.Time {
	for n > 0 {
		t = t.AddDate(0, 0, 1)
		if wd := t.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n--
		}
	}
	return t
}
