// Package schedule holds the recurring-schedule entries that bind a sermon
// document to a recurrence rule and a validity window.
//
// Entries are the legacy scheduling shape: new code paths create
// presentation records instead (internal/presentation), and existing entries
// are converted on first load. The predicate here still backs the
// "what is scheduled on date D" query for unmigrated data.
package schedule

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"sermoncal/internal/recurrence"
)

// ServiceLabel classifies the service an entry belongs to. The engine treats
// it as an opaque tag; these are the values the surrounding application uses.
type ServiceLabel string

const (
	ServiceRegular ServiceLabel = "regular"
	ServiceSpecial ServiceLabel = "special"
)

// Entry binds a document to a recurrence rule inside a validity window.
// Entries are immutable once created; an update is a full replacement by id.
type Entry struct {
	ID           string          `json:"id"`
	DocumentID   string          `json:"document_id"`
	ServiceLabel ServiceLabel    `json:"service_label,omitempty"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      *time.Time      `json:"end_date,omitempty"` // inclusive
	Recurrence   recurrence.Rule `json:"recurrence"`
	Notes        string          `json:"notes,omitempty"`
}

var errEndBeforeStart = errors.New("schedule: end date before start date")

// NewEntry creates an entry with a fresh id. An end date earlier than the
// start date is rejected: such a window can never match any date.
// Entries decoded from storage bypass this check and simply never match.
func NewEntry(documentID string, label ServiceLabel, start time.Time, end *time.Time, rule recurrence.Rule, notes string) (Entry, error) {
	if documentID == "" {
		return Entry{}, errors.New("schedule: document id is required")
	}
	if end != nil && recurrence.DayAfter(start, *end) {
		return Entry{}, errEndBeforeStart
	}
	return Entry{
		ID:           uuid.NewString(),
		DocumentID:   documentID,
		ServiceLabel: label,
		StartDate:    start,
		EndDate:      end,
		Recurrence:   rule,
		Notes:        notes,
	}, nil
}

// ScheduledFor reports whether the entry is active on the given date.
//
// The window comparison is calendar-day granular and inclusive at both ends;
// inside the window the recurrence rule decides. Pure, no side effects.
func (e Entry) ScheduledFor(date time.Time) bool {
	if recurrence.DayAfter(e.StartDate, date) {
		return false
	}
	if e.EndDate != nil && recurrence.DayAfter(date, *e.EndDate) {
		return false
	}
	return e.Recurrence.Occurs(date, e.StartDate)
}
