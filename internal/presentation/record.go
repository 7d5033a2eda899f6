// Package presentation tracks the delivery history of a sermon document:
// past presentations, future scheduled ones, cancellations and reschedule
// chains.
//
// A Record is one concrete, addressable occurrence. The Store owns the
// per-document collection and writes it through an injected Persistence
// after every mutation; it never reaches into storage on its own.
package presentation

import (
	"time"

	"sermoncal/internal/recurrence"
	"sermoncal/internal/schedule"
)

// Status is the lifecycle state of a record. Serialized as these exact
// tokens.
type Status string

const (
	StatusPresented   Status = "Presented"
	StatusScheduled   Status = "Scheduled"
	StatusCanceled    Status = "Canceled"
	StatusRescheduled Status = "Rescheduled"
)

// TodoItem is one checklist entry attached to a presentation. The engine
// treats the payload as opaque.
type TodoItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Record is one presentation of a document, past or future.
//
// Invariants:
//   - Status Rescheduled implies RescheduledTo points at a record whose
//     RescheduledFrom points back here (one generation per reschedule).
//   - Canceled and Presented records carry no reschedule linkage.
//   - Recurrence, when set and recurring, is a template for generating
//     further occurrences; the store never auto-materializes them.
type Record struct {
	ID              string                `json:"id"`
	DocumentID      string                `json:"document_id"`
	Status          Status                `json:"status"`
	At              time.Time             `json:"datetime"`
	Location        string                `json:"location,omitempty"`
	Notes           string                `json:"notes,omitempty"`
	TodoItems       []TodoItem            `json:"todo_items,omitempty"`
	Recurrence      *recurrence.Rule      `json:"recurrence,omitempty"`
	ServiceLabel    schedule.ServiceLabel `json:"service_label,omitempty"`
	RescheduledTo   string                `json:"rescheduled_to,omitempty"`
	RescheduledFrom string                `json:"rescheduled_from,omitempty"`
}

// IsRecurring reports whether the record carries a repeating template.
func (r Record) IsRecurring() bool {
	return r.Recurrence != nil && r.Recurrence.IsRecurring()
}

// Occurrences expands the record's recurrence template into the ordered
// sequence of concrete dates from its datetime up to and including the
// calendar day of until. Non-recurring records yield just their datetime.
//
// The sequence is finite and recomputed per call; there is no cursor state.
func (r Record) Occurrences(until time.Time) []time.Time {
	if !r.IsRecurring() {
		return []time.Time{r.At}
	}
	return recurrence.Expand(*r.Recurrence, r.At, until)
}

// OccursOn reports whether the record's datetime falls on the given
// calendar day.
func (r Record) OccursOn(date time.Time) bool {
	return recurrence.SameDay(r.At, date)
}
