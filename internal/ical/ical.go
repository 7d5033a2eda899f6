// Package ical bridges presentation records and iCalendar feeds.
//
// Export renders a document's records as a VCALENDAR (one VEVENT per
// record, recurring templates carrying an RRULE); Import walks a feed's
// VEVENTs back into schedule entries, mapping RRULEs onto the engine's
// closed rule set where possible.
package ical

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"sermoncal/internal/presentation"
	"sermoncal/internal/recurrence"
	"sermoncal/internal/schedule"
)

const prodID = "-//sermoncal//presentation feed//EN"

// Export serializes a document's records as an iCalendar feed.
// Rescheduled source records are skipped: their follow-up record already
// represents the occurrence, and emitting both would double-book the day.
func Export(documentID string, records []presentation.Record) string {
	cal := ical.NewCalendar()
	cal.SetProductId(prodID)
	cal.SetMethod(ical.MethodPublish)

	for _, r := range records {
		if r.Status == presentation.StatusRescheduled {
			continue
		}
		ev := cal.AddEvent(fmt.Sprintf("%s-%s@sermoncal", documentID, r.ID))
		ev.SetStartAt(r.At)
		ev.SetEndAt(r.At.Add(time.Hour))
		ev.SetSummary(summaryFor(r))
		if r.Location != "" {
			ev.SetLocation(r.Location)
		}
		if r.Notes != "" {
			ev.SetDescription(r.Notes)
		}
		if r.IsRecurring() {
			ev.AddRrule(recurrence.ToRRule(*r.Recurrence))
		}
		if r.Status == presentation.StatusCanceled {
			ev.SetStatus(ical.ObjectStatusCancelled)
		}
	}
	return cal.Serialize()
}

func summaryFor(r presentation.Record) string {
	label := string(r.ServiceLabel)
	if label == "" {
		label = "presentation"
	}
	switch r.Status {
	case presentation.StatusCanceled:
		return "Canceled " + label
	case presentation.StatusPresented:
		return "Presented " + label
	default:
		return "Scheduled " + label
	}
}

// Import parses an iCalendar feed into schedule entries for a document.
// Events without a usable DTSTART are skipped; RRULEs the engine cannot
// represent degrade to one-off entries.
func Import(documentID string, body []byte) ([]schedule.Entry, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ical: parse: %w", err)
	}

	var entries []schedule.Entry
	for _, ve := range cal.Events() {
		start, err := ve.GetStartAt()
		if err != nil {
			continue
		}

		rule := recurrence.NewOnce()
		if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
			rule = recurrence.FromRRule(p.Value, start)
		}

		var notes string
		if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
			notes = p.Value
		}

		entry, err := schedule.NewEntry(documentID, schedule.ServiceRegular, start, nil, rule, notes)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
