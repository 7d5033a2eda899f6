package ical

import (
	"strings"
	"testing"
	"time"

	"sermoncal/internal/presentation"
	"sermoncal/internal/recurrence"
)

func TestExportContainsEventsAndRRule(t *testing.T) {
	t.Parallel()
	weekly, _ := recurrence.NewWeekly(1)
	records := []presentation.Record{
		{
			ID:         "r1",
			Status:     presentation.StatusScheduled,
			At:         time.Date(2024, time.March, 3, 10, 0, 0, 0, time.UTC),
			Location:   "Main hall",
			Notes:      "on grace",
			Recurrence: &weekly,
		},
		{
			ID:     "r2",
			Status: presentation.StatusCanceled,
			At:     time.Date(2024, time.March, 10, 10, 0, 0, 0, time.UTC),
		},
	}

	out := Export("doc-1", records)

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"BEGIN:VEVENT",
		"UID:doc-1-r1@sermoncal",
		"RRULE:FREQ=WEEKLY;BYDAY=SU",
		"LOCATION:Main hall",
		"STATUS:CANCELLED",
		"END:VCALENDAR",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("export missing %q:\n%s", want, out)
		}
	}
}

func TestExportSkipsRescheduledSources(t *testing.T) {
	t.Parallel()
	records := []presentation.Record{
		{ID: "old", Status: presentation.StatusRescheduled, At: time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC), RescheduledTo: "new"},
		{ID: "new", Status: presentation.StatusScheduled, At: time.Date(2024, time.March, 8, 10, 0, 0, 0, time.UTC), RescheduledFrom: "old"},
	}
	out := Export("doc-1", records)
	if strings.Contains(out, "doc-1-old@sermoncal") {
		t.Fatal("rescheduled source must not be exported")
	}
	if !strings.Contains(out, "doc-1-new@sermoncal") {
		t.Fatal("follow-up record missing from export")
	}
}

func TestImportRoundTrip(t *testing.T) {
	t.Parallel()
	weekly, _ := recurrence.NewWeekly(1)
	records := []presentation.Record{
		{
			ID:         "r1",
			Status:     presentation.StatusScheduled,
			At:         time.Date(2024, time.March, 3, 10, 0, 0, 0, time.UTC),
			Recurrence: &weekly,
		},
	}
	out := Export("doc-1", records)

	entries, err := Import("doc-1", []byte(out))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Import = %d entries, want 1", len(entries))
	}
	if entries[0].Recurrence != weekly {
		t.Fatalf("imported rule = %s, want %s", entries[0].Recurrence, weekly)
	}
	if !entries[0].ScheduledFor(time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("imported entry must match following Sundays")
	}
}

func TestImportDegradesUnsupportedRRule(t *testing.T) {
	t.Parallel()
	feed := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:x@test",
		"DTSTART:20240303T100000Z",
		"RRULE:FREQ=WEEKLY;INTERVAL=2;BYDAY=SU",
		"SUMMARY:biweekly thing",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	entries, err := Import("doc-1", []byte(feed))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Import = %d entries, want 1", len(entries))
	}
	if entries[0].Recurrence != recurrence.NewOnce() {
		t.Fatalf("unsupported RRULE must degrade to once, got %s", entries[0].Recurrence)
	}
}

func TestImportRejectsEmptyBody(t *testing.T) {
	t.Parallel()
	if _, err := Import("doc-1", nil); err == nil {
		t.Fatal("expected error for empty body")
	}
}
