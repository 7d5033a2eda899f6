package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sermoncal/internal/presentation"
	"sermoncal/internal/recurrence"
	"sermoncal/internal/schedule"
	logx "sermoncal/pkg/logx"
)

func testRecords(t *testing.T) []presentation.Record {
	t.Helper()
	weekly, err := recurrence.NewWeekly(1, 4)
	if err != nil {
		t.Fatalf("NewWeekly: %v", err)
	}
	return []presentation.Record{
		{
			ID:         "r1",
			DocumentID: "doc-1",
			Status:     presentation.StatusPresented,
			At:         time.Date(2024, time.January, 7, 10, 0, 0, 0, time.UTC),
			Location:   "Main hall",
			Notes:      "delivered",
		},
		{
			ID:           "r2",
			DocumentID:   "doc-1",
			Status:       presentation.StatusScheduled,
			At:           time.Date(2024, time.March, 3, 10, 0, 0, 0, time.UTC),
			ServiceLabel: schedule.ServiceSpecial,
			Recurrence:   &weekly,
			TodoItems: []presentation.TodoItem{
				{ID: "t1", Text: "print handouts", Done: false},
				{ID: "t2", Text: "check projector", Done: true},
			},
		},
	}
}

func assertRoundTrip(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()
	want := testRecords(t)

	if err := st.Save(ctx, "doc-1", want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := st.Load(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Load = %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Status != want[i].Status {
			t.Fatalf("record %d = %+v, want %+v", i, got[i], want[i])
		}
		if !got[i].At.Equal(want[i].At) {
			t.Fatalf("record %d datetime = %s, want %s", i, got[i].At, want[i].At)
		}
	}
	if got[1].Recurrence == nil || *got[1].Recurrence != *want[1].Recurrence {
		t.Fatalf("recurrence lost: %v", got[1].Recurrence)
	}
	if len(got[1].TodoItems) != 2 || got[1].TodoItems[1].Done != true {
		t.Fatalf("todo items lost: %+v", got[1].TodoItems)
	}

	docs, err := st.Documents(ctx)
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if len(docs) != 1 || docs[0] != "doc-1" {
		t.Fatalf("Documents = %v, want [doc-1]", docs)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{Driver: "file", Path: t.TempDir()}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()
	assertRoundTrip(t, st)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "sermoncal.db"),
		BusyTimeout: time.Second,
	}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()
	assertRoundTrip(t, st)
}

func TestSQLiteSaveReplacesCollection(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "sermoncal.db"),
	}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()
	ctx := context.Background()

	records := testRecords(t)
	if err := st.Save(ctx, "doc-1", records); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := st.Save(ctx, "doc-1", records[:1]); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	got, err := st.Load(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Load = %d records after shrink, want 1", len(got))
	}
}

func TestLoadMissingDocumentIsEmpty(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{Driver: "file", Path: t.TempDir()}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	got, err := st.Load(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Load = %d records, want 0", len(got))
	}
}

func TestFileStoreLegacySchedule(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	st, err := Open(Config{Driver: "file", Path: dir}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()
	ctx := context.Background()

	weekly, _ := recurrence.NewWeekly(1)
	entry, err := schedule.NewEntry("doc-1", schedule.ServiceRegular,
		time.Date(2024, time.January, 7, 0, 0, 0, 0, time.UTC), nil, weekly, "old notes")
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	presented := time.Date(2023, time.December, 24, 10, 0, 0, 0, time.UTC)
	raw, _ := json.Marshal(legacyFile{Entries: []schedule.Entry{entry}, DatePresented: &presented})
	if err := os.WriteFile(filepath.Join(dir, "doc-1.schedule.json"), raw, 0o600); err != nil {
		t.Fatalf("write legacy file: %v", err)
	}

	// Opening the presentation store performs the one-time upgrade.
	ps, err := presentation.Open(ctx, "doc-1", st, logx.Nop())
	if err != nil {
		t.Fatalf("presentation.Open: %v", err)
	}
	if ps.Len() != 2 {
		t.Fatalf("Len = %d, want 2 migrated records", ps.Len())
	}

	// The canonical file now exists; a fresh open loads it directly.
	ps2, err := presentation.Open(ctx, "doc-1", st, logx.Nop())
	if err != nil {
		t.Fatalf("second presentation.Open: %v", err)
	}
	if ps2.Len() != 2 {
		t.Fatalf("second open Len = %d, want 2", ps2.Len())
	}
}

func TestFileStoreRejectsPathyDocumentIDs(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{Driver: "file", Path: t.TempDir()}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if _, err := st.Load(context.Background(), "../escape"); err == nil {
		t.Fatal("expected error for path separator in document id")
	}
	if err := st.Save(context.Background(), "", nil); err == nil {
		t.Fatal("expected error for empty document id")
	}
}

func TestOpenDisabledAndUnknownDrivers(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{Driver: ""}, logx.Nop())
	if err != nil || st != nil {
		t.Fatalf("disabled Open = (%v, %v), want (nil, nil)", st, err)
	}
	if _, err := Open(Config{Driver: "cassandra"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
