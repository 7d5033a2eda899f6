package agenda

import (
	"context"
	"errors"
	"testing"
	"time"

	"sermoncal/internal/presentation"
	"sermoncal/internal/recurrence"
	logx "sermoncal/pkg/logx"
)

type fakeSource struct {
	docs    map[string][]presentation.Record
	loadErr error
}

func (f *fakeSource) Documents(_ context.Context) ([]string, error) {
	out := make([]string, 0, len(f.docs))
	for id := range f.docs {
		out = append(out, id)
	}
	return out, nil
}

func (f *fakeSource) Load(_ context.Context, documentID string) ([]presentation.Record, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.docs[documentID], nil
}

func TestScanCountsOnlyScheduledInsideHorizon(t *testing.T) {
	t.Parallel()
	weekly, _ := recurrence.NewWeekly(1, 2, 3, 4, 5, 6, 7) // daily template
	src := &fakeSource{docs: map[string][]presentation.Record{
		"doc-1": {
			{ID: "r1", Status: presentation.StatusScheduled, At: time.Now().AddDate(0, 0, 2)},
			{ID: "r2", Status: presentation.StatusCanceled, At: time.Now().AddDate(0, 0, 3)},
			{ID: "r3", Status: presentation.StatusScheduled, At: time.Now().AddDate(0, 0, 60)},
			{ID: "r4", Status: presentation.StatusScheduled, At: time.Now().AddDate(0, 0, 1), Recurrence: &weekly},
		},
	}}

	s := New(Config{Enabled: true, Schedule: "@every 1h", HorizonDays: 7, RatePerSec: 100}, src, logx.Nop())
	if err := s.Scan(context.Background()); err != nil {
		t.Fatalf("Scan: %v", err)
	}
}

func TestScanSurvivesLoadFailure(t *testing.T) {
	t.Parallel()
	src := &fakeSource{
		docs:    map[string][]presentation.Record{"doc-1": nil},
		loadErr: errors.New("backend down"),
	}
	s := New(Config{Enabled: true, Schedule: "@every 1h", HorizonDays: 7}, src, logx.Nop())
	if err := s.Scan(context.Background()); err != nil {
		t.Fatalf("Scan must skip failing documents, got %v", err)
	}
}

func TestStartRejectsEmptySchedule(t *testing.T) {
	t.Parallel()
	s := New(Config{Enabled: true}, &fakeSource{}, logx.Nop())
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for missing schedule")
	}
}

func TestStartStopLifecycle(t *testing.T) {
	t.Parallel()
	s := New(Config{Enabled: true, Schedule: "@every 1h", HorizonDays: 7}, &fakeSource{}, logx.Nop())
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Second start is a no-op.
	if err := s.Start(ctx); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	s.Stop()
	s.Stop() // idempotent
}

func TestStartRejectsBadCronSpec(t *testing.T) {
	t.Parallel()
	s := New(Config{Enabled: true, Schedule: "not a spec"}, &fakeSource{}, logx.Nop())
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}
