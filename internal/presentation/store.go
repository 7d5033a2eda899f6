package presentation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"sermoncal/internal/recurrence"
	"sermoncal/internal/schedule"
	logx "sermoncal/pkg/logx"
)

// Persistence loads and saves a document's record collection. Implemented
// by internal/storage; the store calls Save after every mutation
// (write-through) and Load once when opened.
type Persistence interface {
	Load(ctx context.Context, documentID string) ([]Record, error)
	Save(ctx context.Context, documentID string, records []Record) error
}

// Store owns the presentation records of exactly one document.
//
// It is synchronous and not safe for concurrent use; callers serialize
// access (one owner per document). On a failed save the in-memory
// collection is kept as mutated — the caller decides whether to retry or
// reload.
type Store struct {
	documentID string
	persist    Persistence
	log        logx.Logger

	records []Record
}

// Open materializes the store for a document. If the document has no
// records yet, legacy schedule data (when the persistence layer exposes
// any) is converted once and written back in the canonical format.
func Open(ctx context.Context, documentID string, persist Persistence, log logx.Logger) (*Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	records, err := persist.Load(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("presentation: load %s: %w", documentID, err)
	}
	s := &Store{documentID: documentID, persist: persist, log: log, records: records}
	if len(records) == 0 {
		if err := s.migrateLegacy(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// DocumentID returns the owning document's id.
func (s *Store) DocumentID() string { return s.documentID }

// Len returns the number of records, including terminal ones.
func (s *Store) Len() int { return len(s.records) }

// Get returns a record by id.
func (s *Store) Get(id string) (Record, bool) {
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// Records returns a copy of the full collection in insertion order.
func (s *Store) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Add appends a record and writes through.
func (s *Store) Add(ctx context.Context, r Record) error {
	s.records = append(s.records, r)
	return s.save(ctx)
}

// Remove deletes a record by id. Unknown ids are a no-op reported as
// changed=false, not an error.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true, s.save(ctx)
		}
	}
	return false, nil
}

// Update replaces a record by id. Unknown ids are a silent no-op.
func (s *Store) Update(ctx context.Context, r Record) (bool, error) {
	for i, cur := range s.records {
		if cur.ID == r.ID {
			s.records[i] = r
			return true, s.save(ctx)
		}
	}
	return false, nil
}

// RecordPresentation appends a Presented record for a delivery that already
// happened.
func (s *Store) RecordPresentation(ctx context.Context, at time.Time, location, notes string, todos []TodoItem) (Record, error) {
	r := Record{
		ID:         uuid.NewString(),
		DocumentID: s.documentID,
		Status:     StatusPresented,
		At:         at,
		Location:   location,
		Notes:      notes,
		TodoItems:  todos,
	}
	return r, s.Add(ctx, r)
}

// ScheduleOptions carries the optional fields of a future presentation.
type ScheduleOptions struct {
	Location     string
	ServiceLabel schedule.ServiceLabel
	Recurrence   *recurrence.Rule
	Notes        string
	TodoItems    []TodoItem
}

// SchedulePresentation appends a Scheduled record for a future delivery.
func (s *Store) SchedulePresentation(ctx context.Context, at time.Time, opts ScheduleOptions) (Record, error) {
	r := Record{
		ID:           uuid.NewString(),
		DocumentID:   s.documentID,
		Status:       StatusScheduled,
		At:           at,
		Location:     opts.Location,
		Notes:        opts.Notes,
		TodoItems:    opts.TodoItems,
		Recurrence:   opts.Recurrence,
		ServiceLabel: opts.ServiceLabel,
	}
	return r, s.Add(ctx, r)
}

// Cancel marks a record Canceled. No other field changes; canceling an
// already-canceled record re-sets the same status, so the call is
// idempotent. Unknown ids are a silent no-op.
func (s *Store) Cancel(ctx context.Context, id string) (bool, error) {
	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].Status = StatusCanceled
			return true, s.save(ctx)
		}
	}
	return false, nil
}

// Reschedule moves a scheduled record to a new date. The source record is
// kept (status Rescheduled) and a new Scheduled record is created carrying
// over location, service label, recurrence, notes and checklist; the two
// are linked through RescheduledTo/RescheduledFrom. History is preserved,
// not overwritten.
func (s *Store) Reschedule(ctx context.Context, id string, newAt time.Time) (Record, bool, error) {
	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		src := &s.records[i]
		next := Record{
			ID:              uuid.NewString(),
			DocumentID:      s.documentID,
			Status:          StatusScheduled,
			At:              newAt,
			Location:        src.Location,
			Notes:           src.Notes,
			TodoItems:       src.TodoItems,
			Recurrence:      src.Recurrence,
			ServiceLabel:    src.ServiceLabel,
			RescheduledFrom: src.ID,
		}
		src.Status = StatusRescheduled
		src.RescheduledTo = next.ID
		s.records = append(s.records, next)
		return next, true, s.save(ctx)
	}
	return Record{}, false, nil
}

// On returns the records whose datetime falls on the given calendar day,
// ascending by datetime.
func (s *Store) On(date time.Time) []Record {
	var out []Record
	for _, r := range s.records {
		if r.OccursOn(date) {
			out = append(out, r)
		}
	}
	sortByTime(out)
	return out
}

// Past returns delivered and canceled records, ascending by datetime.
// Rescheduled records appear in neither Past nor Upcoming: their follow-up
// record represents them.
func (s *Store) Past() []Record {
	return s.filter(func(r Record) bool {
		return r.Status == StatusPresented || r.Status == StatusCanceled
	})
}

// Upcoming returns scheduled records, ascending by datetime.
func (s *Store) Upcoming() []Record {
	return s.filter(func(r Record) bool { return r.Status == StatusScheduled })
}

// Occurrences expands a record's recurrence template through until.
// The second return is false for unknown ids.
func (s *Store) Occurrences(id string, until time.Time) ([]time.Time, bool) {
	r, ok := s.Get(id)
	if !ok {
		return nil, false
	}
	return r.Occurrences(until), true
}

func (s *Store) filter(keep func(Record) bool) []Record {
	var out []Record
	for _, r := range s.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	sortByTime(out)
	return out
}

func (s *Store) save(ctx context.Context) error {
	if err := s.persist.Save(ctx, s.documentID, s.records); err != nil {
		s.log.Warn("write-through save failed",
			logx.String("document", s.documentID), logx.Err(err))
		return fmt.Errorf("presentation: save %s: %w", s.documentID, err)
	}
	return nil
}

func sortByTime(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].At.Before(records[j].At)
	})
}
