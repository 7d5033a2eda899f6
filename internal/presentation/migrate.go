package presentation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sermoncal/internal/schedule"
	logx "sermoncal/pkg/logx"
)

// LegacySource is optionally implemented by a Persistence that still holds
// pre-record schedule data: schedule entries and/or a single
// "date presented" value attached to the document.
type LegacySource interface {
	LegacySchedule(ctx context.Context, documentID string) ([]schedule.Entry, *time.Time, error)
}

// migrateLegacy converts legacy schedule data into canonical records and
// writes them back, once. Runs only when the document has no records yet;
// subsequent opens see the canonical form and skip it entirely.
func (s *Store) migrateLegacy(ctx context.Context) error {
	legacy, ok := s.persist.(LegacySource)
	if !ok {
		return nil
	}
	entries, presentedAt, err := legacy.LegacySchedule(ctx, s.documentID)
	if err != nil {
		return fmt.Errorf("presentation: legacy load %s: %w", s.documentID, err)
	}
	if len(entries) == 0 && presentedAt == nil {
		return nil
	}

	if presentedAt != nil {
		s.records = append(s.records, Record{
			ID:         uuid.NewString(),
			DocumentID: s.documentID,
			Status:     StatusPresented,
			At:         *presentedAt,
		})
	}
	for _, e := range entries {
		r := Record{
			ID:           uuid.NewString(),
			DocumentID:   s.documentID,
			Status:       StatusScheduled,
			At:           e.StartDate,
			Notes:        e.Notes,
			ServiceLabel: e.ServiceLabel,
		}
		if e.Recurrence.IsRecurring() {
			rule := e.Recurrence
			r.Recurrence = &rule
		}
		s.records = append(s.records, r)
	}

	s.log.Info("migrated legacy schedule",
		logx.String("document", s.documentID),
		logx.Int("entries", len(entries)),
		logx.Bool("date_presented", presentedAt != nil))
	return s.save(ctx)
}
