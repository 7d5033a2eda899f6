// Package agenda periodically scans every document's upcoming scheduled
// presentations and logs reminders.
//
// The scan itself is a pure read over the persistence layer; the engine's
// stores stay synchronous and single-owner. Reminder output is rate-limited
// so a large backlog cannot flood the log sinks.
package agenda

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"sermoncal/internal/presentation"
	logx "sermoncal/pkg/logx"
)

// Config controls the agenda service.
type Config struct {
	Enabled     bool
	Schedule    string // cron spec or "@every <duration>"
	HorizonDays int    // how far ahead occurrences are expanded
	RatePerSec  int    // reminder log rate limit
}

// Source provides the documents and records to scan. Implemented by
// internal/storage.
type Source interface {
	Documents(ctx context.Context) ([]string, error)
	Load(ctx context.Context, documentID string) ([]presentation.Record, error)
}

type Service struct {
	mu sync.Mutex

	log logx.Logger
	cfg Config
	src Source

	parser  cron.Parser
	c       *cron.Cron
	limiter *rate.Limiter
}

func New(cfg Config, src Source, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 10
	}
	return &Service{
		cfg:     cfg,
		src:     src,
		log:     log,
		parser:  cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

func (s *Service) Enabled() bool { return s.cfg.Enabled }

// Start registers the scan on the configured schedule and starts the cron
// runner. Calling Start twice is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return nil
	}
	spec := strings.TrimSpace(s.cfg.Schedule)
	if spec == "" {
		return errors.New("agenda: schedule spec is required")
	}
	c := cron.New(cron.WithParser(s.parser))
	_, err := c.AddFunc(spec, func() {
		if err := s.Scan(ctx); err != nil {
			s.log.Warn("agenda scan failed", logx.Err(err))
		}
	})
	if err != nil {
		return err
	}
	s.c = c
	c.Start()
	s.log.Info("agenda started",
		logx.String("schedule", spec), logx.Int("horizon_days", s.cfg.HorizonDays))
	return nil
}

func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return
	}
	<-s.c.Stop().Done()
	s.c = nil
	s.log.Info("agenda stopped")
}

// Scan walks every document once and logs each upcoming occurrence inside
// the horizon. Also usable as a one-shot outside the cron schedule.
func (s *Service) Scan(ctx context.Context) error {
	start := time.Now()
	until := start.AddDate(0, 0, s.cfg.HorizonDays)

	docs, err := s.src.Documents(ctx)
	if err != nil {
		return err
	}

	var upcoming int
	for _, doc := range docs {
		records, err := s.src.Load(ctx, doc)
		if err != nil {
			s.log.Warn("agenda load failed", logx.String("document", doc), logx.Err(err))
			continue
		}
		for _, r := range records {
			if r.Status != presentation.StatusScheduled {
				continue
			}
			for _, occ := range r.Occurrences(until) {
				if occ.Before(start) || occ.After(until) {
					continue
				}
				upcoming++
				if s.limiter.Allow() {
					s.log.Info("upcoming presentation",
						logx.String("document", doc),
						logx.String("record", r.ID),
						logx.Time("at", occ),
						logx.String("service", string(r.ServiceLabel)),
					)
				}
			}
		}
	}

	s.log.Info("agenda scan done",
		logx.Int("documents", len(docs)),
		logx.Int("upcoming", upcoming),
		logx.Duration("took", time.Since(start)),
	)
	return nil
}
