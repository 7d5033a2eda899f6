package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"sermoncal/internal/presentation"
	"sermoncal/internal/schedule"
	logx "sermoncal/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Files under the configured directory:
//   - <documentID>.json            canonical record collection
//   - <documentID>.schedule.json   legacy schedule data, read-only
//
// Saves are atomic (tmp + rename) so a crash never leaves a half-written
// collection behind.
type fileStore struct {
	log logx.Logger
	dir string

	mu sync.Mutex
}

// legacyFile is the pre-record schedule format: entries plus an optional
// single "date presented" value.
type legacyFile struct {
	Entries       []schedule.Entry `json:"entries,omitempty"`
	DatePresented *time.Time       `json:"date_presented,omitempty"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	dir := strings.TrimSpace(cfg.Path)
	if dir == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &fileStore{log: log, dir: dir}, nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) Load(ctx context.Context, documentID string) ([]presentation.Record, error) {
	_ = ctx
	path, err := s.recordPath(documentID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read records: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var records []presentation.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal records: %w", err)
	}
	return records, nil
}

func (s *fileStore) Save(ctx context.Context, documentID string, records []presentation.Record) error {
	_ = ctx
	path, err := s.recordPath(documentID)
	if err != nil {
		return err
	}
	if records == nil {
		records = []presentation.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return os.Rename(tmp, path)
}

// LegacySchedule reads the pre-record schedule file, if any. Missing files
// simply mean there is nothing to migrate.
func (s *fileStore) LegacySchedule(ctx context.Context, documentID string) ([]schedule.Entry, *time.Time, error) {
	_ = ctx
	if err := validDocumentID(documentID); err != nil {
		return nil, nil, err
	}
	path := filepath.Join(s.dir, documentID+".schedule.json")

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read legacy schedule: %w", err)
	}
	var lf legacyFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, nil, fmt.Errorf("unmarshal legacy schedule: %w", err)
	}
	return lf.Entries, lf.DatePresented, nil
}

func (s *fileStore) Documents(ctx context.Context) ([]string, error) {
	_ = ctx
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if strings.HasSuffix(name, ".schedule.json") || strings.HasSuffix(name, ".tmp") {
			continue
		}
		out = append(out, strings.TrimSuffix(name, ".json"))
	}
	return out, nil
}

func (s *fileStore) recordPath(documentID string) (string, error) {
	if err := validDocumentID(documentID); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, documentID+".json"), nil
}

// validDocumentID keeps document ids usable as file names.
func validDocumentID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("document id is required")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("invalid document id %q", id)
	}
	return nil
}
