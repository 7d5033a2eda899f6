package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"sermoncal/internal/presentation"
	"sermoncal/internal/recurrence"
	"sermoncal/internal/schedule"
	logx "sermoncal/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	// Basic pragmas.
	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) Load(ctx context.Context, documentID string) ([]presentation.Record, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, at, location, notes, todo_items, recurrence,
		        service_label, rescheduled_to, rescheduled_from
		 FROM presentations WHERE document_id = ? ORDER BY position`,
		documentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []presentation.Record
	for rows.Next() {
		var (
			r                   presentation.Record
			at                  string
			location, notes     sql.NullString
			todos, rule         sql.NullString
			label, toID, fromID sql.NullString
		)
		if err := rows.Scan(&r.ID, (*string)(&r.Status), &at, &location, &notes,
			&todos, &rule, &label, &toID, &fromID); err != nil {
			return nil, err
		}
		r.DocumentID = documentID
		r.At, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("record %s: bad datetime %q: %w", r.ID, at, err)
		}
		r.Location = location.String
		r.Notes = notes.String
		r.ServiceLabel = schedule.ServiceLabel(label.String)
		r.RescheduledTo = toID.String
		r.RescheduledFrom = fromID.String
		if todos.Valid && todos.String != "" {
			if err := json.Unmarshal([]byte(todos.String), &r.TodoItems); err != nil {
				return nil, fmt.Errorf("record %s: bad todo items: %w", r.ID, err)
			}
		}
		if rule.Valid && rule.String != "" {
			var rr recurrence.Rule
			if err := json.Unmarshal([]byte(rule.String), &rr); err != nil {
				return nil, fmt.Errorf("record %s: bad recurrence: %w", r.ID, err)
			}
			r.Recurrence = &rr
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *sqliteStore) Save(ctx context.Context, documentID string, records []presentation.Record) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM presentations WHERE document_id = ?`, documentID); err != nil {
		return err
	}
	for i, r := range records {
		todos, err := marshalOrNull(r.TodoItems, len(r.TodoItems) > 0)
		if err != nil {
			return err
		}
		rule, err := marshalOrNull(r.Recurrence, r.Recurrence != nil)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO presentations(document_id, id, position, status, at, location,
			   notes, todo_items, recurrence, service_label, rescheduled_to, rescheduled_from)
			 VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
			documentID, r.ID, i, string(r.Status), r.At.Format(time.RFC3339Nano),
			nullStr(r.Location), nullStr(r.Notes), todos, rule,
			nullStr(string(r.ServiceLabel)), nullStr(r.RescheduledTo), nullStr(r.RescheduledFrom),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) Documents(ctx context.Context) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT document_id FROM presentations ORDER BY document_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func marshalOrNull(v any, present bool) (any, error) {
	if !present {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
