package storage

import (
	"context"
	"errors"
	"strings"

	"sermoncal/internal/presentation"
	logx "sermoncal/pkg/logx"
)

// Store is the persistence API consumed by presentation stores and the
// agenda scan. Load/Save come from presentation.Persistence; the file
// driver additionally implements presentation.LegacySource for one-time
// schedule migration.
type Store interface {
	presentation.Persistence

	// Documents lists the ids of all documents with stored records.
	Documents(ctx context.Context) ([]string, error)

	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
