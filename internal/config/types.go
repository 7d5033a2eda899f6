package config

import (
	"fmt"

	"sermoncal/internal/services/agenda"
	"sermoncal/internal/storage"
	logx "sermoncal/pkg/logx"
)

// Config is the daemon configuration. YAML and JSON are both accepted;
// YAML is coerced to JSON and decoded strictly, so unknown keys are
// rejected in either format.
type Config struct {
	Logging LoggingConfig `json:"logging"`
	Storage StorageConfig `json:"storage"`
	Agenda  AgendaConfig  `json:"agenda,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig selects the persistence driver.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./sermoncal.db" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// AgendaConfig controls the periodic upcoming-presentation scan.
//
// Schedule is a cron spec or "@every <duration>"; the default scans once a
// day at 06:00. HorizonDays bounds how far ahead occurrences are expanded.
type AgendaConfig struct {
	Enabled     bool   `json:"enabled"`
	Schedule    string `json:"schedule,omitempty"`
	HorizonDays int    `json:"horizon_days,omitempty"`
	RatePerSec  int    `json:"rate_per_sec,omitempty"`
}

// Logx converts the logging section for pkg/logx.
func (c LoggingConfig) Logx() logx.Config {
	return logx.Config{
		Level:   c.Level,
		Console: c.Console,
		File: logx.FileConfig{
			Enabled: c.File.Enabled,
			Path:    c.File.Path,
		},
	}
}

// Storage converts the storage section, parsing duration fields.
func (c StorageConfig) Storage() (storage.Config, error) {
	busy, err := ParseDurationField("storage.busy_timeout", c.BusyTimeout)
	if err != nil {
		return storage.Config{}, err
	}
	return storage.Config{
		Driver:      c.Driver,
		Path:        c.Path,
		BusyTimeout: busy,
	}, nil
}

// Agenda converts the agenda section, applying defaults.
func (c AgendaConfig) Agenda() agenda.Config {
	cfg := agenda.Config{
		Enabled:     c.Enabled,
		Schedule:    c.Schedule,
		HorizonDays: c.HorizonDays,
		RatePerSec:  c.RatePerSec,
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "0 6 * * *"
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = 14
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 10
	}
	return cfg
}

// Validate rejects configs the daemon cannot run with.
func (c *Config) Validate() error {
	if c.Storage.Driver == "" {
		return fmt.Errorf("storage.driver is required")
	}
	if _, err := c.Storage.Storage(); err != nil {
		return err
	}
	return nil
}
