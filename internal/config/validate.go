package config

import (
	"fmt"
	"slices"
	"strings"
)

var (
	logLevels       = []string{"debug", "info", "warn", "warning", "error"}
	logFormats      = []string{"json", "text"}
	radicalEncoding = []string{"euc-jp", "utf-8"}
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Ingest.validate(); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if c.Datasets.DataDir == "" {
		return fmt.Errorf("datasets: data_dir must not be empty")
	}
	if c.Datasets.FetchTimeout <= 0 {
		return fmt.Errorf("datasets: fetch_timeout must be > 0 (got %v)", c.Datasets.FetchTimeout)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database: min_conns (%d) exceeds max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}
	return nil
}

// RequireDatabase reports an error when no DSN is configured.
func (c *Config) RequireDatabase() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required (set DATABASE_DSN)")
	}
	return nil
}

func (l *LogConfig) validate() error {
	if !slices.Contains(logLevels, strings.ToLower(l.Level)) {
		return fmt.Errorf("unknown level %q", l.Level)
	}
	if !slices.Contains(logFormats, strings.ToLower(l.Format)) {
		return fmt.Errorf("unknown format %q", l.Format)
	}
	return nil
}

func (i *IngestConfig) validate() error {
	if i.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", i.BatchSize)
	}
	if i.Workers < 1 {
		return fmt.Errorf("workers must be >= 1 (got %d)", i.Workers)
	}
	if i.MeaningLanguage == "" {
		return fmt.Errorf("meaning_language must not be empty")
	}
	i.RadicalEncoding = strings.ToLower(i.RadicalEncoding)
	if !slices.Contains(radicalEncoding, i.RadicalEncoding) {
		return fmt.Errorf("radical_encoding must be one of %v (got %q)", radicalEncoding, i.RadicalEncoding)
	}
	if i.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", i.Timeout)
	}
	return nil
}
