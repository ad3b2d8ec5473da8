package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
database:
  dsn: "postgres://u:p@localhost:5432/testdb"
  max_conns: 10
  min_conns: 2

log:
  level: "debug"
  format: "text"

datasets:
  data_dir: "/var/lib/nihongo"
  jmdict_url: "http://mirror.local/JMdict_e_examp.gz"
  fetch_timeout: "2m"

ingest:
  batch_size: 250
  workers: 4
  meaning_language: "fr"
  radical_encoding: "UTF-8"
  stop_on_structural: true
`

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeYAML(t, dir, validYAML))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.DSN != "postgres://u:p@localhost:5432/testdb" {
		t.Errorf("database.dsn = %q", cfg.Database.DSN)
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("database.max_conns = %d, want 10", cfg.Database.MaxConns)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("log.format = %q, want text", cfg.Log.Format)
	}
	if cfg.Datasets.DataDir != "/var/lib/nihongo" {
		t.Errorf("datasets.data_dir = %q", cfg.Datasets.DataDir)
	}
	if cfg.Datasets.JMdictURL != "http://mirror.local/JMdict_e_examp.gz" {
		t.Errorf("datasets.jmdict_url = %q", cfg.Datasets.JMdictURL)
	}
	if cfg.Datasets.FetchTimeout != 2*time.Minute {
		t.Errorf("datasets.fetch_timeout = %v, want 2m", cfg.Datasets.FetchTimeout)
	}
	if cfg.Ingest.BatchSize != 250 || cfg.Ingest.Workers != 4 {
		t.Errorf("ingest = %+v", cfg.Ingest)
	}
	if cfg.Ingest.RadicalEncoding != "utf-8" {
		t.Errorf("ingest.radical_encoding = %q, want normalized utf-8", cfg.Ingest.RadicalEncoding)
	}
	if !cfg.Ingest.StopOnStructural {
		t.Error("ingest.stop_on_structural = false, want true")
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeYAML(t, dir, "log:\n  level: info\n"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Datasets.KanjidicURL != "http://www.edrdg.org/kanjidic/kanjidic2.xml.gz" {
		t.Errorf("datasets.kanjidic_url default = %q", cfg.Datasets.KanjidicURL)
	}
	if cfg.Ingest.BatchSize != 500 {
		t.Errorf("ingest.batch_size default = %d, want 500", cfg.Ingest.BatchSize)
	}
	if cfg.Ingest.MeaningLanguage != "en" {
		t.Errorf("ingest.meaning_language default = %q, want en", cfg.Ingest.MeaningLanguage)
	}
	if cfg.Ingest.RadicalEncoding != "euc-jp" {
		t.Errorf("ingest.radical_encoding default = %q, want euc-jp", cfg.Ingest.RadicalEncoding)
	}
	if cfg.Database.DSN != "" {
		t.Errorf("database.dsn should be empty by default, got %q", cfg.Database.DSN)
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeYAML(t, dir, validYAML))
	t.Setenv("INGEST_WORKERS", "7")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Ingest.Workers != 7 {
		t.Errorf("ingest.workers = %d, want 7 (ENV override)", cfg.Ingest.Workers)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q, want warn (ENV override)", cfg.Log.Level)
	}
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DATASETS_DATA_DIR", "/tmp/edrdg")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Datasets.DataDir != "/tmp/edrdg" {
		t.Errorf("datasets.data_dir = %q, want /tmp/edrdg", cfg.Datasets.DataDir)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeYAML(t, dir, "ingest: [not, a, map"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"batch size zero", func(c *Config) { c.Ingest.BatchSize = 0 }, "batch_size"},
		{"no workers", func(c *Config) { c.Ingest.Workers = 0 }, "workers"},
		{"unknown encoding", func(c *Config) { c.Ingest.RadicalEncoding = "shift-jis" }, "radical_encoding"},
		{"empty language", func(c *Config) { c.Ingest.MeaningLanguage = "" }, "meaning_language"},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }, "log: unknown level"},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, "log: unknown format"},
		{"empty data dir", func(c *Config) { c.Datasets.DataDir = "" }, "data_dir"},
		{"min over max conns", func(c *Config) { c.Database.MinConns = 20 }, "min_conns"},
		{"zero timeout", func(c *Config) { c.Ingest.Timeout = 0 }, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRequireDatabase(t *testing.T) {
	cfg := validConfig()
	if err := cfg.RequireDatabase(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Database.DSN = "  "
	if err := cfg.RequireDatabase(); err == nil {
		t.Fatal("expected error for blank DSN")
	}
}

func validConfig() Config {
	return Config{
		Database: DatabaseConfig{DSN: "postgres://localhost/db", MaxConns: 8, MinConns: 1},
		Log:      LogConfig{Level: "info", Format: "json"},
		Datasets: DatasetsConfig{DataDir: "./data", FetchTimeout: time.Minute},
		Ingest: IngestConfig{
			BatchSize:       500,
			Workers:         2,
			MeaningLanguage: "en",
			RadicalEncoding: "euc-jp",
			Timeout:         time.Minute,
		},
	}
}
