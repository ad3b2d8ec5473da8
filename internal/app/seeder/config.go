package seeder

import (
	"github.com/heartmarshall/nihongo-dict/internal/config"
)

// Config holds pipeline settings.
type Config struct {
	// Paths maps a phase name to its decompressed input file.
	Paths            map[string]string
	BatchSize        int
	Workers          int
	MeaningLanguage  string
	RadicalEncoding  string // WHATWG label, e.g. "euc-jp"
	StopOnStructural bool
	DryRun           bool
}

// NewConfig derives pipeline settings from the ingest section and the
// resolved dataset paths.
func NewConfig(ingest config.IngestConfig, paths map[string]string) Config {
	return Config{
		Paths:            paths,
		BatchSize:        ingest.BatchSize,
		Workers:          ingest.Workers,
		MeaningLanguage:  ingest.MeaningLanguage,
		RadicalEncoding:  ingest.RadicalEncoding,
		StopOnStructural: ingest.StopOnStructural,
		DryRun:           ingest.DryRun,
	}
}
