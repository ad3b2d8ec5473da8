package config

import "time"

// Config is the root application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Datasets DatasetsConfig `yaml:"datasets"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Export   ExportConfig   `yaml:"export"`
}

// DatabaseConfig holds PostgreSQL connection settings. The DSN is only
// needed by commands that touch the database, so it is not required here.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"8"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// DatasetsConfig says where the EDRDG files come from and where they land.
type DatasetsConfig struct {
	DataDir      string        `yaml:"data_dir"      env:"DATASETS_DATA_DIR"      env-default:"./data"`
	JMdictURL    string        `yaml:"jmdict_url"    env:"DATASETS_JMDICT_URL"    env-default:"http://ftp.edrdg.org/pub/Nihongo/JMdict_e_examp.gz"`
	KanjidicURL  string        `yaml:"kanjidic_url"  env:"DATASETS_KANJIDIC_URL"  env-default:"http://www.edrdg.org/kanjidic/kanjidic2.xml.gz"`
	KradfileURL  string        `yaml:"kradfile_url"  env:"DATASETS_KRADFILE_URL"  env-default:"http://ftp.edrdg.org/pub/Nihongo/kradfile.gz"`
	RadkfileURL  string        `yaml:"radkfile_url"  env:"DATASETS_RADKFILE_URL"  env-default:"http://ftp.edrdg.org/pub/Nihongo/radkfile.gz"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"DATASETS_FETCH_TIMEOUT" env-default:"10m"`
	Force        bool          `yaml:"force"         env:"DATASETS_FORCE"`
}

// IngestConfig holds parse and seed settings.
type IngestConfig struct {
	BatchSize       int    `yaml:"batch_size"        env:"INGEST_BATCH_SIZE"        env-default:"500"`
	Workers         int    `yaml:"workers"           env:"INGEST_WORKERS"           env-default:"2"`
	MeaningLanguage string `yaml:"meaning_language"  env:"INGEST_MEANING_LANGUAGE"  env-default:"en"`
	RadicalEncoding string `yaml:"radical_encoding"  env:"INGEST_RADICAL_ENCODING"  env-default:"euc-jp"`
	// StopOnStructural aborts a phase at the first malformed entry instead
	// of skipping it.
	StopOnStructural bool          `yaml:"stop_on_structural" env:"INGEST_STOP_ON_STRUCTURAL"`
	DryRun           bool          `yaml:"dry_run"            env:"INGEST_DRY_RUN"`
	Timeout          time.Duration `yaml:"timeout"            env:"INGEST_TIMEOUT"            env-default:"30m"`
}

// ExportConfig holds JSONL export settings.
type ExportConfig struct {
	Pretty bool `yaml:"pretty" env:"EXPORT_PRETTY"`
}
