package app

import (
	"log/slog"

	"github.com/heartmarshall/nihongo-dict/internal/config"
)

// Bootstrap loads configuration from path (empty means CONFIG_PATH or
// ./config.yaml), initializes the default logger and logs startup
// information.
func Bootstrap(path string) (*config.Config, *slog.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}

	logger := NewLogger(cfg.Log)

	logger.Debug("configuration loaded",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("data_dir", cfg.Datasets.DataDir),
	)

	return cfg, logger, nil
}
