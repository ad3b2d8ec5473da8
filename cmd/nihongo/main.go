// Command nihongo fetches the EDRDG Japanese dictionary files, resolves them
// into flat records and loads them into PostgreSQL.
//
// Usage:
//
//	nihongo fetch [dataset...]
//	nihongo parse jmdict|kanjidic|kradfile|radkfile [FILE]
//	nihongo migrate
//	nihongo seed [--phase jmdict,kanjidic] [--dry-run] [--fetch]
//	nihongo lookup TEXT [--kanji] [--radicals]
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/nihongo-dict/internal/adapter/provider/edrdg"
	"github.com/heartmarshall/nihongo-dict/internal/app"
	"github.com/heartmarshall/nihongo-dict/internal/config"
)

// env is the state shared by every subcommand once the root has loaded
// configuration.
type env struct {
	configPath string
	cfg        *config.Config
	log        *slog.Logger
}

func (e *env) fetcher() *edrdg.Fetcher {
	return edrdg.NewFetcher(e.cfg.Datasets.DataDir, e.log,
		edrdg.WithForce(e.cfg.Datasets.Force),
		edrdg.WithTimeout(e.cfg.Datasets.FetchTimeout),
	)
}

func newRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:   "nihongo",
		Short: "Japanese dictionary ingestion (JMdict, KANJIDIC2, KRADFILE, RADKFILE)",
		Long: `nihongo turns the EDRDG dictionary files into resolved records.

JMdict entries are expanded to one record per (written form, reading) pair,
with every sense folded into the records its restrictions allow.

Examples:
  nihongo fetch                          # download all datasets into data_dir
  nihongo parse jmdict > jmdict.jsonl    # resolve JMdict to JSON Lines
  nihongo migrate                        # create the lexicon schema
  nihongo seed --phase jmdict            # load JMdict into PostgreSQL`,
		Version:      app.BuildVersion(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := app.Bootstrap(e.configPath)
			if err != nil {
				return err
			}
			e.cfg, e.log = cfg, log
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&e.configPath, "config", "c", "", "path to YAML config (default: $CONFIG_PATH or ./config.yaml)")

	root.AddCommand(
		newFetchCmd(e),
		newParseCmd(e),
		newMigrateCmd(e),
		newSeedCmd(e),
		newLookupCmd(e),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
