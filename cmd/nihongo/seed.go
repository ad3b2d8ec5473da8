package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/nihongo-dict/internal/adapter/postgres"
	"github.com/heartmarshall/nihongo-dict/internal/adapter/postgres/lexicon"
	"github.com/heartmarshall/nihongo-dict/internal/adapter/provider/edrdg"
	"github.com/heartmarshall/nihongo-dict/internal/app/seeder"
)

// Compile-time interface assertion.
var _ seeder.LexiconRepo = (*lexicon.Repo)(nil)

var errPartial = errors.New("seed completed with errors")

func newSeedCmd(e *env) *cobra.Command {
	var (
		phases []string
		dryRun bool
		fetch  bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load datasets into PostgreSQL",
		Long: `Load datasets into PostgreSQL, one phase per dataset.

Phases run concurrently (ingest.workers) and write in batches of
ingest.batch_size. Existing rows are replaced, so seeding is repeatable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			datasets, err := edrdg.Select(edrdg.FromConfig(e.cfg.Datasets), phases)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.Ingest.Timeout)
			defer cancel()

			fetcher := e.fetcher()
			if fetch {
				if _, err := fetcher.FetchAll(ctx, datasets); err != nil {
					return err
				}
			}

			paths := make(map[string]string, len(datasets))
			for _, ds := range datasets {
				paths[ds.Name] = fetcher.Path(ds)
			}
			cfg := seeder.NewConfig(e.cfg.Ingest, paths)
			cfg.DryRun = cfg.DryRun || dryRun

			var repo seeder.LexiconRepo
			if !cfg.DryRun {
				if err := e.cfg.RequireDatabase(); err != nil {
					return err
				}
				pool, err := postgres.NewPool(ctx, e.cfg.Database)
				if err != nil {
					return fmt.Errorf("connect to database: %w", err)
				}
				defer pool.Close()
				repo = lexicon.New(pool, postgres.NewTxManager(pool))
			}

			pipeline := seeder.NewPipeline(e.log, repo, cfg)
			if err := pipeline.Run(ctx, phases); err != nil {
				return fmt.Errorf("pipeline failed: %w", err)
			}

			printResults(cmd.OutOrStdout(), pipeline.Results())
			if pipeline.HasErrors() {
				return errPartial
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&phases, "phase", "p", nil, "phases to run (default: all)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse datasets without writing to the database")
	cmd.Flags().BoolVar(&fetch, "fetch", false, "download missing datasets first")
	return cmd
}

func printResults(w io.Writer, results map[string]seeder.PhaseResult) {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "%-9s %8s %8s %8s %9s  %s\n", "PHASE", "PARSED", "WRITTEN", "SKIPPED", "ANOMALIES", "STATUS")
	for _, name := range names {
		r := results[name]
		status := "ok (" + r.Duration.Round(time.Millisecond).String() + ")"
		if r.Err != nil {
			status = "failed: " + r.Err.Error()
		}
		fmt.Fprintf(w, "%-9s %8d %8d %8d %9d  %s\n", name, r.Parsed, r.Inserted, r.Skipped, r.Anomalies, status)
	}
}
