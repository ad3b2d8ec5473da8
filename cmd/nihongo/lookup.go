package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/nihongo-dict/internal/adapter/postgres"
	"github.com/heartmarshall/nihongo-dict/internal/adapter/postgres/lexicon"
)

func newLookupCmd(e *env) *cobra.Command {
	var kanji, radicals bool

	cmd := &cobra.Command{
		Use:   "lookup TEXT",
		Short: "Query the seeded database",
		Long: `Query the seeded database.

By default TEXT is matched against record forms and readings. With --kanji
it is a single character literal; with --radicals it is a comma separated
list of radicals and every kanji containing all of them is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if kanji && radicals {
				return fmt.Errorf("--kanji and --radicals are mutually exclusive")
			}
			if err := e.cfg.RequireDatabase(); err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := postgres.NewPool(ctx, e.cfg.Database)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()
			repo := lexicon.New(pool, postgres.NewTxManager(pool))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)

			switch {
			case kanji:
				c, err := repo.CharacterByLiteral(ctx, args[0])
				if err != nil {
					return err
				}
				return enc.Encode(c)
			case radicals:
				found, err := repo.KanjiWithRadicals(ctx, strings.Split(args[0], ","))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(found, ""))
				return err
			default:
				results, err := repo.RecordsByText(ctx, args[0])
				if err != nil {
					return err
				}
				for _, r := range results {
					if err := enc.Encode(map[string]any{"seq": r.Seq, "record": r.Record}); err != nil {
						return err
					}
				}
				return nil
			}
		},
	}

	cmd.Flags().BoolVar(&kanji, "kanji", false, "look up a KANJIDIC2 character")
	cmd.Flags().BoolVar(&radicals, "radicals", false, "find kanji containing every listed radical")
	return cmd
}
