package main

import (
	"bufio"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/heartmarshall/nihongo-dict/internal/adapter/provider/edrdg"
	"github.com/heartmarshall/nihongo-dict/internal/domain"
	"github.com/heartmarshall/nihongo-dict/internal/export"
	"github.com/heartmarshall/nihongo-dict/internal/seeder/jmdict"
	"github.com/heartmarshall/nihongo-dict/internal/seeder/kanjidic"
	"github.com/heartmarshall/nihongo-dict/internal/seeder/radk"
)

func newParseCmd(e *env) *cobra.Command {
	var (
		pretty bool
		strict bool
		lang   string
	)

	cmd := &cobra.Command{
		Use:   "parse DATASET [FILE]",
		Short: "Parse a dataset and write JSON Lines to stdout",
		Long: `Parse a dataset and write one JSON object per line to stdout.

FILE defaults to the dataset's location under data_dir. Malformed records
are logged and skipped unless --strict is given; scope anomalies are logged
as warnings.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			datasets, err := edrdg.Select(edrdg.FromConfig(e.cfg.Datasets), args[:1])
			if err != nil {
				return err
			}
			path := e.fetcher().Path(datasets[0])
			if len(args) == 2 {
				path = args[1]
			}
			if lang == "" {
				lang = e.cfg.Ingest.MeaningLanguage
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			out := bufio.NewWriter(cmd.OutOrStdout())
			w := export.NewWriter(out, pretty || e.cfg.Export.Pretty)
			strict = strict || e.cfg.Ingest.StopOnStructural

			var skipped int
			switch datasets[0].Name {
			case edrdg.JMdict.Name:
				p := jmdict.NewParser(e.log, domain.LogSink{Log: e.log})
				skipped, err = drain(e.log, p.Entries(f), w.WriteEntry, strict)
				st := p.Stats()
				e.log.Info("jmdict parsed",
					slog.Int("entries", st.Entries),
					slog.Int("kana_only", st.KanaOnly),
					slog.Int("records", st.Records),
					slog.Int("anomalies", st.Anomalies),
				)
			case edrdg.Kanjidic.Name:
				p := kanjidic.NewParser(e.log, lang)
				skipped, err = drain(e.log, p.Characters(f), w.WriteCharacter, strict)
				if h := p.Header(); h != nil {
					e.log.Info("kanjidic parsed",
						slog.String("database_version", h.DatabaseVersion),
						slog.Int("characters", p.Stats().Characters),
					)
				}
			default:
				enc, encErr := htmlindex.Get(e.cfg.Ingest.RadicalEncoding)
				if encErr != nil {
					return fmt.Errorf("radical encoding: %w", encErr)
				}
				r := radk.NewReader(radk.WithEncoding(enc))
				if datasets[0].Name == edrdg.Kradfile.Name {
					skipped, err = drain(e.log, r.Kanji(f), w.WriteKanjiRadicals, strict)
				} else {
					skipped, err = drain(e.log, r.Groups(f), w.WriteRadicalGroup, strict)
				}
			}

			if flushErr := out.Flush(); err == nil {
				err = flushErr
			}
			e.log.Info("parse finished",
				slog.String("dataset", datasets[0].Name),
				slog.Int("written", w.Count()),
				slog.Int("skipped", skipped),
			)
			return err
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent each JSON value")
	cmd.Flags().BoolVar(&strict, "strict", false, "stop at the first malformed record")
	cmd.Flags().StringVar(&lang, "lang", "", "KANJIDIC2 meaning language (default: ingest.meaning_language)")
	return cmd
}

// drain writes every value of seq. Structural errors are logged and the
// record skipped unless strict; any other error stops.
func drain[T any](log *slog.Logger, seq iter.Seq2[T, error], write func(T) error, strict bool) (int, error) {
	skipped := 0
	for v, err := range seq {
		if err != nil {
			if errors.Is(err, domain.ErrStructural) && !strict {
				skipped++
				log.Warn("record skipped", slog.String("error", err.Error()))
				continue
			}
			return skipped, err
		}
		if err := write(v); err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}
