package seeder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/heartmarshall/nihongo-dict/internal/domain"
	"github.com/heartmarshall/nihongo-dict/internal/seeder/jmdict"
	"github.com/heartmarshall/nihongo-dict/internal/seeder/kanjidic"
	"github.com/heartmarshall/nihongo-dict/internal/seeder/radk"
	"github.com/heartmarshall/nihongo-dict/pkg/ctxutil"
)

// Phase names.
const (
	PhaseJMdict   = "jmdict"
	PhaseKanjidic = "kanjidic"
	PhaseKradfile = "kradfile"
	PhaseRadkfile = "radkfile"
)

// allPhases defines the canonical phase order.
var allPhases = []string{PhaseJMdict, PhaseKanjidic, PhaseKradfile, PhaseRadkfile}

// Phases returns every phase name in canonical order.
func Phases() []string {
	return slices.Clone(allPhases)
}

const defaultBatchSize = 500

// PhaseResult holds the outcome of a single pipeline phase.
type PhaseResult struct {
	Parsed    int
	Inserted  int
	Skipped   int // records dropped for structural errors
	Anomalies int
	Duration  time.Duration
	Err       error
}

// Pipeline runs the dataset phases. Phases are independent of each other and
// run concurrently, bounded by Config.Workers.
type Pipeline struct {
	log         *slog.Logger
	repo        LexiconRepo
	cfg         Config
	diagnostics *domain.Collector

	mu      sync.Mutex
	results map[string]PhaseResult
}

// NewPipeline creates a new Pipeline. repo may be nil for dry runs.
func NewPipeline(log *slog.Logger, repo LexiconRepo, cfg Config) *Pipeline {
	return &Pipeline{
		log:         log.With("component", "seeder"),
		repo:        repo,
		cfg:         cfg,
		diagnostics: &domain.Collector{},
		results:     make(map[string]PhaseResult),
	}
}

// Results returns phase results after Run completes.
func (p *Pipeline) Results() map[string]PhaseResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return maps.Clone(p.results)
}

// Diagnostics returns every scope anomaly reported during Run.
func (p *Pipeline) Diagnostics() []domain.ScopeAnomaly {
	return p.diagnostics.Anomalies()
}

// HasErrors returns true if any phase failed or skipped records.
func (p *Pipeline) HasErrors() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.results {
		if r.Err != nil || r.Skipped > 0 {
			return true
		}
	}
	return false
}

// Run executes the pipeline. If phases is non-empty, only the listed phases
// run. A failing phase does not stop the others; its error lands in Results.
// Run itself fails only on an unknown phase name or a cancelled context.
func (p *Pipeline) Run(ctx context.Context, phases []string) error {
	toRun, err := selectPhases(phases)
	if err != nil {
		return err
	}
	if p.repo == nil && !p.cfg.DryRun {
		return errors.New("seeder: repository is required unless dry run")
	}

	if _, ok := ctxutil.RunIDFromCtx(ctx); !ok {
		ctx = ctxutil.WithRunID(ctx, uuid.New())
	}

	var g errgroup.Group
	g.SetLimit(max(p.cfg.Workers, 1))

	for _, phase := range toRun {
		g.Go(func() error {
			phaseCtx := ctxutil.WithPhase(ctx, phase)
			start := time.Now()
			p.log.InfoContext(phaseCtx, "starting phase")

			result := p.runPhase(phaseCtx, phase)
			result.Duration = time.Since(start)
			p.record(phase, result)

			if result.Err != nil {
				p.log.WarnContext(phaseCtx, "phase failed",
					slog.String("error", result.Err.Error()),
					slog.Duration("duration", result.Duration),
				)
			} else {
				p.log.InfoContext(phaseCtx, "phase completed",
					slog.Int("parsed", result.Parsed),
					slog.Int("inserted", result.Inserted),
					slog.Int("skipped", result.Skipped),
					slog.Int("anomalies", result.Anomalies),
					slog.Duration("duration", result.Duration),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	p.log.InfoContext(ctx, "pipeline completed",
		slog.Int("phases_run", len(toRun)),
		slog.Int("anomalies", p.diagnostics.Len()),
		slog.Bool("dry_run", p.cfg.DryRun),
	)
	return ctx.Err()
}

func selectPhases(phases []string) ([]string, error) {
	if len(phases) == 0 {
		return allPhases, nil
	}
	for _, ph := range phases {
		if !slices.Contains(allPhases, ph) {
			return nil, fmt.Errorf("seeder: unknown phase %q (known: %v): %w", ph, allPhases, domain.ErrValidation)
		}
	}
	var filtered []string
	for _, ph := range allPhases {
		if slices.Contains(phases, ph) {
			filtered = append(filtered, ph)
		}
	}
	return filtered, nil
}

func (p *Pipeline) record(phase string, r PhaseResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results[phase] = r
}

func (p *Pipeline) runPhase(ctx context.Context, phase string) PhaseResult {
	path := p.cfg.Paths[phase]
	if path == "" {
		return PhaseResult{Err: fmt.Errorf("%s path not configured", phase)}
	}

	f, err := os.Open(path)
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("open %s: %w", phase, err)}
	}
	defer f.Close()

	switch phase {
	case PhaseJMdict:
		return p.runJMdict(ctx, f)
	case PhaseKanjidic:
		return p.runKanjidic(ctx, f)
	case PhaseKradfile, PhaseRadkfile:
		return p.runRadicals(ctx, phase, f)
	}
	return PhaseResult{Err: fmt.Errorf("unhandled phase %s", phase)}
}

func (p *Pipeline) runJMdict(ctx context.Context, r io.Reader) PhaseResult {
	// The parser and the log sink have no context; tag their output here.
	log := p.log.With("phase", PhaseJMdict)
	parser := jmdict.NewParser(log, domain.Tee(p.diagnostics, domain.LogSink{Log: log}))

	result := consume(ctx, p, parser.Entries(r), func(ctx context.Context, batch []domain.Entry) (int, error) {
		return p.repo.UpsertEntries(ctx, batch)
	})

	stats := parser.Stats()
	result.Anomalies = stats.Anomalies
	p.log.InfoContext(ctx, "jmdict parsed",
		slog.Int("entries", stats.Entries),
		slog.Int("kana_only", stats.KanaOnly),
		slog.Int("records", stats.Records),
	)
	return result
}

func (p *Pipeline) runKanjidic(ctx context.Context, r io.Reader) PhaseResult {
	parser := kanjidic.NewParser(p.log.With("phase", PhaseKanjidic), p.cfg.MeaningLanguage)

	result := consume(ctx, p, parser.Characters(r), func(ctx context.Context, batch []domain.Character) (int, error) {
		return p.repo.UpsertCharacters(ctx, batch)
	})

	stats := parser.Stats()
	p.log.InfoContext(ctx, "kanjidic parsed",
		slog.Int("characters", stats.Characters),
		slog.Int("with_meaning", stats.WithMeaning),
	)
	return result
}

func (p *Pipeline) runRadicals(ctx context.Context, phase string, r io.Reader) PhaseResult {
	label := p.cfg.RadicalEncoding
	if label == "" {
		label = "euc-jp"
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("radical encoding %q: %w", label, err)}
	}
	reader := radk.NewReader(radk.WithEncoding(enc))

	if phase == PhaseKradfile {
		return consume(ctx, p, reader.Kanji(r), func(ctx context.Context, batch []domain.KanjiRadicals) (int, error) {
			return p.repo.UpsertKanjiRadicals(ctx, batch)
		})
	}
	return consume(ctx, p, reader.Groups(r), func(ctx context.Context, batch []domain.RadicalGroup) (int, error) {
		return p.repo.UpsertRadicalGroups(ctx, batch)
	})
}

// consume drains seq into batches of Config.BatchSize and hands each to
// write, or drops them in a dry run. Structural errors skip the offending record unless
// StopOnStructural is set; any other error ends the phase. Cancellation is
// checked between batches.
func consume[T any](ctx context.Context, p *Pipeline, seq iter.Seq2[T, error], write func(context.Context, []T) (int, error)) PhaseResult {
	size := p.cfg.BatchSize
	if size <= 0 {
		size = defaultBatchSize
	}

	var result PhaseResult
	batch := make([]T, 0, size)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.cfg.DryRun {
			batch = batch[:0]
			return nil
		}
		n, err := write(ctx, batch)
		result.Inserted += n
		batch = batch[:0]
		return err
	}

	for item, err := range seq {
		if err != nil {
			if errors.Is(err, domain.ErrStructural) && !p.cfg.StopOnStructural {
				result.Skipped++
				p.log.WarnContext(ctx, "record skipped", slog.String("error", err.Error()))
				continue
			}
			result.Err = err
			break
		}

		result.Parsed++
		batch = append(batch, item)
		if len(batch) == size {
			if err := flush(); err != nil {
				result.Err = fmt.Errorf("write batch: %w", err)
				return result
			}
		}
	}

	if result.Err != nil {
		return result
	}
	if err := flush(); err != nil {
		result.Err = fmt.Errorf("write batch: %w", err)
	}
	return result
}
