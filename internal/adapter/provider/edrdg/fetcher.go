// Package edrdg downloads and unpacks the EDRDG dictionary files.
package edrdg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	getter "github.com/hashicorp/go-getter"
)

// Dataset is one downloadable source file. URL names the compressed
// resource; File is the name of the decompressed copy under the data dir.
type Dataset struct {
	Name string
	URL  string
	File string
}

// Known datasets, as published by the EDRDG.
var (
	JMdict = Dataset{
		Name: "jmdict",
		URL:  "http://ftp.edrdg.org/pub/Nihongo/JMdict_e_examp.gz",
		File: "JMdict_e_examp.xml",
	}
	Kanjidic = Dataset{
		Name: "kanjidic",
		URL:  "http://www.edrdg.org/kanjidic/kanjidic2.xml.gz",
		File: "kanjidic2.xml",
	}
	Kradfile = Dataset{
		Name: "kradfile",
		URL:  "http://ftp.edrdg.org/pub/Nihongo/kradfile.gz",
		File: "kradfile",
	}
	Radkfile = Dataset{
		Name: "radkfile",
		URL:  "http://ftp.edrdg.org/pub/Nihongo/radkfile.gz",
		File: "radkfile",
	}
)

// Datasets lists every known dataset in ingest order.
func Datasets() []Dataset {
	return []Dataset{JMdict, Kanjidic, Kradfile, Radkfile}
}

// Fetcher downloads datasets into a local directory. Sources ending in .gz
// are decompressed on the fly.
type Fetcher struct {
	dataDir string
	force   bool
	getters map[string]getter.Getter
	log     *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithForce re-downloads files that already exist locally.
func WithForce(force bool) Option {
	return func(f *Fetcher) { f.force = force }
}

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		hg := &getter.HttpGetter{Client: &http.Client{Timeout: d}}
		f.getters["http"] = hg
		f.getters["https"] = hg
	}
}

// NewFetcher creates a Fetcher writing into dataDir.
func NewFetcher(dataDir string, logger *slog.Logger, opts ...Option) *Fetcher {
	hg := &getter.HttpGetter{Client: &http.Client{Timeout: 10 * time.Minute}}
	f := &Fetcher{
		dataDir: dataDir,
		getters: map[string]getter.Getter{
			"http":  hg,
			"https": hg,
			"file":  new(getter.FileGetter),
		},
		log: logger.With("adapter", "edrdg"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns where ds lives once fetched.
func (f *Fetcher) Path(ds Dataset) string {
	return filepath.Join(f.dataDir, ds.File)
}

// Fetch downloads ds unless a local copy exists, and returns its path.
func (f *Fetcher) Fetch(ctx context.Context, ds Dataset) (string, error) {
	dst := f.Path(ds)

	if !f.force {
		if _, err := os.Stat(dst); err == nil {
			f.log.InfoContext(ctx, "dataset already present", slog.String("dataset", ds.Name), slog.String("path", dst))
			return dst, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("edrdg: stat %s: %w", dst, err)
		}
	}

	if err := os.MkdirAll(f.dataDir, 0o755); err != nil {
		return "", fmt.Errorf("edrdg: create data dir: %w", err)
	}

	start := time.Now()
	f.log.InfoContext(ctx, "fetching dataset", slog.String("dataset", ds.Name), slog.String("url", ds.URL))

	client := &getter.Client{
		Ctx:     ctx,
		Src:     ds.URL,
		Dst:     dst,
		Mode:    getter.ClientModeFile,
		Getters: f.getters,
	}
	if err := client.Get(); err != nil {
		_ = os.Remove(dst)
		f.log.ErrorContext(ctx, "fetch failed", slog.String("dataset", ds.Name), slog.String("error", err.Error()))
		return "", fmt.Errorf("edrdg: fetch %s: %w", ds.Name, err)
	}

	f.log.InfoContext(ctx, "dataset fetched",
		slog.String("dataset", ds.Name),
		slog.String("path", dst),
		slog.Duration("duration", time.Since(start)),
	)
	return dst, nil
}

// FetchAll fetches every dataset in order, stopping at the first failure.
func (f *Fetcher) FetchAll(ctx context.Context, datasets []Dataset) (map[string]string, error) {
	paths := make(map[string]string, len(datasets))
	for _, ds := range datasets {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		p, err := f.Fetch(ctx, ds)
		if err != nil {
			return paths, err
		}
		paths[ds.Name] = p
	}
	return paths, nil
}
