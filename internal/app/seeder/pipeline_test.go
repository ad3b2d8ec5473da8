package seeder

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/heartmarshall/nihongo-dict/internal/config"
	"github.com/heartmarshall/nihongo-dict/internal/domain"
)

// mockRepo records calls to verify pipeline behavior.
type mockRepo struct {
	mu sync.Mutex

	recordsWritten    int
	charactersWritten int
	kanjiWritten      int
	groupsWritten     int

	upsertEntriesErr    error
	upsertCharactersErr error

	batchSizes map[string][]int
	callLog    []string
}

func newMockRepo() *mockRepo {
	return &mockRepo{batchSizes: make(map[string][]int)}
}

func (m *mockRepo) logCall(name string, size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callLog = append(m.callLog, name)
	m.batchSizes[name] = append(m.batchSizes[name], size)
}

func (m *mockRepo) UpsertEntries(_ context.Context, entries []domain.Entry) (int, error) {
	m.logCall("UpsertEntries", len(entries))
	if m.upsertEntriesErr != nil {
		return 0, m.upsertEntriesErr
	}
	n := 0
	for _, e := range entries {
		n += len(e.Records())
	}
	m.mu.Lock()
	m.recordsWritten += n
	m.mu.Unlock()
	return n, nil
}

func (m *mockRepo) UpsertCharacters(_ context.Context, chars []domain.Character) (int, error) {
	m.logCall("UpsertCharacters", len(chars))
	if m.upsertCharactersErr != nil {
		return 0, m.upsertCharactersErr
	}
	m.mu.Lock()
	m.charactersWritten += len(chars)
	m.mu.Unlock()
	return len(chars), nil
}

func (m *mockRepo) UpsertKanjiRadicals(_ context.Context, items []domain.KanjiRadicals) (int, error) {
	m.logCall("UpsertKanjiRadicals", len(items))
	m.mu.Lock()
	m.kanjiWritten += len(items)
	m.mu.Unlock()
	return len(items), nil
}

func (m *mockRepo) UpsertRadicalGroups(_ context.Context, groups []domain.RadicalGroup) (int, error) {
	m.logCall("UpsertRadicalGroups", len(groups))
	m.mu.Lock()
	m.groupsWritten += len(groups)
	m.mu.Unlock()
	return len(groups), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fixture resolves a testdata file of one of the dataset parsers.
func fixture(t *testing.T, pkg, name string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "seeder", pkg, "testdata", name)
}

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Paths: map[string]string{
			PhaseJMdict:   fixture(t, "jmdict", "sample.xml"),
			PhaseKanjidic: fixture(t, "kanjidic", "sample.xml"),
			PhaseKradfile: fixture(t, "radk", "kradfile.txt"),
			PhaseRadkfile: fixture(t, "radk", "radkfile.txt"),
		},
		BatchSize:       2,
		Workers:         2,
		MeaningLanguage: "en",
		RadicalEncoding: "utf-8",
	}
}

func TestPipeline_AllPhases(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newMockRepo()
	p := NewPipeline(testLogger(), repo, testConfig(t))

	require.NoError(t, p.Run(context.Background(), nil))

	results := p.Results()
	require.Len(t, results, 4)

	jm := results[PhaseJMdict]
	require.NoError(t, jm.Err)
	assert.Equal(t, 4, jm.Parsed)
	assert.Equal(t, 1, jm.Skipped)
	assert.Equal(t, 1, jm.Anomalies)
	assert.Equal(t, 6, jm.Inserted)

	kd := results[PhaseKanjidic]
	require.NoError(t, kd.Err)
	assert.Equal(t, 3, kd.Parsed)
	assert.Equal(t, 1, kd.Skipped)
	assert.Equal(t, 3, kd.Inserted)

	for _, phase := range []string{PhaseKradfile, PhaseRadkfile} {
		r := results[phase]
		require.NoError(t, r.Err, phase)
		assert.Equal(t, 3, r.Parsed, phase)
		assert.Equal(t, 1, r.Skipped, phase)
		assert.Equal(t, 3, r.Inserted, phase)
	}

	assert.Equal(t, 6, repo.recordsWritten)
	assert.Equal(t, 3, repo.charactersWritten)
	assert.Equal(t, 3, repo.kanjiWritten)
	assert.Equal(t, 3, repo.groupsWritten)

	diags := p.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, domain.AnomalyUnknownFormInSense, diags[0].Kind)

	// Skipped records count as errors for the exit status.
	assert.True(t, p.HasErrors())
}

func TestPipeline_BatchesBySize(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newMockRepo()
	p := NewPipeline(testLogger(), repo, testConfig(t))

	require.NoError(t, p.Run(context.Background(), []string{PhaseKradfile, PhaseJMdict}))

	assert.Equal(t, []int{2, 1}, repo.batchSizes["UpsertKanjiRadicals"])
	assert.Equal(t, []int{2, 2}, repo.batchSizes["UpsertEntries"])
}

func TestPipeline_DryRunNoRepoWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := testConfig(t)
	cfg.DryRun = true

	repo := newMockRepo()
	p := NewPipeline(testLogger(), repo, cfg)
	require.NoError(t, p.Run(context.Background(), nil))

	assert.Empty(t, repo.callLog)
	for phase, r := range p.Results() {
		assert.NoError(t, r.Err, phase)
		assert.Positive(t, r.Parsed, phase)
		assert.Zero(t, r.Inserted, phase)
	}
}

func TestPipeline_DryRunWithoutRepo(t *testing.T) {
	cfg := testConfig(t)
	cfg.DryRun = true

	p := NewPipeline(testLogger(), nil, cfg)
	require.NoError(t, p.Run(context.Background(), []string{PhaseJMdict}))
	assert.Equal(t, 4, p.Results()[PhaseJMdict].Parsed)
}

func TestPipeline_NilRepoRequiresDryRun(t *testing.T) {
	p := NewPipeline(testLogger(), nil, testConfig(t))
	require.Error(t, p.Run(context.Background(), nil))
	assert.Empty(t, p.Results())
}

func TestPipeline_ErrorIsolation(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newMockRepo()
	repo.upsertCharactersErr = errors.New("kanjidic db error")

	p := NewPipeline(testLogger(), repo, testConfig(t))
	require.NoError(t, p.Run(context.Background(), nil))

	results := p.Results()
	require.Len(t, results, 4)
	assert.ErrorIs(t, results[PhaseKanjidic].Err, repo.upsertCharactersErr)
	assert.Zero(t, results[PhaseKanjidic].Inserted)

	for _, phase := range []string{PhaseJMdict, PhaseKradfile, PhaseRadkfile} {
		assert.NoError(t, results[phase].Err, phase)
	}
	assert.True(t, p.HasErrors())
}

func TestPipeline_StopOnStructural(t *testing.T) {
	cfg := testConfig(t)
	cfg.StopOnStructural = true
	cfg.BatchSize = 10

	repo := newMockRepo()
	p := NewPipeline(testLogger(), repo, cfg)
	require.NoError(t, p.Run(context.Background(), []string{PhaseKradfile}))

	r := p.Results()[PhaseKradfile]
	require.ErrorIs(t, r.Err, domain.ErrStructural)
	assert.Equal(t, 2, r.Parsed)
	assert.Zero(t, r.Skipped)
	// The batch collected before the bad line is not written.
	assert.Zero(t, r.Inserted)
}

func TestPipeline_PhaseFilter(t *testing.T) {
	repo := newMockRepo()
	p := NewPipeline(testLogger(), repo, testConfig(t))

	require.NoError(t, p.Run(context.Background(), []string{PhaseRadkfile}))

	results := p.Results()
	require.Len(t, results, 1)
	assert.Contains(t, results, PhaseRadkfile)
	assert.Zero(t, repo.recordsWritten)
}

func TestPipeline_UnknownPhase(t *testing.T) {
	p := NewPipeline(testLogger(), newMockRepo(), testConfig(t))

	err := p.Run(context.Background(), []string{"jmdict", "wiktionary"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, p.Results())
}

func TestPipeline_MissingPath(t *testing.T) {
	cfg := testConfig(t)
	delete(cfg.Paths, PhaseKanjidic)
	cfg.Paths[PhaseKradfile] = filepath.Join(t.TempDir(), "absent")

	p := NewPipeline(testLogger(), newMockRepo(), cfg)
	require.NoError(t, p.Run(context.Background(), nil))

	results := p.Results()
	assert.ErrorContains(t, results[PhaseKanjidic].Err, "path not configured")
	assert.ErrorIs(t, results[PhaseKradfile].Err, os.ErrNotExist)
	assert.NoError(t, results[PhaseJMdict].Err)
}

func TestPipeline_CancelledContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := newMockRepo()
	p := NewPipeline(testLogger(), repo, testConfig(t))

	err := p.Run(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, repo.callLog)
	for phase, r := range p.Results() {
		assert.ErrorIs(t, r.Err, context.Canceled, phase)
	}
}

func TestNewConfig(t *testing.T) {
	ingest := config.IngestConfig{
		BatchSize:        100,
		Workers:          3,
		MeaningLanguage:  "fr",
		RadicalEncoding:  "euc-jp",
		StopOnStructural: true,
		DryRun:           true,
	}
	paths := map[string]string{PhaseJMdict: "/data/JMdict_e_examp.xml"}

	cfg := NewConfig(ingest, paths)

	assert.Equal(t, Config{
		Paths:            paths,
		BatchSize:        100,
		Workers:          3,
		MeaningLanguage:  "fr",
		RadicalEncoding:  "euc-jp",
		StopOnStructural: true,
		DryRun:           true,
	}, cfg)
}

func TestPhases(t *testing.T) {
	got := Phases()
	assert.Equal(t, []string{"jmdict", "kanjidic", "kradfile", "radkfile"}, got)

	got[0] = "mutated"
	assert.Equal(t, PhaseJMdict, Phases()[0])
}
