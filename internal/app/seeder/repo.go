// Package seeder orchestrates loading the EDRDG datasets into the lexicon
// store: one phase per dataset, each streaming parsed records into batched
// upserts.
package seeder

import (
	"context"

	"github.com/heartmarshall/nihongo-dict/internal/domain"
)

// LexiconRepo is the batch write contract consumed by the pipeline.
// Implemented by lexicon.Repo. Every method is an idempotent upsert and
// returns the number of rows written.
type LexiconRepo interface {
	UpsertEntries(ctx context.Context, entries []domain.Entry) (int, error)
	UpsertCharacters(ctx context.Context, chars []domain.Character) (int, error)
	UpsertKanjiRadicals(ctx context.Context, items []domain.KanjiRadicals) (int, error)
	UpsertRadicalGroups(ctx context.Context, groups []domain.RadicalGroup) (int, error)
}
