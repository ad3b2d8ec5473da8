package testhelper

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/nihongo-dict/internal/domain"
)

var seqCounter atomic.Int64

// UniqueSeq returns an ent_seq that no other test in the run uses. The
// prefix keeps it clear of real JMdict sequence numbers.
func UniqueSeq() string {
	return "t" + strconv.FormatInt(seqCounter.Add(1), 10) + "-" + uuid.New().String()[:8]
}

// SeedEntry inserts a bare lex_entries row and returns its id.
func SeedEntry(t *testing.T, pool *pgxpool.Pool, seq string, kanaOnly bool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO lex_entries (id, ent_seq, kana_only) VALUES ($1, $2, $3)`,
		id, seq, kanaOnly,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedEntry insert: %v", err)
	}
	return id
}

// SampleEntry builds an entry with two written forms, one restricted
// reading and one unrestricted reading.
func SampleEntry(seq string) domain.Entry {
	rec := func(form, reading string, gloss string) *domain.ResolvedRecord {
		return &domain.ResolvedRecord{
			Form:        form,
			Reading:     reading,
			TrueReading: true,
			SensePayload: domain.SensePayload{
				PartsOfSpeech: []string{"adj-na"},
				Glosses:       map[string]domain.Gloss{gloss: {Language: "eng"}},
			},
		}
	}
	return domain.Entry{
		Seq: seq,
		Shape: domain.NewWithForms([]*domain.ResolvedRecord{
			rec("明白", "めいはく", "obvious"),
			rec("明白", "あからさま", "plain"),
			rec("偸閑", "あからさま", "plain"),
		}),
	}
}
