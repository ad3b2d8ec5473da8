// Package lexicon persists resolved JMdict entries, KANJIDIC2 characters and
// the radical cross-reference tables. Writers are idempotent upserts so a
// dataset can be reseeded over an existing database.
package lexicon

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/nihongo-dict/internal/adapter/postgres"
	"github.com/heartmarshall/nihongo-dict/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides lexicon persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	txm  *postgres.TxManager
}

// New creates a new lexicon repository.
func New(pool *pgxpool.Pool, txm *postgres.TxManager) *Repo {
	return &Repo{pool: pool, txm: txm}
}

// ---------------------------------------------------------------------------
// Batch writers (pgx.Batch API)
// ---------------------------------------------------------------------------

// UpsertEntries writes entries and replaces their records. Each entry row is
// keyed by ent_seq; its previous records are deleted and the current ones
// inserted in the same transaction. Returns the number of records written.
func (r *Repo) UpsertEntries(ctx context.Context, entries []domain.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	var written int
	err := r.txm.RunInTx(ctx, func(ctx context.Context) error {
		batch := &pgx.Batch{}
		countRecord := func(ct pgconn.CommandTag) error {
			written += int(ct.RowsAffected())
			return nil
		}

		for _, e := range entries {
			batch.Queue(
				`INSERT INTO lex_entries (id, ent_seq, kana_only)
				 VALUES ($1, $2, $3)
				 ON CONFLICT (ent_seq) DO UPDATE
				 SET kana_only = EXCLUDED.kana_only, updated_at = now()`,
				uuid.New(), e.Seq, e.KanaOnly(),
			)
			batch.Queue(
				`DELETE FROM lex_records
				 WHERE entry_id = (SELECT id FROM lex_entries WHERE ent_seq = $1)`,
				e.Seq,
			)

			for pos, rec := range e.Records() {
				payload, err := json.Marshal(rec)
				if err != nil {
					return fmt.Errorf("entry %s: encode record %q/%q: %w", e.Seq, rec.Form, rec.Reading, err)
				}
				batch.Queue(
					`INSERT INTO lex_records (id, entry_id, position, form, reading, true_reading, payload)
					 SELECT $1, id, $2, $3, $4, $5, $6 FROM lex_entries WHERE ent_seq = $7`,
					uuid.New(), pos, rec.Form, rec.Reading, rec.TrueReading, payload, e.Seq,
				).Exec(countRecord)
			}
		}

		q := postgres.QuerierFromCtx(ctx, r.pool)
		if err := q.SendBatch(ctx, batch).Close(); err != nil {
			return postgres.MapError(err, "entry batch", entries[0].Seq)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// UpsertCharacters writes characters keyed by literal.
func (r *Repo) UpsertCharacters(ctx context.Context, chars []domain.Character) (int, error) {
	if len(chars) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, c := range chars {
		payload, err := json.Marshal(c)
		if err != nil {
			return 0, fmt.Errorf("character %s: encode: %w", c.Literal, err)
		}
		batch.Queue(
			`INSERT INTO kanji_characters (literal, grade, stroke_count, frequency, jlpt, payload)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (literal) DO UPDATE
			 SET grade = EXCLUDED.grade, stroke_count = EXCLUDED.stroke_count,
			     frequency = EXCLUDED.frequency, jlpt = EXCLUDED.jlpt,
			     payload = EXCLUDED.payload, updated_at = now()`,
			c.Literal, c.Grade, c.StrokeCount, c.Frequency, c.JLPT, payload,
		)
	}

	n, err := postgres.SendBatchExec(ctx, postgres.QuerierFromCtx(ctx, r.pool), batch)
	if err != nil {
		return n, postgres.MapError(err, "character batch", chars[0].Literal)
	}
	return n, nil
}

// UpsertKanjiRadicals writes KRADFILE decompositions keyed by kanji.
func (r *Repo) UpsertKanjiRadicals(ctx context.Context, items []domain.KanjiRadicals) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, k := range items {
		batch.Queue(
			`INSERT INTO kanji_radicals (kanji, radicals) VALUES ($1, $2)
			 ON CONFLICT (kanji) DO UPDATE SET radicals = EXCLUDED.radicals`,
			k.Kanji, k.Radicals,
		)
	}

	n, err := postgres.SendBatchExec(ctx, postgres.QuerierFromCtx(ctx, r.pool), batch)
	if err != nil {
		return n, postgres.MapError(err, "kanji_radicals batch", items[0].Kanji)
	}
	return n, nil
}

// UpsertRadicalGroups writes RADKFILE groups keyed by radical.
func (r *Repo) UpsertRadicalGroups(ctx context.Context, groups []domain.RadicalGroup) (int, error) {
	if len(groups) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, g := range groups {
		batch.Queue(
			`INSERT INTO radical_groups (radical, strokes, glyph, kanji) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (radical) DO UPDATE
			 SET strokes = EXCLUDED.strokes, glyph = EXCLUDED.glyph, kanji = EXCLUDED.kanji`,
			g.Radical, g.Strokes, g.Glyph, g.Kanji,
		)
	}

	n, err := postgres.SendBatchExec(ctx, postgres.QuerierFromCtx(ctx, r.pool), batch)
	if err != nil {
		return n, postgres.MapError(err, "radical_group batch", groups[0].Radical)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// LookupResult is one stored record together with its entry sequence.
type LookupResult struct {
	Seq    string
	Record domain.ResolvedRecord
}

// CountRecords returns the number of stored records.
func (r *Repo) CountRecords(ctx context.Context) (int, error) {
	query, args, err := psql.Select("count(*)").From("lex_records").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int
	if err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, postgres.MapError(err, "lex_records", "count")
	}
	return n, nil
}

// RecordsByText returns every record whose form or reading equals text,
// ordered by entry sequence and record position.
func (r *Repo) RecordsByText(ctx context.Context, text string) ([]LookupResult, error) {
	query, args, err := psql.
		Select("e.ent_seq", "r.payload").
		From("lex_records r").
		Join("lex_entries e ON e.id = r.entry_id").
		Where(sq.Or{sq.Eq{"r.form": text}, sq.Eq{"r.reading": text}}).
		OrderBy("e.ent_seq", "r.position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lookup query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "lex_records", text)
	}
	defer rows.Close()

	var out []LookupResult
	for rows.Next() {
		var (
			res     LookupResult
			payload []byte
		)
		if err := rows.Scan(&res.Seq, &payload); err != nil {
			return nil, postgres.MapError(err, "lex_records", text)
		}
		if err := json.Unmarshal(payload, &res.Record); err != nil {
			return nil, fmt.Errorf("entry %s: decode record: %w", res.Seq, err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "lex_records", text)
	}
	return out, nil
}

// CharacterByLiteral returns one character. Returns domain.ErrNotFound if
// the literal is not stored.
func (r *Repo) CharacterByLiteral(ctx context.Context, literal string) (*domain.Character, error) {
	query, args, err := psql.
		Select("payload").
		From("kanji_characters").
		Where(sq.Eq{"literal": literal}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build character query: %w", err)
	}

	var payload []byte
	if err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&payload); err != nil {
		return nil, postgres.MapError(err, "character", literal)
	}

	var c domain.Character
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("character %s: decode: %w", literal, err)
	}
	return &c, nil
}

// KanjiWithRadicals returns every kanji whose decomposition contains all the
// given radicals, in code point order.
func (r *Repo) KanjiWithRadicals(ctx context.Context, radicals []string) ([]string, error) {
	if len(radicals) == 0 {
		return nil, nil
	}

	query, args, err := psql.
		Select("kanji").
		From("kanji_radicals").
		Where(sq.Expr("radicals @> ?", radicals)).
		OrderBy("kanji COLLATE \"C\"").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build radical query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "kanji_radicals", radicals[0])
	}

	kanji, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, postgres.MapError(err, "kanji_radicals", radicals[0])
	}
	return kanji, nil
}
