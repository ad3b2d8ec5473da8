// Package export writes parsed datasets as JSON Lines, one object per entry,
// character or radical record.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/heartmarshall/nihongo-dict/internal/domain"
)

// entryLine is the JSON form of a resolved entry. Exactly one of Forms or
// Readings is set, as given by Kind.
type entryLine struct {
	Kind     string                                       `json:"kind"`
	Seq      string                                       `json:"seq"`
	Forms    map[string]map[string]*domain.ResolvedRecord `json:"forms,omitempty"`
	Readings map[string]*domain.ResolvedRecord            `json:"readings,omitempty"`
}

// Writer encodes records to an io.Writer, one JSON value per line.
type Writer struct {
	enc *json.Encoder
	n   int
}

// NewWriter creates a Writer. With pretty set every value is indented,
// which is easier to read but no longer one value per line.
func NewWriter(w io.Writer, pretty bool) *Writer {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &Writer{enc: enc}
}

// Count returns the number of values written so far.
func (w *Writer) Count() int { return w.n }

// WriteEntry writes one entry tagged with its shape: "forms" entries are
// keyed form → reading → record, "kana" entries reading → record.
func (w *Writer) WriteEntry(e domain.Entry) error {
	line := entryLine{Seq: e.Seq}
	switch s := e.Shape.(type) {
	case *domain.WithForms:
		line.Kind = s.Kind().String()
		line.Forms = s.Forms
	case *domain.KanaOnly:
		line.Kind = s.Kind().String()
		line.Readings = s.Readings
	default:
		return fmt.Errorf("export: entry %s has no resolved shape", e.Seq)
	}
	return w.write(line, "entry", e.Seq)
}

// WriteCharacter writes one KANJIDIC2 character.
func (w *Writer) WriteCharacter(c domain.Character) error {
	return w.write(c, "character", c.Literal)
}

// WriteKanjiRadicals writes one KRADFILE decomposition.
func (w *Writer) WriteKanjiRadicals(k domain.KanjiRadicals) error {
	return w.write(k, "kanji", k.Kanji)
}

// WriteRadicalGroup writes one RADKFILE group.
func (w *Writer) WriteRadicalGroup(g domain.RadicalGroup) error {
	return w.write(g, "radical", g.Radical)
}

func (w *Writer) write(v any, what, key string) error {
	if err := w.enc.Encode(v); err != nil {
		return fmt.Errorf("export: %s %s: %w", what, key, err)
	}
	w.n++
	return nil
}
