// Package radk reads the KRADFILE and RADKFILE radical cross-reference
// files. Both are line oriented and EUC-JP encoded by default.
package radk

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/heartmarshall/nihongo-dict/internal/domain"
)

const maxLineSize = 1 << 20

// LineError reports a line that does not follow the file format. The
// offending line is skipped; ranging may continue.
type LineError struct {
	File   string
	Line   int
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
}

func (e *LineError) Unwrap() error { return domain.ErrStructural }

// Reader decodes radical files.
type Reader struct {
	enc encoding.Encoding
}

// Option configures a Reader.
type Option func(*Reader)

// WithEncoding sets the source encoding. encoding.Nop reads UTF-8 as is.
func WithEncoding(enc encoding.Encoding) Option {
	return func(r *Reader) { r.enc = enc }
}

// NewReader creates a Reader for EUC-JP input unless told otherwise.
func NewReader(opts ...Option) *Reader {
	r := &Reader{enc: japanese.EUCJP}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// line is one non-comment, non-blank source line.
type line struct {
	no   int
	text string
}

func (r *Reader) lines(src io.Reader, file string) iter.Seq2[line, error] {
	return func(yield func(line, error) bool) {
		sc := bufio.NewScanner(transform.NewReader(src, r.enc.NewDecoder()))
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		no := 0
		for sc.Scan() {
			no++
			text := strings.TrimSpace(sc.Text())
			if text == "" || strings.HasPrefix(text, "#") {
				continue
			}
			if !yield(line{no: no, text: text}, nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(line{no: no}, fmt.Errorf("%s: read line %d: %w", file, no+1, err))
		}
	}
}

// Kanji reads a KRADFILE: one "kanji : radical radical ..." line per kanji.
func (r *Reader) Kanji(src io.Reader) iter.Seq2[domain.KanjiRadicals, error] {
	return func(yield func(domain.KanjiRadicals, error) bool) {
		for l, err := range r.lines(src, "kradfile") {
			if err != nil {
				yield(domain.KanjiRadicals{}, err)
				return
			}

			kanji, rest, ok := strings.Cut(l.text, ":")
			kanji = strings.TrimSpace(kanji)
			if !ok || kanji == "" {
				if !yield(domain.KanjiRadicals{}, &LineError{File: "kradfile", Line: l.no, Reason: `expected "kanji : radicals"`}) {
					return
				}
				continue
			}
			if !yield(domain.KanjiRadicals{Kanji: kanji, Radicals: strings.Fields(rest)}, nil) {
				return
			}
		}
	}
}

// Groups reads a RADKFILE: a "$ radical strokes [glyph]" header followed by
// lines of kanji containing that radical. The last group is yielded at end
// of input.
func (r *Reader) Groups(src io.Reader) iter.Seq2[domain.RadicalGroup, error] {
	return func(yield func(domain.RadicalGroup, error) bool) {
		var (
			cur      *domain.RadicalGroup
			skipping bool
		)
		for l, err := range r.lines(src, "radkfile") {
			if err != nil {
				yield(domain.RadicalGroup{}, err)
				return
			}

			if !strings.HasPrefix(l.text, "$") {
				switch {
				case cur != nil:
					for _, k := range l.text {
						cur.Kanji = append(cur.Kanji, string(k))
					}
				case !skipping:
					if !yield(domain.RadicalGroup{}, &LineError{File: "radkfile", Line: l.no, Reason: "kanji line before any radical header"}) {
						return
					}
				}
				continue
			}

			if cur != nil && !yield(*cur, nil) {
				return
			}
			cur = nil

			g, err := parseHeader(l)
			if err != nil {
				skipping = true
				if !yield(domain.RadicalGroup{}, err) {
					return
				}
				continue
			}
			skipping = false
			cur = &g
		}
		if cur != nil {
			yield(*cur, nil)
		}
	}
}

func parseHeader(l line) (domain.RadicalGroup, error) {
	fields := strings.Fields(strings.TrimPrefix(l.text, "$"))
	if len(fields) < 2 {
		return domain.RadicalGroup{}, &LineError{File: "radkfile", Line: l.no, Reason: "radical header needs radical and stroke count"}
	}
	strokes, err := strconv.Atoi(fields[1])
	if err != nil {
		return domain.RadicalGroup{}, &LineError{File: "radkfile", Line: l.no, Reason: fmt.Sprintf("stroke count %q is not a number", fields[1])}
	}
	g := domain.RadicalGroup{Radical: fields[0], Strokes: strokes}
	if len(fields) > 2 {
		g.Glyph = fields[2]
	}
	return g, nil
}

// IsLineError reports whether err is a skippable format error.
func IsLineError(err error) bool {
	var le *LineError
	return errors.As(err, &le)
}
