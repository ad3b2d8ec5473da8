// Package jmdict turns JMdict XML into fully resolved dictionary entries:
// one record per (written form, reading) pair, or per reading for
// kana-only entries, each carrying every sense that applies to it.
package jmdict

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strconv"

	"github.com/heartmarshall/nihongo-dict/internal/domain"
	"github.com/heartmarshall/nihongo-dict/pkg/xmltree"
)

// Stats holds parser statistics for logging.
type Stats struct {
	Entries    int
	KanaOnly   int
	Records    int
	Structural int
	Anomalies  int
}

// Parser streams resolved entries. A Parser is meant for one pass; Stats
// accumulate across calls.
type Parser struct {
	assembler *Assembler
	log       *slog.Logger
	stats     Stats
}

// NewParser creates a Parser. Every ScopeAnomaly goes to sink (nil
// discards) and is counted in Stats.
func NewParser(log *slog.Logger, sink domain.DiagnosticsSink) *Parser {
	if sink == nil {
		sink = domain.Discard
	}
	p := &Parser{log: log.With("parser", "jmdict")}
	p.assembler = NewAssembler(countingSink{next: sink, n: &p.stats.Anomalies})
	return p
}

// Stats returns the counters so far.
func (p *Parser) Stats() Stats { return p.stats }

// Entries decodes r and yields entries in document order. Entities declared
// in the DOCTYPE expand to their own names, so <pos>&n;</pos> reads "n".
//
// A StructuralError is yielded wrapped with the entry's sequence number and
// the caller decides whether to keep ranging or stop. Any other error means
// the document itself is unreadable and ends the sequence. Normal exhaustion
// simply ends the range loop.
func (p *Parser) Entries(r io.Reader) iter.Seq2[domain.Entry, error] {
	dec := xmltree.NewDecoder(r, xmltree.WithDeclaredEntities(xmltree.EntitiesAsNames))
	return p.entries(dec.Elements("entry"))
}

// EntriesFromTree yields the entries of an already parsed <JMdict> tree.
func (p *Parser) EntriesFromTree(root *xmltree.Node) iter.Seq2[domain.Entry, error] {
	return p.entries(func(yield func(*xmltree.Node, error) bool) {
		for _, n := range root.FindAll("entry") {
			if !yield(n, nil) {
				return
			}
		}
	})
}

func (p *Parser) entries(nodes iter.Seq2[*xmltree.Node, error]) iter.Seq2[domain.Entry, error] {
	return func(yield func(domain.Entry, error) bool) {
		pos := 0
		for n, err := range nodes {
			if err != nil {
				yield(domain.Entry{}, fmt.Errorf("jmdict: %w", err))
				return
			}
			pos++

			entry, err := p.assembler.AssembleNode(n)
			if err != nil {
				p.stats.Structural++
				id := entry.Seq
				if id == "" {
					id = "#" + strconv.Itoa(pos)
				}
				p.log.Debug("structural error", slog.String("entry", id), slog.String("error", err.Error()))
				if !yield(entry, fmt.Errorf("jmdict: entry %s: %w", id, err)) {
					return
				}
				continue
			}

			p.stats.Entries++
			p.stats.Records += len(entry.Records())
			if entry.KanaOnly() {
				p.stats.KanaOnly++
			}
			if !yield(entry, nil) {
				return
			}
		}
	}
}

type countingSink struct {
	next domain.DiagnosticsSink
	n    *int
}

func (s countingSink) Report(a domain.ScopeAnomaly) {
	*s.n++
	s.next.Report(a)
}
