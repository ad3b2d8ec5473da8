// Package kanjidic reads KANJIDIC2 XML into flat character records.
package kanjidic

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
	Characters  int
	Structural  int
	WithMeaning int
}

// Parser streams character records from one KANJIDIC2 document.
type Parser struct {
	builder *Builder
	log     *slog.Logger
	header  *domain.CharacterHeader
	stats   Stats
}

// NewParser creates a Parser keeping meanings in lang ("" means English).
func NewParser(log *slog.Logger, lang string) *Parser {
	return &Parser{
		builder: NewBuilder(lang),
		log:     log.With("parser", "kanjidic"),
	}
}

// Stats returns the counters so far.
func (p *Parser) Stats() Stats { return p.stats }

// Header returns the file header once it has been read, or nil.
func (p *Parser) Header() *domain.CharacterHeader { return p.header }

// Characters decodes r and yields one record per <character>. A
// StructuralError is yielded wrapped with the literal (or position) and the
// caller may keep ranging; any other error ends the sequence.
func (p *Parser) Characters(r io.Reader) iter.Seq2[domain.Character, error] {
	dec := xmltree.NewDecoder(r, xmltree.WithDeclaredEntities(xmltree.EntitiesAsValues))
	return func(yield func(domain.Character, error) bool) {
		pos := 0
		for n, err := range dec.Elements("header", "character") {
			if err != nil {
				yield(domain.Character{}, fmt.Errorf("kanjidic: %w", err))
				return
			}
			if n.Name == "header" {
				p.readHeader(n)
				continue
			}
			pos++

			c, err := p.builder.Build(n)
			if err != nil {
				p.stats.Structural++
				id := c.Literal
				if id == "" {
					id = "#" + strconv.Itoa(pos)
				}
				p.log.Debug("structural error", slog.String("character", id), slog.String("error", err.Error()))
				if !yield(c, fmt.Errorf("kanjidic: character %s: %w", id, err)) {
					return
				}
				continue
			}

			p.stats.Characters++
			if len(c.Meanings) > 0 {
				p.stats.WithMeaning++
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}

func (p *Parser) readHeader(n *xmltree.Node) {
	h := &domain.CharacterHeader{}
	h.FileVersion, _ = n.ChildText("file_version")
	h.DatabaseVersion, _ = n.ChildText("database_version")
	h.CreatedOn, _ = n.ChildText("date_of_creation")
	p.header = h
	p.log.Info("kanjidic header",
		slog.String("file_version", h.FileVersion),
		slog.String("database_version", h.DatabaseVersion),
		slog.String("created", h.CreatedOn),
	)
}
