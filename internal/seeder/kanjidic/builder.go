package kanjidic

import (
	"fmt"
	"strconv"

	"github.com/heartmarshall/nihongo-dict/internal/domain"
	"github.com/heartmarshall/nihongo-dict/pkg/xmltree"
)

// DefaultMeaningLanguage is the m_lang value meanings are filtered to.
// A <meaning> without m_lang is English.
const DefaultMeaningLanguage = "en"

// Builder extracts flat character records from <character> nodes.
type Builder struct {
	lang string
}

// NewBuilder creates a Builder keeping meanings in lang ("" means English).
func NewBuilder(lang string) *Builder {
	if lang == "" {
		lang = DefaultMeaningLanguage
	}
	return &Builder{lang: lang}
}

// Build reads one <character> node. Every sub-section is optional; only
// <literal> is mandatory, and numeric fields must parse.
func (b *Builder) Build(n *xmltree.Node) (domain.Character, error) {
	literal, ok := n.ChildText("literal")
	if !ok || literal == "" {
		return domain.Character{}, domain.NewMissingError("character", "literal")
	}
	c := domain.Character{Literal: literal}

	for _, v := range n.Find("codepoint").FindAll("cp_value") {
		c.CodePoints = append(c.CodePoints, domain.CodePoint{Standard: v.AttrOr("cp_type", ""), Code: v.Text})
	}
	for _, v := range n.Find("radical").FindAll("rad_value") {
		c.Radicals = append(c.Radicals, domain.RadicalValue{Classification: v.AttrOr("rad_type", ""), Radical: v.Text})
	}

	if err := b.misc(n.Find("misc"), &c); err != nil {
		return domain.Character{Literal: literal}, err
	}

	for _, ref := range n.Find("dic_number").FindAll("dic_ref") {
		c.DictionaryRefs = append(c.DictionaryRefs, domain.DictionaryRef{
			Dictionary: ref.AttrOr("dr_type", ""),
			Index:      ref.Text,
			Volume:     ref.AttrOr("m_vol", ""),
			Page:       ref.AttrOr("m_page", ""),
		})
	}
	for _, q := range n.Find("query_code").FindAll("q_code") {
		c.QueryCodes = append(c.QueryCodes, domain.QueryCode{
			Type:     q.AttrOr("qc_type", ""),
			Code:     q.Text,
			Misclass: q.AttrOr("skip_misclass", ""),
		})
	}

	b.readingMeaning(n.Find("reading_meaning"), &c)
	return c, nil
}

func (b *Builder) misc(m *xmltree.Node, c *domain.Character) error {
	if m == nil {
		return nil
	}

	var err error
	if c.Grade, err = optionalInt(m, "grade"); err != nil {
		return err
	}
	if c.Frequency, err = optionalInt(m, "freq"); err != nil {
		return err
	}
	if c.JLPT, err = optionalInt(m, "jlpt"); err != nil {
		return err
	}

	// The first stroke_count is the accepted one; the rest are common miscounts.
	for i, s := range m.ChildTexts("stroke_count") {
		v, err := atoi("stroke_count", s)
		if err != nil {
			return err
		}
		if i == 0 {
			c.StrokeCount = &v
			continue
		}
		c.StrokeMiscounts = append(c.StrokeMiscounts, v)
	}

	for _, v := range m.FindAll("variant") {
		c.Variants = append(c.Variants, domain.Variant{Type: v.AttrOr("var_type", ""), Reference: v.Text})
	}
	c.RadicalNames = m.ChildTexts("rad_name")
	return nil
}

func (b *Builder) readingMeaning(rm *xmltree.Node, c *domain.Character) {
	if rm == nil {
		return
	}
	for _, group := range rm.FindAll("rmgroup") {
		for _, r := range group.FindAll("reading") {
			switch typ := r.AttrOr("r_type", ""); typ {
			case "ja_on":
				c.OnReadings = append(c.OnReadings, r.Text)
			case "ja_kun":
				c.KunReadings = append(c.KunReadings, r.Text)
			default:
				c.OtherReadings = append(c.OtherReadings, domain.TypedReading{Type: typ, Reading: r.Text})
			}
		}
		for _, m := range group.FindAll("meaning") {
			if m.AttrOr("m_lang", DefaultMeaningLanguage) == b.lang {
				c.Meanings = append(c.Meanings, m.Text)
			}
		}
	}
	c.Nanori = rm.ChildTexts("nanori")
}

func optionalInt(n *xmltree.Node, child string) (*int, error) {
	s, ok := n.ChildText(child)
	if !ok {
		return nil, nil
	}
	v, err := atoi(child, s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func atoi(field, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, domain.NewMalformedError("misc", field, fmt.Sprintf("%q is not a number", s))
	}
	return v, nil
}
