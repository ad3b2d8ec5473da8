package jmdict

import (
	"strconv"
	"strings"

	"github.com/heartmarshall/nihongo-dict/internal/domain"
	"github.com/heartmarshall/nihongo-dict/pkg/xmltree"
)

const (
	defaultLang       = "eng"
	defaultSourceType = "full"
	xrefSeparator     = "・"
)

// ExtractForm reads a <k_ele> node. <keb> is mandatory.
func ExtractForm(n *xmltree.Node) (domain.WrittenForm, error) {
	keb, err := mandatoryText(n, "keb")
	if err != nil {
		return domain.WrittenForm{}, err
	}
	return domain.WrittenForm{
		Text:     keb,
		Info:     n.ChildTexts("ke_inf"),
		Priority: n.ChildTexts("ke_pri"),
	}, nil
}

// ExtractReading reads an <r_ele> node. <reb> is mandatory.
func ExtractReading(n *xmltree.Node) (domain.Reading, error) {
	reb, err := mandatoryText(n, "reb")
	if err != nil {
		return domain.Reading{}, err
	}
	return domain.Reading{
		Text:         reb,
		TrueReading:  !n.Has("re_nokanji"),
		Restrictions: n.ChildTexts("re_restr"),
		Info:         n.ChildTexts("re_inf"),
		Priority:     n.ChildTexts("re_pri"),
	}, nil
}

// ExtractSense reads a <sense> node. Only its <example> children carry
// mandatory fields.
func ExtractSense(n *xmltree.Node) (domain.Sense, error) {
	s := domain.Sense{
		FormRestrictions:    n.ChildTexts("stagk"),
		ReadingRestrictions: n.ChildTexts("stagr"),
		Payload: domain.SensePayload{
			Synonyms:      crossRefs(n.ChildTexts("xref")),
			Antonyms:      crossRefs(n.ChildTexts("ant")),
			PartsOfSpeech: n.ChildTexts("pos"),
			Fields:        n.ChildTexts("field"),
			Misc:          n.ChildTexts("misc"),
			Dialects:      n.ChildTexts("dial"),
			Priority:      n.ChildTexts("pri"),
			Notes:         n.ChildTexts("s_inf"),
		},
	}

	for _, ls := range n.FindAll("lsource") {
		if s.Payload.Sources == nil {
			s.Payload.Sources = make(map[string]domain.LanguageSource)
		}
		s.Payload.Sources[ls.Text] = domain.LanguageSource{
			Language: ls.AttrOr("xml:lang", defaultLang),
			Type:     ls.AttrOr("ls_type", defaultSourceType),
			Wasei:    ls.AttrOr("ls_wasei", "") == "y",
		}
	}

	for _, g := range n.FindAll("gloss") {
		if g.Text == "" {
			continue
		}
		if s.Payload.Glosses == nil {
			s.Payload.Glosses = make(map[string]domain.Gloss)
		}
		s.Payload.Glosses[g.Text] = domain.Gloss{
			Language: g.AttrOr("xml:lang", defaultLang),
			Gender:   g.AttrOr("g_gend", ""),
			Type:     g.AttrOr("g_type", ""),
		}
	}

	for _, ex := range n.FindAll("example") {
		e, err := ExtractExample(ex)
		if err != nil {
			return domain.Sense{}, err
		}
		s.Payload.Examples = append(s.Payload.Examples, e)
	}

	return s, nil
}

// ExtractExample reads an <example> node. <ex_srce> and <ex_text> are
// mandatory; sentences are picked by xml:lang.
func ExtractExample(n *xmltree.Node) (domain.Example, error) {
	src := n.Find("ex_srce")
	if src == nil {
		return domain.Example{}, domain.NewMissingError("example", "ex_srce")
	}
	text, err := mandatoryText(n, "ex_text")
	if err != nil {
		return domain.Example{}, err
	}

	e := domain.Example{
		SourceType: src.AttrOr("exsrc_type", ""),
		SourceID:   src.Text,
		Text:       text,
	}
	for _, sent := range n.FindAll("ex_sent") {
		switch sent.AttrOr("xml:lang", defaultLang) {
		case "jpn":
			e.Source = sent.Text
		case defaultLang:
			e.Target = sent.Text
		}
	}
	return e, nil
}

// ParseCrossRef splits an xref/ant literal. Numeric trailing parts are
// sense numbers; "keb・reb・1" carries all three.
func ParseCrossRef(s string) domain.CrossRef {
	parts := strings.Split(s, xrefSeparator)
	ref := domain.CrossRef{Target: parts[0]}
	for _, p := range parts[1:] {
		if n, err := strconv.Atoi(p); err == nil {
			ref.Sense = n
			continue
		}
		if ref.Reading == "" {
			ref.Reading = p
		}
	}
	return ref
}

func crossRefs(raw []string) []domain.CrossRef {
	if len(raw) == 0 {
		return nil
	}
	out := make([]domain.CrossRef, 0, len(raw))
	for _, s := range raw {
		out = append(out, ParseCrossRef(s))
	}
	return out
}

func mandatoryText(n *xmltree.Node, child string) (string, error) {
	text, ok := n.ChildText(child)
	if !ok || text == "" {
		return "", domain.NewMissingError(n.Name, child)
	}
	return text, nil
}
