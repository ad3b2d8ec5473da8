package jmdict

import (
	"slices"

	"github.com/heartmarshall/nihongo-dict/internal/domain"
	"github.com/heartmarshall/nihongo-dict/pkg/xmltree"
)

// Assembler builds resolved entries. It holds no per-entry state, so one
// Assembler may serve several goroutines as long as its sink is safe for
// concurrent use.
type Assembler struct {
	sink domain.DiagnosticsSink
}

// NewAssembler creates an Assembler reporting anomalies to sink.
// A nil sink discards them.
func NewAssembler(sink domain.DiagnosticsSink) *Assembler {
	if sink == nil {
		sink = domain.Discard
	}
	return &Assembler{sink: sink}
}

// AssembleNode extracts and resolves one <entry> node. A StructuralError is
// returned for a missing <ent_seq>, an entry without <r_ele>, or any
// extractor failure; the returned Entry then carries only the Seq, if known.
func (a *Assembler) AssembleNode(n *xmltree.Node) (domain.Entry, error) {
	seq, err := mandatoryText(n, "ent_seq")
	if err != nil {
		return domain.Entry{}, err
	}
	bad := domain.Entry{Seq: seq}

	kEles := n.FindAll("k_ele")
	forms := make([]domain.WrittenForm, 0, len(kEles))
	for _, k := range kEles {
		f, err := ExtractForm(k)
		if err != nil {
			return bad, err
		}
		forms = append(forms, f)
	}

	rEles := n.FindAll("r_ele")
	if len(rEles) == 0 {
		return bad, domain.NewMissingError("entry", "r_ele")
	}
	readings := make([]domain.Reading, 0, len(rEles))
	for _, r := range rEles {
		rd, err := ExtractReading(r)
		if err != nil {
			return bad, err
		}
		readings = append(readings, rd)
	}

	sEles := n.FindAll("sense")
	senses := make([]domain.Sense, 0, len(sEles))
	for _, s := range sEles {
		sn, err := ExtractSense(s)
		if err != nil {
			return bad, err
		}
		senses = append(senses, sn)
	}

	return a.Assemble(seq, forms, readings, senses), nil
}

// Assemble resolves already extracted parts into an entry:
//  1. forms fix the entry shape (none means kana-only);
//  2. each reading's restrictions are checked against the forms and
//     skeleton records are created for every valid pair;
//  3. senses are resolved and folded in source order.
//
// Repeated form or reading literals keep their first occurrence.
func (a *Assembler) Assemble(seq string, forms []domain.WrittenForm, readings []domain.Reading, senses []domain.Sense) domain.Entry {
	forms = dedupBy(forms, func(f domain.WrittenForm) string { return f.Text })
	readings = dedupBy(readings, func(r domain.Reading) string { return r.Text })

	formTexts := make([]string, len(forms))
	formSet := make(map[string]struct{}, len(forms))
	for i, f := range forms {
		formTexts[i] = f.Text
		formSet[f.Text] = struct{}{}
	}
	readingTexts := make([]string, len(readings))
	for i, r := range readings {
		readingTexts[i] = r.Text
	}

	var applies map[string][]string
	if len(forms) > 0 {
		applies = make(map[string][]string, len(readings))
		for _, r := range readings {
			applies[r.Text] = a.applicableForms(seq, r, formTexts, formSet)
		}
	}
	resolver := NewResolver(seq, formTexts, readingTexts, applies, a.sink)

	records, index := skeleton(forms, readings, resolver)

	for i, s := range senses {
		for _, t := range resolver.Resolve(i+1, s) {
			if rec, ok := index[t]; ok {
				rec.Fold(s.Payload)
			}
		}
	}

	if resolver.KanaOnly() {
		return domain.Entry{Seq: seq, Shape: domain.NewKanaOnly(records)}
	}
	return domain.Entry{Seq: seq, Shape: domain.NewWithForms(records)}
}

// applicableForms resolves a reading's re_restr list. Names that are not
// forms of the entry are reported and never match.
func (a *Assembler) applicableForms(seq string, r domain.Reading, forms []string, formSet map[string]struct{}) []string {
	if len(r.Restrictions) == 0 {
		return forms
	}
	out := make([]string, 0, len(r.Restrictions))
	for _, name := range r.Restrictions {
		if _, ok := formSet[name]; !ok {
			a.sink.Report(domain.ScopeAnomaly{
				EntrySeq: seq,
				Kind:     domain.AnomalyUnknownFormInReading,
				Literal:  name,
			})
			continue
		}
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

// skeleton creates the empty records of an entry in form-major order.
func skeleton(forms []domain.WrittenForm, readings []domain.Reading, resolver *Resolver) ([]*domain.ResolvedRecord, map[Target]*domain.ResolvedRecord) {
	var records []*domain.ResolvedRecord
	index := make(map[Target]*domain.ResolvedRecord)

	add := func(t Target, rec *domain.ResolvedRecord) {
		records = append(records, rec)
		index[t] = rec
	}

	if len(forms) == 0 {
		for _, r := range readings {
			add(Target{Reading: r.Text}, readingRecord(r))
		}
		return records, index
	}

	for _, f := range forms {
		for _, r := range readings {
			if !resolver.AppliesTo(r.Text, f.Text) {
				continue
			}
			rec := readingRecord(r)
			rec.Form = f.Text
			rec.FormInfo = slices.Clone(f.Info)
			rec.FormPriority = slices.Clone(f.Priority)
			add(Target{Form: f.Text, Reading: r.Text}, rec)
		}
	}
	return records, index
}

func readingRecord(r domain.Reading) *domain.ResolvedRecord {
	return &domain.ResolvedRecord{
		Reading:         r.Text,
		TrueReading:     r.TrueReading,
		ReadingInfo:     slices.Clone(r.Info),
		ReadingPriority: slices.Clone(r.Priority),
	}
}

func dedupBy[T any](items []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]
	for _, it := range items {
		k := key(it)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}
