package jmdict

import "github.com/heartmarshall/nihongo-dict/internal/domain"

// Target addresses one ResolvedRecord. Form is empty for kana-only entries.
type Target struct {
	Form    string
	Reading string
}

// Resolver computes which records a sense block folds into. It is built
// once per entry from the entry's forms and the resolved applicability of
// each reading, then asked once per sense.
type Resolver struct {
	seq      string
	forms    []string
	readings []string
	// applies[reading] is the set of forms the reading is valid for.
	applies map[string]map[string]struct{}
	sink    domain.DiagnosticsSink
}

// NewResolver builds a Resolver. forms and readings must already be
// deduplicated; applies maps every reading to the forms it is valid for and
// is ignored for kana-only entries.
func NewResolver(seq string, forms, readings []string, applies map[string][]string, sink domain.DiagnosticsSink) *Resolver {
	if sink == nil {
		sink = domain.Discard
	}
	r := &Resolver{
		seq:      seq,
		forms:    forms,
		readings: readings,
		applies:  make(map[string]map[string]struct{}, len(applies)),
		sink:     sink,
	}
	for reading, fs := range applies {
		set := make(map[string]struct{}, len(fs))
		for _, f := range fs {
			set[f] = struct{}{}
		}
		r.applies[reading] = set
	}
	return r
}

// KanaOnly reports whether the entry has no written forms.
func (r *Resolver) KanaOnly() bool { return len(r.forms) == 0 }

// AppliesTo reports whether reading is valid for form.
func (r *Resolver) AppliesTo(reading, form string) bool {
	_, ok := r.applies[reading][form]
	return ok
}

// Resolve returns the targets of one sense, in form-major source order.
// index is the 1-based sense position used in anomaly reports. Unknown
// literals and empty results are reported to the sink; the sense then
// contributes to whatever remains, possibly nothing.
func (r *Resolver) Resolve(index int, s domain.Sense) []Target {
	var targets []Target
	if r.KanaOnly() {
		targets = r.resolveKana(index, s)
	} else {
		targets = r.resolveForms(index, s)
	}
	if len(targets) == 0 {
		r.report(domain.AnomalyEmptyScope, "", index)
	}
	return targets
}

func (r *Resolver) resolveForms(index int, s domain.Sense) []Target {
	formScope := r.forms
	if len(s.FormRestrictions) > 0 {
		formScope = r.known(index, s.FormRestrictions, r.forms, domain.AnomalyUnknownFormInSense)
	}

	var pronScope []string
	if len(s.ReadingRestrictions) > 0 {
		pronScope = r.known(index, s.ReadingRestrictions, r.readings, domain.AnomalyUnknownReadingInSense)
	} else {
		seen := make(map[string]struct{}, len(r.readings))
		for _, f := range formScope {
			for _, p := range r.readings {
				if _, dup := seen[p]; dup || !r.AppliesTo(p, f) {
					continue
				}
				seen[p] = struct{}{}
				pronScope = append(pronScope, p)
			}
		}
	}

	var targets []Target
	for _, f := range formScope {
		for _, p := range pronScope {
			if r.AppliesTo(p, f) {
				targets = append(targets, Target{Form: f, Reading: p})
			}
		}
	}
	return targets
}

func (r *Resolver) resolveKana(index int, s domain.Sense) []Target {
	for _, f := range s.FormRestrictions {
		r.report(domain.AnomalyUnknownFormInSense, f, index)
	}

	pronScope := r.readings
	if len(s.ReadingRestrictions) > 0 {
		pronScope = r.known(index, s.ReadingRestrictions, r.readings, domain.AnomalyUnknownReadingInSense)
	}

	targets := make([]Target, 0, len(pronScope))
	for _, p := range pronScope {
		targets = append(targets, Target{Reading: p})
	}
	return targets
}

// known filters names down to members of universe, deduplicated in the
// order given, reporting every name outside universe.
func (r *Resolver) known(index int, names, universe []string, kind domain.AnomalyKind) []string {
	valid := make(map[string]struct{}, len(universe))
	for _, u := range universe {
		valid[u] = struct{}{}
	}
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := valid[n]; !ok {
			r.report(kind, n, index)
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func (r *Resolver) report(kind domain.AnomalyKind, literal string, sense int) {
	r.sink.Report(domain.ScopeAnomaly{
		EntrySeq: r.seq,
		Kind:     kind,
		Literal:  literal,
		Sense:    sense,
	})
}
