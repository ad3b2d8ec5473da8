package domain

import "maps"

// WrittenForm is a non-phonetic spelling of an entry (JMdict k_ele).
type WrittenForm struct {
	Text     string
	Info     []string // ke_inf: irregular usage, out-dated kanji, ...
	Priority []string // ke_pri: news1, ichi1, nf12, ...
}

// Reading is a phonetic rendering of an entry (JMdict r_ele).
type Reading struct {
	Text string
	// TrueReading is false when re_nokanji is present, i.e. the reading is
	// associated with the forms but is not a genuine reading of them.
	TrueReading bool
	// Restrictions lists the written forms this reading applies to.
	// Empty means every form of the entry.
	Restrictions []string
	Info         []string
	Priority     []string
}

// AppliesTo reports whether the reading is valid for the given form.
func (r Reading) AppliesTo(form string) bool {
	if len(r.Restrictions) == 0 {
		return true
	}
	for _, f := range r.Restrictions {
		if f == form {
			return true
		}
	}
	return false
}

// CrossRef points at another entry: "keb", "reb", "keb・reb",
// "keb・sense" or "keb・reb・sense".
type CrossRef struct {
	Target  string `json:"target"`
	Reading string `json:"reading,omitempty"`
	Sense   int    `json:"sense,omitempty"`
}

// LanguageSource describes the foreign word an entry was borrowed from.
type LanguageSource struct {
	Language string `json:"lang"`
	Type     string `json:"type"` // "full" or "part"
	Wasei    bool   `json:"wasei,omitempty"`
}

// Gloss qualifies a target-language equivalent.
type Gloss struct {
	Language string `json:"lang"`
	Gender   string `json:"gender,omitempty"`
	Type     string `json:"type,omitempty"`
}

// Example is a sentence pair illustrating a sense.
type Example struct {
	SourceType string `json:"source_type"`
	SourceID   string `json:"source_id"`
	Text       string `json:"text"`             // form of the word as used in the sentence
	Target     string `json:"target,omitempty"` // target-language sentence
	Source     string `json:"source,omitempty"` // Japanese sentence
}

// SensePayload is the definitional content of one sense block. Folding
// several payloads together appends list fields and overwrites map fields
// key by key, so the last sense to mention a gloss or source phrase wins.
type SensePayload struct {
	Synonyms      []CrossRef                `json:"synonyms,omitempty"`
	Antonyms      []CrossRef                `json:"antonyms,omitempty"`
	PartsOfSpeech []string                  `json:"part_of_speech,omitempty"`
	Fields        []string                  `json:"fields,omitempty"`
	Misc          []string                  `json:"misc,omitempty"`
	Sources       map[string]LanguageSource `json:"sources,omitempty"`
	Dialects      []string                  `json:"dialects,omitempty"`
	Glosses       map[string]Gloss          `json:"glosses,omitempty"`
	Priority      []string                  `json:"priority,omitempty"`
	Notes         []string                  `json:"notes,omitempty"`
	Examples      []Example                 `json:"examples,omitempty"`
}

// Fold merges other into p.
func (p *SensePayload) Fold(other SensePayload) {
	p.Synonyms = append(p.Synonyms, other.Synonyms...)
	p.Antonyms = append(p.Antonyms, other.Antonyms...)
	p.PartsOfSpeech = append(p.PartsOfSpeech, other.PartsOfSpeech...)
	p.Fields = append(p.Fields, other.Fields...)
	p.Misc = append(p.Misc, other.Misc...)
	p.Dialects = append(p.Dialects, other.Dialects...)
	p.Priority = append(p.Priority, other.Priority...)
	p.Notes = append(p.Notes, other.Notes...)
	p.Examples = append(p.Examples, other.Examples...)

	if len(other.Sources) > 0 {
		if p.Sources == nil {
			p.Sources = make(map[string]LanguageSource, len(other.Sources))
		}
		maps.Copy(p.Sources, other.Sources)
	}
	if len(other.Glosses) > 0 {
		if p.Glosses == nil {
			p.Glosses = make(map[string]Gloss, len(other.Glosses))
		}
		maps.Copy(p.Glosses, other.Glosses)
	}
}

// Sense is one sense block with its optional scope.
type Sense struct {
	// FormRestrictions (stagk) limits the sense to these written forms.
	// Empty means every form.
	FormRestrictions []string
	// ReadingRestrictions (stagr) limits the sense to these readings.
	// Empty means every reading valid for the resolved forms.
	ReadingRestrictions []string
	Payload             SensePayload
}

// ResolvedRecord is the denormalized output unit: one (form, reading) pair,
// or one reading for kana-only entries, carrying every sense that applies.
type ResolvedRecord struct {
	Form            string   `json:"form,omitempty"`
	Reading         string   `json:"reading"`
	TrueReading     bool     `json:"true_reading"`
	FormInfo        []string `json:"form_info,omitempty"`
	FormPriority    []string `json:"form_priority,omitempty"`
	ReadingInfo     []string `json:"reading_info,omitempty"`
	ReadingPriority []string `json:"reading_priority,omitempty"`
	SensePayload
}

// ShapeKind discriminates the two entry shapes.
type ShapeKind int

const (
	ShapeWithForms ShapeKind = iota + 1
	ShapeKanaOnly
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeWithForms:
		return "forms"
	case ShapeKanaOnly:
		return "kana"
	default:
		return "unknown"
	}
}

// Shape is the resolved content of an entry: either *WithForms or
// *KanaOnly. Use a type switch to get at the keyed records.
type Shape interface {
	Kind() ShapeKind
	// Records returns every record in source order.
	Records() []*ResolvedRecord
	isShape()
}

// WithForms maps written form → reading → record.
type WithForms struct {
	Forms   map[string]map[string]*ResolvedRecord
	ordered []*ResolvedRecord
}

// NewWithForms indexes records by Form and Reading, keeping their order.
func NewWithForms(records []*ResolvedRecord) *WithForms {
	w := &WithForms{
		Forms:   make(map[string]map[string]*ResolvedRecord),
		ordered: records,
	}
	for _, rec := range records {
		byReading, ok := w.Forms[rec.Form]
		if !ok {
			byReading = make(map[string]*ResolvedRecord)
			w.Forms[rec.Form] = byReading
		}
		byReading[rec.Reading] = rec
	}
	return w
}

func (w *WithForms) Kind() ShapeKind            { return ShapeWithForms }
func (w *WithForms) Records() []*ResolvedRecord { return w.ordered }
func (*WithForms) isShape()                     {}

// Record returns the record for a (form, reading) pair.
func (w *WithForms) Record(form, reading string) (*ResolvedRecord, bool) {
	rec, ok := w.Forms[form][reading]
	return rec, ok
}

// KanaOnly maps reading → record for entries without written forms.
type KanaOnly struct {
	Readings map[string]*ResolvedRecord
	ordered  []*ResolvedRecord
}

// NewKanaOnly indexes records by Reading, keeping their order.
func NewKanaOnly(records []*ResolvedRecord) *KanaOnly {
	k := &KanaOnly{
		Readings: make(map[string]*ResolvedRecord, len(records)),
		ordered:  records,
	}
	for _, rec := range records {
		k.Readings[rec.Reading] = rec
	}
	return k
}

func (k *KanaOnly) Kind() ShapeKind            { return ShapeKanaOnly }
func (k *KanaOnly) Records() []*ResolvedRecord { return k.ordered }
func (*KanaOnly) isShape()                     {}

// Record returns the record for a reading.
func (k *KanaOnly) Record(reading string) (*ResolvedRecord, bool) {
	rec, ok := k.Readings[reading]
	return rec, ok
}

// Entry is one fully resolved dictionary entry.
type Entry struct {
	Seq   string
	Shape Shape
}

// KanaOnly reports whether the entry has no written forms.
func (e Entry) KanaOnly() bool {
	return e.Shape != nil && e.Shape.Kind() == ShapeKanaOnly
}

// Records returns every record of the entry in source order.
func (e Entry) Records() []*ResolvedRecord {
	if e.Shape == nil {
		return nil
	}
	return e.Shape.Records()
}
