package domain

// CodePoint is a character code in one encoding standard (cp_value).
type CodePoint struct {
	Standard string `json:"standard"` // ucs, jis208, jis212, jis213
	Code     string `json:"code"`
}

// RadicalValue is a radical number under one classification (rad_value).
type RadicalValue struct {
	Classification string `json:"classification"` // classical, nelson_c
	Radical        string `json:"radical"`
}

// Variant cross-references a variant form of the character.
type Variant struct {
	Type      string `json:"type"`
	Reference string `json:"reference"`
}

// DictionaryRef locates the character in a published dictionary. Morohashi
// references additionally carry volume and page.
type DictionaryRef struct {
	Dictionary string `json:"dictionary"`
	Index      string `json:"index"`
	Volume     string `json:"volume,omitempty"`
	Page       string `json:"page,omitempty"`
}

// QueryCode is a lookup code such as SKIP or four-corner.
type QueryCode struct {
	Type     string `json:"type"`
	Code     string `json:"code"`
	Misclass string `json:"misclass,omitempty"` // skip_misclass
}

// TypedReading is a reading outside the on/kun split (pinyin, korean_h, ...).
type TypedReading struct {
	Type    string `json:"type"`
	Reading string `json:"reading"`
}

// Character is a flat KANJIDIC2 character record.
type Character struct {
	Literal         string          `json:"literal"`
	CodePoints      []CodePoint     `json:"codepoints,omitempty"`
	Radicals        []RadicalValue  `json:"radicals,omitempty"`
	Grade           *int            `json:"grade,omitempty"`
	StrokeCount     *int            `json:"stroke_count,omitempty"`
	StrokeMiscounts []int           `json:"stroke_miscounts,omitempty"`
	Frequency       *int            `json:"frequency,omitempty"`
	JLPT            *int            `json:"jlpt,omitempty"`
	Variants        []Variant       `json:"variants,omitempty"`
	RadicalNames    []string        `json:"radical_names,omitempty"`
	DictionaryRefs  []DictionaryRef `json:"dictionary_refs,omitempty"`
	QueryCodes      []QueryCode     `json:"query_codes,omitempty"`
	OnReadings      []string        `json:"on,omitempty"`
	KunReadings     []string        `json:"kun,omitempty"`
	OtherReadings   []TypedReading  `json:"other_readings,omitempty"`
	Meanings        []string        `json:"meanings,omitempty"`
	Nanori          []string        `json:"nanori,omitempty"`
}

// CharacterHeader is the KANJIDIC2 file header.
type CharacterHeader struct {
	FileVersion     string
	DatabaseVersion string
	CreatedOn       string
}
