package domain

// KanjiRadicals lists the visual components of one kanji (KRADFILE line).
type KanjiRadicals struct {
	Kanji    string   `json:"kanji"`
	Radicals []string `json:"radicals"`
}

// RadicalGroup lists every kanji containing a radical (RADKFILE block).
type RadicalGroup struct {
	Radical string   `json:"radical"`
	Strokes int      `json:"strokes"`
	Glyph   string   `json:"glyph,omitempty"` // alternate glyph image name or JIS code
	Kanji   []string `json:"kanji"`
}
