package jmdict

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/nihongo-dict/internal/domain"
)

func senseWith(stagk, stagr []string) domain.Sense {
	return domain.Sense{FormRestrictions: stagk, ReadingRestrictions: stagr}
}

func TestResolver_UnrestrictedCoversEveryPair(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {2, 3}, {4, 2}} {
		n, m := size[0], size[1]
		t.Run(fmt.Sprintf("%dx%d", n, m), func(t *testing.T) {
			forms := make([]string, n)
			for i := range forms {
				forms[i] = fmt.Sprintf("F%d", i)
			}
			readings := make([]string, m)
			applies := make(map[string][]string, m)
			for i := range readings {
				readings[i] = fmt.Sprintf("r%d", i)
				applies[readings[i]] = forms
			}

			var sink domain.Collector
			r := NewResolver("1", forms, readings, applies, &sink)
			targets := r.Resolve(1, senseWith(nil, nil))

			assert.Len(t, targets, n*m)
			assert.Zero(t, sink.Len())
		})
	}
}

func TestResolver_ReadingRestrictionHonored(t *testing.T) {
	// Scenario: forms {A,B}, P valid only for A, unrestricted sense.
	var sink domain.Collector
	r := NewResolver("1", []string{"A", "B"}, []string{"P"}, map[string][]string{"P": {"A"}}, &sink)

	targets := r.Resolve(1, senseWith(nil, nil))

	assert.Equal(t, []Target{{Form: "A", Reading: "P"}}, targets)
	assert.Zero(t, sink.Len(), "well-formed restriction must not raise anomalies")
}

func TestResolver_UnknownFormInSense(t *testing.T) {
	var sink domain.Collector
	r := NewResolver("42", []string{"A"}, []string{"p"}, map[string][]string{"p": {"A"}}, &sink)

	targets := r.Resolve(3, senseWith([]string{"Z"}, nil))

	assert.Empty(t, targets)
	got := sink.Anomalies()
	require.Len(t, got, 2)
	assert.Equal(t, domain.ScopeAnomaly{EntrySeq: "42", Kind: domain.AnomalyUnknownFormInSense, Literal: "Z", Sense: 3}, got[0])
	assert.Equal(t, domain.AnomalyEmptyScope, got[1].Kind)
}

func TestResolver_ExplicitScopes(t *testing.T) {
	forms := []string{"A", "B", "C"}
	readings := []string{"p", "q", "s"}
	applies := map[string][]string{
		"p": {"A", "B", "C"},
		"q": {"B"},
		"s": {"C"},
	}

	tests := []struct {
		name      string
		stagk     []string
		stagr     []string
		want      []Target
		anomalies []domain.AnomalyKind
	}{
		{
			name:  "form scope derives readings",
			stagk: []string{"B"},
			want:  []Target{{"B", "p"}, {"B", "q"}},
		},
		{
			name:  "reading scope over all forms",
			stagr: []string{"q"},
			want:  []Target{{"B", "q"}},
		},
		{
			name:  "both scopes intersect with applicability",
			stagk: []string{"A", "C"},
			stagr: []string{"q", "s"},
			want:  []Target{{"C", "s"}},
		},
		{
			name:      "non co-occurring restriction",
			stagk:     []string{"A"},
			stagr:     []string{"q"},
			anomalies: []domain.AnomalyKind{domain.AnomalyEmptyScope},
		},
		{
			name:      "unknown reading is dropped",
			stagr:     []string{"zz", "p"},
			want:      []Target{{"A", "p"}, {"B", "p"}, {"C", "p"}},
			anomalies: []domain.AnomalyKind{domain.AnomalyUnknownReadingInSense},
		},
		{
			name:  "duplicate names count once",
			stagk: []string{"C", "C"},
			want:  []Target{{"C", "p"}, {"C", "s"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sink domain.Collector
			r := NewResolver("1", forms, readings, applies, &sink)

			got := r.Resolve(1, senseWith(tt.stagk, tt.stagr))

			assert.Equal(t, tt.want, got)
			var kinds []domain.AnomalyKind
			for _, a := range sink.Anomalies() {
				kinds = append(kinds, a.Kind)
			}
			assert.Equal(t, tt.anomalies, kinds)
		})
	}
}

func TestResolver_KanaOnly(t *testing.T) {
	var sink domain.Collector
	r := NewResolver("7", nil, []string{"ヽ", "ゝ"}, nil, &sink)
	require.True(t, r.KanaOnly())

	all := r.Resolve(1, senseWith(nil, nil))
	assert.Equal(t, []Target{{Reading: "ヽ"}, {Reading: "ゝ"}}, all)

	one := r.Resolve(2, senseWith([]string{"漢"}, []string{"ゝ"}))
	assert.Equal(t, []Target{{Reading: "ゝ"}}, one)

	got := sink.Anomalies()
	require.Len(t, got, 1)
	assert.Equal(t, domain.AnomalyUnknownFormInSense, got[0].Kind)
	assert.Equal(t, "漢", got[0].Literal)
}
