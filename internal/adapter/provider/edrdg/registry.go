package edrdg

import (
	"fmt"
	"slices"

	"github.com/heartmarshall/nihongo-dict/internal/config"
	"github.com/heartmarshall/nihongo-dict/internal/domain"
)

// FromConfig returns the known datasets with their URLs replaced by the
// configured ones. Empty URLs keep the default.
func FromConfig(c config.DatasetsConfig) []Dataset {
	urls := map[string]string{
		JMdict.Name:   c.JMdictURL,
		Kanjidic.Name: c.KanjidicURL,
		Kradfile.Name: c.KradfileURL,
		Radkfile.Name: c.RadkfileURL,
	}
	out := Datasets()
	for i := range out {
		if u := urls[out[i].Name]; u != "" {
			out[i].URL = u
		}
	}
	return out
}

// Select picks datasets by name, keeping the order of all. No names selects
// everything.
func Select(all []Dataset, names []string) ([]Dataset, error) {
	if len(names) == 0 {
		return all, nil
	}
	for _, n := range names {
		if !slices.ContainsFunc(all, func(ds Dataset) bool { return ds.Name == n }) {
			return nil, fmt.Errorf("edrdg: unknown dataset %q: %w", n, domain.ErrValidation)
		}
	}
	var out []Dataset
	for _, ds := range all {
		if slices.Contains(names, ds.Name) {
			out = append(out, ds)
		}
	}
	return out, nil
}
