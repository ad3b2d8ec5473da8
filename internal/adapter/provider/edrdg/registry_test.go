package edrdg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/nihongo-dict/internal/config"
	"github.com/heartmarshall/nihongo-dict/internal/domain"
)

func TestFromConfig_OverridesURLs(t *testing.T) {
	got := FromConfig(config.DatasetsConfig{
		JMdictURL:   "https://mirror.example/JMdict_e.gz",
		RadkfileURL: "file:///srv/radkfile.gz",
	})

	require.Len(t, got, 4)
	assert.Equal(t, "https://mirror.example/JMdict_e.gz", got[0].URL)
	assert.Equal(t, Kanjidic.URL, got[1].URL)
	assert.Equal(t, Kradfile.URL, got[2].URL)
	assert.Equal(t, "file:///srv/radkfile.gz", got[3].URL)
	// Package-level defaults are untouched.
	assert.Equal(t, "http://ftp.edrdg.org/pub/Nihongo/JMdict_e_examp.gz", JMdict.URL)
}

func TestSelect(t *testing.T) {
	all := Datasets()

	got, err := Select(all, nil)
	require.NoError(t, err)
	assert.Equal(t, all, got)

	got, err = Select(all, []string{"radkfile", "jmdict"})
	require.NoError(t, err)
	assert.Equal(t, []Dataset{JMdict, Radkfile}, got)

	_, err = Select(all, []string{"jmdict", "wordnet"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorContains(t, err, "wordnet")
}
