package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_countriesAndStations(t *testing.T) {
	doc := "countries: [\"DE\", \"FR\"]\nstations:\n  synop: [10384, 10385]\n"
	f, err := parse(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "DE|FR", f.CountryPattern)
	_, ok := f.Stations[10384]
	assert.True(t, ok)
	_, ok = f.Stations[10386]
	assert.False(t, ok)
}

func TestParse_emptyDocumentAdmitsEverything(t *testing.T) {
	f, err := parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, defaultCountryPattern, f.CountryPattern)
	assert.Empty(t, f.Stations)
}

func TestNewDefault_admitsEverything(t *testing.T) {
	f := NewDefault()
	assert.Equal(t, defaultCountryPattern, f.CountryPattern)
	assert.Nil(t, f.Stations)
}
