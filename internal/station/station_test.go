package station

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `wmo,icao,lat,lon,elevation,name,int_name
10384,EDZW,51.4,6.97,122,Essen,Essen-Bredeney
10385,,52.1,7.5,,Muenster,
`

func TestLoadCSV_parsesRowsByPosition(t *testing.T) {
	inv, err := LoadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	s, ok := inv.Lookup("10384")
	require.True(t, ok)
	assert.Equal(t, "EDZW", s.ICAO)
	require.NotNil(t, s.Latitude)
	assert.InDelta(t, 51.4, *s.Latitude, 0.001)
	assert.Equal(t, "Essen-Bredeney", s.IntName)
}

func TestLoadCSV_blankOptionalFieldsYieldNilPointers(t *testing.T) {
	inv, err := LoadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	s, ok := inv.Lookup("10385")
	require.True(t, ok)
	assert.Nil(t, s.Elevation)
	assert.Equal(t, "", s.ICAO)
	assert.Equal(t, "", s.IntName)
}

func TestLoadCSV_unknownWMOIsNotFound(t *testing.T) {
	inv, err := LoadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	_, ok := inv.Lookup("99999")
	assert.False(t, ok)
}

func TestLoadCSV_headerOnlyYieldsEmptyInventory(t *testing.T) {
	inv, err := LoadCSV(strings.NewReader("wmo,icao,lat,lon,elevation,name,int_name\n"))
	require.NoError(t, err)

	_, ok := inv.Lookup("10384")
	assert.False(t, ok)
}

func TestLoadCSV_tooFewColumnsInHeaderErrors(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("wmo,icao\n10384,EDZW\n"))
	assert.Error(t, err)
}

func TestLookup_nilInventoryIsSafe(t *testing.T) {
	var inv *Inventory
	_, ok := inv.Lookup("10384")
	assert.False(t, ok)
}
