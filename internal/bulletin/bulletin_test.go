package bulletin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synoptac/synoptac/internal/decodectx"
)

func ctx() *decodectx.Context {
	return &decodectx.Context{
		CountryPattern: "[A-Z]{2}",
		BaseDate:       time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestDecode_nonSynopHeaderIsDiscarded(t *testing.T) {
	sections := Decode(ctx(), "FTUS01 KWBC 031200 TAF KJFK 031200Z ...")
	assert.Nil(t, sections)
}

func TestDecode_singleStationReport(t *testing.T) {
	raw := "SIDE01 EDZW 031200 AAXX 03121 10384 11010 12010 10230="
	sections := Decode(ctx(), raw)
	require.Len(t, sections, 1)

	s := sections[0]
	assert.Equal(t, "10384", s.StationID)
	assert.Equal(t, "SIDE01", s.Header.BulletinID)
	assert.Equal(t, "EDZW", s.Header.BulletinIssuer)
	assert.Equal(t, 1, s.Header.WindIndicator)
	assert.Equal(t, time.Date(2024, time.June, 3, 12, 0, 0, 0, time.UTC), s.Header.Timestamp)
	assert.Equal(t, "11010 12010 10230", s.Body)
	assert.Nil(t, s.Header.Modifier)
}

func TestDecode_modifierExtracted(t *testing.T) {
	raw := "SIDE01 EDZW 031200 AAA AAXX 03121 10384 11010="
	sections := Decode(ctx(), raw)
	require.Len(t, sections, 1)
	require.NotNil(t, sections[0].Header.Modifier)
	assert.Equal(t, "AA", sections[0].Header.Modifier.Type)
	assert.Equal(t, byte('A'), sections[0].Header.Modifier.Sequence)
}

func TestDecode_multipleStationsSplitOnEquals(t *testing.T) {
	raw := "SIDE01 EDZW 031200 AAXX 03121 10384 11010= 10385 12010="
	sections := Decode(ctx(), raw)
	require.Len(t, sections, 2)
	assert.Equal(t, "10384", sections[0].StationID)
	assert.Equal(t, "10385", sections[1].StationID)
}

func TestDecode_nilReportDiscarded(t *testing.T) {
	raw := "SIDE01 EDZW 031200 AAXX 03121 10384 NIL= 10385 12010="
	sections := Decode(ctx(), raw)
	require.Len(t, sections, 1)
	assert.Equal(t, "10385", sections[0].StationID)
}

func TestDecode_nonLandBulletinDiscarded(t *testing.T) {
	raw := "SIDE01 EDZW 031200 BBXX 03121 99384 11010="
	sections := Decode(ctx(), raw)
	assert.Nil(t, sections)
}

func TestDecode_stationAllowListFilters(t *testing.T) {
	c := ctx()
	c.Stations = map[int]struct{}{10385: {}}
	raw := "SIDE01 EDZW 031200 AAXX 03121 10384 11010= 10385 12010="
	sections := Decode(c, raw)
	require.Len(t, sections, 1)
	assert.Equal(t, "10385", sections[0].StationID)
}

func TestDecode_countryPatternFilters(t *testing.T) {
	c := ctx()
	c.CountryPattern = "DE|FR"
	assert.NotNil(t, Decode(c, "SIDE01 EDZW 031200 AAXX 03121 10384 11010="))
	assert.Nil(t, Decode(c, "SIUK01 EGRR 031200 AAXX 03121 03005 11010="))
}

func TestDecode_dayRolloverUsesPriorMonth(t *testing.T) {
	c := ctx()
	c.BaseDate = time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	raw := "SIDE01 EDZW 031200 AAXX 30121 10384 11010="
	sections := Decode(c, raw)
	require.Len(t, sections, 1)
	assert.Equal(t, time.Date(2024, time.May, 30, 12, 0, 0, 0, time.UTC), sections[0].Header.Timestamp)
}

func TestDecode_mixedBulletinReconsumesLandPrefixPerStation(t *testing.T) {
	raw := "SIDE01 EDZW 031200 AAXX 03121 10384 11010= AAXX 03121 10385 12010="
	sections := Decode(ctx(), raw)
	require.Len(t, sections, 2)
	assert.Equal(t, "10384", sections[0].StationID)
	assert.Equal(t, "10385", sections[1].StationID)
}
