// Package station loads and looks up the fixed land-station inventory
// (WMO number, ICAO identifier, position, elevation, name) that the SYNOP
// decoder consults for sea-level pressure reduction and report enrichment.
package station

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Station is one row of the station inventory. Latitude, Longitude, and
// Elevation are pointers because a small number of inventory rows carry
// incomplete position data; a nil value propagates to a nil QFF reduction
// rather than a fabricated one.
type Station struct {
	WMO         string
	ICAO        string
	Latitude    *float64
	Longitude   *float64
	Elevation   *float64
	Name        string
	IntName     string
}

// Inventory is a WMO-number-keyed lookup table built once at startup and
// only read thereafter.
type Inventory struct {
	byWMO map[string]Station
}

// Lookup returns the station whose WMO number string equals wmo exactly;
// no zero-padding normalization is applied.
func (inv *Inventory) Lookup(wmo string) (Station, bool) {
	if inv == nil {
		return Station{}, false
	}
	s, ok := inv.byWMO[wmo]
	return s, ok
}

// expectedColumns is the station-inventory CSV header, in order: WMO
// number, ICAO identifier, latitude, longitude, elevation (metres), station
// name, international name.
var expectedColumns = []string{"wmo", "icao", "lat", "lon", "elevation", "name", "int_name"}

// LoadCSV reads a station inventory from r. The header row is required and
// must have at least as many columns as expectedColumns; its labels are not
// checked. Rows are matched to columns by position, not by header name, so
// a header using different column labels is accepted as long as the column
// order matches.
func LoadCSV(r io.Reader) (*Inventory, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("station: reading header: %w", err)
	}
	if len(header) < len(expectedColumns) {
		return nil, fmt.Errorf("station: expected at least %d columns, got %d", len(expectedColumns), len(header))
	}

	inv := &Inventory{byWMO: make(map[string]Station)}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("station: reading row: %w", err)
		}
		if len(row) < len(expectedColumns) {
			continue
		}

		wmo := strings.TrimSpace(row[0])
		if wmo == "" {
			continue
		}

		s := Station{
			WMO:       wmo,
			ICAO:      strings.TrimSpace(row[1]),
			Latitude:  parseFloat(row[2]),
			Longitude: parseFloat(row[3]),
			Elevation: parseFloat(row[4]),
			Name:      strings.TrimSpace(row[5]),
			IntName:   strings.TrimSpace(row[6]),
		}
		inv.byWMO[wmo] = s
	}

	return inv, nil
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
