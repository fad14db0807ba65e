// Package synop decodes a single FM-12 SYNOP land-station report body (the
// text following a station's five-digit WMO number) into an Observation,
// enriching it with the station inventory for sea-level pressure
// reduction.
package synop

import (
	"strconv"
	"strings"
	"time"

	"github.com/synoptac/synoptac/internal/bulletin"
	"github.com/synoptac/synoptac/internal/numeric"
	"github.com/synoptac/synoptac/internal/precip"
	"github.com/synoptac/synoptac/internal/station"
)

// Observation is one station's fully decoded report. Every field but
// StationID, Timestamp, and the bulletin identity is optional: a nil
// pointer means the report didn't encode that value, not that the value
// was zero.
type Observation struct {
	StationID      string
	Timestamp      time.Time
	BulletinID     string
	BulletinIssuer string
	Modifier       *bulletin.Modifier

	// AmendmentSequence and CorrectionSequence record the highest AA/CC
	// sequence letter applied to this slot by internal/store's merge,
	// independent of which revision's data fields ultimately won out.
	AmendmentSequence string
	CorrectionSequence string

	CloudCover      *int
	WindDirection   *int
	WindSpeed       *float64
	GustSpeed       *float64
	Temperature     *float64
	DewPointTemp    *float64
	RelHumidity     *float64
	StationPressure *float64
	Pressure        *float64 // sea-level reduction (QFF/QNH)
	CurrentWeather  *int
	SunDuration     *float64
	SnowDepth       *float64
	Precipitation   []precip.Entry
}

const knotsToMetersPerSecond = 0.514444

// DecodeReport decodes the body following a station's WMO number, using
// hdr for the wind-speed unit and timestamp already resolved at the
// bulletin level, and inv to look up the station's position for sea-level
// pressure reduction. A report too short or malformed to contain usable
// data yields an Observation with only its identity fields set.
func DecodeReport(hdr bulletin.HeaderContext, stationID, body string, inv *station.Inventory) Observation {
	obs := Observation{
		StationID:      stationID,
		Timestamp:      hdr.Timestamp,
		BulletinID:     hdr.BulletinID,
		BulletinIssuer: hdr.BulletinIssuer,
		Modifier:       hdr.Modifier,
	}

	land, clim := splitSections(body)

	var precipitationIndicator byte
	if len(land) > 0 {
		precipitationIndicator = land[0]
	}
	land = advanceRawString(land, 6)

	decodeWindBlock(&obs, land, hdr.WindIndicator)
	land = consumeWindBlock(land)

	r := newGroupReader(land)
	decodeTemperature(&obs, r)
	decodeDewPoint(&obs, r)
	decodePressure(&obs, r, inv)

	r.take('4') // 4PPPP, alternate reduction: not used here
	r.take('5') // 5appp, pressure tendency: not carried

	applyPrecipitationIndicator(&obs, precipitationIndicator)
	if g, ok := r.take('6'); ok {
		if e := precip.Decode(g); e != nil {
			obs.Precipitation = []precip.Entry{*e}
		} else {
			obs.Precipitation = nil
		}
	}

	if g, ok := r.take('7'); ok {
		if ww, err := strconv.Atoi(g[1:3]); err == nil {
			obs.CurrentWeather = &ww
		}
	}

	decodeClimatological(&obs, clim, hdr.WindIndicator)

	return obs
}

// splitSections separates the section 1 (land) body from the optional
// section 3 (climatological, " 333 ") body, discarding anything from a
// section 5 (" 555 ") separator onward.
func splitSections(body string) (land, clim string) {
	parts := strings.SplitN(body, " 333 ", 2)
	land = parts[0]
	if len(parts) == 2 {
		clim = parts[1]
	}
	if idx := strings.Index(clim, " 555 "); idx >= 0 {
		clim = clim[:idx]
	}
	return land, clim
}

// decodeWindBlock reads the mandatory Nddff group: cloud cover, wind
// direction (tens of degrees), and wind speed. Speed 99 with a following
// "00fff" extension group is resolved to its 3-digit value. Knots are
// converted to m/s when hdr.WindIndicator reports knots (3 or 4); an
// unknown indicator (-1) nulls both direction and speed, since the unit
// they were reported in cannot be known.
func decodeWindBlock(obs *Observation, land string, windIndicator int) {
	defer func() {
		if windIndicator == -1 {
			obs.WindDirection = nil
			obs.WindSpeed = nil
		}
	}()

	if len(land) > 0 {
		if cc, err := strconv.Atoi(land[0:1]); err == nil {
			obs.CloudCover = &cc
		}
	}
	if len(land) < 5 {
		return
	}
	if wd, err := strconv.Atoi(land[1:3]); err == nil {
		v := wd * 10
		obs.WindDirection = &v
	}
	ws, err := strconv.Atoi(land[3:5])
	if err != nil {
		return
	}
	speed := float64(ws)
	if ws == 99 && len(land) >= 11 && land[6:8] == "00" {
		if ext, err := strconv.Atoi(land[8:11]); err == nil {
			speed = float64(ext)
		}
	}
	obs.WindSpeed = &speed

	if windIndicator == 3 || windIndicator == 4 {
		v := numeric.Round2(*obs.WindSpeed * knotsToMetersPerSecond)
		obs.WindSpeed = &v
	}
}

// consumeWindBlock advances past the Nddff group, accounting for the
// three-digit wind-speed extension when present.
func consumeWindBlock(land string) string {
	if len(land) >= 11 && land[3:5] == "99" && land[6:8] == "00" {
		return advanceRawString(land, 12)
	}
	return advanceRawString(land, 6)
}

func advanceRawString(s string, n int) string {
	if len(s) < n {
		return ""
	}
	rest := s[n:]
	return rest
}

// decodeTemperature reads the optional 1sTTT air temperature group. A '/'
// sign digit means the group is present but the value missing.
func decodeTemperature(obs *Observation, r *groupReader) {
	g, ok := r.take('1')
	if !ok {
		return
	}
	sign := g[1]
	if sign == '/' {
		return
	}
	v, err := strconv.ParseFloat(g[2:5], 64)
	if err != nil {
		return
	}
	v /= 10
	if sign == '1' {
		v = -v
	}
	obs.Temperature = &v
}

// decodeDewPoint reads the optional 2sTTT dew-point/humidity group. A sign
// digit of 9 means the following three digits are a relative humidity
// percentage reported directly, not a dew point; any other sign decodes a
// signed dew-point temperature, from which relative humidity is then
// derived via the Magnus formula using the temperature already decoded.
func decodeDewPoint(obs *Observation, r *groupReader) {
	g, ok := r.take('2')
	if !ok {
		return
	}
	sign := g[1]
	if sign == '/' {
		return
	}
	if sign == '9' {
		if rh, err := strconv.ParseFloat(g[2:5], 64); err == nil {
			obs.RelHumidity = &rh
		}
		return
	}
	v, err := strconv.ParseFloat(g[2:5], 64)
	if err != nil {
		return
	}
	v /= 10
	if sign == '1' {
		v = -v
	}
	obs.DewPointTemp = &v
	if rh := numeric.RelHumidity(obs.Temperature, obs.DewPointTemp); rh != nil {
		rounded := numeric.Round2(*rh)
		obs.RelHumidity = &rounded
	}
}

// decodePressure reads the optional 3PPPP station-level pressure group.
// A trailing '/' means only the whole-hPa value was transmitted: the
// first three digits are then a literal hPa count rather than tenths.
// Values below 200 hPa are encoded without the leading "10" and are
// corrected by adding 1000. When the station inventory carries a position
// for this station, the sea-level reduction is computed immediately.
func decodePressure(obs *Observation, r *groupReader, inv *station.Inventory) {
	g, ok := r.take('3')
	if !ok {
		return
	}

	var v float64
	if g[4] == '/' {
		whole, err := strconv.ParseFloat(g[1:4], 64)
		if err != nil {
			return
		}
		v = whole
	} else {
		tenths, err := strconv.ParseFloat(g[1:5], 64)
		if err != nil {
			return
		}
		v = tenths / 10
	}
	if v < 200 {
		v += 1000
	}
	obs.StationPressure = &v

	st, found := inv.Lookup(obs.StationID)
	if !found {
		return
	}
	obs.Pressure = numeric.QFF(obs.StationPressure, obs.Temperature, st.Elevation, st.Latitude)
}

// applyPrecipitationIndicator sets the section-1 precipitation sentinel
// implied by the iihVV indicator digit before any 6RRRt group is
// considered: '3' means precipitation was observed to be absent (a zero
// amount with no duration), '4' means no precipitation measurement is
// available at all.
func applyPrecipitationIndicator(obs *Observation, indicator byte) {
	switch indicator {
	case '3':
		obs.Precipitation = []precip.Entry{{AmountMM: 0}}
	case '4':
		obs.Precipitation = nil
	}
}

// decodeClimatological walks the optional section 3 (" 333 ") body:
// snow depth (4Esss), sunshine duration (553SS), a second precipitation
// reading (6RRRt), and peak gust (910ff[fff]). Groups this decoder doesn't
// extract data from are skipped positionally rather than by a fixed
// offset, since their presence is itself optional.
func decodeClimatological(obs *Observation, clim string, windIndicator int) {
	if clim == "" {
		return
	}
	r := newGroupReader(clim)

	skipWhileTagBelow(r, 4)
	if g, ok := r.take('4'); ok {
		decodeSnowDepth(obs, g)
	}

	skipUntilPrefixOrTagAtLeast(r, "553", 6)
	if g, ok := r.takePrefix("553"); ok {
		if tenths, err := strconv.ParseFloat(g[3:5], 64); err == nil {
			v := tenths / 10
			obs.SunDuration = &v
		}
	}

	skipWhileTagBelow(r, 6)
	if g, ok := r.take('6'); ok {
		if e := precip.Decode(g); e != nil {
			obs.Precipitation = append(obs.Precipitation, *e)
		}
	}

	skipUntilPrefixOrTagAtLeast(r, "910", 9)
	decodeGust(obs, r, windIndicator)
}

// decodeSnowDepth interprets the 4Esss group's sss value: 997 and 998 are
// sentinels for a thin ("<0.5cm") and crusted/icy ("no measurable depth")
// cover respectively, and 999 means no snow cover at all.
func decodeSnowDepth(obs *Observation, g string) {
	v, err := strconv.Atoi(g[2:5])
	if err != nil {
		return
	}
	switch v {
	case 999:
		return
	case 997:
		depth := 0.5
		obs.SnowDepth = &depth
	case 998:
		depth := 0.01
		obs.SnowDepth = &depth
	default:
		depth := float64(v)
		obs.SnowDepth = &depth
	}
}

// decodeGust reads the optional 910ff peak wind gust group, applying the
// same three-digit extension and unit conversion rules as the mandatory
// Nddff wind-speed field.
func decodeGust(obs *Observation, r *groupReader, windIndicator int) {
	g, ok := r.takePrefix("910")
	if !ok {
		return
	}
	ff, err := strconv.Atoi(g[3:5])
	if err != nil {
		return
	}
	speed := float64(ff)
	if ff == 99 {
		rest := r.remaining()
		if len(rest) >= 5 && rest[0:2] == "00" {
			if ext, err := strconv.Atoi(rest[2:5]); err == nil {
				speed = float64(ext)
			}
			r.advanceRaw(6)
		}
	}
	obs.GustSpeed = &speed

	if windIndicator == 3 || windIndicator == 4 {
		v := numeric.Round2(*obs.GustSpeed * knotsToMetersPerSecond)
		obs.GustSpeed = &v
	}
	if windIndicator == -1 {
		obs.GustSpeed = nil
	}
}

// skipWhileTagBelow discards groups until the cursor is exhausted or the
// next group's tag digit is >= min.
func skipWhileTagBelow(r *groupReader, min int) {
	for {
		tag, ok := r.peekTagDigit()
		if !ok || tag >= min {
			return
		}
		r.skipGroup()
	}
}

// skipUntilPrefixOrTagAtLeast discards groups until the cursor is
// exhausted, the next group starts with prefix, or its tag digit is >=
// minTag (meaning prefix's window has passed without appearing).
func skipUntilPrefixOrTagAtLeast(r *groupReader, prefix string, minTag int) {
	for {
		if hasPrefix(r.remaining(), prefix) {
			return
		}
		tag, ok := r.peekTagDigit()
		if !ok || tag >= minTag {
			return
		}
		r.skipGroup()
	}
}
