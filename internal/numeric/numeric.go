// Package numeric implements the small set of formulae shared across the
// SYNOP decoder: Magnus-approximation relative humidity and sea-level
// pressure reduction (QFF, with a QNH fallback when temperature is
// unavailable).
package numeric

import "math"

// RelHumidity approximates relative humidity, in percent, from air
// temperature and dew point (both in degrees Celsius) using the Magnus
// formula. Either input missing yields a nil result.
func RelHumidity(temp, dewPoint *float64) *float64 {
	if temp == nil || dewPoint == nil {
		return nil
	}

	a, b := 7.5, 237.3
	if *temp < 0 {
		a, b = 7.6, 240.7
	}

	t, td := *temp, *dewPoint
	rh := math.Pow(10, 2+(a*td/(b+td))-(a*t/(b+t)))
	return &rh
}

// QFF reduces station-level pressure (hPa) to mean sea level. Temperature
// is optional: when present the reduction accounts for a virtual
// temperature derived from the reported air temperature (QFF proper);
// when absent it falls back to the standard-atmosphere QNH formula.
// Missing pressure, elevation, or latitude yields a nil result.
//
// The cos(2*latitude) term below intentionally uses latitude in degrees,
// not radians, matching the upstream reduction formula this was ported
// from; this is a known quirk, not a bug in this port.
func QFF(pressure, temperature, elevation, latitude *float64) *float64 {
	if pressure == nil || elevation == nil || latitude == nil {
		return nil
	}

	p, ele, lat := *pressure, *elevation, *latitude

	if temperature == nil {
		reduced := Round2(p * math.Exp(-5.25588*math.Log(1-0.000022558*ele)))
		return &reduced
	}

	t := *temperature
	var tv float64
	switch {
	case t < -7:
		tv = 0.5*t + 275
	case t < 2:
		tv = 0.535*t + 275.6
	default:
		tv = 1.07*t + 274.5
	}

	reduced := Round2(p * math.Exp(ele*0.034163*(1-0.0026373*math.Cos(2*lat))/tv))
	return &reduced
}

// Round2 rounds to two decimal places, the precision the source data and
// the reduction formulae above are meaningful to.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
