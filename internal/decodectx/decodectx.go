// Package decodectx holds the immutable configuration threaded through the
// bulletin and SYNOP decoders, replacing the process-wide mutable settings
// module of the system this was ported from (spec §9, "Global mutable
// configuration").
package decodectx

import "time"

// Context bundles the per-run configuration needed by the bulletin decoder
// (country pattern, station allow-list, base date), plus a verbosity flag
// for diagnostic logging. The station inventory is not part of it; it is
// passed to the SYNOP report decoder separately. It is built once per run
// and never mutated.
type Context struct {
	// CountryPattern is a regexp alternation fragment, e.g. "DE|FR|GB", or
	// "[A-Z]{2}" to admit any two-letter WMO country code.
	CountryPattern string

	// Stations is the station allow-list. A nil or empty set admits every
	// station.
	Stations map[int]struct{}

	// BaseDate supplies the year and month for bulletins, which encode
	// only day-of-month and hour.
	BaseDate time.Time

	// Verbose gates debug-level diagnostic logging.
	Verbose bool
}

// AdmitsStation reports whether a WMO station number passes the allow-list.
func (c *Context) AdmitsStation(wmo int) bool {
	if len(c.Stations) == 0 {
		return true
	}
	_, ok := c.Stations[wmo]
	return ok
}

// ResolveTimestamp applies the base-date rule from spec §3: only
// day-of-month and hour are encoded in the source, so the base date fixes
// year and month. If the encoded day is greater than the base date's day,
// the observation belongs to the prior month (rolling the year back if
// month rolls under January).
//
// The upstream implementation compared day and base-day as strings, which
// misorders any day pair that crosses the 10s boundary (e.g. "09" > "10").
// This compares integers instead.
func (c *Context) ResolveTimestamp(day, hour, minute int) time.Time {
	year, month := c.BaseDate.Year(), c.BaseDate.Month()
	if day > c.BaseDate.Day() {
		month--
		if month < time.January {
			month = time.December
			year--
		}
	}
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}
