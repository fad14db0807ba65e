// Package bulletin decodes the WMO abbreviated bulletin header
// (TTAAii CCCC YYGGgg [BBB]) and splits a bulletin into per-station
// sections ready for the SYNOP report decoder. Only SI/SM/SN (SYNOP)
// bulletins carrying fixed land-station (AAXX) data survive; everything
// else — METAR, TEMP, ship/mobile reports — is discarded here.
package bulletin

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/synoptac/synoptac/internal/decodectx"
)

// headerLen is the width, in characters, of "TTAAii CCCC YYGGgg " —
// always consumed once the header regexp matches at position 0.
const headerLen = 19

var modifierRegex = regexp.MustCompile(`^(AA|CC|RR)([A-Z]) `)

// Modifier is the optional BBB bulletin qualifier: an amendment (AA),
// correction (CC), or additional-data (RR) record, with a sequence letter
// that increases monotonically across successive revisions.
type Modifier struct {
	Type     string // "AA", "CC", or "RR"
	Sequence byte   // 'A'..'Z'
}

// HeaderContext carries everything the SYNOP decoder needs from the
// enclosing bulletin: identity, modifier, wind-speed units, and the
// resolved observation timestamp.
type HeaderContext struct {
	BulletinID     string
	BulletinIssuer string
	Modifier       *Modifier
	WindIndicator  int // 0/1 m/s, 3/4 knots, -1 unknown
	Timestamp      time.Time
	Mixed          bool
}

// StationSection is one station's report, ready for internal/synop.
type StationSection struct {
	Header    HeaderContext
	StationID string
	Body      string
}

// headerRegex builds the TTAAii CCCC header pattern for a given country
// alternation, e.g. "DE|FR|GB" or "[A-Z]{2}" to admit any country.
func headerRegex(countryPattern string) *regexp.Regexp {
	return regexp.MustCompile(`^S[IMN](` + countryPattern + `)([0-9]{2}) ([A-Z]{4})`)
}

// Decode parses one whitespace-normalized bulletin string and returns its
// admitted fixed-land-station sections. A bulletin is discarded (nil,
// no error) when its header does not match SI/SM/SN, when it lacks
// AAXX land-station data, or when a mixed bulletin has no land
// subsections; these are bulletin-level rejections, logged at debug
// level, not errors.
func Decode(ctx *decodectx.Context, raw string) []StationSection {
	header := headerRegex(ctx.CountryPattern)
	match := header.FindStringSubmatch(raw)
	if match == nil {
		if ctx.Verbose {
			log.Debug().Msg("discarding non-SYNOP/METAR/TEMP or geographically irrelevant bulletin")
		}
		return nil
	}
	if len(raw) < headerLen {
		return nil
	}

	bulletinID := raw[:6]
	bulletinIssuer := match[3]
	rest := raw[headerLen:]

	var modifier *Modifier
	if m := modifierRegex.FindStringSubmatch(rest); m != nil {
		modifier = &Modifier{Type: m[1], Sequence: m[2][0]}
		rest = rest[4:]
	}

	mixed := strings.Count(rest, "XX") > 1

	var bulletinTimestamp time.Time
	var bulletinWindIndicator int
	if !mixed {
		ts, wi, r, ok := consumeLandPrefix(rest, ctx)
		if !ok {
			if ctx.Verbose {
				log.Debug().Msg("discarding bulletin not containing data from fixed surface land stations")
			}
			return nil
		}
		bulletinTimestamp, bulletinWindIndicator, rest = ts, wi, r
	}

	var sections []StationSection
	for _, raw0 := range strings.Split(rest, "=") {
		section := strings.TrimSpace(raw0)
		if section == "" || strings.HasSuffix(section, "NIL") {
			continue
		}

		timestamp, windIndicator := bulletinTimestamp, bulletinWindIndicator
		if mixed {
			var ok bool
			timestamp, windIndicator, section, ok = consumeLandPrefix(section, ctx)
			if !ok {
				if ctx.Verbose {
					log.Debug().Msg("discarding station report not containing data from fixed surface land stations")
				}
				continue
			}
		}

		if len(section) < 5 {
			continue
		}
		stationID := section[:5]
		wmo, err := strconv.Atoi(stationID)
		if err != nil {
			continue
		}
		if !ctx.AdmitsStation(wmo) {
			if ctx.Verbose {
				log.Debug().Str("station", stationID).Msg("discarding report from station not in list")
			}
			continue
		}

		body := ""
		if len(section) > 6 {
			body = section[6:]
		}

		sections = append(sections, StationSection{
			Header: HeaderContext{
				BulletinID:     bulletinID,
				BulletinIssuer: bulletinIssuer,
				Modifier:       modifier,
				WindIndicator:  windIndicator,
				Timestamp:      timestamp,
				Mixed:          mixed,
			},
			StationID: stationID,
			Body:      body,
		})
	}

	return sections
}

// consumeLandPrefix consumes a leading "AAXX YYGGi " group, returning the
// resolved timestamp, wind indicator, and the remainder of s. ok is false
// if s does not start with AAXX or the group is malformed/truncated.
func consumeLandPrefix(s string, ctx *decodectx.Context) (timestamp time.Time, windIndicator int, rest string, ok bool) {
	if !strings.HasPrefix(s, "AAXX") {
		return time.Time{}, 0, s, false
	}
	after := s[4:]
	if len(after) < 7 {
		return time.Time{}, 0, "", false
	}

	day, errDay := strconv.Atoi(after[1:3])
	hour, errHour := strconv.Atoi(after[3:5])
	if errDay != nil || errHour != nil {
		return time.Time{}, 0, "", false
	}

	windIndicator = -1
	if wi, err := strconv.Atoi(after[5:6]); err == nil {
		windIndicator = wi
	}

	return ctx.ResolveTimestamp(day, hour, 0), windIndicator, after[7:], true
}
