// Package ingest wires the bulletin splitter, SYNOP decoder, and
// observation store together into a single pass over a raw bulletin feed.
package ingest

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/synoptac/synoptac/internal/bulletin"
	"github.com/synoptac/synoptac/internal/decodectx"
	"github.com/synoptac/synoptac/internal/station"
	"github.com/synoptac/synoptac/internal/store"
	"github.com/synoptac/synoptac/internal/synop"
)

// delimiter separates consecutive bulletins in the feed file: a run of
// four hash marks, a nine-digit sequence number, and four more hash
// marks, each typically on its own line.
var delimiter = regexp.MustCompile(`####[0-9]{9}####`)

// Run reads raw bulletin text from r, decodes every admitted SYNOP land
// report, and appends each to s. It returns the first read error
// encountered, if any; per-bulletin and per-station decode rejections are
// not errors and are only logged at debug level when ctx.Verbose is set.
func Run(ctx *decodectx.Context, s *store.Store, inv *station.Inventory, r io.Reader) error {
	raw, err := readAll(r)
	if err != nil {
		return err
	}

	for _, bulletinText := range delimiter.Split(raw, -1) {
		bulletinText = normalize(bulletinText)
		if bulletinText == "" {
			continue
		}

		sections := bulletin.Decode(ctx, bulletinText)
		for _, section := range sections {
			obs := synop.DecodeReport(section.Header, section.StationID, section.Body, inv)
			s.Append(obs)
			if ctx.Verbose {
				log.Debug().
					Str("station", section.StationID).
					Time("timestamp", obs.Timestamp).
					Msg("decoded report")
			}
		}
	}

	return nil
}

// normalize collapses the line-broken raw bulletin text the feed format
// wraps at 69 columns into the single whitespace-normalized line the
// bulletin and SYNOP decoders expect.
func normalize(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

func readAll(r io.Reader) (string, error) {
	var sb strings.Builder
	br := bufio.NewReaderSize(r, 64*1024)
	if _, err := io.Copy(&sb, br); err != nil {
		return "", err
	}
	return sb.String(), nil
}
