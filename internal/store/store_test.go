package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synoptac/synoptac/internal/bulletin"
	"github.com/synoptac/synoptac/internal/synop"
)

func obsWithTemp(t float64, mod *bulletin.Modifier) synop.Observation {
	tv := t
	return synop.Observation{
		StationID:   "10384",
		Timestamp:   time.Date(2024, time.June, 3, 12, 0, 0, 0, time.UTC),
		Modifier:    mod,
		Temperature: &tv,
	}
}

func TestFlush_plainRecordPassesThrough(t *testing.T) {
	s := New()
	s.Append(obsWithTemp(10, nil))

	out := s.Flush()
	require.Len(t, out, 1)
	assert.Equal(t, 10.0, *out[0].Temperature)
}

func TestFlush_amendmentReplacesPrimary(t *testing.T) {
	s := New()
	s.Append(obsWithTemp(10, nil))
	s.Append(obsWithTemp(11, &bulletin.Modifier{Type: "AA", Sequence: 'A'}))

	out := s.Flush()
	require.Len(t, out, 1)
	assert.Equal(t, 11.0, *out[0].Temperature)
}

func TestFlush_laterSequenceLetterWinsRegardlessOfArrivalOrder(t *testing.T) {
	s := New()
	s.Append(obsWithTemp(10, nil))
	s.Append(obsWithTemp(13, &bulletin.Modifier{Type: "AA", Sequence: 'C'}))
	s.Append(obsWithTemp(12, &bulletin.Modifier{Type: "AA", Sequence: 'B'}))

	out := s.Flush()
	require.Len(t, out, 1)
	assert.Equal(t, 13.0, *out[0].Temperature)
}

func TestFlush_correctionAppliesAfterAmendment(t *testing.T) {
	s := New()
	s.Append(obsWithTemp(10, nil))
	s.Append(obsWithTemp(11, &bulletin.Modifier{Type: "AA", Sequence: 'A'}))
	s.Append(obsWithTemp(12, &bulletin.Modifier{Type: "CC", Sequence: 'A'}))

	out := s.Flush()
	require.Len(t, out, 1)
	assert.Equal(t, 12.0, *out[0].Temperature)
}

func TestFlush_modifierWithoutPrimaryBecomesPrimary(t *testing.T) {
	s := New()
	s.Append(obsWithTemp(9, &bulletin.Modifier{Type: "AA", Sequence: 'A'}))

	out := s.Flush()
	require.Len(t, out, 1)
	assert.Equal(t, 9.0, *out[0].Temperature)
}

func TestFlush_distinctStationsKeptSeparate(t *testing.T) {
	s := New()
	s.Append(obsWithTemp(10, nil))

	other := obsWithTemp(20, nil)
	other.StationID = "10385"
	s.Append(other)

	out := s.Flush()
	assert.Len(t, out, 2)
}

func TestFlush_duplicatePrimaryFirstReceivedWins(t *testing.T) {
	s := New()
	s.Append(obsWithTemp(10, nil))
	s.Append(obsWithTemp(15, nil))

	out := s.Flush()
	require.Len(t, out, 1)
	assert.Equal(t, 10.0, *out[0].Temperature)
}

func TestFlush_secondPrimaryWithDifferentModifierStillIgnored(t *testing.T) {
	s := New()
	s.Append(obsWithTemp(10, nil))
	s.Append(obsWithTemp(20, &bulletin.Modifier{Type: "RR", Sequence: 'A'}))

	out := s.Flush()
	require.Len(t, out, 1)
	assert.Equal(t, 10.0, *out[0].Temperature, "key-only insert-or-ignore: the slot is already occupied")
}

func TestFlush_duplicateAmendmentSameSequenceIsDropped(t *testing.T) {
	s := New()
	s.Append(obsWithTemp(10, nil))
	s.Append(obsWithTemp(11, &bulletin.Modifier{Type: "AA", Sequence: 'A'}))
	s.Append(obsWithTemp(99, &bulletin.Modifier{Type: "AA", Sequence: 'A'}))

	out := s.Flush()
	require.Len(t, out, 1)
	assert.Equal(t, 11.0, *out[0].Temperature)
}
