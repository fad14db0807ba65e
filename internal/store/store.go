// Package store holds decoded observations in memory for the duration of
// one ingest run and reconciles amendment (AA) and correction (CC)
// modifier records against the primary observations they revise.
package store

import (
	"sort"
	"sync"

	"github.com/synoptac/synoptac/internal/bulletin"
	"github.com/synoptac/synoptac/internal/synop"
)

// key identifies one observation slot: a station's report for a given
// timestamp. AA/CC records for the same slot replace, rather than
// duplicate, the primary record once merged.
type key struct {
	stationID string
	timestamp int64
}

// Store accumulates observations appended by potentially concurrent
// decoder goroutines, then reconciles amendments and corrections once at
// Flush time. Append is the only method safe to call concurrently; Flush
// is meant for the single goroutine that drains the store after ingest
// completes.
type Store struct {
	mu      sync.Mutex
	primary map[key]synop.Observation
	amended map[key][]synop.Observation // AA modifier records, unsorted
	correct map[key][]synop.Observation // CC modifier records, unsorted
	order   []key                       // first-seen order, for stable output
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		primary: make(map[key]synop.Observation),
		amended: make(map[key][]synop.Observation),
		correct: make(map[key][]synop.Observation),
	}
}

// Append records one decoded observation. Records whose bulletin carried
// no modifier, or an RR (additional-data) modifier, are treated as
// primary data and use "insert or ignore" semantics keyed on (station,
// timestamp) alone: once a primary record occupies a slot, any further
// primary record for that slot is dropped, regardless of its own
// modifier, matching the original's batched INSERT OR IGNORE. AA and CC
// records are held aside for the three-pass merge Flush performs, each
// deduplicated against its own bucket by exact modifier (both nil, or
// matching type and sequence letter) — a duplicate bulletin
// retransmission of the same revision, not a new one.
func (s *Store) Append(obs synop.Observation) {
	k := key{stationID: obs.StationID, timestamp: obs.Timestamp.Unix()}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case obs.Modifier == nil, obs.Modifier.Type == "RR":
		if _, seen := s.primary[k]; seen {
			return
		}
		s.markOrder(k)
		s.primary[k] = obs
	case obs.Modifier.Type == "AA":
		if hasModifier(s.amended[k], obs.Modifier) {
			return
		}
		s.markOrder(k)
		s.amended[k] = append(s.amended[k], obs)
	case obs.Modifier.Type == "CC":
		if hasModifier(s.correct[k], obs.Modifier) {
			return
		}
		s.markOrder(k)
		s.correct[k] = append(s.correct[k], obs)
	}
}

// markOrder records k's first appearance across any of the three buckets,
// so Flush can emit observations in first-seen order.
func (s *Store) markOrder(k key) {
	if _, seen := s.primary[k]; seen {
		return
	}
	if len(s.amended[k]) > 0 || len(s.correct[k]) > 0 {
		return
	}
	s.order = append(s.order, k)
}

func hasModifier(revisions []synop.Observation, m *bulletin.Modifier) bool {
	for _, rev := range revisions {
		if sameModifier(rev.Modifier, m) {
			return true
		}
	}
	return false
}

func sameModifier(a, b *bulletin.Modifier) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Type == b.Type && a.Sequence == b.Sequence
}

// Flush reconciles every held amendment and correction against its
// primary record and returns the final observations in first-seen order.
// The merge runs in three passes, mirroring how bulletins arrive in
// practice: bulk insertion of primary data (already done by Append), then
// amendments applied in
// increasing sequence-letter order, then corrections applied the same
// way. A modifier record with no matching primary observation becomes
// the primary record itself, since a station may be amended or
// corrected before its first unmodified report was ever received.
func (s *Store) Flush() []synop.Observation {
	s.mu.Lock()
	defer s.mu.Unlock()

	amendSeq := make(map[key]byte)
	correctSeq := make(map[key]byte)

	for k, revisions := range s.amended {
		amendSeq[k] = mergeSequenced(s.primary, k, revisions)
	}
	for k, revisions := range s.correct {
		correctSeq[k] = mergeSequenced(s.primary, k, revisions)
	}

	out := make([]synop.Observation, 0, len(s.order))
	for _, k := range s.order {
		obs, ok := s.primary[k]
		if !ok {
			continue
		}
		if seq, ok := amendSeq[k]; ok {
			obs.AmendmentSequence = string(seq)
		}
		if seq, ok := correctSeq[k]; ok {
			obs.CorrectionSequence = string(seq)
		}
		out = append(out, obs)
	}
	return out
}

// mergeSequenced applies a slot's modifier records to base in increasing
// sequence-letter order, so that a later-lettered revision always wins
// over an earlier one regardless of arrival order within the bulletin
// stream, and returns the highest sequence letter applied.
func mergeSequenced(base map[key]synop.Observation, k key, revisions []synop.Observation) byte {
	sort.Slice(revisions, func(i, j int) bool {
		return sequenceOf(revisions[i]) < sequenceOf(revisions[j])
	})
	for _, rev := range revisions {
		base[k] = rev
	}
	return sequenceOf(revisions[len(revisions)-1])
}

func sequenceOf(obs synop.Observation) byte {
	if obs.Modifier == nil {
		return 0
	}
	return obs.Modifier.Sequence
}
