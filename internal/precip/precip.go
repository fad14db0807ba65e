// Package precip decodes the WMO "6RRRt" precipitation group shared by
// SYNOP section 1 and the climatological section 3.
package precip

import "strconv"

// Entry is a single decoded precipitation amount/duration pair.
type Entry struct {
	AmountMM      float64
	DurationHours *int
}

// durationHours maps the WMO duration code (the 't' digit) to the number
// of hours it represents. Code 0 is not present: it is invalid and causes
// the whole group to decode to nil.
var durationHours = map[int]int{
	1: 6, 2: 12, 3: 18, 4: 24,
	5: 1, 6: 2, 7: 3, 8: 9, 9: 15,
}

// Decode parses a five-character "6RRRt" group (the leading '6' tag is
// included but ignored; only positions 1..4 carry the amount and position
// 4 the duration code). Any non-numeric input, or duration code 0, yields
// a nil entry.
func Decode(group string) *Entry {
	if len(group) != 5 {
		return nil
	}

	amountCode, err := strconv.Atoi(group[1:4])
	if err != nil {
		return nil
	}

	durationCode, err := strconv.Atoi(group[4:5])
	if err != nil {
		return nil
	}

	hours, ok := durationHours[durationCode]
	if !ok {
		return nil
	}

	amount := float64(amountCode)
	switch {
	case amount == 990:
		amount = 0.05
	case amount > 990:
		amount = (amount - 990) / 10
	}

	return &Entry{AmountMM: amount, DurationHours: &hours}
}
