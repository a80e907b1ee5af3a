package booking

import (
	"sort"
	"time"
)

// DateLayout is the wire format of stay dates.
const DateLayout = "2006-01-02"

// Stay is the half-open night range [CheckIn, CheckOut). Both ends are calendar
// dates at UTC midnight.
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewStay normalizes both dates to UTC midnight. It does not check ordering; see
// Valid.
func NewStay(checkIn, checkOut time.Time) Stay {
	return Stay{CheckIn: toDate(checkIn), CheckOut: toDate(checkOut)}
}

// ParseStay parses two DateLayout strings.
func ParseStay(checkIn, checkOut string) (Stay, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return Stay{}, err
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return Stay{}, err
	}
	return NewStay(in, out), nil
}

// Valid reports whether the stay covers at least one night.
func (s Stay) Valid() bool {
	return s.CheckOut.After(s.CheckIn)
}

// Nights returns the number of nights, or 0 for an invalid stay.
func (s Stay) Nights() int64 {
	if !s.Valid() {
		return 0
	}
	return int64(s.CheckOut.Sub(s.CheckIn).Hours() / 24)
}

// Overlaps uses half-open semantics: stays that only touch at a boundary date do
// not overlap.
func (s Stay) Overlaps(other Stay) bool {
	return s.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(s.CheckOut)
}

// PeakOccupancy returns the largest number of stays that share at least one night.
func PeakOccupancy(stays []Stay) int {
	type edge struct {
		at    time.Time
		delta int
	}
	edges := make([]edge, 0, len(stays)*2)
	for _, s := range stays {
		if !s.Valid() {
			continue
		}
		edges = append(edges, edge{s.CheckIn, 1}, edge{s.CheckOut, -1})
	}
	// A check-out and a check-in on the same date do not overlap, so departures
	// are applied first.
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].at.Equal(edges[j].at) {
			return edges[i].delta < edges[j].delta
		}
		return edges[i].at.Before(edges[j].at)
	})

	current, peak := 0, 0
	for _, e := range edges {
		current += e.delta
		if current > peak {
			peak = current
		}
	}
	return peak
}

func toDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
