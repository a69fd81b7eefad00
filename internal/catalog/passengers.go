package catalog

import (
	"math"
	"strconv"
	"strings"
)

// PassengerRange is the textual passenger tier used by the rate table:
// an exact count ("4"), an inclusive range ("5 to 10") or an open-ended
// bound ("Over 10").
type PassengerRange string

// Matches reports whether count falls inside the tier. Malformed tiers never
// match.
func (r PassengerRange) Matches(count int) bool {
	lo, hi, ok := r.Bounds()
	return ok && count >= lo && count <= hi
}

// Bounds returns the inclusive interval the tier covers. "Over n" is open
// ended and reports math.MaxInt as its upper bound. ok is false when the tier
// cannot be parsed.
func (r PassengerRange) Bounds() (lo, hi int, ok bool) {
	s := strings.TrimSpace(string(r))

	if strings.HasPrefix(strings.ToLower(s), "over ") {
		limit, err := strconv.Atoi(strings.TrimSpace(s[len("over "):]))
		if err != nil || limit == math.MaxInt {
			return 0, 0, false
		}
		return limit + 1, math.MaxInt, true
	}

	if strings.Contains(s, " to ") {
		parts := strings.SplitN(s, " to ", 2)
		min, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return 0, 0, false
		}
		max, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, false
		}
		return min, max, true
	}

	exact, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, false
	}
	return exact, exact, true
}

// overlaps reports whether two well-formed tiers share at least one count.
func (r PassengerRange) overlaps(other PassengerRange) bool {
	alo, ahi, aok := r.Bounds()
	blo, bhi, bok := other.Bounds()
	if !aok || !bok || alo > ahi || blo > bhi {
		return false
	}
	return alo <= bhi && blo <= ahi
}

// CruiseShipTiers returns the tier labels of cruise ship rows, in order.
func CruiseShipTiers(rows []CruiseShipFare) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, string(row.Passengers))
	}
	return out
}

// TourTiers returns the tier labels of tour rows, in order.
func TourTiers(rows []KingstownTourFare) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, string(row.Passengers))
	}
	return out
}
