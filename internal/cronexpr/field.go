package cronexpr

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldSet is the set of integers a single cron field matches.
type FieldSet map[int]struct{}

// ParseField parses one cron field into the set of integers it matches.
// Accepted forms: "*" (the full [minVal, maxVal] range), a bare integer,
// an inclusive range "a-b", or a comma-separated mixture of the two.
//
// Explicit literals are not range-checked: a minute field of "99" parses
// fine and simply never matches a real time, because evaluation only
// considers in-range members. Non-numeric tokens are a parse error.
func ParseField(field string, minVal, maxVal int) (FieldSet, error) {
	set := make(FieldSet)

	if field == "*" {
		for v := minVal; v <= maxVal; v++ {
			set[v] = struct{}{}
		}
		return set, nil
	}

	for _, part := range strings.Split(field, ",") {
		if strings.Contains(part, "-") && !strings.HasPrefix(part, "-") {
			bounds := strings.SplitN(part, "-", 2)
			lo, err := strconv.Atoi(bounds[0])
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrBadField, part)
			}
			hi, err := strconv.Atoi(bounds[1])
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrBadField, part)
			}
			for v := lo; v <= hi; v++ {
				set[v] = struct{}{}
			}
			continue
		}

		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadField, part)
		}
		set[v] = struct{}{}
	}

	return set, nil
}

// Contains reports whether v is in the set.
func (s FieldSet) Contains(v int) bool {
	_, ok := s[v]
	return ok
}

// InRange returns the members of the set within [minVal, maxVal],
// sorted ascending.
func (s FieldSet) InRange(minVal, maxVal int) []int {
	var vals []int
	for v := minVal; v <= maxVal; v++ {
		if s.Contains(v) {
			vals = append(vals, v)
		}
	}
	return vals
}

// MaxIn returns the largest member of the set within [minVal, maxVal].
// The second return is false when no member falls in the range.
func (s FieldSet) MaxIn(minVal, maxVal int) (int, bool) {
	for v := maxVal; v >= minVal; v-- {
		if s.Contains(v) {
			return v, true
		}
	}
	return 0, false
}
