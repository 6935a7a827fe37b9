// Package cronexpr parses 5-field cron expressions and answers the one
// question the stamp runner needs: what is the most recent scheduled
// instant at or before a reference time?
//
// Field order is minute, hour, day-of-month, month, weekday. The weekday
// field is Monday-first (0 = Monday, 6 = Sunday), matching the shell
// aliases this tool grew out of rather than traditional cron's Sunday=0.
// The Schedule doc comment is the contract; callers writing standard cron
// weekday numbers will fire on the wrong days.
package cronexpr

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// LookbackDays bounds the backward day-by-day scan in Previous. Expressions
// that fire less often than once per LookbackDays report no instant at all.
const LookbackDays = 8

var (
	// ErrFieldCount is returned when an expression does not have exactly
	// five whitespace-separated fields.
	ErrFieldCount = errors.New("cronexpr: expected 5 fields")

	// ErrBadField is returned for a non-numeric token inside a field.
	ErrBadField = errors.New("cronexpr: bad field")
)

// Schedule is a parsed 5-field cron expression.
//
// Weekday convention: 0 = Monday through 6 = Sunday.
type Schedule struct {
	expr    string
	fields  [5]string
	minutes FieldSet
	hours   FieldSet
	dom     FieldSet
	months  FieldSet
	dow     FieldSet
}

// Parse parses a 5-field cron expression
// ("minute hour day-of-month month weekday").
func Parse(expr string) (*Schedule, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, fmt.Errorf("%w, got %d in %q", ErrFieldCount, len(fields), expr)
	}

	s := &Schedule{expr: expr, fields: [5]string(fields)}

	var err error
	if s.minutes, err = ParseField(fields[0], 0, 59); err != nil {
		return nil, fmt.Errorf("cronexpr: minute: %w", err)
	}
	if s.hours, err = ParseField(fields[1], 0, 23); err != nil {
		return nil, fmt.Errorf("cronexpr: hour: %w", err)
	}
	if s.dom, err = ParseField(fields[2], 1, 31); err != nil {
		return nil, fmt.Errorf("cronexpr: day-of-month: %w", err)
	}
	if s.months, err = ParseField(fields[3], 1, 12); err != nil {
		return nil, fmt.Errorf("cronexpr: month: %w", err)
	}
	if s.dow, err = ParseField(fields[4], 0, 6); err != nil {
		return nil, fmt.Errorf("cronexpr: weekday: %w", err)
	}

	return s, nil
}

// Expr returns the expression the schedule was parsed from.
func (s *Schedule) Expr() string { return s.expr }

// Fields returns the five raw field strings in expression order.
func (s *Schedule) Fields() [5]string { return s.fields }

// fieldBounds are the real value ranges per field, in expression order.
var fieldBounds = [5][2]int{{0, 59}, {0, 23}, {1, 31}, {1, 12}, {0, 6}}

// FieldValues returns the in-range members of field i (0 = minute,
// 1 = hour, 2 = day-of-month, 3 = month, 4 = weekday), ascending.
// Out-of-range literals are omitted; an empty result means the field can
// never match.
func (s *Schedule) FieldValues(i int) []int {
	sets := [5]FieldSet{s.minutes, s.hours, s.dom, s.months, s.dow}
	return sets[i].InRange(fieldBounds[i][0], fieldBounds[i][1])
}

// Previous returns the most recent scheduled instant at or before now,
// truncated to minute resolution. The scan walks back at most LookbackDays
// calendar days; if no day in that window matches the (month, day-of-month,
// weekday) constraints the second return is false.
func (s *Schedule) Previous(now time.Time) (time.Time, bool) {
	ref := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), 0, 0, now.Location())

	// A field populated only with out-of-range literals can never match.
	maxHour, ok := s.hours.MaxIn(0, 23)
	if !ok {
		return time.Time{}, false
	}
	maxMinute, ok := s.minutes.MaxIn(0, 59)
	if !ok {
		return time.Time{}, false
	}

	for daysBack := 0; daysBack < LookbackDays; daysBack++ {
		day := ref.AddDate(0, 0, -daysBack)
		if !s.months.Contains(int(day.Month())) ||
			!s.dom.Contains(day.Day()) ||
			!s.dow.Contains(mondayWeekday(day)) {
			continue
		}

		if daysBack > 0 {
			// Any time on a fully past day is already <= now, so the
			// latest qualifying instant on it is max hour + max minute.
			return at(day, maxHour, maxMinute), true
		}

		// Current day: prefer the latest (hour, minute) not exceeding now.
		hours := s.hours.InRange(0, ref.Hour())
		for i := len(hours) - 1; i >= 0; i-- {
			h := hours[i]
			minuteCap := 59
			if h == ref.Hour() {
				minuteCap = ref.Minute()
			}
			minutes := s.minutes.InRange(0, minuteCap)
			for j := len(minutes) - 1; j >= 0; j-- {
				cand := at(day, h, minutes[j])
				if !cand.After(ref) {
					return cand, true
				}
			}
		}
		// Today matches day-wise but every qualifying time is still ahead
		// (e.g. daily 07:00 evaluated at 06:59). Keep walking back.
	}

	return time.Time{}, false
}

// mondayWeekday converts time.Weekday (Sunday = 0) to the Monday-first
// convention used by the weekday field (Monday = 0).
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}
