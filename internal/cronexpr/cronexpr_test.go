package cronexpr

import (
	"errors"
	"testing"
	"time"
)

// 2024-01-01 was a Monday, which is weekday 0 in this package's
// Monday-first convention.
func jan(day, hour, minute int) time.Time {
	return time.Date(2024, time.January, day, hour, minute, 0, 0, time.UTC)
}

func TestParse_FieldCount(t *testing.T) {
	t.Parallel()

	for _, expr := range []string{"", "* * * *", "* * * * * *", "0 7"} {
		if _, err := Parse(expr); !errors.Is(err, ErrFieldCount) {
			t.Errorf("Parse(%q) error = %v, want ErrFieldCount", expr, err)
		}
	}
}

func TestParse_BadField(t *testing.T) {
	t.Parallel()

	if _, err := Parse("x 7 * * *"); !errors.Is(err, ErrBadField) {
		t.Errorf("Parse error = %v, want ErrBadField", err)
	}
}

func TestPrevious(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		expr string
		now  time.Time
		want time.Time
	}{
		{
			name: "weekly monday morning, later same day",
			expr: "0 7 * * 0",
			now:  jan(1, 7, 30),
			want: jan(1, 7, 0),
		},
		{
			name: "weekly monday morning, next day",
			expr: "0 7 * * 0",
			now:  jan(2, 8, 0),
			want: jan(1, 7, 0),
		},
		{
			name: "daily before today's instant falls back a day",
			expr: "0 7 * * *",
			now:  jan(3, 6, 59),
			want: jan(2, 7, 0),
		},
		{
			name: "hourly prefers the latest past hour",
			expr: "0 * * * *",
			now:  jan(1, 13, 37),
			want: jan(1, 13, 0),
		},
		{
			name: "minute list, later candidate this hour",
			expr: "15,45 9 * * *",
			now:  jan(1, 9, 50),
			want: jan(1, 9, 45),
		},
		{
			name: "minute list, earlier candidate this hour",
			expr: "15,45 9 * * *",
			now:  jan(1, 9, 30),
			want: jan(1, 9, 15),
		},
		{
			name: "minute list, nothing yet today",
			expr: "15,45 9 * * *",
			now:  jan(2, 9, 10),
			want: jan(1, 9, 45),
		},
		{
			name: "exact instant counts as at-or-before",
			expr: "30 14 * * *",
			now:  time.Date(2024, time.January, 1, 14, 30, 45, 0, time.UTC),
			want: jan(1, 14, 30),
		},
		{
			name: "seven days back is still inside the window",
			expr: "0 7 * * 0",
			now:  jan(8, 6, 0),
			want: jan(1, 7, 0),
		},
		{
			name: "day-of-month restriction",
			expr: "0 12 2 * *",
			now:  jan(5, 9, 0),
			want: jan(2, 12, 0),
		},
		{
			name: "hour range picks its maximum on past days",
			expr: "0 9-17 * * *",
			now:  jan(2, 8, 0),
			want: jan(1, 17, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := Parse(tt.expr)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.expr, err)
			}

			got, ok := s.Previous(tt.now)
			if !ok {
				t.Fatalf("Previous(%v) reported no instant", tt.now)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Previous(%v) = %v, want %v", tt.now, got, tt.want)
			}
			if got.Second() != 0 || got.Nanosecond() != 0 {
				t.Errorf("Previous returned sub-minute precision: %v", got)
			}
			if got.After(tt.now) {
				t.Errorf("Previous returned a future instant: %v > %v", got, tt.now)
			}
		})
	}
}

func TestPrevious_NoneInWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		expr string
		now  time.Time
	}{
		{
			// The 1st is 19 days back, beyond the 8-day window.
			name: "monthly schedule out of reach",
			expr: "0 7 1 * *",
			now:  jan(20, 12, 0),
		},
		{
			name: "out-of-range minute never matches",
			expr: "99 * * * *",
			now:  jan(10, 12, 0),
		},
		{
			name: "out-of-range hour never matches",
			expr: "0 25 * * *",
			now:  jan(10, 12, 0),
		},
		{
			name: "month that is not current",
			expr: "0 7 * 6 *",
			now:  jan(10, 12, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := Parse(tt.expr)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.expr, err)
			}
			if got, ok := s.Previous(tt.now); ok {
				t.Errorf("Previous = %v, want none", got)
			}
		})
	}
}

func TestPrevious_MondayFirstWeekdays(t *testing.T) {
	t.Parallel()

	// Weekday 5 is Saturday under the Monday-first convention.
	s, err := Parse("0 10 * * 5")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	got, ok := s.Previous(jan(8, 9, 0)) // Monday the 8th
	if !ok {
		t.Fatal("Previous reported no instant")
	}
	if want := jan(6, 10, 0); !got.Equal(want) { // Saturday the 6th
		t.Errorf("Previous = %v, want %v", got, want)
	}
}

func TestMondayWeekday(t *testing.T) {
	t.Parallel()

	if got := mondayWeekday(jan(1, 0, 0)); got != 0 { // Monday
		t.Errorf("mondayWeekday(Monday) = %d, want 0", got)
	}
	if got := mondayWeekday(jan(7, 0, 0)); got != 6 { // Sunday
		t.Errorf("mondayWeekday(Sunday) = %d, want 6", got)
	}
}
