package calendar

import (
	"iter"
	"strings"
	"time"
)

const (
	// DateLayout is the ISO layout used for start/end dates and exact holiday keys.
	DateLayout = "2006-01-02"
	// MonthDayLayout is the layout of recurring holiday keys.
	MonthDayLayout = "01-02"

	day = 24 * time.Hour
)

// Range is an inclusive span of naive calendar dates. All dates are kept at
// midnight UTC so that day arithmetic never crosses a DST change.
type Range struct {
	Start time.Time
	End   time.Time
}

// Truncate drops the clock part of t and moves it to UTC, keeping the calendar date.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return Truncate(t), nil
}

// NewRange validates start <= end.
func NewRange(start, end time.Time) (Range, error) {
	start, end = Truncate(start), Truncate(end)
	if start.After(end) {
		return Range{}, &ConfigurationError{
			Field:  "start_date",
			Reason: start.Format(DateLayout) + " is after end_date " + end.Format(DateLayout),
		}
	}
	return Range{Start: start, End: end}, nil
}

// ParseRange builds a Range from two YYYY-MM-DD strings.
func ParseRange(start, end string) (Range, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return Range{}, &ConfigurationError{Field: "start_date/end_date", Reason: "must be provided either in config or as command line arguments"}
	}
	s, err := ParseDate(start)
	if err != nil {
		return Range{}, &ConfigurationError{Field: "start_date", Reason: "expected YYYY-MM-DD", Err: err}
	}
	e, err := ParseDate(end)
	if err != nil {
		return Range{}, &ConfigurationError{Field: "end_date", Reason: "expected YYYY-MM-DD", Err: err}
	}
	return NewRange(s, e)
}

// DaysBetween returns the number of whole days from a to b (negative if b is before a).
func DaysBetween(a, b time.Time) int {
	return int(Truncate(b).Sub(Truncate(a)) / day)
}

// TotalDays is the number of days in the range, both endpoints included.
func (r Range) TotalDays() int {
	return DaysBetween(r.Start, r.End) + 1
}

// DateAt maps a day index to its date.
func (r Range) DateAt(index int) time.Time {
	return r.Start.AddDate(0, 0, index)
}

// IndexOf maps a date to its day index. ok is false when the date is outside the range.
func (r Range) IndexOf(d time.Time) (index int, ok bool) {
	index = DaysBetween(r.Start, d)
	return index, index >= 0 && index < r.TotalDays()
}

// Contains reports whether d falls inside the range.
func (r Range) Contains(d time.Time) bool {
	_, ok := r.IndexOf(d)
	return ok
}

// CrossesYear reports whether the range spans a year boundary.
func (r Range) CrossesYear() bool {
	return r.Start.Year() != r.End.Year()
}

// Days walks the range one day at a time, yielding the day index and date.
// The sequence can be ranged over any number of times.
func (r Range) Days() iter.Seq2[int, time.Time] {
	return func(yield func(int, time.Time) bool) {
		total := r.TotalDays()
		for i := 0; i < total; i++ {
			if !yield(i, r.DateAt(i)) {
				return
			}
		}
	}
}

func (r Range) String() string {
	return r.Start.Format(DateLayout) + " - " + r.End.Format(DateLayout)
}

// ISOWeekday returns 1 for Monday through 7 for Sunday.
func ISOWeekday(d time.Time) int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// IsWeekend reports Saturday and Sunday.
func IsWeekend(d time.Time) bool {
	return ISOWeekday(d) > 5
}
