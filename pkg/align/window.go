package align

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xlsxcalendar/xlsxcalendar/internal/utils"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/calendar"
)

// Window is the span of a foreign header. It has day and month but no year.
type Window struct {
	StartDay   int
	StartMonth int
	EndDay     int
	EndMonth   int
}

// CrossesYear reports a window whose months decrease, i.e. it wraps into the next year.
func (w Window) CrossesYear() bool { return w.EndMonth < w.StartMonth }

func (w Window) String() string {
	return fmt.Sprintf("%02d.%02d-%02d.%02d", w.StartDay, w.StartMonth, w.EndDay, w.EndMonth)
}

// ParseToken parses one "DD.MM" header token.
func ParseToken(token string) (day, month int, err error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: token %q is not DD.MM", ErrMalformedHeader, token)
	}
	day, derr := strconv.Atoi(parts[0])
	month, merr := strconv.Atoi(parts[1])
	if derr != nil || merr != nil || day < 1 || day > 31 || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: token %q is not DD.MM", ErrMalformedHeader, token)
	}
	return day, month, nil
}

// ParseHeader reads the window from the first and last header tokens.
func ParseHeader(tokens []string) (Window, error) {
	if len(tokens) == 0 {
		return Window{}, fmt.Errorf("%w: no date columns", ErrMalformedHeader)
	}
	var (
		w   Window
		err error
	)
	if w.StartDay, w.StartMonth, err = ParseToken(tokens[0]); err != nil {
		return Window{}, err
	}
	if w.EndDay, w.EndMonth, err = ParseToken(tokens[len(tokens)-1]); err != nil {
		return Window{}, err
	}
	utils.Log.Debugf("Import window %s", w)
	return w, nil
}

type crossing struct {
	calendar bool
	foreign  bool
}

// containmentRule returns an empty string when the window is contained, or the rejection reason.
type containmentRule func(cal calendar.Range, w Window) string

func startBeforeCalendar(cal calendar.Range, w Window) bool {
	return w.StartMonth == int(cal.Start.Month()) && w.StartDay < cal.Start.Day()
}

func endAfterCalendar(cal calendar.Range, w Window) bool {
	return w.EndMonth == int(cal.End.Month()) && w.EndDay > cal.End.Day()
}

func bothEnds(cal calendar.Range, w Window) string {
	if w.StartMonth < int(cal.Start.Month()) || w.EndMonth > int(cal.End.Month()) {
		return "months outside calendar months"
	}
	if startBeforeCalendar(cal, w) {
		return "import start day before calendar start"
	}
	if endAfterCalendar(cal, w) {
		return "import end day after calendar end"
	}
	return ""
}

// containment is the month-level decision table keyed by whether the
// calendar and the foreign window cross a year boundary.
var containment = map[crossing]containmentRule{
	{calendar: false, foreign: false}: bothEnds,
	{calendar: false, foreign: true}: func(calendar.Range, Window) string {
		return "import crosses a year boundary but the calendar does not"
	},
	{calendar: true, foreign: true}: bothEnds,
	{calendar: true, foreign: false}: func(cal calendar.Range, w Window) string {
		if w.StartMonth < int(cal.Start.Month()) {
			return "import start month before calendar start month"
		}
		if startBeforeCalendar(cal, w) {
			return "import start day before calendar start"
		}
		return ""
	},
}

// CheckContainment runs the month-level containment test. It must pass before a year is assigned.
func CheckContainment(cal calendar.Range, w Window) error {
	key := crossing{calendar: cal.CrossesYear(), foreign: w.CrossesYear()}
	if reason := containment[key](cal, w); reason != "" {
		return &ImportRangeError{Calendar: cal, Window: w, Reason: reason}
	}
	utils.Log.Debugf("Import window %s within calendar %s (calendar crosses year: %t, import crosses year: %t)",
		w, cal, key.calendar, key.foreign)
	return nil
}

// InferStart assigns a year to the window start: the calendar's start year,
// or its end year if that would put the import before the calendar.
func InferStart(cal calendar.Range, w Window) (time.Time, error) {
	start, ok := civil(cal.Start.Year(), w.StartMonth, w.StartDay)
	if !ok || start.Before(cal.Start) {
		start, ok = civil(cal.End.Year(), w.StartMonth, w.StartDay)
	}
	if !ok {
		return time.Time{}, &ImportRangeError{Calendar: cal, Window: w, Reason: "import start is not a valid date"}
	}
	return start, nil
}

func civil(year, month, day int) (time.Time, bool) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t, t.Month() == time.Month(month) && t.Day() == day
}
