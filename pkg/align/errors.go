package align

import (
	"errors"
	"fmt"
	"time"

	"github.com/xlsxcalendar/xlsxcalendar/pkg/calendar"
)

// ErrMalformedHeader is returned for a header that is not a list of DD.MM tokens.
var ErrMalformedHeader = errors.New("malformed import header")

// ImportRangeError reports a foreign window that does not fit inside the calendar.
type ImportRangeError struct {
	Calendar calendar.Range
	Window   Window
	Reason   string
}

func (e *ImportRangeError) Error() string {
	return fmt.Sprintf("imported file date range %s outside calendar range %s: %s", e.Window, e.Calendar, e.Reason)
}

// ImportAlignmentError reports an expected weekend ('O') that lands on a weekday.
type ImportAlignmentError struct {
	Key   string
	Index int
	Date  time.Time
}

func (e *ImportAlignmentError) Error() string {
	return fmt.Sprintf("the weekends in calendar and imports are not in sync: %q has 'O' on %s (%s, day %d)",
		e.Key, e.Date.Format(calendar.DateLayout), e.Date.Weekday(), e.Index)
}

// UnrecognizedCodeError reports an attendance code outside the known set.
type UnrecognizedCodeError struct {
	Key  string
	Code string
	Date time.Time
}

func (e *UnrecognizedCodeError) Error() string {
	return fmt.Sprintf("cannot recognize input %q for %q on %s", e.Code, e.Key, e.Date.Format(calendar.DateLayout))
}
