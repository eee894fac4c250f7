package calendar

import (
	"fmt"
	"strconv"
	"time"
)

// Granularity selects one of the three header bands.
type Granularity int

const (
	Week Granularity = iota
	Month
	Year

	granularityCount = 3
)

// Granularities lists the header bands in the order they are closed on a transition.
var Granularities = [granularityCount]Granularity{Week, Month, Year}

func (g Granularity) String() string {
	switch g {
	case Week:
		return "week"
	case Month:
		return "month"
	case Year:
		return "year"
	}
	return "unknown"
}

// PeriodKey holds the ISO week number, month and year of one date.
type PeriodKey struct {
	Week  int
	Month int
	Year  int
}

// KeyOf computes the period key of a date.
func KeyOf(d time.Time) PeriodKey {
	_, week := d.ISOWeek()
	return PeriodKey{Week: week, Month: int(d.Month()), Year: d.Year()}
}

// Value returns the component of the key for g.
func (k PeriodKey) Value(g Granularity) int {
	switch g {
	case Week:
		return k.Week
	case Month:
		return k.Month
	default:
		return k.Year
	}
}

// Parity picks one of two alternating styles for a band.
type Parity int

const (
	Even Parity = iota
	Odd
)

func (p Parity) String() string {
	if p == Odd {
		return "odd"
	}
	return "even"
}

// ParityOf derives the parity from the period's own number.
func ParityOf(value int) Parity {
	if value%2 != 0 {
		return Odd
	}
	return Even
}

// Run is a closed span of day indices that share one period value.
type Run struct {
	Granularity Granularity
	Start       int // first day index, inclusive
	End         int // last day index, inclusive
	Value       int
	Label       string
	Parity      Parity
}

// Single reports a one-day run, which must be written as a plain cell instead of a merge.
func (r Run) Single() bool { return r.Start == r.End }

// Width is the number of days covered.
func (r Run) Width() int { return r.End - r.Start + 1 }

func (r Run) String() string {
	return fmt.Sprintf("%s %s [%d..%d] %s", r.Granularity, r.Label, r.Start, r.End, r.Parity)
}

// Label renders the header text of a period value.
func Label(g Granularity, value int) string {
	switch g {
	case Week:
		return "W" + strconv.Itoa(value)
	case Month:
		return time.Month(value).String()[:3]
	default:
		return strconv.Itoa(value)
	}
}

func newRun(g Granularity, start, end, value int) Run {
	return Run{
		Granularity: g,
		Start:       start,
		End:         end,
		Value:       value,
		Label:       Label(g, value),
		Parity:      ParityOf(value),
	}
}

// RunState is the merge state carried from one day of the walk to the next:
// one open cursor per granularity plus the previous day's key.
// The zero value is the state before the first day.
type RunState struct {
	started bool
	last    int
	prev    PeriodKey
	open    [granularityCount]int
}

// Step feeds the next day of the walk. It returns the new state and every run
// the day closed. Labels and parity of a closed run come from the previous day,
// the last day of that run. The first day opens all three runs and closes none.
// Indices must be fed in ascending, contiguous order.
func (s RunState) Step(index int, date time.Time) (RunState, []Run) {
	key := KeyOf(date)
	if !s.started {
		next := RunState{started: true, last: index, prev: key}
		for _, g := range Granularities {
			next.open[g] = index
		}
		return next, nil
	}

	next := s
	var closed []Run
	for _, g := range Granularities {
		if key.Value(g) == s.prev.Value(g) {
			continue
		}
		closed = append(closed, newRun(g, s.open[g], s.last, s.prev.Value(g)))
		next.open[g] = index
	}
	next.last = index
	next.prev = key
	return next, closed
}

// Finish closes the three runs still open after the last day, using the last
// processed day's values. It returns nil if no day was ever fed.
func (s RunState) Finish() []Run {
	if !s.started {
		return nil
	}
	runs := make([]Run, 0, granularityCount)
	for _, g := range Granularities {
		runs = append(runs, newRun(g, s.open[g], s.last, s.prev.Value(g)))
	}
	return runs
}

// Runs walks the whole range and returns every run in emission order.
func Runs(r Range) []Run {
	var (
		state RunState
		all   []Run
	)
	for i, d := range r.Days() {
		var closed []Run
		state, closed = state.Step(i, d)
		all = append(all, closed...)
	}
	return append(all, state.Finish()...)
}
