package calendar

import "time"

// HolidayMarker is written under the content rows of a holiday column.
const HolidayMarker = "!"

// OverrideKind tells which cell of a day column an Override targets.
type OverrideKind int

const (
	// DayHeader covers the day-of-week and day-of-month header cells.
	DayHeader OverrideKind = iota
	// ContentCell is one content row; Override.Row is its zero-based offset.
	ContentCell
	// MarkerCell is the row right below the last content row.
	MarkerCell
)

// Override is one weekend-styled write for a single day column.
type Override struct {
	Kind OverrideKind
	Row  int
	Text string
	Note string
}

// Marks is the classification of one day.
type Marks struct {
	Weekend bool
	Holiday bool
	Note    string
}

// Blocked reports days that get weekend styling.
func (m Marks) Blocked() bool { return m.Weekend || m.Holiday }

// Annotator decides weekend and holiday status for each day of the walk.
type Annotator struct {
	Holidays    HolidayMap
	ContentRows int
}

// Classify returns the marks of d without producing any writes.
func (a Annotator) Classify(d time.Time) Marks {
	m := Marks{Weekend: IsWeekend(d)}
	if desc, ok := a.Holidays.Lookup(d); ok {
		m.Holiday = true
		m.Note = desc
	}
	return m
}

// Annotate classifies d and returns the overrides to apply to its column:
// the day header and every content row get blanked with weekend styling, and a
// holiday also gets the marker cell carrying its description as a note.
func (a Annotator) Annotate(d time.Time) (Marks, []Override) {
	m := a.Classify(d)
	if !m.Blocked() {
		return m, nil
	}
	out := make([]Override, 0, a.ContentRows+2)
	out = append(out, Override{Kind: DayHeader})
	for row := 0; row < a.ContentRows; row++ {
		out = append(out, Override{Kind: ContentCell, Row: row})
	}
	if m.Holiday {
		out = append(out, Override{Kind: MarkerCell, Row: a.ContentRows, Text: HolidayMarker, Note: m.Note})
	}
	return m, out
}
