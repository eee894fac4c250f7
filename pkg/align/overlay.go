package align

import (
	"fmt"
	"strings"
	"time"

	"github.com/xlsxcalendar/xlsxcalendar/internal/utils"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/calendar"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/config"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/grid"
)

// Attendance codes found in foreign grids.
const (
	CodeWeekend  = "O"
	CodeHoliday  = "H"
	CodePlanned  = "P"
	CodeApproved = "A"
)

// Record is one foreign row: an identifying key and one code per day column.
type Record struct {
	Key   string
	Codes []string
}

// Dataset is a parsed foreign attendance grid.
type Dataset struct {
	// Header holds the DD.MM tokens of the day columns.
	Header  []string
	Records []Record
}

// Keys returns the record keys in order.
func (d Dataset) Keys() []string {
	keys := make([]string, len(d.Records))
	for i, r := range d.Records {
		keys[i] = r.Key
	}
	return keys
}

// Cell is one planned write onto the calendar grid.
type Cell struct {
	Record int
	Key    string
	Index  int
	Date   time.Time
	Code   string
}

// Overlay is a fully validated import, ready to be applied.
type Overlay struct {
	Window Window
	Start  time.Time
	End    time.Time
	Offset int
	Cells  []Cell
	// Weekends counts the 'O' cells that were verified against the calendar.
	Weekends int
	Records  int
}

// Plan checks the dataset against the calendar and computes every cell to
// write. Nothing is returned on error, so a failed import applies no cells.
func Plan(cal calendar.Range, ds Dataset) (*Overlay, error) {
	w, err := ParseHeader(ds.Header)
	if err != nil {
		return nil, err
	}
	if err := CheckContainment(cal, w); err != nil {
		return nil, err
	}
	start, err := InferStart(cal, w)
	if err != nil {
		return nil, err
	}
	o := &Overlay{
		Window:  w,
		Start:   start,
		End:     inferEnd(start, w),
		Offset:  calendar.DaysBetween(cal.Start, start),
		Records: len(ds.Records),
	}
	utils.Log.Debugf("Import starts %s, offset %d", start.Format(calendar.DateLayout), o.Offset)

	total := cal.TotalDays()
	for r, rec := range ds.Records {
		for i, raw := range rec.Codes {
			code := strings.TrimSpace(raw)
			if code == "" {
				continue
			}
			index := o.Offset + i
			if index < 0 || index >= total {
				return nil, &ImportRangeError{
					Calendar: cal,
					Window:   w,
					Reason:   fmt.Sprintf("%q has a code at day %d, past the calendar end", rec.Key, i+1),
				}
			}
			date := cal.DateAt(index)
			switch code {
			case CodeWeekend:
				if !calendar.IsWeekend(date) {
					return nil, &ImportAlignmentError{Key: rec.Key, Index: index, Date: date}
				}
				o.Weekends++
			case CodeHoliday, CodePlanned, CodeApproved:
				o.Cells = append(o.Cells, Cell{Record: r, Key: rec.Key, Index: index, Date: date, Code: code})
			default:
				return nil, &UnrecognizedCodeError{Key: rec.Key, Code: code, Date: date}
			}
		}
	}
	return o, nil
}

func inferEnd(start time.Time, w Window) time.Time {
	year := start.Year()
	if w.CrossesYear() {
		year++
	}
	return time.Date(year, time.Month(w.EndMonth), w.EndDay, 0, 0, 0, 0, time.UTC)
}

// Apply writes the planned cells and the legend below the content rows.
func (o *Overlay) Apply(sink grid.Sink, layout config.Layout) error {
	for _, c := range o.Cells {
		row, col := layout.ContentRow(c.Record), layout.Column(c.Index)
		var err error
		switch c.Code {
		case CodeHoliday:
			err = sink.Write(row, col, "", grid.StyleWeekend)
		case CodePlanned:
			err = sink.Write(row, col, CodePlanned, grid.StylePlannedAbsence)
		case CodeApproved:
			err = sink.Write(row, col, CodeApproved, grid.StyleApprovedAbsence)
		}
		if err != nil {
			return fmt.Errorf("write %s for %q on %s: %w", c.Code, c.Key, c.Date.Format(calendar.DateLayout), err)
		}
	}
	return o.legend(sink, layout)
}

func (o *Overlay) legend(sink grid.Sink, layout config.Layout) error {
	col := layout.ContentCol()
	for i, entry := range []struct {
		text  string
		style grid.Style
	}{
		{"Legend", grid.StyleLegend},
		{fmt.Sprintf("Approved absence=%q", CodeApproved), grid.StyleLegendApprovedAbsence},
		{fmt.Sprintf("Planned absence=%q", CodePlanned), grid.StyleLegendPlannedAbsence},
	} {
		if err := sink.Write(layout.ContentRow(o.Records+1+i), col, entry.text, entry.style); err != nil {
			return err
		}
	}
	return nil
}

// Run plans the dataset against the configured calendar and applies it.
func Run(cfg *config.Config, ds Dataset, sink grid.Sink) (*Overlay, error) {
	o, err := Plan(cfg.Range, ds)
	if err != nil {
		return nil, err
	}
	if err := o.Apply(sink, cfg.Layout); err != nil {
		return nil, err
	}
	utils.Log.Infof("Imported %d records, %d cells, %d weekend days verified", o.Records, len(o.Cells), o.Weekends)
	return o, nil
}
