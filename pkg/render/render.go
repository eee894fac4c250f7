package render

import (
	"fmt"
	"time"

	"github.com/xlsxcalendar/xlsxcalendar/internal/utils"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/calendar"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/config"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/grid"
)

// DayColumnWidth fits a two digit day number.
const DayColumnWidth = 3.5

// Result summarizes one rendered calendar.
type Result struct {
	TotalDays int
	Runs      []calendar.Run
	Weekends  int
	Holidays  int
}

type renderer struct {
	cfg       *config.Config
	sink      grid.Sink
	annotator calendar.Annotator
	result    *Result
}

// Render writes the base calendar: static layout, header bands, day headers,
// and weekend/holiday overrides. Writes inside the walk follow ascending day index.
func Render(cfg *config.Config, sink grid.Sink) (*Result, error) {
	r := &renderer{
		cfg:       cfg,
		sink:      sink,
		annotator: calendar.Annotator{Holidays: cfg.Holidays, ContentRows: cfg.ContentNumRows},
		result:    &Result{TotalDays: cfg.Range.TotalDays()},
	}
	if err := r.staticLayout(); err != nil {
		return nil, fmt.Errorf("static layout: %w", err)
	}

	var state calendar.RunState
	for index, date := range cfg.Range.Days() {
		var closed []calendar.Run
		state, closed = state.Step(index, date)
		for _, run := range closed {
			if err := r.writeRun(run); err != nil {
				return nil, err
			}
		}
		if err := r.writeDay(index, date); err != nil {
			return nil, err
		}
	}
	for _, run := range state.Finish() {
		if err := r.writeRun(run); err != nil {
			return nil, err
		}
	}

	utils.Log.Debugf("Rendered %d days, %d runs, %d weekend days, %d holidays",
		r.result.TotalDays, len(r.result.Runs), r.result.Weekends, r.result.Holidays)
	return r.result, nil
}

func (r *renderer) bandRow(g calendar.Granularity) int {
	switch g {
	case calendar.Week:
		return r.cfg.Layout.WeekRow
	case calendar.Month:
		return r.cfg.Layout.MonthRow
	default:
		return r.cfg.Layout.YearRow
	}
}

// BandStyle picks the odd or even style of a header band.
func BandStyle(g calendar.Granularity, p calendar.Parity) grid.Style {
	odd := p == calendar.Odd
	switch g {
	case calendar.Week:
		if odd {
			return grid.StyleWeekOdd
		}
		return grid.StyleWeekEven
	case calendar.Month:
		if odd {
			return grid.StyleMonthOdd
		}
		return grid.StyleMonthEven
	default:
		if odd {
			return grid.StyleYearOdd
		}
		return grid.StyleYearEven
	}
}

func (r *renderer) writeRun(run calendar.Run) error {
	r.result.Runs = append(r.result.Runs, run)
	row := r.bandRow(run.Granularity)
	style := BandStyle(run.Granularity, run.Parity)
	utils.Log.Debugf("Close %s", run)
	if run.Single() {
		// One cell cannot be merged and has no room for the label.
		return r.sink.WriteString(row, r.cfg.Layout.Column(run.Start), "", style)
	}
	return r.sink.MergeRange(row, r.cfg.Layout.Column(run.Start), r.cfg.Layout.Column(run.End), run.Label, style)
}

func (r *renderer) writeDay(index int, date time.Time) error {
	l := r.cfg.Layout
	col := l.Column(index)
	marks, overrides := r.annotator.Annotate(date)

	headerStyle := grid.StyleDay
	if marks.Blocked() {
		headerStyle = grid.StyleWeekend
	}
	if marks.Weekend {
		r.result.Weekends++
	}
	if marks.Holiday {
		r.result.Holidays++
	}

	if err := r.sink.Write(l.DayOfWeekRow, col, r.cfg.WeekDays[calendar.ISOWeekday(date)-1], headerStyle); err != nil {
		return err
	}
	if err := r.sink.Write(l.DayRow, col, date.Day(), headerStyle); err != nil {
		return err
	}
	if !marks.Blocked() {
		for row := 0; row < r.cfg.ContentNumRows; row++ {
			if err := r.sink.Write(l.ContentRow(row), col, "", grid.StyleBorder); err != nil {
				return err
			}
		}
		return nil
	}

	for _, o := range overrides {
		var err error
		switch o.Kind {
		case calendar.DayHeader:
			// Header cells were already written with the weekend style above.
		case calendar.ContentCell:
			err = r.sink.Write(l.ContentRow(o.Row), col, "", grid.StyleWeekend)
		case calendar.MarkerCell:
			if err = r.sink.Write(l.ContentRow(o.Row), col, o.Text, grid.StyleBoldBorderCenter); err == nil {
				err = r.sink.WriteComment(l.ContentRow(o.Row), col, o.Note)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) staticLayout() error {
	c, l := r.cfg, r.cfg.Layout
	contentCol := l.ContentCol()

	if err := r.sink.Write(0, contentCol, "Calendar "+c.Range.String(), grid.StyleBold); err != nil {
		return err
	}
	for _, label := range []struct {
		row  int
		text string
	}{
		{l.YearRow, "Year"},
		{l.MonthRow, "Month"},
		{l.WeekRow, "Week"},
	} {
		if err := r.sink.Write(label.row, contentCol, label.text, grid.StyleBoldItalic); err != nil {
			return err
		}
	}
	if err := r.sink.Write(l.DayRow, contentCol, c.ContentHeading, grid.StyleContentHeading); err != nil {
		return err
	}
	for row := 0; row < c.ContentNumRows; row++ {
		entry := ""
		if row < len(c.ContentEntries) {
			entry = c.ContentEntries[row]
		}
		if err := r.sink.Write(l.ContentRow(row), contentCol, entry, grid.StyleBorder); err != nil {
			return err
		}
	}

	layouter, ok := r.sink.(grid.Layouter)
	if !ok {
		return nil
	}
	if err := layouter.SetColumnWidth(contentCol, contentCol, c.ContentColWidth()); err != nil {
		return err
	}
	if err := layouter.SetColumnWidth(l.Column(0), l.Column(c.Range.TotalDays()-1), DayColumnWidth); err != nil {
		return err
	}
	if err := layouter.SetTabColor(c.WorksheetTabColor); err != nil {
		return err
	}
	return layouter.FreezePanes(l.ContentRow(0), l.StartCol)
}
