package grid

// Style names a cell format. Sinks translate names into their own format objects.
type Style string

const (
	StyleNone Style = ""

	// Configurable styles.
	StyleDay            Style = "day"
	StyleWeekend        Style = "weekend"
	StyleWeekOdd        Style = "week_odd"
	StyleWeekEven       Style = "week_even"
	StyleMonthOdd       Style = "month_odd"
	StyleMonthEven      Style = "month_even"
	StyleYearOdd        Style = "year_odd"
	StyleYearEven       Style = "year_even"
	StyleContentHeading Style = "content_heading"

	// Fixed styles.
	StyleBold             Style = "bold"
	StyleBoldBorder       Style = "bold_border"
	StyleBoldBorderCenter Style = "bold_border_center"
	StyleBorder           Style = "border"
	StyleBorderCenter     Style = "border_center"
	StyleBoldItalic       Style = "bold_italic"

	// Styles used by importers.
	StyleApprovedAbsence       Style = "approved_absence"
	StylePlannedAbsence        Style = "planned_absence"
	StyleLegend                Style = "legend"
	StyleLegendApprovedAbsence Style = "legend_approved_absence"
	StyleLegendPlannedAbsence  Style = "legend_planned_absence"
)

// ConfigurableStyles can be overridden from theme imports and cell_formats.
var ConfigurableStyles = []Style{
	StyleDay, StyleWeekend,
	StyleWeekOdd, StyleWeekEven,
	StyleMonthOdd, StyleMonthEven,
	StyleYearOdd, StyleYearEven,
	StyleContentHeading,
}

// Sink receives grid writes. Rows and columns are zero-based.
type Sink interface {
	Write(row, col int, value any, style Style) error
	WriteString(row, col int, s string, style Style) error
	WriteComment(row, col int, text string) error
	MergeRange(row, colStart, colEnd int, label string, style Style) error
}

// Layouter is implemented by sinks that support sheet-level presentation.
// Renderers skip these calls for sinks that do not implement it.
type Layouter interface {
	SetColumnWidth(colStart, colEnd int, width float64) error
	SetTabColor(color string) error
	FreezePanes(row, col int) error
}
