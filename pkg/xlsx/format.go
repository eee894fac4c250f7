package xlsx

import (
	"strings"

	"github.com/xlsxcalendar/xlsxcalendar/pkg/grid"
	"github.com/xuri/excelize/v2"
)

// Format is a cell format as written in the config file under cell_formats.
// Border follows the spreadsheet convention: 0 none, 1 thin, 2 medium.
type Format struct {
	Bold    bool   `mapstructure:"bold" yaml:"bold"`
	Italic  bool   `mapstructure:"italic" yaml:"italic"`
	Border  int    `mapstructure:"border" yaml:"border"`
	Align   string `mapstructure:"align" yaml:"align"`
	FgColor string `mapstructure:"fg_color" yaml:"fg_color"`
}

// DefaultFormats returns a fresh copy of the built-in format table.
func DefaultFormats() map[grid.Style]Format {
	return map[grid.Style]Format{
		grid.StyleBold:             {Bold: true},
		grid.StyleBoldBorder:       {Bold: true, Border: 1},
		grid.StyleBoldBorderCenter: {Bold: true, Border: 1, Align: "center"},
		grid.StyleBorder:           {Border: 1},
		grid.StyleBorderCenter:     {Border: 1, Align: "center"},
		grid.StyleBoldItalic:       {Bold: true, Italic: true},

		grid.StyleDay:            {Border: 1, Align: "center", FgColor: "#D9D9D9"},
		grid.StyleWeekend:        {Border: 1, Align: "center", FgColor: "#cf1020"},
		grid.StyleWeekOdd:        {Bold: true, Border: 2, Align: "center", FgColor: "#fae7b5"},
		grid.StyleWeekEven:       {Bold: true, Border: 2, Align: "center", FgColor: "#C5D9F1"},
		grid.StyleMonthOdd:       {Bold: true, Border: 2, Align: "center", FgColor: "#B8CCE4"},
		grid.StyleMonthEven:      {Bold: true, Border: 2, Align: "center", FgColor: "#95B3D7"},
		grid.StyleYearOdd:        {Bold: true, Border: 2, Align: "center", FgColor: "#B7DEE8"},
		grid.StyleYearEven:       {Bold: true, Border: 2, Align: "center", FgColor: "#DAEEF3"},
		grid.StyleContentHeading: {Bold: true, Border: 1, FgColor: "#ffa700"},

		grid.StyleApprovedAbsence:       {Border: 1, Align: "center", FgColor: "#00FF00"},
		grid.StylePlannedAbsence:        {Border: 1, Align: "center", FgColor: "#00B0F0"},
		grid.StyleLegend:                {Bold: true, Border: 2, Align: "center", FgColor: "#D9E1F2"},
		grid.StyleLegendApprovedAbsence: {Border: 1, FgColor: "#00FF00"},
		grid.StyleLegendPlannedAbsence:  {Border: 1, FgColor: "#00B0F0"},
	}
}

// MergeFormats returns base with every entry of overrides replacing the one with the same name.
func MergeFormats(base map[grid.Style]Format, overrides map[string]Format) map[grid.Style]Format {
	out := make(map[grid.Style]Format, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		out[grid.Style(strings.ToLower(k))] = v
	}
	return out
}

func (f Format) toStyle() *excelize.Style {
	s := &excelize.Style{}
	if f.Bold || f.Italic {
		s.Font = &excelize.Font{Bold: f.Bold, Italic: f.Italic}
	}
	if f.Border > 0 {
		for _, side := range []string{"left", "top", "right", "bottom"} {
			s.Border = append(s.Border, excelize.Border{Type: side, Color: "000000", Style: f.Border})
		}
	}
	if f.Align != "" {
		s.Alignment = &excelize.Alignment{Horizontal: f.Align}
	}
	if f.FgColor != "" {
		s.Fill = excelize.Fill{Type: "pattern", Color: []string{f.FgColor}, Pattern: 1}
	}
	return s
}
