package xlsx

import (
	"fmt"
	"strings"

	"github.com/xlsxcalendar/xlsxcalendar/internal/utils"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/grid"
	"github.com/xuri/excelize/v2"
)

// CommentAuthor is shown on holiday notes.
const CommentAuthor = "xlsxcalendar"

// Workbook is a single-sheet workbook that implements grid.Sink.
type Workbook struct {
	file   *excelize.File
	sheet  string
	styles map[grid.Style]int
}

// New creates an in-memory workbook with one sheet and registers every format.
func New(sheet string, formats map[grid.Style]Format) (*Workbook, error) {
	f := excelize.NewFile()
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("could not name worksheet %q: %w", sheet, err)
		}
	}
	wb := &Workbook{file: f, sheet: sheet, styles: make(map[grid.Style]int, len(formats))}
	for name, format := range formats {
		id, err := f.NewStyle(format.toStyle())
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("invalid cell format %q: %w", name, err)
		}
		wb.styles[name] = id
	}
	return wb, nil
}

// Sheet returns the worksheet name.
func (w *Workbook) Sheet() string { return w.sheet }

func cellName(row, col int) (string, error) {
	return excelize.CoordinatesToCellName(col+1, row+1)
}

func (w *Workbook) style(cell string, style grid.Style) error {
	return w.styleRange(cell, cell, style)
}

func (w *Workbook) styleRange(from, to string, style grid.Style) error {
	if style == grid.StyleNone {
		return nil
	}
	id, ok := w.styles[style]
	if !ok {
		utils.Log.Debugf("No format registered for style %q", style)
		return nil
	}
	return w.file.SetCellStyle(w.sheet, from, to, id)
}

func (w *Workbook) Write(row, col int, value any, style grid.Style) error {
	cell, err := cellName(row, col)
	if err != nil {
		return err
	}
	if err := w.file.SetCellValue(w.sheet, cell, value); err != nil {
		return err
	}
	return w.style(cell, style)
}

func (w *Workbook) WriteString(row, col int, s string, style grid.Style) error {
	cell, err := cellName(row, col)
	if err != nil {
		return err
	}
	if err := w.file.SetCellStr(w.sheet, cell, s); err != nil {
		return err
	}
	return w.style(cell, style)
}

func (w *Workbook) WriteComment(row, col int, text string) error {
	cell, err := cellName(row, col)
	if err != nil {
		return err
	}
	return w.file.AddComment(w.sheet, excelize.Comment{Cell: cell, Author: CommentAuthor, Text: text})
}

func (w *Workbook) MergeRange(row, colStart, colEnd int, label string, style grid.Style) error {
	if colEnd <= colStart {
		return fmt.Errorf("merge range r%d c%d..%d must span at least two cells", row, colStart, colEnd)
	}
	from, err := cellName(row, colStart)
	if err != nil {
		return err
	}
	to, err := cellName(row, colEnd)
	if err != nil {
		return err
	}
	if err := w.file.MergeCell(w.sheet, from, to); err != nil {
		return err
	}
	if err := w.file.SetCellValue(w.sheet, from, label); err != nil {
		return err
	}
	return w.styleRange(from, to, style)
}

// SetColumnWidth sets the width of columns colStart..colEnd.
func (w *Workbook) SetColumnWidth(colStart, colEnd int, width float64) error {
	from, err := excelize.ColumnNumberToName(colStart + 1)
	if err != nil {
		return err
	}
	to, err := excelize.ColumnNumberToName(colEnd + 1)
	if err != nil {
		return err
	}
	return w.file.SetColWidth(w.sheet, from, to, width)
}

// SetTabColor colors the worksheet tab. Accepts "#RRGGBB" or "RRGGBB".
func (w *Workbook) SetTabColor(color string) error {
	if color == "" {
		return nil
	}
	rgb := strings.ToUpper(strings.TrimPrefix(color, "#"))
	return w.file.SetSheetProps(w.sheet, &excelize.SheetPropsOptions{TabColorRGB: &rgb})
}

// FreezePanes keeps rows above row and columns left of col in view.
func (w *Workbook) FreezePanes(row, col int) error {
	top, err := cellName(row, col)
	if err != nil {
		return err
	}
	return w.file.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      col,
		YSplit:      row,
		TopLeftCell: top,
		ActivePane:  "bottomRight",
	})
}

// SaveAs writes the workbook to path.
func (w *Workbook) SaveAs(path string) error {
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("could not store workbook in %s: %w", path, err)
	}
	return nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// ReadRows returns every row of the first worksheet of an xlsx file as text.
func ReadRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s has no worksheets", path)
	}
	return f.GetRows(sheets[0])
}
