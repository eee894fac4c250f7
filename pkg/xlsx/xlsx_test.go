package xlsx

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/grid"
	"github.com/xuri/excelize/v2"
)

func TestWorkbookRoundTrip(t *testing.T) {
	wb, err := New("- Calendar -", DefaultFormats())
	require.NoError(t, err)

	require.NoError(t, wb.MergeRange(4, 1, 7, "W1", grid.StyleWeekOdd))
	require.NoError(t, wb.WriteString(4, 8, "", grid.StyleWeekEven))
	require.NoError(t, wb.Write(6, 1, 6, grid.StyleWeekend))
	require.NoError(t, wb.Write(8, 1, "!", grid.StyleBoldBorderCenter))
	require.NoError(t, wb.WriteComment(8, 1, "Midsummer"))
	require.NoError(t, wb.SetColumnWidth(1, 10, 3.5))
	require.NoError(t, wb.SetTabColor("#ff9966"))
	require.NoError(t, wb.FreezePanes(7, 1))
	assert.Error(t, wb.MergeRange(4, 3, 3, "bad", grid.StyleWeekOdd))

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"- Calendar -"}, f.GetSheetList())

	merges, err := f.GetMergeCells("- Calendar -")
	require.NoError(t, err)
	require.Len(t, merges, 1)
	assert.Equal(t, "B5", merges[0].GetStartAxis())
	assert.Equal(t, "H5", merges[0].GetEndAxis())
	assert.Equal(t, "W1", merges[0].GetCellValue())

	v, err := f.GetCellValue("- Calendar -", "B7")
	require.NoError(t, err)
	assert.Equal(t, "6", v)
	v, err = f.GetCellValue("- Calendar -", "B9")
	require.NoError(t, err)
	assert.Equal(t, "!", v)

	rows, err := ReadRows(path)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(rows), 9)
}

func TestMergeFormatsReplacesByName(t *testing.T) {
	merged := MergeFormats(DefaultFormats(), map[string]Format{
		"Weekend": {Border: 1, FgColor: "#000000"},
	})
	assert.Equal(t, Format{Border: 1, FgColor: "#000000"}, merged[grid.StyleWeekend])
	assert.Equal(t, DefaultFormats()[grid.StyleDay], merged[grid.StyleDay])
}

func TestNewRejectsBadSheetName(t *testing.T) {
	_, err := New("bad/name", DefaultFormats())
	assert.Error(t, err)
}
