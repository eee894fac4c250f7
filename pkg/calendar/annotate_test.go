package calendar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolidayMapExactBeatsRecurring(t *testing.T) {
	h, err := NewHolidayMap(map[string]string{
		"12-24":      "Christmas Eve",
		"2024-12-24": "Company closed",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, h.Len())

	desc, ok := h.Lookup(date(t, "2024-12-24"))
	require.True(t, ok)
	assert.Equal(t, "Company closed", desc)

	desc, ok = h.Lookup(date(t, "2025-12-24"))
	require.True(t, ok)
	assert.Equal(t, "Christmas Eve", desc)

	_, ok = h.Lookup(date(t, "2025-12-23"))
	assert.False(t, ok)
}

func TestHolidayMapRejectsBadKey(t *testing.T) {
	_, err := NewHolidayMap(map[string]string{"24/12": "x"})
	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestHolidayMapMergeOverrides(t *testing.T) {
	var h HolidayMap
	require.NoError(t, h.Add("01-01", "New Year"))
	other, err := NewHolidayMap(map[string]string{"01-01": "Nyårsdagen", "2024-06-21": "Midsommarafton"})
	require.NoError(t, err)
	h.Merge(other)

	desc, _ := h.Lookup(date(t, "2024-01-01"))
	assert.Equal(t, "Nyårsdagen", desc)

	within := h.Within(mustRange(t, "2023-12-01", "2024-12-31"))
	require.Len(t, within, 2)
	assert.Equal(t, "2024-01-01", within[0].Date.Format(DateLayout))
	assert.True(t, within[0].Recurring)
	assert.False(t, within[1].Recurring)
}

func TestAnnotateWeekend(t *testing.T) {
	a := Annotator{ContentRows: 3}
	marks, overrides := a.Annotate(date(t, "2024-01-06"))
	assert.True(t, marks.Weekend)
	assert.False(t, marks.Holiday)
	require.Len(t, overrides, 4)
	assert.Equal(t, DayHeader, overrides[0].Kind)
	for i, o := range overrides[1:] {
		assert.Equal(t, Override{Kind: ContentCell, Row: i}, o)
	}

	_, overrides = a.Annotate(date(t, "2024-01-05"))
	assert.Empty(t, overrides)
}

func TestAnnotateHolidayOnWeekday(t *testing.T) {
	h, err := NewHolidayMap(map[string]string{"2024-06-06": "Midsummer"})
	require.NoError(t, err)
	a := Annotator{Holidays: h, ContentRows: 2}

	marks, overrides := a.Annotate(date(t, "2024-06-06"))
	assert.False(t, marks.Weekend)
	assert.True(t, marks.Holiday)
	require.Len(t, overrides, 4)
	assert.Equal(t, Override{Kind: MarkerCell, Row: 2, Text: "!", Note: "Midsummer"}, overrides[3])
}

func TestAnnotateHolidayOnWeekend(t *testing.T) {
	h, err := NewHolidayMap(map[string]string{"12-25": "Christmas"})
	require.NoError(t, err)
	a := Annotator{Holidays: h}

	// 2022-12-25 is a Sunday.
	marks, overrides := a.Annotate(date(t, "2022-12-25"))
	assert.True(t, marks.Weekend)
	assert.True(t, marks.Holiday)
	require.Len(t, overrides, 2)
	assert.Equal(t, MarkerCell, overrides[1].Kind)
	assert.Equal(t, "Christmas", overrides[1].Note)
}
