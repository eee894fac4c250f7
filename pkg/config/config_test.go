package config

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/calendar"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/grid"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/whttp"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/xlsx"
)

func newViper(t *testing.T, doc string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(doc)))
	return v
}

func load(t *testing.T, v *viper.Viper, o Overrides) (*Config, error) {
	t.Helper()
	return Load(context.Background(), v, o, whttp.NewClient(0, 5*time.Second))
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := calendar.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestLoadDefaults(t *testing.T) {
	c, err := load(t, newViper(t, "start_date: 2024-01-01\nend_date: 2024-12-31\n"), Overrides{})
	require.NoError(t, err)

	assert.Equal(t, 366, c.Range.TotalDays())
	assert.Equal(t, DefaultOutputFile, c.OutputFile)
	assert.Equal(t, DefaultWorksheetName, c.WorksheetName)
	assert.Equal(t, DefaultTabColor, c.WorksheetTabColor)
	assert.Equal(t, "Mo", c.WeekDays[0])
	assert.Equal(t, DefaultContentRows, c.ContentNumRows)
	assert.Empty(t, c.ContentEntries)
	assert.Equal(t, DefaultLayout(), c.Layout)
	assert.InDelta(t, 13*1.1, c.ContentColWidth(), 1e-9)
	assert.Equal(t, xlsx.DefaultFormats(), c.Formats)
}

func TestLoadCommandLineWins(t *testing.T) {
	v := newViper(t, "start_date: 2024-01-01\nend_date: 2024-12-31\noutput_file: cal.xlsx\nimporter_file: a.csv\n")
	c, err := load(t, v, Overrides{StartDate: "2025-01-01", EndDate: "2025-01-31", OutputFile: "other.xlsx", ImportFile: "b.csv"})
	require.NoError(t, err)
	assert.Equal(t, day(t, "2025-01-01"), c.Range.Start)
	assert.Equal(t, "other.xlsx", c.OutputFile)
	assert.Equal(t, "b.csv", c.ImporterFile)

	// A single date on the command line is not enough to override the file.
	c, err = load(t, v, Overrides{StartDate: "2025-01-01"})
	require.NoError(t, err)
	assert.Equal(t, day(t, "2024-01-01"), c.Range.Start)
}

func TestLoadMissingDates(t *testing.T) {
	_, err := load(t, newViper(t, "worksheet_name: x\n"), Overrides{})
	var cfgErr *calendar.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
}

func TestLoadLanguage(t *testing.T) {
	c, err := load(t, newViper(t, "start_date: 2024-01-01\nend_date: 2024-01-02\nworksheet_day_of_week_language: sv\n"), Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "Lö", c.WeekDays[5])

	_, err = load(t, newViper(t, "start_date: 2024-01-01\nend_date: 2024-01-02\nworksheet_day_of_week_language: de\n"), Overrides{})
	var cfgErr *calendar.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "worksheet_day_of_week_language", cfgErr.Field)
}

func TestLoadContentEntries(t *testing.T) {
	doc := `
start_date: 2024-01-01
end_date: 2024-01-31
content_heading: Team
content_entries:
  - Alice Andersson
  - Bob
`
	c, err := load(t, newViper(t, doc), Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 2, c.ContentNumRows)
	assert.Equal(t, []string{"Alice Andersson", "Bob"}, c.ContentEntries)
	assert.InDelta(t, 15*1.1, c.ContentColWidth(), 1e-9)

	c.SetContentEntries([]string{"x", "y", "z"})
	assert.Equal(t, 3, c.ContentNumRows)
}

func TestLoadHolidaysMergeOrder(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "holidays_se.yaml")
	second := filepath.Join(dir, "holidays_extra.yaml")
	require.NoError(t, os.WriteFile(first, []byte("holidays:\n  2024-06-21: Midsommarafton\n  12-25: Juldagen\n"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("holidays:\n  \"12-25\": Christmas Day\n"), 0o600))

	doc := "start_date: 2024-01-01\nend_date: 2024-12-31\nholiday_imports:\n  - " + first + "\n  - " + second + "\nholidays:\n  2024-06-21: Local midsummer\n  05-01: First of May\n"
	c, err := load(t, newViper(t, doc), Overrides{})
	require.NoError(t, err)

	desc, ok := c.Holidays.Lookup(day(t, "2024-06-21"))
	require.True(t, ok)
	assert.Equal(t, "Local midsummer", desc)
	desc, _ = c.Holidays.Lookup(day(t, "2024-12-25"))
	assert.Equal(t, "Christmas Day", desc)
	desc, _ = c.Holidays.Lookup(day(t, "2024-05-01"))
	assert.Equal(t, "First of May", desc)
}

func TestLoadBrokenHolidayImportKeepsLocal(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("holidays:\n  \"01-06\": Epiphany\n"), 0o600))

	doc := "start_date: 2024-01-01\nend_date: 2024-12-31\nholiday_imports:\n  - " + good + "\n  - " + filepath.Join(dir, "missing.yaml") + "\nholidays:\n  \"05-01\": First of May\n"
	c, err := load(t, newViper(t, doc), Overrides{})
	require.NoError(t, err)

	_, ok := c.Holidays.Lookup(day(t, "2024-01-06"))
	assert.False(t, ok, "all imports are abandoned on failure")
	_, ok = c.Holidays.Lookup(day(t, "2024-05-01"))
	assert.True(t, ok)
}

func TestLoadRemoteHolidayFeed(t *testing.T) {
	accept := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case accept <- r.Header.Get("Accept"):
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"date":"2024-06-06","localName":"Sveriges nationaldag","name":"National Day"},{"date":"2024-12-26","name":"St. Stephen's Day"}]`))
	}))
	defer srv.Close()

	doc := "start_date: 2024-01-01\nend_date: 2024-12-31\nholiday_imports:\n  - " + srv.URL + "/api/v3/PublicHolidays/2024/SE\n"
	c, err := load(t, newViper(t, doc), Overrides{})
	require.NoError(t, err)

	desc, ok := c.Holidays.Lookup(day(t, "2024-06-06"))
	require.True(t, ok)
	assert.Equal(t, "Sveriges nationaldag", desc)
	desc, _ = c.Holidays.Lookup(day(t, "2024-12-26"))
	assert.Equal(t, "St. Stephen's Day", desc)
	got := <-accept
	assert.True(t, strings.HasPrefix(got, "application/json"), "Accept was %q", got)
}

func TestLoadBadLocalHolidayKey(t *testing.T) {
	_, err := load(t, newViper(t, "start_date: 2024-01-01\nend_date: 2024-12-31\nholidays:\n  christmas: yes\n"), Overrides{})
	var cfgErr *calendar.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
}

func TestLoadThemeThenLocalFormats(t *testing.T) {
	dir := t.TempDir()
	theme := filepath.Join(dir, "theme_dark.yaml")
	require.NoError(t, os.WriteFile(theme, []byte(`
cell_formats:
  weekend: {border: 1, align: center, fg_color: "#333333"}
  day: {border: 1, fg_color: "#111111"}
`), 0o600))

	doc := `
start_date: 2024-01-01
end_date: 2024-01-31
theme_imports: ` + theme + `
cell_formats:
  day:
    bold: true
    border: 2
    fg_color: "#222222"
`
	c, err := load(t, newViper(t, doc), Overrides{})
	require.NoError(t, err)
	assert.Equal(t, xlsx.Format{Border: 1, Align: "center", FgColor: "#333333"}, c.Formats[grid.StyleWeekend])
	assert.Equal(t, xlsx.Format{Bold: true, Border: 2, FgColor: "#222222"}, c.Formats[grid.StyleDay])
	assert.Equal(t, xlsx.DefaultFormats()[grid.StyleWeekOdd], c.Formats[grid.StyleWeekOdd])
}

func TestParseHolidaysObjectFeed(t *testing.T) {
	h, err := ParseHolidays([]byte(`{"holidays":[{"date":"2025-01-01","name":"New Year"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 1, h.Len())

	_, err = ParseHolidays([]byte(`[{"date":"2025-01-01",`))
	assert.Error(t, err)
}
