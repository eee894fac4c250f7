package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/viper"
	"github.com/xlsxcalendar/xlsxcalendar/internal/utils"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/calendar"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/grid"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/whttp"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/xlsx"
)

const (
	DefaultOutputFile     = "./output.xlsx"
	DefaultWorksheetName  = "- Calendar -"
	DefaultTabColor       = "#ff9966"
	DefaultContentHeading = "Title/Heading"
	DefaultContentRows    = 10

	// Average character width of Calibri 11p relative to the column width unit.
	charWidth = 1.1
)

var weekDays = map[string][7]string{
	"en": {"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"},
	"sv": {"Må", "Ti", "On", "To", "Fr", "Lö", "Sö"},
	"es": {"Lu", "Ma", "Mi", "Ju", "Vi", "Sá", "Do"},
	"fi": {"Ma", "Ti", "Ke", "To", "Pe", "La", "Su"},
}

// WeekDays returns the Monday-first label table for an ISO 639 language code.
func WeekDays(language string) ([7]string, error) {
	if language == "" {
		language = "en"
	}
	days, ok := weekDays[strings.ToLower(language)]
	if !ok {
		return [7]string{}, &calendar.ConfigurationError{Field: "worksheet_day_of_week_language", Reason: fmt.Sprintf("not a supported language: %s", language)}
	}
	return days, nil
}

// Layout holds the fixed sheet positions, zero-based.
type Layout struct {
	StartCol     int
	YearRow      int
	MonthRow     int
	WeekRow      int
	DayOfWeekRow int
	DayRow       int
}

// DefaultLayout puts the calendar in column B with the year band on sheet row 3.
func DefaultLayout() Layout {
	year := 2
	return Layout{
		StartCol:     1,
		YearRow:      year,
		MonthRow:     year + 1,
		WeekRow:      year + 2,
		DayOfWeekRow: year + 3,
		DayRow:       year + 4,
	}
}

// Column maps a day index to its sheet column.
func (l Layout) Column(index int) int { return l.StartCol + index }

// ContentCol is the column holding content entries.
func (l Layout) ContentCol() int { return l.StartCol - 1 }

// ContentRow maps a zero-based content row to its sheet row.
func (l Layout) ContentRow(row int) int { return l.DayRow + 1 + row }

// Overrides are the command line values that take precedence over the config file.
type Overrides struct {
	StartDate  string
	EndDate    string
	OutputFile string
	ImportFile string
}

// Config is the fully resolved configuration. It is read-only once Load returns,
// except for SetContentEntries which an importer's load result drives.
type Config struct {
	Range             calendar.Range
	OutputFile        string
	WorksheetName     string
	WorksheetTabColor string
	WeekDays          [7]string
	ContentHeading    string
	ContentEntries    []string
	ContentNumRows    int
	Holidays          calendar.HolidayMap
	Formats           map[grid.Style]xlsx.Format
	ImporterModule    string
	ImporterFile      string
	Layout            Layout
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("start_date", "")
	v.SetDefault("end_date", "")
	v.SetDefault("output_file", DefaultOutputFile)
	v.SetDefault("worksheet_name", DefaultWorksheetName)
	v.SetDefault("worksheet_tab_color", DefaultTabColor)
	v.SetDefault("worksheet_day_of_week_language", "en")
	v.SetDefault("content_heading", DefaultContentHeading)
	v.SetDefault("content_entries", []string{})
	v.SetDefault("theme_imports", "")
	v.SetDefault("holiday_imports", []string{})
	v.SetDefault("importer_module", "")
	v.SetDefault("importer_file", "")
	v.SetDefault("http_retries", 3)
}

// Load resolves the configuration from v and the command line overrides.
// client may be nil when no remote imports are configured.
func Load(ctx context.Context, v *viper.Viper, o Overrides, client *retryablehttp.Client) (*Config, error) {
	start, end := v.GetString("start_date"), v.GetString("end_date")
	if o.StartDate != "" && o.EndDate != "" {
		utils.Log.Debug("Got dates from command line args")
		start, end = o.StartDate, o.EndDate
	}
	r, err := calendar.ParseRange(start, end)
	if err != nil {
		return nil, err
	}

	days, err := WeekDays(v.GetString("worksheet_day_of_week_language"))
	if err != nil {
		return nil, err
	}

	c := &Config{
		Range:             r,
		OutputFile:        utils.ExpandPath(v.GetString("output_file")),
		WorksheetName:     v.GetString("worksheet_name"),
		WorksheetTabColor: v.GetString("worksheet_tab_color"),
		WeekDays:          days,
		ContentHeading:    v.GetString("content_heading"),
		ContentNumRows:    DefaultContentRows,
		ImporterModule:    strings.TrimSpace(v.GetString("importer_module")),
		ImporterFile:      strings.TrimSpace(v.GetString("importer_file")),
		Layout:            DefaultLayout(),
	}
	if o.OutputFile != "" {
		utils.Log.Debugf("output_file %q provided from command line args, override configuration file settings.", o.OutputFile)
		c.OutputFile = utils.ExpandPath(o.OutputFile)
	}
	if o.ImportFile != "" {
		c.ImporterFile = o.ImportFile
	}
	if c.ImporterFile != "" && !whttp.IsRemote(c.ImporterFile) {
		c.ImporterFile = utils.ExpandPath(c.ImporterFile)
	}
	if entries := v.GetStringSlice("content_entries"); len(entries) > 0 {
		c.SetContentEntries(entries)
	}

	if client == nil {
		client = whttp.NewClient(v.GetInt("http_retries"), 30*time.Second)
	}

	formats := xlsx.DefaultFormats()
	if theme := strings.TrimSpace(v.GetString("theme_imports")); theme != "" {
		overrides, err := LoadTheme(ctx, client, theme)
		if err != nil {
			utils.Log.Warnf("%v, abandon theme imports, please fix the error.", err)
		} else {
			formats = xlsx.MergeFormats(formats, overrides)
		}
	}
	local := map[string]xlsx.Format{}
	if err := v.UnmarshalKey("cell_formats", &local); err != nil {
		return nil, &calendar.ConfigurationError{Field: "cell_formats", Err: err}
	}
	c.Formats = xlsx.MergeFormats(formats, local)

	imported, err := LoadHolidayImports(ctx, client, v.GetStringSlice("holiday_imports"))
	if err != nil {
		utils.Log.Warnf("%v, abandon all holiday imports, please fix the error.", err)
		imported = calendar.HolidayMap{}
	}
	c.Holidays = imported
	localHolidays, err := calendar.NewHolidayMap(v.GetStringMapString("holidays"))
	if err != nil {
		return nil, err
	}
	c.Holidays.Merge(localHolidays)
	utils.Log.Debugf("Resolved %d holiday entries", c.Holidays.Len())

	return c, nil
}

// SetContentEntries replaces the content rows, which also resizes the grid.
func (c *Config) SetContentEntries(entries []string) {
	c.ContentEntries = entries
	c.ContentNumRows = len(entries)
}

// ContentColWidth is the content column width, sized on the longest of the heading and entries.
func (c *Config) ContentColWidth() float64 {
	return float64(utils.MaxLen(append([]string{c.ContentHeading}, c.ContentEntries...)...)) * charWidth
}
