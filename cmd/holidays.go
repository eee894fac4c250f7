package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xlsxcalendar/xlsxcalendar/pkg/calendar"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/config"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/whttp"
)

var holidaysCmd = &cobra.Command{
	Use:   "holidays",
	Short: "List the holidays that fall inside the calendar",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runHolidays(cmd.Context(), viper.GetViper(), overridesFromFlags(cmd), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(holidaysCmd)
	addCalendarFlags(holidaysCmd)
}

func runHolidays(ctx context.Context, v *viper.Viper, o config.Overrides, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(ctx, v, o, whttp.NewClient(v.GetInt("http_retries"), httpTimeout))
	if err != nil {
		return err
	}
	holidays := cfg.Holidays.Within(cfg.Range)
	if len(holidays) == 0 {
		fmt.Fprintf(out, "No holidays between %s.\n", cfg.Range)
		return nil
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("DATE"), bold.Sprint("DAY"), bold.Sprint("HOLIDAY"), "")
	for _, h := range holidays {
		kind := ""
		if h.Recurring {
			kind = faint.Sprint("every year")
		}
		day := cfg.WeekDays[calendar.ISOWeekday(h.Date)-1]
		tbl.AddRow(h.Date.Format(calendar.DateLayout), day, h.Description, kind)
	}
	fmt.Fprintln(out, tbl)
	return nil
}
