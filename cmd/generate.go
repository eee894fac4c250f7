package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xlsxcalendar/xlsxcalendar/internal/utils"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/align"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/config"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/importers"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/render"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/storage"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/whttp"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/xlsx"
)

const httpTimeout = 30 * time.Second

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the calendar workbook",
	Long: `Generate writes the configured date range into an .xlsx calendar. When importer_module
and importer_file are set, the imported attendance is aligned with the calendar and plotted
on top of it. A failed import never stops the calendar from being written.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := generateOptions{Overrides: overridesFromFlags(cmd)}
		opts.UseDB, _ = cmd.Flags().GetBool("db")
		opts.DBPath, _ = cmd.Flags().GetString("dbpath")
		_, err := runGenerate(cmd.Context(), viper.GetViper(), opts, cmd.OutOrStdout())
		return err
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addCalendarFlags(generateCmd)
	generateCmd.Flags().StringP("import-file", "i", "", "File (or http(s) URL) for the configured importer, overrides importer_file")
	generateCmd.Flags().StringP("output", "o", "", "Output workbook, overrides output_file")
	generateCmd.Flags().Bool("db", false, "Record imported attendance in the ledger database and print changes")
	generateCmd.Flags().String("dbpath", "", "Path to SQLite DB file (default: ~/.config/xlsxcalendar/ledger.sqlite)")
}

// addCalendarFlags registers the date range flags shared by commands that resolve a calendar.
func addCalendarFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("start-date", "s", "", "Calendar start date YYYY-MM-DD, needs --end-date as well")
	cmd.Flags().StringP("end-date", "e", "", "Calendar end date YYYY-MM-DD, needs --start-date as well")
}

func overridesFromFlags(cmd *cobra.Command) config.Overrides {
	var o config.Overrides
	o.StartDate, _ = cmd.Flags().GetString("start-date")
	o.EndDate, _ = cmd.Flags().GetString("end-date")
	if cmd.Flags().Lookup("output") != nil {
		o.OutputFile, _ = cmd.Flags().GetString("output")
	}
	if cmd.Flags().Lookup("import-file") != nil {
		o.ImportFile, _ = cmd.Flags().GetString("import-file")
	}
	return o
}

type generateOptions struct {
	Overrides config.Overrides
	UseDB     bool
	DBPath    string
}

// generateReport is what one generate run produced.
type generateReport struct {
	Config   *config.Config
	Result   *render.Result
	Importer string
	Overlay  *align.Overlay
	// ImportErr is set when an import was configured but not plotted.
	ImportErr error
	Changes   []storage.Change
	// LedgerErr is set when the overlay was plotted but not recorded.
	LedgerErr error
}

func runGenerate(ctx context.Context, v *viper.Viper, opts generateOptions, out io.Writer) (*generateReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	client := whttp.NewClient(v.GetInt("http_retries"), httpTimeout)
	cfg, err := config.Load(ctx, v, opts.Overrides, client)
	if err != nil {
		return nil, err
	}
	report := &generateReport{Config: cfg}

	imp, source, cleanup, err := loadImporter(ctx, cfg, client)
	defer cleanup()
	if err != nil {
		utils.Log.Errorf("%v", err)
		report.ImportErr = err
		imp = nil
	}

	wb, err := xlsx.New(cfg.WorksheetName, cfg.Formats)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	if report.Result, err = render.Render(cfg, wb); err != nil {
		return nil, fmt.Errorf("render calendar: %w", err)
	}

	if imp != nil {
		report.Importer = imp.Name()
		overlay, err := imp.Plot(cfg, wb)
		switch {
		case err != nil:
			utils.Log.Errorf("%v, skip plot.", err)
			report.ImportErr = err
		case overlay != nil:
			report.Overlay = overlay
			if opts.UseDB {
				if report.Changes, err = recordAttendance(ctx, opts.DBPath, source, overlay); err != nil {
					utils.Log.Errorf("Attendance ledger: %v", err)
					report.LedgerErr = err
				}
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0o755); err != nil {
		return nil, err
	}
	if err := wb.SaveAs(cfg.OutputFile); err != nil {
		return nil, fmt.Errorf("could not write %s, is it open in another program? %w", cfg.OutputFile, err)
	}

	printReport(out, report)
	return report, nil
}

// loadImporter resolves, fetches and loads the configured importer. The
// returned cleanup is always safe to call.
func loadImporter(ctx context.Context, cfg *config.Config, client *retryablehttp.Client) (importers.Importer, string, func(), error) {
	noop := func() {}
	if cfg.ImporterModule == "" {
		return nil, "", noop, nil
	}
	imp, err := importers.New(cfg.ImporterModule)
	if err != nil {
		return nil, "", noop, err
	}
	if cfg.ImporterFile == "" {
		return nil, "", noop, fmt.Errorf("%w: %s: no importer_file configured", importers.ErrLoadFailed, imp.Name())
	}
	source := storage.NormalizeSource(imp.Name(), cfg.ImporterFile)

	file, cleanup := cfg.ImporterFile, noop
	if whttp.IsRemote(file) {
		dir, err := os.MkdirTemp("", "xlsxcalendar-import-")
		if err != nil {
			return nil, "", noop, err
		}
		cleanup = func() { os.RemoveAll(dir) }
		if file, err = whttp.Download(ctx, client, cfg.ImporterFile, dir); err != nil {
			return nil, "", cleanup, fmt.Errorf("%w: %s: %w", importers.ErrLoadFailed, imp.Name(), err)
		}
	}

	keys, err := importers.Load(ctx, imp, file)
	if err != nil {
		return nil, "", cleanup, err
	}
	utils.Log.Infof("Loaded %d records with the %s importer", len(keys), imp.Name())
	cfg.SetContentEntries(keys)
	return imp, source, cleanup, nil
}

func resolveDBPath(p string) (string, error) {
	return utils.GetAbsDBPath(utils.ExpandPath(p))
}

func recordAttendance(ctx context.Context, dbPath, source string, o *align.Overlay) (changes []storage.Change, err error) {
	entries, err := storage.BuildEntries(source, o)
	if err != nil {
		return nil, err
	}
	err = utils.WithLedgerLock(ctx, dbPath, func(ledger string) error {
		db, err := storage.Open(ledger)
		if err != nil {
			return err
		}
		defer db.Close()
		changes, err = db.UpsertAttendance(ctx, source, o.Start, o.End, entries)
		return err
	})
	return changes, err
}

func printReport(w io.Writer, r *generateReport) {
	ok := color.New(color.FgGreen, color.Bold)
	warn := color.New(color.FgRed)

	ok.Fprintf(w, "Calendar %s written to %s\n", r.Config.Range, r.Config.OutputFile)
	fmt.Fprintf(w, "  %d days, %d weekend days, %d holidays, %d content rows\n",
		r.Result.TotalDays, r.Result.Weekends, r.Result.Holidays, r.Config.ContentNumRows)

	switch {
	case r.ImportErr != nil:
		warn.Fprintf(w, "Import skipped: %s\n", importNotice(r.ImportErr))
	case r.Overlay != nil:
		fmt.Fprintf(w, "  imported %d rows from %s (%s), %d cells\n",
			r.Overlay.Records, r.Config.ImporterFile, r.Importer, len(r.Overlay.Cells))
		if r.LedgerErr != nil {
			warn.Fprintf(w, "Ledger not updated: %v\n", r.LedgerErr)
			return
		}
		printChanges(w, r.Changes)
	}
}

func importNotice(err error) string {
	var (
		rangeErr *align.ImportRangeError
		syncErr  *align.ImportAlignmentError
		codeErr  *align.UnrecognizedCodeError
	)
	switch {
	case errors.As(err, &rangeErr):
		return fmt.Sprintf("imported dates %s are outside the calendar %s", rangeErr.Window, rangeErr.Calendar)
	case errors.As(err, &syncErr):
		return "the weekends in the calendar and the import are not in sync"
	case errors.As(err, &codeErr):
		return fmt.Sprintf("unrecognized code %q", codeErr.Code)
	case errors.Is(err, importers.ErrLoadFailed):
		return "the import file could not be read"
	}
	return err.Error()
}

func printChanges(w io.Writer, changes []storage.Change) {
	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	updated := color.New(color.FgYellow)
	for _, c := range changes {
		day := c.Date.Format("2006-01-02")
		switch c.ChangeType {
		case storage.ChangeAdded:
			added.Fprintf(w, "+  %s  %s  %s  %s\n", c.Source, c.RowKey, day, c.Code)
		case storage.ChangeRemoved:
			removed.Fprintf(w, "-  %s  %s  %s  %s\n", c.Source, c.RowKey, day, c.PreviousCode)
		case storage.ChangeUpdated:
			updated.Fprintf(w, "~  %s  %s  %s  %s -> %s\n", c.Source, c.RowKey, day, c.PreviousCode, c.Code)
		}
	}
}
