package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/xlsxcalendar/xlsxcalendar/pkg/calendar"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/storage"
)

// entriesCmd represents the `db entries` command.
var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List the attendance entries currently recorded in the ledger",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var o entriesOptions
		o.Source, _ = cmd.Flags().GetString("source")
		o.Row, _ = cmd.Flags().GetString("row")
		o.From, _ = cmd.Flags().GetString("from")
		o.To, _ = cmd.Flags().GetString("to")
		return runEntries(cmd.Context(), dbPath, o, cmd.OutOrStdout())
	},
}

type entriesOptions struct {
	Source string
	Row    string
	From   string
	To     string
}

func (o entriesOptions) listOptions() (storage.ListOptions, error) {
	opts := storage.ListOptions{Source: o.Source, RowFilter: o.Row}
	var err error
	if o.From != "" {
		if opts.From, err = calendar.ParseDate(o.From); err != nil {
			return opts, fmt.Errorf("--from: expected YYYY-MM-DD: %w", err)
		}
	}
	if o.To != "" {
		if opts.To, err = calendar.ParseDate(o.To); err != nil {
			return opts, fmt.Errorf("--to: expected YYYY-MM-DD: %w", err)
		}
	}
	if !opts.From.IsZero() && !opts.To.IsZero() && opts.To.Before(opts.From) {
		return opts, fmt.Errorf("--to %s is before --from %s", o.To, o.From)
	}
	return opts, nil
}

func runEntries(ctx context.Context, dbPath string, o entriesOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts, err := o.listOptions()
	if err != nil {
		return err
	}
	path, err := resolveDBPath(dbPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("database not found: %s", path)
		}
		return err
	}

	db, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := db.ListEntries(ctx, opts)
	if err != nil {
		return err
	}
	printEntries(out, entries)
	return nil
}

func printEntries(w io.Writer, entries []storage.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries matched.")
		return
	}

	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "   "
	tbl.AddRow(bold.Sprint("SOURCE"), bold.Sprint("ROW"), bold.Sprint("DATE"), bold.Sprint("DAY"), bold.Sprint("CODE"))
	for _, e := range entries {
		tbl.AddRow(e.Source, e.RowKey, e.Date.Format(calendar.DateLayout), e.Date.Format("Mon"), e.Code)
	}
	fmt.Fprintln(w, tbl)
	fmt.Fprintf(w, "Total: %d\n", len(entries))
}

func init() {
	dbCmd.AddCommand(entriesCmd)
	entriesCmd.Flags().String("source", "", "Only entries from this source, e.g. ess:export.csv")
	entriesCmd.Flags().String("row", "", "Only rows whose name contains this text")
	entriesCmd.Flags().String("from", "", "First day YYYY-MM-DD")
	entriesCmd.Flags().String("to", "", "Last day YYYY-MM-DD")
}
