package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/storage"
)

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Show recent attendance changes (default 50)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dbPath, _ := cmd.Flags().GetString("dbpath")
		limit, _ := cmd.Flags().GetInt("limit")
		path, err := resolveDBPath(dbPath)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("database not found: %s", path)
		}
		db, err := storage.Open(path)
		if err != nil {
			return err
		}
		defer db.Close()
		changes, err := db.ListRecentChanges(context.Background(), limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, c := range changes {
			fmt.Fprintln(out, formatChange(c))
		}
		return nil
	},
}

func formatChange(c storage.Change) string {
	code := c.Code
	switch c.ChangeType {
	case storage.ChangeUpdated:
		code = fmt.Sprintf("%s -> %s", c.PreviousCode, c.Code)
	case storage.ChangeRemoved:
		code = "removed " + c.PreviousCode
	}
	ts := c.OccurredAt.Format("2006-01-02 15:04:05")
	return fmt.Sprintf("%s  %-7s  %s  %s  %s  %s", ts, c.ChangeType, c.Source, c.RowKey, c.Date.Format("2006-01-02"), code)
}

func init() {
	rootCmd.AddCommand(changesCmd)
	changesCmd.Flags().String("dbpath", "", "Path to SQLite DB file (default: ~/.config/xlsxcalendar/ledger.sqlite)")
	changesCmd.Flags().Int("limit", 50, "Number of recent changes to show")
}
