package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/storage"
)

var dbPath string

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Interact with the attendance ledger database",
}

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive shell to the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath(dbPath)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("database file not found: %s", path)
		}

		// Check if sqlite3 is in PATH
		sqlitePath, err := exec.LookPath("sqlite3")
		if err != nil {
			return fmt.Errorf("sqlite3 command not found in your PATH. Please install it to use the db shell")
		}

		// Print schema first
		fmt.Println("--> Database schema:")
		schemaCmd := exec.Command(sqlitePath, path, ".schema")
		schemaCmd.Stdout = os.Stdout
		schemaCmd.Stderr = os.Stderr
		if err := schemaCmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: couldn't retrieve schema: %v\n", err)
		}
		fmt.Println("\n--> Starting interactive shell... (Ctrl+D to exit)")

		c := exec.Command(sqlitePath, path)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr

		return c.Run()
	},
}

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints statistics about the imported attendance in the database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath(dbPath)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("database file not found: %s", path)
		}

		db, err := storage.Open(path)
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats(context.Background())
		if err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

func printStats(w io.Writer, stats []storage.SourceStats) {
	if len(stats) == 0 {
		fmt.Fprintln(w, "No data in the database to generate stats.")
		return
	}

	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "   "
	tbl.AddRow(bold.Sprint("SOURCE"), bold.Sprint("ROWS"), bold.Sprint("ENTRIES"), bold.Sprint("FIRST"), bold.Sprint("LAST"))

	var totalRows, totalEntries int
	for _, s := range stats {
		tbl.AddRow(s.Source, s.RowCount, s.EntryCount, s.FirstDay, s.LastDay)
		totalRows += s.RowCount
		totalEntries += s.EntryCount
	}
	tbl.AddRow("", "", "", "", "")
	tbl.AddRow("TOTAL", totalRows, totalEntries, "", "")
	fmt.Fprintln(w, tbl)
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(shellCmd)
	dbCmd.AddCommand(statsCmd)
	dbCmd.PersistentFlags().StringVar(&dbPath, "dbpath", "", "Path to SQLite DB file (default: ~/.config/xlsxcalendar/ledger.sqlite)")
}
