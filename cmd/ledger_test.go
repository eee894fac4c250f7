package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xlsxcalendar/xlsxcalendar/pkg/storage"
)

func seedLedger(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.sqlite")
	db, err := storage.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	aug := func(d int) time.Time { return time.Date(2024, time.August, d, 0, 0, 0, 0, time.UTC) }
	seed := map[string][]storage.Entry{
		"ess:a.csv": {
			{RowKey: "Jane Doe", Date: aug(1), Code: "P"},
			{RowKey: "Jane Doe", Date: aug(20), Code: "A"},
			{RowKey: "John Roe", Date: aug(5), Code: "H"},
		},
		"ess:b.csv": {
			{RowKey: "Jane Doe", Date: aug(2), Code: "A"},
		},
	}
	for source, entries := range seed {
		if _, err := db.UpsertAttendance(context.Background(), source, aug(1), aug(31), entries); err != nil {
			t.Fatalf("seed %s: %v", source, err)
		}
	}
	return path
}

func TestRunEntriesFilters(t *testing.T) {
	path := seedLedger(t)

	var buf bytes.Buffer
	if err := runEntries(context.Background(), path, entriesOptions{}, &buf); err != nil {
		t.Fatalf("entries failed: %v", err)
	}
	if !strings.Contains(buf.String(), "SOURCE") || !strings.Contains(buf.String(), "Total: 4") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}

	buf.Reset()
	o := entriesOptions{Source: "ess:a.csv", Row: "jane", From: "2024-08-01", To: "2024-08-10"}
	if err := runEntries(context.Background(), path, o, &buf); err != nil {
		t.Fatalf("entries failed: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, "2024-08-01") || !strings.Contains(got, "Thu") || !strings.Contains(got, "Total: 1") {
		t.Fatalf("unexpected output:\n%s", got)
	}
	for _, unwanted := range []string{"2024-08-20", "John Roe", "ess:b.csv"} {
		if strings.Contains(got, unwanted) {
			t.Fatalf("%q should have been filtered out:\n%s", unwanted, got)
		}
	}

	buf.Reset()
	if err := runEntries(context.Background(), path, entriesOptions{Source: "htmltable:x.html"}, &buf); err != nil {
		t.Fatalf("entries failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No entries matched.") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestRunEntriesBadInput(t *testing.T) {
	path := seedLedger(t)
	cases := []struct {
		name string
		path string
		opts entriesOptions
		want string
	}{
		{"bad from", path, entriesOptions{From: "01.08.2024"}, "--from"},
		{"bad to", path, entriesOptions{To: "2024-13-01"}, "--to"},
		{"reversed", path, entriesOptions{From: "2024-08-10", To: "2024-08-01"}, "is before"},
		{"missing db", filepath.Join(t.TempDir(), "none.sqlite"), entriesOptions{}, "database not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := runEntries(context.Background(), tc.path, tc.opts, &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestFormatChange(t *testing.T) {
	at := time.Date(2024, 9, 2, 8, 30, 0, 0, time.UTC)
	day := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	base := storage.Change{OccurredAt: at, Source: "ess:a.csv", RowKey: "Jane Doe", Date: day}

	cases := []struct {
		change storage.Change
		suffix string
	}{
		{withChange(base, storage.ChangeAdded, "", "P"), "2024-08-01  P"},
		{withChange(base, storage.ChangeUpdated, "P", "A"), "2024-08-01  P -> A"},
		{withChange(base, storage.ChangeRemoved, "P", ""), "2024-08-01  removed P"},
	}
	for _, tc := range cases {
		got := formatChange(tc.change)
		if !strings.HasPrefix(got, "2024-09-02 08:30:00  "+tc.change.ChangeType) {
			t.Fatalf("unexpected prefix in %q", got)
		}
		if !strings.HasSuffix(got, tc.suffix) {
			t.Fatalf("%s: got %q, want suffix %q", tc.change.ChangeType, got, tc.suffix)
		}
		if strings.HasSuffix(got, "-> ") {
			t.Fatalf("dangling arrow in %q", got)
		}
	}
}

func withChange(c storage.Change, changeType, prev, code string) storage.Change {
	c.ChangeType, c.PreviousCode, c.Code = changeType, prev, code
	return c
}
