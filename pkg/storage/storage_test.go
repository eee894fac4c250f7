package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xlsxcalendar/xlsxcalendar/pkg/align"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "ledger.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func day(d int) time.Time { return time.Date(2024, time.August, d, 0, 0, 0, 0, time.UTC) }

func countTypes(changes []Change) map[string]int {
	out := map[string]int{}
	for _, c := range changes {
		out[c.ChangeType]++
	}
	return out
}

func TestUpsertAttendanceTracksChanges(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	const src = "ess:export.csv"

	first := []Entry{
		{RowKey: "Jane Doe", Date: day(1), Code: "P"},
		{RowKey: "Jane Doe", Date: day(2), Code: "P"},
		{RowKey: "John Roe", Date: day(5), Code: "A"},
	}
	changes, err := db.UpsertAttendance(ctx, src, day(1), day(31), first)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{ChangeAdded: 3}, countTypes(changes))

	// Same import again: nothing changes.
	changes, err = db.UpsertAttendance(ctx, src, day(1), day(31), first)
	require.NoError(t, err)
	assert.Empty(t, changes)

	second := []Entry{
		{RowKey: "Jane Doe", Date: day(1), Code: "A"},
		{RowKey: "Jane Doe", Date: day(2), Code: "P"},
		{RowKey: "Jane Doe", Date: day(9), Code: "H"},
	}
	changes, err = db.UpsertAttendance(ctx, src, day(1), day(31), second)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{ChangeAdded: 1, ChangeUpdated: 1, ChangeRemoved: 1}, countTypes(changes))
	for _, c := range changes {
		switch c.ChangeType {
		case ChangeUpdated:
			assert.Equal(t, "P", c.PreviousCode)
			assert.Equal(t, "A", c.Code)
		case ChangeRemoved:
			assert.Equal(t, "John Roe", c.RowKey)
			assert.Equal(t, day(5), c.Date)
		}
	}

	entries, err := db.ListEntries(ctx, ListOptions{Source: src})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Source: src, RowKey: "Jane Doe", Date: day(1), Code: "A"}, entries[0])

	recent, err := db.ListRecentChanges(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 6)
	assert.False(t, recent[0].OccurredAt.IsZero())
}

func TestUpsertAttendanceSweepsOnlyItsWindow(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	const src = "ess:export.csv"

	_, err := db.UpsertAttendance(ctx, src, day(1), day(10), []Entry{{RowKey: "a", Date: day(3), Code: "P"}})
	require.NoError(t, err)
	changes, err := db.UpsertAttendance(ctx, src, day(11), day(20), []Entry{{RowKey: "a", Date: day(12), Code: "A"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{ChangeAdded: 1}, countTypes(changes))

	// Another source never touches these rows.
	_, err = db.UpsertAttendance(ctx, "htmltable:other.html", day(1), day(31), nil)
	require.NoError(t, err)

	entries, err := db.ListEntries(ctx, ListOptions{RowFilter: "a", From: day(1), To: day(10)})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, day(3), entries[0].Date)
}

func TestGetStats(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	_, err := db.UpsertAttendance(ctx, "ess:a.csv", day(1), day(31), []Entry{
		{RowKey: "x", Date: day(2), Code: "P"},
		{RowKey: "x", Date: day(3), Code: "P"},
		{RowKey: "y", Date: day(20), Code: "A"},
	})
	require.NoError(t, err)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, SourceStats{Source: "ess:a.csv", RowCount: 2, EntryCount: 3, FirstDay: "2024-08-02", LastDay: "2024-08-20"}, stats[0])
}

func TestUpsertAttendanceRejectsEmptySource(t *testing.T) {
	_, err := openTemp(t).UpsertAttendance(context.Background(), "", day(1), day(2), nil)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ess:export.csv", NormalizeSource(" ESS ", "/tmp/x/Export.csv"))
	assert.Equal(t, "ess:export.csv", NormalizeSource("ess", "https://example.com/files/export.csv?x=1"))
	assert.Equal(t, "Jane Doe", NormalizeRowKey("  Jane   Doe "))
}

func TestBuildEntries(t *testing.T) {
	o := &align.Overlay{Cells: []align.Cell{{Key: " Jane  Doe", Date: day(1), Code: "P"}}}
	entries, err := BuildEntries("ess:a.csv", o)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Source: "ess:a.csv", RowKey: "Jane Doe", Date: day(1), Code: "P"}}, entries)

	_, err = BuildEntries("", o)
	assert.Error(t, err)
}
