package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/xlsxcalendar/xlsxcalendar/pkg/calendar"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS attendance_entries (
  id            INTEGER PRIMARY KEY,
  source        TEXT NOT NULL,
  row_key       TEXT NOT NULL,
  day           TEXT NOT NULL,
  code          TEXT NOT NULL,
  run_id        INTEGER NOT NULL DEFAULT 0,
  first_seen_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  last_seen_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(source, row_key, day)
);
CREATE INDEX IF NOT EXISTS idx_attendance_source ON attendance_entries(source, day);
CREATE TABLE IF NOT EXISTS attendance_changes (
  id            INTEGER PRIMARY KEY,
  occurred_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  source        TEXT NOT NULL,
  row_key       TEXT NOT NULL,
  day           TEXT NOT NULL,
  code          TEXT NOT NULL,
  previous_code TEXT,
  change_type   TEXT NOT NULL CHECK (change_type IN ('added','updated','removed'))
);
CREATE INDEX IF NOT EXISTS idx_changes_time ON attendance_changes(occurred_at);
CREATE INDEX IF NOT EXISTS idx_changes_source ON attendance_changes(source, occurred_at);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// UpsertAttendance records one import of source covering the days from..to.
// Entries of source in that window that are missing from this import are removed.
func (d *DB) UpsertAttendance(ctx context.Context, source string, from, to time.Time, entries []Entry) (changes []Change, err error) {
	if source == "" {
		return nil, fmt.Errorf("empty source")
	}
	now := time.Now().UTC()
	runID := now.UnixNano()
	lo, hi := from.Format(calendar.DateLayout), to.Format(calendar.DateLayout)

	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx, "SELECT row_key, day, code FROM attendance_entries WHERE source = ? AND day BETWEEN ? AND ?", source, lo, hi)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]string)
	for rows.Next() {
		var key, day, code string
		if err = rows.Scan(&key, &day, &code); err != nil {
			rows.Close()
			return nil, err
		}
		existing[identityKey(key, day)] = code
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}

	record := func(c Change) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO attendance_changes(occurred_at, source, row_key, day, code, previous_code, change_type) VALUES(CURRENT_TIMESTAMP, ?, ?, ?, ?, ?, ?)`,
			c.Source, c.RowKey, c.Date.Format(calendar.DateLayout), c.Code, nullIfEmpty(c.PreviousCode), c.ChangeType)
		if err == nil {
			changes = append(changes, c)
		}
		return err
	}

	for _, e := range entries {
		day := e.Date.Format(calendar.DateLayout)
		key := identityKey(e.RowKey, day)
		prev, existed := existing[key]
		switch {
		case !existed:
			_, err = tx.ExecContext(ctx, `INSERT INTO attendance_entries(source, row_key, day, code, run_id) VALUES(?,?,?,?,?)`, source, e.RowKey, day, e.Code, runID)
			if err == nil {
				err = record(Change{OccurredAt: now, Source: source, RowKey: e.RowKey, Date: e.Date, Code: e.Code, ChangeType: ChangeAdded})
			}
			existing[key] = e.Code
		case prev != e.Code:
			_, err = tx.ExecContext(ctx, `UPDATE attendance_entries SET code = ?, run_id = ?, last_seen_at = CURRENT_TIMESTAMP WHERE source = ? AND row_key = ? AND day = ?`, e.Code, runID, source, e.RowKey, day)
			if err == nil {
				err = record(Change{OccurredAt: now, Source: source, RowKey: e.RowKey, Date: e.Date, Code: e.Code, PreviousCode: prev, ChangeType: ChangeUpdated})
			}
		default:
			_, err = tx.ExecContext(ctx, `UPDATE attendance_entries SET run_id = ?, last_seen_at = CURRENT_TIMESTAMP WHERE source = ? AND row_key = ? AND day = ?`, runID, source, e.RowKey, day)
		}
		if err != nil {
			return nil, err
		}
	}

	// Sweep entries of this window that the import no longer carries.
	staleRows, err := tx.QueryContext(ctx, "SELECT row_key, day, code FROM attendance_entries WHERE source = ? AND day BETWEEN ? AND ? AND run_id != ?", source, lo, hi, runID)
	if err != nil {
		return nil, err
	}
	var stale []Entry
	for staleRows.Next() {
		var (
			e   Entry
			day string
		)
		if err = staleRows.Scan(&e.RowKey, &day, &e.Code); err != nil {
			staleRows.Close()
			return nil, err
		}
		if e.Date, err = calendar.ParseDate(day); err != nil {
			staleRows.Close()
			return nil, err
		}
		stale = append(stale, e)
	}
	if err = staleRows.Close(); err != nil {
		return nil, err
	}
	if len(stale) > 0 {
		if _, err = tx.ExecContext(ctx, `DELETE FROM attendance_entries WHERE source = ? AND day BETWEEN ? AND ? AND run_id != ?`, source, lo, hi, runID); err != nil {
			return nil, err
		}
		for _, e := range stale {
			if err = record(Change{OccurredAt: now, Source: source, RowKey: e.RowKey, Date: e.Date, PreviousCode: e.Code, ChangeType: ChangeRemoved}); err != nil {
				return nil, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return changes, nil
}

// ListOptions controls selection when listing entries.
type ListOptions struct {
	Source    string
	RowFilter string
	From      time.Time
	To        time.Time
}

// ListEntries returns current entries matching filters.
func (d *DB) ListEntries(ctx context.Context, opts ListOptions) ([]Entry, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	if opts.Source != "" {
		where += " AND source = ?"
		args = append(args, opts.Source)
	}
	if opts.RowFilter != "" {
		where += " AND row_key LIKE ?"
		args = append(args, fmt.Sprintf("%%%s%%", opts.RowFilter))
	}
	if !opts.From.IsZero() {
		where += " AND day >= ?"
		args = append(args, opts.From.Format(calendar.DateLayout))
	}
	if !opts.To.IsZero() {
		where += " AND day <= ?"
		args = append(args, opts.To.Format(calendar.DateLayout))
	}

	q := "SELECT source, row_key, day, code FROM attendance_entries " + where + " ORDER BY source, row_key, day"
	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var (
			e   Entry
			day string
		)
		if err := rows.Scan(&e.Source, &e.RowKey, &day, &e.Code); err != nil {
			return nil, err
		}
		if e.Date, err = calendar.ParseDate(day); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRecentChanges returns the most recent N changes across all sources.
func (d *DB) ListRecentChanges(ctx context.Context, limit int) ([]Change, error) {
	if limit <= 0 {
		limit = 50
	}
	q := "SELECT occurred_at, source, row_key, day, code, previous_code, change_type FROM attendance_changes ORDER BY occurred_at DESC, id DESC LIMIT ?"
	rows, err := d.sql.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	changes := []Change{}
	for rows.Next() {
		var (
			c          Change
			occurredAt string
			day        string
			prev       sql.NullString
		)
		if err := rows.Scan(&occurredAt, &c.Source, &c.RowKey, &day, &c.Code, &prev, &c.ChangeType); err != nil {
			return nil, err
		}
		c.OccurredAt = parseTimestamp(occurredAt)
		if c.Date, err = calendar.ParseDate(day); err != nil {
			return nil, err
		}
		c.PreviousCode = prev.String
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return changes, nil
}

// parseTimestamp reads SQLite CURRENT_TIMESTAMP, falling back to RFC3339.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

type SourceStats struct {
	Source     string
	RowCount   int
	EntryCount int
	FirstDay   string
	LastDay    string
}

func (d *DB) GetStats(ctx context.Context) ([]SourceStats, error) {
	query := `
		SELECT
			source,
			COUNT(DISTINCT row_key),
			COUNT(*),
			MIN(day),
			MAX(day)
		FROM
			attendance_entries
		GROUP BY
			source
		ORDER BY
			source;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []SourceStats
	for rows.Next() {
		var s SourceStats
		if err := rows.Scan(&s.Source, &s.RowCount, &s.EntryCount, &s.FirstDay, &s.LastDay); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
