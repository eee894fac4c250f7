package storage

import "time"

// Change types recorded in the ledger.
const (
	ChangeAdded   = "added"
	ChangeUpdated = "updated"
	ChangeRemoved = "removed"
)

// Entry is one attendance code of one row on one day.
type Entry struct {
	Source string
	RowKey string
	Date   time.Time
	Code   string
}

// Change captures a single change event for auditing or printing.
type Change struct {
	OccurredAt time.Time

	Source string
	RowKey string
	Date   time.Time

	Code         string
	PreviousCode string
	ChangeType   string // added | updated | removed
}
