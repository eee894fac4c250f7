package storage

import (
	"errors"

	"github.com/xlsxcalendar/xlsxcalendar/pkg/align"
)

// BuildEntries turns the applied cells of an overlay into ledger entries.
func BuildEntries(source string, o *align.Overlay) ([]Entry, error) {
	if source == "" || o == nil {
		return nil, errors.New("invalid import source")
	}
	out := make([]Entry, 0, len(o.Cells))
	for _, c := range o.Cells {
		out = append(out, Entry{
			Source: source,
			RowKey: NormalizeRowKey(c.Key),
			Date:   c.Date,
			Code:   c.Code,
		})
	}
	return out, nil
}
