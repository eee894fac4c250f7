package storage

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// NormalizeSource builds the ledger identity of an import: the importer name
// and the base name of its file, so a re-download of the same export matches.
func NormalizeSource(importer, file string) string {
	importer = strings.ToLower(strings.TrimSpace(importer))
	file = strings.TrimSpace(file)
	if u, err := url.Parse(file); err == nil && u.Host != "" {
		file = path.Base(u.Path)
	} else {
		file = filepath.Base(file)
	}
	return importer + ":" + strings.ToLower(file)
}

// NormalizeRowKey collapses inner whitespace of a record key.
func NormalizeRowKey(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
