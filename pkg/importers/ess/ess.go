// Package ess reads ESS attendance exports. A row looks like
//
//	Personnel No;Name;Org Unit;Company;Country;19.08;20.08;21.08;...
//	12345678;Kalle Karlsson;The unit;XYZ;SE;;O;O;A;...
//
// The Name row is the header. The four identifying columns are dropped and
// the Name column becomes the record key.
package ess

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/xlsxcalendar/xlsxcalendar/internal/utils"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/align"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/config"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/grid"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/xlsx"
)

const (
	// HeaderKey marks the header row in the Name column.
	HeaderKey = "Name"
	// Encoding of ESS CSV exports.
	Encoding = "iso-8859-1"

	separator = ';'
	quote     = '|'

	nameCol  = 1
	firstDay = 5
)

// Importer loads one ESS export and plots it onto a calendar.
type Importer struct {
	dataset align.Dataset
}

func New() *Importer { return &Importer{} }

func (i *Importer) Name() string { return "ess" }

// Dataset returns what the last Load parsed.
func (i *Importer) Dataset() align.Dataset { return i.dataset }

// Load reads a .csv or .xlsx export and returns the record keys in file order.
func (i *Importer) Load(ctx context.Context, filename string) ([]string, error) {
	var (
		rows [][]string
		err  error
	)
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		utils.Log.Debugf("%s is an xlsx workbook, reading first sheet", filename)
		rows, err = xlsx.ReadRows(filename)
	} else {
		rows, err = readCSVFile(filename)
	}
	if err != nil {
		return nil, err
	}
	ds, err := ParseRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	i.dataset = ds
	utils.Log.Debugf("Loaded %d ESS records from %s", len(ds.Records), filename)
	return ds.Keys(), nil
}

// Plot aligns the loaded records with the calendar and writes them.
func (i *Importer) Plot(cfg *config.Config, sink grid.Sink) (*align.Overlay, error) {
	return align.Run(cfg, i.dataset, sink)
}

func readCSVFile(filename string) ([][]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := charset.NewReaderLabel(Encoding, f)
	if err != nil {
		return nil, err
	}
	return ReadCSV(r)
}

// ReadCSV splits semicolon separated lines. Fields may be quoted with '|'.
func ReadCSV(r io.Reader) ([][]string, error) {
	var rows [][]string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, splitFields(line))
	}
	return rows, sc.Err()
}

func splitFields(line string) []string {
	var (
		fields []string
		field  strings.Builder
		quoted bool
	)
	for _, c := range line {
		switch {
		case c == quote:
			quoted = !quoted
		case c == separator && !quoted:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteRune(c)
		}
	}
	return append(fields, field.String())
}

// ParseRows turns ESS rows into a dataset. A repeated name keeps its first
// position and its last codes.
func ParseRows(rows [][]string) (align.Dataset, error) {
	var (
		ds    align.Dataset
		index = map[string]int{}
		found bool
	)
	for n, row := range rows {
		if len(row) <= nameCol {
			return align.Dataset{}, fmt.Errorf("row %d: no name column", n+1)
		}
		key := strings.TrimSpace(row[nameCol])
		var codes []string
		if len(row) > firstDay {
			codes = row[firstDay:]
		}
		if key == HeaderKey {
			ds.Header = trimAll(codes)
			found = true
			continue
		}
		if i, ok := index[key]; ok {
			ds.Records[i].Codes = codes
			continue
		}
		index[key] = len(ds.Records)
		ds.Records = append(ds.Records, align.Record{Key: key, Codes: codes})
	}
	if !found {
		return align.Dataset{}, fmt.Errorf("%w: no %q row", align.ErrMalformedHeader, HeaderKey)
	}
	if _, err := align.ParseHeader(ds.Header); err != nil {
		return align.Dataset{}, err
	}
	if len(ds.Records) == 0 {
		return align.Dataset{}, fmt.Errorf("no records below the %q row", HeaderKey)
	}
	return ds, nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
