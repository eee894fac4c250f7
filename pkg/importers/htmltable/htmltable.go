// Package htmltable reads ESS exports saved as an HTML table.
package htmltable

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/xlsxcalendar/xlsxcalendar/internal/utils"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/align"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/config"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/grid"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/importers/ess"
)

type Importer struct {
	dataset align.Dataset
}

func New() *Importer { return &Importer{} }

func (i *Importer) Name() string { return "htmltable" }

func (i *Importer) Load(ctx context.Context, filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, err
	}
	rows := Rows(doc)
	ds, err := ess.ParseRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	i.dataset = ds
	utils.Log.Debugf("Loaded %d records from table in %s", len(ds.Records), filename)
	return ds.Keys(), nil
}

func (i *Importer) Plot(cfg *config.Config, sink grid.Sink) (*align.Overlay, error) {
	return align.Run(cfg, i.dataset, sink)
}

// Rows returns the cell texts of the first table in the document.
func Rows(doc *goquery.Document) [][]string {
	var rows [][]string
	doc.Find("table").First().Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, strings.TrimSpace(cell.Text()))
		})
		if len(row) > 0 {
			rows = append(rows, row)
		}
	})
	return rows
}
