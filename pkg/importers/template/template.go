// Package template is the smallest importer: it loads nothing and plots nothing.
// Copy it to start a new importer.
package template

import (
	"context"

	"github.com/xlsxcalendar/xlsxcalendar/internal/utils"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/align"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/config"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/grid"
)

type Importer struct{}

func New() *Importer { return &Importer{} }

func (Importer) Name() string { return "template" }

// Load must return one key per content row. Returning no keys drops the importer.
func (Importer) Load(_ context.Context, filename string) ([]string, error) {
	utils.Log.Debugf("template importer: load %s", filename)
	return nil, nil
}

func (Importer) Plot(cfg *config.Config, _ grid.Sink) (*align.Overlay, error) {
	utils.Log.Debugf("template importer: plot onto %s", cfg.WorksheetName)
	return nil, nil
}
