// Package importers defines the importer plug-in contract and the registry
// that importer_module selects from.
package importers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xlsxcalendar/xlsxcalendar/pkg/align"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/config"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/grid"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/importers/ess"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/importers/htmltable"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/importers/template"
)

// ErrLoadFailed wraps every failure to read a foreign file.
var ErrLoadFailed = errors.New("import load failed")

// Importer reads a foreign attendance file and overlays it onto a rendered calendar.
type Importer interface {
	Name() string
	// Load runs before the grid is sized. The returned keys become the content rows.
	Load(ctx context.Context, filename string) ([]string, error)
	// Plot runs after the base calendar is rendered.
	Plot(cfg *config.Config, sink grid.Sink) (*align.Overlay, error)
}

// Factory builds a fresh importer.
type Factory func() Importer

// Registry maps importer_module values to importers.
var Registry = map[string]Factory{
	"ess":       func() Importer { return ess.New() },
	"htmltable": func() Importer { return htmltable.New() },
	"template":  func() Importer { return template.New() },
}

// Names lists the registered importers.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Normalize accepts "ess" as well as the dotted "plugins.ess_importer" form.
func Normalize(module string) string {
	name := strings.ToLower(strings.TrimSpace(module))
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "_importer")
}

// New returns the importer registered for module.
func New(module string) (Importer, error) {
	factory, ok := Registry[Normalize(module)]
	if !ok {
		return nil, fmt.Errorf("unknown importer module %q (available: %s)", module, strings.Join(Names(), ", "))
	}
	return factory(), nil
}

// Load runs imp.Load and reports any failure, including an empty result, as ErrLoadFailed.
func Load(ctx context.Context, imp Importer, filename string) ([]string, error) {
	keys, err := imp.Load(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadFailed, imp.Name(), err)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: %s: no records in %s", ErrLoadFailed, imp.Name(), filename)
	}
	return keys, nil
}
