package importers

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xlsxcalendar/xlsxcalendar/pkg/config"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/grid"
)

func TestNormalize(t *testing.T) {
	for in, want := range map[string]string{
		"ess":                  "ess",
		"plugins.ess_importer": "ess",
		" HTMLTable ":          "htmltable",
		"template_importer":    "template",
	} {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		imp, err := New(name)
		require.NoError(t, err)
		assert.Equal(t, name, imp.Name())
	}
	_, err := New("plugins.nope_importer")
	assert.ErrorContains(t, err, "available: ess, htmltable, template")
}

func TestLoadWrapsFailures(t *testing.T) {
	imp, err := New("ess")
	require.NoError(t, err)
	_, err = Load(context.Background(), imp, filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, errors.Is(err, ErrLoadFailed))

	tmpl, err := New("template")
	require.NoError(t, err)
	_, err = Load(context.Background(), tmpl, "whatever")
	assert.ErrorIs(t, err, ErrLoadFailed)

	o, err := tmpl.Plot(&config.Config{WorksheetName: "x"}, grid.NewRecorder())
	assert.NoError(t, err)
	assert.Nil(t, o)
}
