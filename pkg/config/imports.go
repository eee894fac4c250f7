package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"github.com/xlsxcalendar/xlsxcalendar/internal/utils"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/calendar"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/whttp"
	"github.com/xlsxcalendar/xlsxcalendar/pkg/xlsx"
	"gopkg.in/yaml.v3"
)

type holidayFile struct {
	Holidays map[string]string `yaml:"holidays"`
}

type themeFile struct {
	CellFormats map[string]xlsx.Format `yaml:"cell_formats"`
}

// Media types asked for when holiday imports and themes are fetched over http.
var (
	holidayAccept = whttp.AcceptHeader("application/json", "application/x-yaml", "text/yaml;q=0.9", "*/*;q=0.5")
	themeAccept   = whttp.AcceptHeader("application/x-yaml", "text/yaml", "*/*;q=0.5")
)

func read(ctx context.Context, client *retryablehttp.Client, location string, accept whttp.WHTTPHeader) ([]byte, error) {
	if whttp.IsRemote(location) {
		return whttp.Fetch(ctx, client, location, accept)
	}
	return os.ReadFile(utils.ExpandPath(location))
}

// LoadHolidayImports merges every holiday import in order, later files winning.
// Any failure abandons the whole set.
func LoadHolidayImports(ctx context.Context, client *retryablehttp.Client, locations []string) (calendar.HolidayMap, error) {
	var merged calendar.HolidayMap
	for _, location := range locations {
		if strings.TrimSpace(location) == "" {
			continue
		}
		data, err := read(ctx, client, location, holidayAccept)
		if err != nil {
			return calendar.HolidayMap{}, err
		}
		h, err := ParseHolidays(data)
		if err != nil {
			return calendar.HolidayMap{}, fmt.Errorf("%s: %w", location, err)
		}
		utils.Log.Debugf("Imported %d holidays from %s", h.Len(), location)
		merged.Merge(h)
	}
	return merged, nil
}

// ParseHolidays reads either a YAML document with a holidays mapping or a JSON
// public-holiday feed: an array of objects with date and localName/name.
func ParseHolidays(data []byte) (calendar.HolidayMap, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		if !gjson.Valid(trimmed) {
			return calendar.HolidayMap{}, fmt.Errorf("invalid JSON holiday feed")
		}
		return parseHolidayFeed(trimmed)
	}

	var f holidayFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return calendar.HolidayMap{}, err
	}
	return calendar.NewHolidayMap(f.Holidays)
}

func parseHolidayFeed(doc string) (calendar.HolidayMap, error) {
	list := gjson.Parse(doc)
	if list.IsObject() {
		list = list.Get("holidays")
	}
	var h calendar.HolidayMap
	for _, item := range list.Array() {
		date := item.Get("date").String()
		desc := item.Get("localName").String()
		if desc == "" {
			desc = item.Get("name").String()
		}
		if date == "" {
			continue
		}
		if err := h.Add(date, desc); err != nil {
			return calendar.HolidayMap{}, err
		}
	}
	return h, nil
}

// LoadTheme reads the cell_formats section of a theme file.
func LoadTheme(ctx context.Context, client *retryablehttp.Client, location string) (map[string]xlsx.Format, error) {
	data, err := read(ctx, client, location, themeAccept)
	if err != nil {
		return nil, err
	}
	var f themeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return f.CellFormats, nil
}
