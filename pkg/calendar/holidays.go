package calendar

import (
	"fmt"
	"strings"
	"time"
)

// HolidayMap maps either an exact date (YYYY-MM-DD) or a recurring month-day
// (MM-DD) to a description. An exact entry wins over a recurring one for the
// same date. The zero value is an empty map ready to use.
type HolidayMap struct {
	exact     map[string]string
	recurring map[string]string
}

// Holiday is one resolved holiday inside a range.
type Holiday struct {
	Date        time.Time
	Description string
	Recurring   bool
}

// NewHolidayMap builds a map from raw config entries.
func NewHolidayMap(entries map[string]string) (HolidayMap, error) {
	var h HolidayMap
	for k, v := range entries {
		if err := h.Add(k, v); err != nil {
			return HolidayMap{}, err
		}
	}
	return h, nil
}

// Add inserts or replaces one entry. The key format decides whether it is exact or recurring.
func (h *HolidayMap) Add(key, description string) error {
	key = strings.TrimSpace(key)
	if d, err := time.Parse(DateLayout, key); err == nil {
		if h.exact == nil {
			h.exact = make(map[string]string)
		}
		h.exact[d.Format(DateLayout)] = description
		return nil
	}
	if d, err := time.Parse(MonthDayLayout, key); err == nil {
		if h.recurring == nil {
			h.recurring = make(map[string]string)
		}
		h.recurring[d.Format(MonthDayLayout)] = description
		return nil
	}
	return &ConfigurationError{Field: "holidays", Reason: fmt.Sprintf("key %q is neither YYYY-MM-DD nor MM-DD", key)}
}

// Merge copies every entry of other into h, replacing entries with equal keys.
func (h *HolidayMap) Merge(other HolidayMap) {
	for k, v := range other.exact {
		if h.exact == nil {
			h.exact = make(map[string]string)
		}
		h.exact[k] = v
	}
	for k, v := range other.recurring {
		if h.recurring == nil {
			h.recurring = make(map[string]string)
		}
		h.recurring[k] = v
	}
}

// Len returns the number of entries of both kinds.
func (h HolidayMap) Len() int { return len(h.exact) + len(h.recurring) }

// Lookup returns the description for d.
func (h HolidayMap) Lookup(d time.Time) (description string, ok bool) {
	description, _, ok = h.lookup(d)
	return description, ok
}

func (h HolidayMap) lookup(d time.Time) (string, bool, bool) {
	if desc, ok := h.exact[d.Format(DateLayout)]; ok {
		return desc, false, true
	}
	if desc, ok := h.recurring[d.Format(MonthDayLayout)]; ok {
		return desc, true, true
	}
	return "", false, false
}

// Within lists the holidays that fall inside r, in date order.
func (h HolidayMap) Within(r Range) []Holiday {
	var out []Holiday
	for _, d := range r.Days() {
		if desc, recurring, ok := h.lookup(d); ok {
			out = append(out, Holiday{Date: d, Description: desc, Recurring: recurring})
		}
	}
	return out
}
