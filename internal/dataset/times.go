package dataset

import (
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing date cells
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"2006-01",
	"01/02/2006",
}

// ParseDate parses a date cell; ok is false for unparseable values
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Times parses a column as dates; null or unparseable cells are invalid
func (d *Dataset) Times(name string) (times []time.Time, valid []bool, err error) {
	keys, keyValid, err := d.Keys(name)
	if err != nil {
		return nil, nil, err
	}

	times = make([]time.Time, len(keys))
	valid = make([]bool, len(keys))
	for i, k := range keys {
		if !keyValid[i] {
			continue
		}
		times[i], valid[i] = ParseDate(k)
	}
	return times, valid, nil
}

// MonthStart truncates t to the first instant of its calendar month
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
