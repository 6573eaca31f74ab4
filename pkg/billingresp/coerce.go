package billingresp

import (
	"strings"
	"time"

	"github.com/r9s-ai/open-billing-client/pkg/jsonutil"
)

var dateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"01/02/2006",
	"2006-01",
	"01/2006",
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
}

func coerceLeaf(s string, ft FieldType) Node {
	switch ft {
	case TypeBoolean:
		return Bool(jsonutil.CoerceBool(s))
	case TypeInteger:
		return Int(jsonutil.CoerceInt(s))
	case TypeFloat:
		return Float(jsonutil.CoerceFloat(s))
	case TypeDate:
		if strings.TrimSpace(s) == "" {
			return Null()
		}
		if t, ok := parseDate(s); ok {
			return Date(t)
		}
	case TypeDateTime:
		if strings.TrimSpace(s) == "" {
			return Null()
		}
		if t, ok := parseDateTime(s); ok {
			return DateTime(t)
		}
	}
	return Str(s)
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func parseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	// a bare date is midnight UTC
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
