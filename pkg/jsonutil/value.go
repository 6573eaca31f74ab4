package jsonutil

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CoerceInt converts common numeric-like values to int64.
// Strings are read best-effort: the longest leading integer wins, so "12 units" is 12
// and "abc" is 0.
func CoerceInt(v any) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case int:
		return int64(t)
	case int64:
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return int64(f)
		}
	case string:
		i, _ := LeadingInt(t)
		return i
	case bool:
		if t {
			return 1
		}
	}
	return 0
}

// CoerceFloat converts common numeric-like values to float64, reading strings best-effort.
func CoerceFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
	case string:
		f, _ := LeadingFloat(t)
		return f
	case bool:
		if t {
			return 1
		}
	}
	return 0
}

// CoerceBool reports whether the numeric value of v is nonzero.
// The literals "true" and "false" are honoured as well.
func CoerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.TrimSpace(t)
		if b, err := strconv.ParseBool(s); err == nil && !isDigits(s) {
			return b
		}
		return CoerceFloat(s) != 0
	default:
		return CoerceFloat(v) != 0
	}
}

// FirstNonEmpty returns the first value that is not blank.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// LeadingInt parses the integer prefix of s. ok is false when s has no digits.
func LeadingInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	end := scanSign(s, 0)
	digitsStart := end
	end = scanDigits(s, end)
	if end == digitsStart {
		return 0, false
	}
	i, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		// overflow: saturate like ParseInt reports
		if strings.HasPrefix(s, "-") {
			return math.MinInt64, true
		}
		return math.MaxInt64, true
	}
	return i, true
}

// LeadingFloat parses the decimal prefix of s, including an optional fraction and exponent.
func LeadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := scanSign(s, 0)
	intStart := end
	end = scanDigits(s, end)
	hasDigits := end > intStart
	if end < len(s) && s[end] == '.' {
		fracStart := end + 1
		fracEnd := scanDigits(s, fracStart)
		if fracEnd > fracStart || hasDigits {
			hasDigits = hasDigits || fracEnd > fracStart
			end = fracEnd
		}
	}
	if !hasDigits {
		return 0, false
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		expStart := scanSign(s, end+1)
		expEnd := scanDigits(s, expStart)
		if expEnd > expStart {
			end = expEnd
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func scanSign(s string, i int) int {
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		return i + 1
	}
	return i
}

func scanDigits(s string, i int) int {
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	return scanDigits(s, 0) == len(s)
}
