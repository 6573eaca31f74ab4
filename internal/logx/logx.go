package logx

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

var enableColor = isatty.IsTerminal(os.Stdout.Fd()) && strings.TrimSpace(os.Getenv("NO_COLOR")) == ""

func ColorizeStatus(status int) string {
	return ColorizeStatusWith(status, enableColor)
}

func ColorizeStatusWith(status int, color bool) string {
	if !color {
		return strconv.Itoa(status)
	}
	// ANSI colors
	const (
		reset  = "\x1b[0m"
		red    = "\x1b[31m"
		green  = "\x1b[32m"
		yellow = "\x1b[33m"
		cyan   = "\x1b[36m"
	)
	switch {
	case status >= 200 && status < 300:
		return green + strconv.Itoa(status) + reset
	case status >= 300 && status < 400:
		return cyan + strconv.Itoa(status) + reset
	case status >= 400 && status < 500:
		return yellow + strconv.Itoa(status) + reset
	default:
		return red + strconv.Itoa(status) + reset
	}
}

// FormatRequestLine prints a single line log for one billing API call.
//
// Example:
// [BILLING] 2026/10/19 - 17:44:22 | 200 | 12.3ms | GET "/json/customers/get/productCode/ACME" | bytes=512 decoded=true
func FormatRequestLine(
	ts time.Time,
	status int,
	latency time.Duration,
	method string,
	path string,
	fields map[string]any,
) string {
	return FormatRequestLineWithColor(ts, status, latency, method, path, fields, enableColor)
}

func FormatRequestLineWithColor(
	ts time.Time,
	status int,
	latency time.Duration,
	method string,
	path string,
	fields map[string]any,
	color bool,
) string {
	base := fmt.Sprintf(
		`[BILLING] %s | %s | %s | %s %q`,
		ts.Format("2006/01/02 - 15:04:05"),
		ColorizeStatusWith(status, color),
		latency.String(),
		strings.TrimSpace(method),
		path,
	)
	extra := formatFields(fields)
	if extra == "" {
		return base
	}
	return base + " | " + extra
}

func formatFields(fields map[string]any) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, ok := fields[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if strings.TrimSpace(t) == "" {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s=%s", k, t))
		case float64:
			// amounts must not switch to scientific notation
			parts = append(parts, fmt.Sprintf("%s=%s", k, strconv.FormatFloat(t, 'f', -1, 64)))
		default:
			s := strings.TrimSpace(fmt.Sprintf("%v", v))
			if s == "" || s == "<nil>" {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s=%s", k, s))
		}
	}
	return strings.Join(parts, " ")
}
