package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/r9s-ai/open-billing-client/pkg/billingresp"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	noteStyle  = lipgloss.NewStyle().Faint(true)
	cellStyle  = lipgloss.NewStyle().PaddingRight(1)
)

func renderTitle(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf(format, args...)))
}

// renderScalars prints every scalar field of n as an aligned key/value list.
func renderScalars(w io.Writer, n billingresp.Node) {
	keys := make([]billingresp.Key, 0, n.Len())
	width := 0
	for _, k := range n.Keys() {
		if !n.Get(k).IsScalar() {
			continue
		}
		keys = append(keys, k)
		width = max(width, lipgloss.Width(string(k)))
	}
	for _, k := range keys {
		label := string(k) + strings.Repeat(" ", width-lipgloss.Width(string(k)))
		fmt.Fprintf(w, "  %s  %s\n", keyStyle.Render(label), n.Get(k).String())
	}
}

// newTable returns a borderless table with dimmed headers.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderHeader(false).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return keyStyle.PaddingRight(1)
			}
			return cellStyle
		})
}

func renderServiceErrors(w io.Writer, res *billingresp.Response) {
	msgs := res.ErrorMessages()
	if len(msgs) == 0 {
		msgs = []string{fmt.Sprintf("service returned status %d", res.StatusCode())}
	}
	for _, m := range msgs {
		fmt.Fprintln(w, errStyle.Render("error: "+m))
	}
}

// renderTree writes plain values as yaml or indented json.
func renderTree(w io.Writer, v any, output string) error {
	switch strings.ToLower(strings.TrimSpace(output)) {
	case "json":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "", "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output %q (want yaml or json)", output)
	}
}

func money(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

func quantity(f float64) string {
	return fmt.Sprintf("%g", f)
}
