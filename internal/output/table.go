package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/vulnverified/iseeyou/internal/engine"
)

// Envelope keys shown by WriteSummary instead of the table.
var summaryKeys = map[string]bool{
	"source":   true,
	"sources":  true,
	"note":     true,
	"warnings": true,
	"error":    true,
	"message":  true,
}

// leadingColumns come first in record tables; the rest are alphabetical.
var leadingColumns = []string{"site", "name", "title", "port", "protocol", "service", "product", "version", "exists", "status_code", "domain", "id", "breach_date", "url"}

type recordList struct {
	name    string
	headers []string
	rows    [][]string
}

// WriteTable renders an envelope as a field/value table, followed by one table
// per list of records (username results, services, breaches).
func WriteTable(w io.Writer, env engine.Envelope, noColor bool) error {
	doc, err := normalize(env)
	if err != nil {
		return err
	}

	var fields [][]string
	var lists []recordList
	flatten("", doc, &fields, &lists)
	sort.Slice(fields, func(i, j int) bool { return fields[i][0] < fields[j][0] })

	fmt.Fprintln(w)
	render(w, []string{"Field", "Value"}, fields, noColor)

	for _, l := range lists {
		fmt.Fprintf(w, "\n%s (%d)\n", l.name, len(l.rows))
		if len(l.rows) == 0 {
			continue
		}
		render(w, l.headers, l.rows, noColor)
	}
	return nil
}

// normalize turns typed payload values (result structs, typed slices) into
// plain JSON values.
func normalize(env engine.Envelope) (map[string]any, error) {
	b, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func flatten(prefix string, doc map[string]any, fields *[][]string, lists *[]recordList) {
	for k, v := range doc {
		if prefix == "" && summaryKeys[k] {
			continue
		}
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch t := v.(type) {
		case map[string]any:
			flatten(key, t, fields, lists)
		case []any:
			if records, ok := asRecords(t); ok {
				*lists = append(*lists, buildList(key, records))
				continue
			}
			*fields = append(*fields, []string{key, truncate(cell(t), 60)})
		default:
			*fields = append(*fields, []string{key, truncate(cell(t), 60)})
		}
	}
	sort.Slice(*lists, func(i, j int) bool { return (*lists)[i].name < (*lists)[j].name })
}

// asRecords reports whether every element of s is an object.
func asRecords(s []any) ([]map[string]any, bool) {
	if len(s) == 0 {
		return nil, false
	}
	out := make([]map[string]any, 0, len(s))
	for _, e := range s {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, false
		}
		out = append(out, m)
	}
	return out, true
}

func buildList(name string, records []map[string]any) recordList {
	seen := make(map[string]bool)
	for _, r := range records {
		for k := range r {
			seen[k] = true
		}
	}
	headers := make([]string, 0, len(seen))
	for _, k := range leadingColumns {
		if seen[k] {
			headers = append(headers, k)
			delete(seen, k)
		}
	}
	headers = append(headers, sortedKeys(seen)...)

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = truncate(cell(r[h]), 40)
		}
		rows = append(rows, row)
	}
	return recordList{name: name, headers: headers, rows: rows}
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		return t
	case bool:
		if t {
			return "yes"
		}
		return "no"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, cell(e))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		b, _ := json.Marshal(t)
		return string(b)
	}
	return fmt.Sprint(v)
}

func render(w io.Writer, headers []string, rows [][]string, noColor bool) {
	if noColor {
		writeSimpleTable(w, headers, rows)
		return
	}

	t := table.New().
		Headers(headers...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
			}
			return lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
		})

	for _, row := range rows {
		t.Row(row...)
	}

	fmt.Fprintln(w, t.Render())
}

func writeSimpleTable(w io.Writer, headers []string, rows [][]string) {
	// Calculate column widths.
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, c := range row {
			if len(c) > widths[i] {
				widths[i] = len(c)
			}
		}
	}

	// Print header.
	for i, h := range headers {
		if i > 0 {
			fmt.Fprint(w, " | ")
		}
		fmt.Fprintf(w, "%-*s", widths[i], h)
	}
	fmt.Fprintln(w)

	// Separator.
	for i, width := range widths {
		if i > 0 {
			fmt.Fprint(w, "-+-")
		}
		fmt.Fprint(w, strings.Repeat("-", width))
	}
	fmt.Fprintln(w)

	// Rows.
	for _, row := range rows {
		for i, c := range row {
			if i > 0 {
				fmt.Fprint(w, " | ")
			}
			fmt.Fprintf(w, "%-*s", widths[i], c)
		}
		fmt.Fprintln(w)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
