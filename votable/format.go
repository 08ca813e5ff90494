package votable

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	maxColumnWidth = 40 // Cells longer than this are truncated in text output
	separatorRune  = "-"
)

// ToText renders the table as aligned columns for terminal display.
// maxRows limits the body; zero or negative means all rows. Truncated
// output ends with a "(n of m rows shown)" notice.
func (t *Table) ToText(maxRows int) string {
	var buf bytes.Buffer

	names := t.ColumnNames()
	shown := len(t.Rows)
	if maxRows > 0 && maxRows < shown {
		shown = maxRows
	}

	// Column widths from header and the shown rows
	widths := make([]int, len(names))
	for i, n := range names {
		widths[i] = len(n)
	}
	cells := make([][]string, shown)
	for r := 0; r < shown; r++ {
		cells[r] = make([]string, len(names))
		for c := range names {
			s := truncateCell(formatCell(t.Rows[r][c]))
			cells[r][c] = s
			if len(s) > widths[c] {
				widths[c] = len(s)
			}
		}
	}

	for i, n := range names {
		if i > 0 {
			buf.WriteString("  ")
		}
		buf.WriteString(pad(n, widths[i]))
	}
	buf.WriteString("\n")

	total := 0
	for i, w := range widths {
		if i > 0 {
			total += 2
		}
		total += w
	}
	buf.WriteString(strings.Repeat(separatorRune, total) + "\n")

	for r := 0; r < shown; r++ {
		for c := range names {
			if c > 0 {
				buf.WriteString("  ")
			}
			buf.WriteString(pad(cells[r][c], widths[c]))
		}
		buf.WriteString("\n")
	}

	if shown < len(t.Rows) {
		buf.WriteString(fmt.Sprintf("(%d of %d rows shown)\n", shown, len(t.Rows)))
	}
	if t.Overflow {
		buf.WriteString("(result truncated by the service row limit)\n")
	}

	return buf.String()
}

// ToCSV writes the table in CSV form with a header row.
func (t *Table) ToCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return err
	}
	record := make([]string, len(t.Fields))
	for _, row := range t.Rows {
		for i, cell := range row {
			record[i] = formatCell(cell)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ToJSON renders the table as an indented JSON array of row objects.
func (t *Table) ToJSON() ([]byte, error) {
	names := t.ColumnNames()
	out := make([]map[string]any, len(t.Rows))
	for r, row := range t.Rows {
		obj := make(map[string]any, len(names))
		for c, name := range names {
			obj[name] = row[c]
		}
		out[r] = obj
	}
	return json.MarshalIndent(out, "", "  ")
}

// pad right-pads s with spaces to the given width.
func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// truncateCell shortens long cells for text display.
func truncateCell(s string) string {
	if len(s) <= maxColumnWidth {
		return s
	}
	return s[:maxColumnWidth-3] + "..."
}

// formatCell renders a single cell for display. Nulls are empty.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case []float64:
		return joinNumbers(len(x), func(i int) string { return strconv.FormatFloat(x[i], 'g', -1, 64) })
	case []float32:
		return joinNumbers(len(x), func(i int) string { return strconv.FormatFloat(float64(x[i]), 'g', -1, 32) })
	case []int16:
		return joinNumbers(len(x), func(i int) string { return strconv.FormatInt(int64(x[i]), 10) })
	case []int32:
		return joinNumbers(len(x), func(i int) string { return strconv.FormatInt(int64(x[i]), 10) })
	case []int64:
		return joinNumbers(len(x), func(i int) string { return strconv.FormatInt(x[i], 10) })
	case []uint8:
		return joinNumbers(len(x), func(i int) string { return strconv.FormatUint(uint64(x[i]), 10) })
	default:
		return fmt.Sprintf("%v", v)
	}
}

// joinNumbers renders array cells as space-separated element lists.
func joinNumbers(n int, elem func(int) string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = elem(i)
	}
	return strings.Join(parts, " ")
}
