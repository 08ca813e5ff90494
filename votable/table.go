package votable

import "strings"

// Table is a decoded result table: column declarations plus typed rows.
type Table struct {
	// Name is the TABLE element's name attribute, often empty.
	Name string

	// Fields declares the columns, in wire order.
	Fields []Field

	// Rows holds one slice per row with exactly len(Fields) cells.
	// A nil cell is a null.
	Rows [][]any

	// Overflow is set when the service truncated the result at its row
	// limit (QUERY_STATUS=OVERFLOW). The rows up to the limit are kept.
	Overflow bool

	// Infos carries the status records attached to the result.
	Infos []Info
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnNames returns the column names in wire order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Fields))
	for i := range t.Fields {
		names[i] = t.Fields[i].Key()
	}
	return names
}

// ColumnIndex returns the index of the named column, or -1. Lookup is
// case-insensitive; TAP services disagree on column name casing.
func (t *Table) ColumnIndex(name string) int {
	for i := range t.Fields {
		if strings.EqualFold(t.Fields[i].Key(), name) {
			return i
		}
	}
	return -1
}

// Column returns all cells of the named column, or nil when absent.
func (t *Table) Column(name string) []any {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	out := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

// Cell returns the value at (row, named column). Missing columns and
// out-of-range rows return nil, which keeps display code branch-free.
func (t *Table) Cell(row int, name string) any {
	idx := t.ColumnIndex(name)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return nil
	}
	return t.Rows[row][idx]
}

// StringCell returns the cell as a string, with null as "".
func (t *Table) StringCell(row int, name string) string {
	v := t.Cell(row, name)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return formatCell(v)
}
