package votable

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func sampleTable() *Table {
	return &Table{
		Fields: []Field{
			{Name: "short_name", Datatype: "char", Arraysize: "*"},
			{Name: "ra", Datatype: "double"},
			{Name: "nobs", Datatype: "int"},
		},
		Rows: [][]any{
			{"CHANDRA", 10.68, int32(42)},
			{"ROSAT", nil, int32(-7)},
			{"XMM-Newton", 83.63, nil},
		},
	}
}

func TestToText(t *testing.T) {
	out := sampleTable().ToText(0)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("ToText() produced %d lines, want header + separator + 3 rows:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "short_name") {
		t.Errorf("header = %q, want column names", lines[0])
	}
	if !strings.HasPrefix(lines[1], "---") {
		t.Errorf("separator = %q, want dashes", lines[1])
	}
	if !strings.Contains(lines[2], "CHANDRA") || !strings.Contains(lines[2], "10.68") {
		t.Errorf("row = %q, want values aligned in columns", lines[2])
	}

	// All rows share the header's column offsets
	raCol := strings.Index(lines[0], "ra")
	if raCol < 0 || !strings.HasPrefix(lines[2][raCol:], "10.68") {
		t.Errorf("ra column misaligned:\n%s", out)
	}
}

func TestToText_MaxRows(t *testing.T) {
	out := sampleTable().ToText(1)
	if !strings.Contains(out, "(1 of 3 rows shown)") {
		t.Errorf("ToText(1) = %q, want truncation notice", out)
	}
	if strings.Contains(out, "ROSAT") {
		t.Errorf("ToText(1) should not include the second row")
	}
}

func TestToText_OverflowNotice(t *testing.T) {
	table := sampleTable()
	table.Overflow = true
	if !strings.Contains(table.ToText(0), "truncated by the service") {
		t.Error("ToText() should mention service-side truncation on overflow")
	}
}

func TestToText_LongCellsTruncated(t *testing.T) {
	table := &Table{
		Fields: []Field{{Name: "res_description", Datatype: "char", Arraysize: "*"}},
		Rows:   [][]any{{strings.Repeat("x", 100)}},
	}
	out := table.ToText(0)
	if strings.Contains(out, strings.Repeat("x", 50)) {
		t.Errorf("ToText() should truncate long cells:\n%s", out)
	}
	if !strings.Contains(out, "...") {
		t.Errorf("ToText() should mark truncated cells with an ellipsis")
	}
}

func TestToCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleTable().ToCSV(&buf); err != nil {
		t.Fatalf("ToCSV() unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("ToCSV() produced %d lines, want header + 3 rows", len(lines))
	}
	if lines[0] != "short_name,ra,nobs" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != "ROSAT,,-7" {
		t.Errorf("null cell row = %q, want empty field for null", lines[2])
	}
}

func TestToJSON(t *testing.T) {
	data, err := sampleTable().ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() unexpected error: %v", err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatalf("ToJSON() produced invalid JSON: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("ToJSON() produced %d rows, want 3", len(rows))
	}
	if rows[0]["short_name"] != "CHANDRA" {
		t.Errorf("row 0 short_name = %v", rows[0]["short_name"])
	}
	if rows[1]["ra"] != nil {
		t.Errorf("row 1 ra = %v, want JSON null", rows[1]["ra"])
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"nil", nil, ""},
		{"string", "x-ray", "x-ray"},
		{"bool", true, "true"},
		{"int32", int32(-5), "-5"},
		{"int64", int64(9000000000), "9000000000"},
		{"uint8", uint8(255), "255"},
		{"float64", 10.68, "10.68"},
		{"float32", float32(1.5), "1.5"},
		{"double slice", []float64{1.5, 2.5}, "1.5 2.5"},
		{"int slice", []int32{1, 2, 3}, "1 2 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatCell(tt.input); got != tt.want {
				t.Errorf("formatCell(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
