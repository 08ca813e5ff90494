package votable

import (
	"reflect"
	"testing"
)

func TestColumnLookup(t *testing.T) {
	table := sampleTable()

	if got := table.ColumnIndex("ra"); got != 1 {
		t.Errorf("ColumnIndex(ra) = %d, want 1", got)
	}
	if got := table.ColumnIndex("RA"); got != 1 {
		t.Errorf("ColumnIndex(RA) = %d, want case-insensitive match", got)
	}
	if got := table.ColumnIndex("declination"); got != -1 {
		t.Errorf("ColumnIndex(missing) = %d, want -1", got)
	}

	want := []string{"short_name", "ra", "nobs"}
	if got := table.ColumnNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("ColumnNames() = %v, want %v", got, want)
	}
}

func TestColumn(t *testing.T) {
	table := sampleTable()

	col := table.Column("nobs")
	if len(col) != 3 {
		t.Fatalf("Column(nobs) length = %d, want 3", len(col))
	}
	if col[0] != int32(42) || col[2] != nil {
		t.Errorf("Column(nobs) = %v", col)
	}

	if got := table.Column("missing"); got != nil {
		t.Errorf("Column(missing) = %v, want nil", got)
	}
}

func TestCell(t *testing.T) {
	table := sampleTable()

	if got := table.Cell(0, "short_name"); got != "CHANDRA" {
		t.Errorf("Cell(0, short_name) = %v", got)
	}
	if got := table.Cell(99, "short_name"); got != nil {
		t.Errorf("Cell out of range = %v, want nil", got)
	}
	if got := table.Cell(0, "missing"); got != nil {
		t.Errorf("Cell missing column = %v, want nil", got)
	}

	if got := table.StringCell(1, "ra"); got != "" {
		t.Errorf("StringCell(null) = %q, want empty", got)
	}
	if got := table.StringCell(0, "ra"); got != "10.68" {
		t.Errorf("StringCell(0, ra) = %q, want formatted number", got)
	}
}

func TestFieldLookupByID(t *testing.T) {
	table := &Table{
		Fields: []Field{{ID: "col0", Datatype: "int"}},
		Rows:   [][]any{{int32(1)}},
	}
	if got := table.ColumnIndex("col0"); got != 0 {
		t.Errorf("ColumnIndex(ID fallback) = %d, want 0", got)
	}
}
