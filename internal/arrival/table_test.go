package arrival

import (
	"strings"
	"testing"
	"time"
)

func TestReadTable(t *testing.T) {
	csvData := strings.Join([]string{
		"archivo,lec_p",
		"0042,1700000010.5",
		"7,not_a_number",
		"13,",
		"99,1700000100",
		"junk,1700000200",
	}, "\n")

	table, err := ReadTable(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}

	if got := table.Len(); got != 2 {
		t.Errorf("Expected 2 labeled entries, got %d", got)
	}

	ts, ok := table.Lookup(42)
	if !ok {
		t.Fatal("Expected a label for file 42")
	}
	want := time.Unix(1_700_000_010, 500_000_000).UTC()
	if !ts.Equal(want) {
		t.Errorf("Expected arrival %v, got %v", want, ts)
	}

	if _, ok := table.Lookup(99); !ok {
		t.Error("Expected a label for file 99")
	}

	for _, id := range []int{7, 13, 1} {
		if _, ok := table.Lookup(id); ok {
			t.Errorf("Expected no label for file %d", id)
		}
	}
}

func TestReadTable_CustomColumns(t *testing.T) {
	csvData := "trace_id,p_pick\n5,1700000000\n"

	table, err := ReadTable(strings.NewReader(csvData),
		WithIDColumn("trace_id"), WithArrivalColumn("p_pick"))
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}

	if _, ok := table.Lookup(5); !ok {
		t.Error("Expected a label for file 5")
	}
}

func TestReadTable_MissingColumn(t *testing.T) {
	csvData := "archivo,other\n1,2\n"

	if _, err := ReadTable(strings.NewReader(csvData)); err == nil {
		t.Error("Expected error for a table without the arrival column")
	}
}

func TestTable_NilLookup(t *testing.T) {
	var table *Table

	if _, ok := table.Lookup(1); ok {
		t.Error("Expected a nil table to report every lookup absent")
	}
	if got := table.Len(); got != 0 {
		t.Errorf("Expected a nil table to be empty, got %d entries", got)
	}
}
