package csv

import (
	"strings"
	"testing"
)

func TestParseHeaderNormalization(t *testing.T) {
	t.Parallel()

	in := "\uFEFFEvent Number,Dispatch Year\nE1,2024\n"
	p := NewParser(Options{HasHeader: true})
	table, skipped, err := p.Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if skipped != 0 {
		t.Fatalf("skipped=%d; want 0", skipped)
	}
	want := []string{"event_number", "dispatch_year"}
	if len(table.Columns) != 2 || table.Columns[0] != want[0] || table.Columns[1] != want[1] {
		t.Fatalf("columns=%v; want %v (BOM stripped, lowercased, snake_case)", table.Columns, want)
	}
	if v, _ := table.Rows[0].StringOK("event_number"); v != "E1" {
		t.Fatalf("event_number=%q; want E1", v)
	}
}

func TestParseHeaderMap(t *testing.T) {
	t.Parallel()

	p := NewParser(Options{
		HasHeader: true,
		HeaderMap: map[string]string{"EVT": "event_number"},
	})
	table, _, err := p.Parse(strings.NewReader("EVT\nE9\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if table.Columns[0] != "event_number" {
		t.Fatalf("mapped header=%q; want event_number", table.Columns[0])
	}
}

func TestParseEmptyCellsBecomeNil(t *testing.T) {
	t.Parallel()

	p := NewParser(Options{HasHeader: true, TrimSpace: true})
	table, _, err := p.Parse(strings.NewReader("a,b\n1,\n  , x \n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if table.Rows[0]["b"] != nil {
		t.Fatalf("empty cell=%v; want nil", table.Rows[0]["b"])
	}
	// Whitespace-only cells trim down to empty and null out too.
	if table.Rows[1]["a"] != nil {
		t.Fatalf("whitespace cell=%v; want nil", table.Rows[1]["a"])
	}
	if v, _ := table.Rows[1].StringOK("b"); v != "x" {
		t.Fatalf("trimmed cell=%q; want x", v)
	}
}

func TestParseSkipsRaggedRows(t *testing.T) {
	t.Parallel()

	in := "a,b\n1,2\nonly-one-field\n3,4\n"
	p := NewParser(Options{HasHeader: true})
	table, skipped, err := p.Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if skipped != 1 {
		t.Fatalf("skipped=%d; want 1", skipped)
	}
	if table.Len() != 2 {
		t.Fatalf("rows=%d; want 2 (surviving rows kept in order)", table.Len())
	}
	if v, _ := table.Rows[1].StringOK("a"); v != "3" {
		t.Fatalf("row after skip=%q; want 3", v)
	}
}

func TestParseMaxRows(t *testing.T) {
	t.Parallel()

	p := NewParser(Options{HasHeader: true, MaxRows: 2})
	table, _, err := p.Parse(strings.NewReader("a\n1\n2\n3\n4\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("rows=%d; want 2 (MaxRows cap)", table.Len())
	}
}

func TestParseHeaderless(t *testing.T) {
	t.Parallel()

	p := NewParser(Options{})
	table, _, err := p.Parse(strings.NewReader("1,2\n3,4\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if table.Columns[0] != "col_0" || table.Columns[1] != "col_1" {
		t.Fatalf("synthesized columns=%v; want col_0,col_1", table.Columns)
	}
}
