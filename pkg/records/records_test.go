package records

import (
	"testing"
	"time"
)

func TestTableColumns(t *testing.T) {
	t.Parallel()

	tbl := NewTable([]string{"a", "b"})
	if !tbl.HasColumn("a") || !tbl.HasColumn("b") {
		t.Fatalf("declared columns not reported present")
	}
	if tbl.HasColumn("c") {
		t.Fatalf("HasColumn(c)=true; want false")
	}

	tbl.AddColumn("c")
	tbl.AddColumn("c") // no-op
	if got, want := len(tbl.Columns), 3; got != want {
		t.Fatalf("columns=%d; want %d", got, want)
	}
	if tbl.Columns[2] != "c" {
		t.Fatalf("new column appended at %q; want end", tbl.Columns[2])
	}
}

func TestAccessors(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC)
	rec := Record{
		"i": int64(7),
		"f": 1.5,
		"s": "x",
		"t": ts,
		"n": nil,
	}

	if v, ok := rec.IntOK("i"); !ok || v != 7 {
		t.Fatalf("IntOK(i)=%d,%v; want 7,true", v, ok)
	}
	if _, ok := rec.IntOK("f"); ok {
		t.Fatalf("IntOK(f)=true; want false for float cell")
	}
	if v, ok := rec.FloatOK("i"); !ok || v != 7 {
		t.Fatalf("FloatOK(i)=%v,%v; want 7,true (int widens)", v, ok)
	}
	if v, ok := rec.StringOK("s"); !ok || v != "x" {
		t.Fatalf("StringOK(s)=%q,%v; want x,true", v, ok)
	}
	if v, ok := rec.TimeOK("t"); !ok || !v.Equal(ts) {
		t.Fatalf("TimeOK(t)=%v,%v; want %v,true", v, ok, ts)
	}
	if _, ok := rec.IntOK("n"); ok {
		t.Fatalf("IntOK(nil cell)=true; want false")
	}
	if _, ok := rec.IntOK("missing"); ok {
		t.Fatalf("IntOK(missing key)=true; want false")
	}
}

func TestIsNull(t *testing.T) {
	t.Parallel()

	if !IsNull(nil) {
		t.Fatalf("IsNull(nil)=false; want true")
	}
	// Empty strings are real values; nulling them is the transformer's call.
	if IsNull("") {
		t.Fatalf("IsNull(\"\")=true; want false")
	}
}

func TestClone(t *testing.T) {
	t.Parallel()

	rec := Record{"a": int64(1)}
	cp := rec.Clone()
	cp["a"] = int64(2)
	if v, _ := rec.IntOK("a"); v != 1 {
		t.Fatalf("clone mutated original: a=%d; want 1", v)
	}
}
