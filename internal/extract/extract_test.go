package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeCSV drops a small extract file into a temp dir and returns its path.
func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fires.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractTypesColumns(t *testing.T) {
	t.Parallel()

	body := "event_number,dispatch_year,event_duration_mins,latitude\n" +
		"E1,2024,\"1,440\",53.5461\n" +
		"E2,2024,90,\n"
	ex := &Extractor{Path: writeCSV(t, body)}

	table, err := ex.Extract()
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("rows=%d; want 2", table.Len())
	}

	// Thousands-separator commas are stripped before the int parse.
	if v, ok := table.Rows[0].IntOK("event_duration_mins"); !ok || v != 1440 {
		t.Fatalf("event_duration_mins=%v,%v; want 1440,true", v, ok)
	}
	if v, ok := table.Rows[0].IntOK("dispatch_year"); !ok || v != 2024 {
		t.Fatalf("dispatch_year=%v,%v; want 2024,true", v, ok)
	}
	if v, ok := table.Rows[0].FloatOK("latitude"); !ok || v != 53.5461 {
		t.Fatalf("latitude=%v,%v; want 53.5461,true", v, ok)
	}
	// Text dtype keeps the raw string.
	if v, ok := table.Rows[0].StringOK("event_number"); !ok || v != "E1" {
		t.Fatalf("event_number=%v,%v; want E1,true", v, ok)
	}
	// Empty cell stays null through coercion.
	if table.Rows[1]["latitude"] != nil {
		t.Fatalf("empty latitude=%v; want nil", table.Rows[1]["latitude"])
	}
}

func TestExtractNullsUnparseableNumerics(t *testing.T) {
	t.Parallel()

	body := "event_number,dispatch_year\nE1,not-a-year\n"
	ex := &Extractor{Path: writeCSV(t, body)}
	table, err := ex.Extract()
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if table.Rows[0]["dispatch_year"] != nil {
		t.Fatalf("unparseable year=%v; want nil (soft failure)", table.Rows[0]["dispatch_year"])
	}
}

func TestExtractErrorKinds(t *testing.T) {
	t.Parallel()

	ex := &Extractor{Path: filepath.Join(t.TempDir(), "absent.csv")}
	if _, err := ex.Extract(); !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("missing file err=%v; want ErrSourceNotFound", err)
	}

	ex = &Extractor{Path: writeCSV(t, "event_number,dispatch_year\n")}
	if _, err := ex.Extract(); !errors.Is(err, ErrEmptySource) {
		t.Fatalf("header-only file err=%v; want ErrEmptySource", err)
	}
}

func TestExtractSampleMode(t *testing.T) {
	t.Parallel()

	body := "event_number\nE1\nE2\nE3\nE4\n"
	ex := &Extractor{Path: writeCSV(t, body), MaxRows: 2}
	table, err := ex.Extract()
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("rows=%d; want 2 (sample cap)", table.Len())
	}
}

func TestExtractChunkedMatchesWhole(t *testing.T) {
	t.Parallel()

	body := "event_number\nE1\nE2\nE3\nE4\nE5\n"
	path := writeCSV(t, body)

	whole, err := (&Extractor{Path: path}).Extract()
	if err != nil {
		t.Fatalf("whole Extract: %v", err)
	}
	chunked, err := (&Extractor{Path: path, ChunkSize: 2}).Extract()
	if err != nil {
		t.Fatalf("chunked Extract: %v", err)
	}
	if whole.Len() != chunked.Len() {
		t.Fatalf("chunked rows=%d; want %d (identical to whole read)", chunked.Len(), whole.Len())
	}
	for i := range whole.Rows {
		w, _ := whole.Rows[i].StringOK("event_number")
		c, _ := chunked.Rows[i].StringOK("event_number")
		if w != c {
			t.Fatalf("row %d: chunked=%q whole=%q; want identical order", i, c, w)
		}
	}
}

func TestStripCommas(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"1,440", "1440"},
		{"12", "12"},
		{"1,234,567", "1234567"},
	}
	for _, tc := range cases {
		if got := stripCommas(tc.in); got != tc.want {
			t.Fatalf("stripCommas(%q)=%q; want %q", tc.in, got, tc.want)
		}
	}
}
