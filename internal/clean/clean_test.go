package clean

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestCleanRow(t *testing.T) {
	t.Parallel()

	in := []string{"E1", "1,440", "PUMPER, LADDER", "1,234,567", "53.5461"}
	want := []string{"E1", "1440", "PUMPER, LADDER", "1234567", "53.5461"}
	if got := CleanRow(in); !reflect.DeepEqual(got, want) {
		t.Fatalf("CleanRow=%v; want %v (numeric commas stripped, text kept)", got, want)
	}
}

func TestCleanStream(t *testing.T) {
	t.Parallel()

	in := "event_number,event_duration_mins,equipment_assigned\n" +
		"E1,\"1,440\",\"PUMPER, LADDER\"\n" +
		"E2,90,ENGINE\n"
	var out bytes.Buffer

	n, err := Clean(strings.NewReader(in), &out)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows=%d; want 2", n)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if lines[0] != "event_number,event_duration_mins,equipment_assigned" {
		t.Fatalf("header=%q; want unchanged", lines[0])
	}
	// The duration loses its separator; the equipment list keeps its comma and
	// therefore stays quoted.
	if lines[1] != `E1,1440,"PUMPER, LADDER"` {
		t.Fatalf("row=%q; want numeric comma stripped only", lines[1])
	}
}

func TestCleanFileRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "raw.csv")
	output := filepath.Join(dir, "clean.csv")
	body := "a,b\n\"2,500\",x\n"
	if err := os.WriteFile(input, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CleanFile(input, output); err != nil {
		t.Fatalf("CleanFile: %v", err)
	}
	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if want := "a,b\n2500,x\n"; string(got) != want {
		t.Fatalf("output=%q; want %q", got, want)
	}
}

func TestCleanMissingHeader(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	if _, err := Clean(strings.NewReader(""), &out); err == nil {
		t.Fatalf("empty input accepted; want header read error")
	}
}
