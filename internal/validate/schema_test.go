package validate

import (
	"fmt"
	"strings"
	"testing"

	"fireetl/pkg/records"
)

// conformingTable builds a minimal table carrying every expected column, with
// n rows of in-range values.
func conformingTable(n int) *records.Table {
	t := records.NewTable(ExpectedColumns)
	for i := 0; i < n; i++ {
		rec := records.Record{}
		for _, c := range ExpectedColumns {
			rec[c] = nil
		}
		rec["event_number"] = fmt.Sprintf("E%06d", i)
		rec["dispatch_year"] = int64(2024)
		rec["dispatch_month"] = int64(6)
		rec["dispatch_day"] = int64(15)
		rec["event_duration_mins"] = int64(30)
		rec["latitude"] = 53.5
		rec["longitude"] = -113.5
		rec["neighbourhood_id"] = int64(1000 + i)
		t.Rows = append(t.Rows, rec)
	}
	return t
}

func TestValidateSchemaPass(t *testing.T) {
	t.Parallel()

	rep := validateSchema(conformingTable(5))
	if rep.Status != "PASS" {
		t.Fatalf("status=%s errors=%v; want PASS", rep.Status, rep.Errors)
	}
	if rep.ErrorCount != 0 || len(rep.MissingColumns) != 0 {
		t.Fatalf("clean table reported errors: %+v", rep)
	}
}

func TestValidateSchemaMissingAndExtraColumns(t *testing.T) {
	t.Parallel()

	cols := append([]string{}, ExpectedColumns...)
	cols = cols[:len(cols)-1] // drop response_code
	cols = append(cols, "surprise")
	tbl := records.NewTable(cols)
	tbl.Rows = append(tbl.Rows, records.Record{"event_number": "E1"})

	rep := validateSchema(tbl)
	if rep.Status != "FAIL" {
		t.Fatalf("status=%s; want FAIL on missing column", rep.Status)
	}
	if len(rep.MissingColumns) != 1 || rep.MissingColumns[0] != "response_code" {
		t.Fatalf("missing=%v; want [response_code]", rep.MissingColumns)
	}
	if len(rep.ExtraColumns) != 1 || rep.ExtraColumns[0] != "surprise" {
		t.Fatalf("extra=%v; want [surprise]", rep.ExtraColumns)
	}
}

func TestValidateSchemaCollectsAllViolations(t *testing.T) {
	t.Parallel()

	tbl := conformingTable(3)
	tbl.Rows[0]["dispatch_month"] = int64(13) // out of range
	tbl.Rows[1]["latitude"] = 95.0            // out of range
	tbl.Rows[2]["event_number"] = nil         // not nullable

	rep := validateSchema(tbl)
	if rep.ErrorCount != 3 {
		t.Fatalf("error_count=%d; want 3 (collect-all, no fail-fast)", rep.ErrorCount)
	}
}

func TestValidateSchemaDuplicateEventNumbers(t *testing.T) {
	t.Parallel()

	tbl := conformingTable(3)
	tbl.Rows[2]["event_number"] = tbl.Rows[0]["event_number"]

	rep := validateSchema(tbl)
	if rep.Status != "FAIL" || rep.ErrorCount != 1 {
		t.Fatalf("status=%s count=%d; want FAIL with 1 uniqueness error", rep.Status, rep.ErrorCount)
	}
	if !strings.Contains(rep.Errors[0], "unique") {
		t.Fatalf("error=%q; want uniqueness violation", rep.Errors[0])
	}
}

func TestValidateSchemaExampleCap(t *testing.T) {
	t.Parallel()

	tbl := conformingTable(25)
	for _, rec := range tbl.Rows {
		rec["dispatch_day"] = int64(40)
	}

	rep := validateSchema(tbl)
	if rep.ErrorCount != 25 {
		t.Fatalf("error_count=%d; want exact 25", rep.ErrorCount)
	}
	if len(rep.Errors) != maxErrorExamples {
		t.Fatalf("examples=%d; want capped at %d", len(rep.Errors), maxErrorExamples)
	}
}
