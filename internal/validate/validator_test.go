package validate

import (
	"os"
	"testing"
	"time"

	"fireetl/internal/config"
)

func TestValidateEndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	v := New(config.Validation{
		MaxNullPercentage:  10,
		MinRowsExpected:    3,
		MaxDurationMinutes: 1440,
		DateRangeStartYear: 2020,
		DateRangeEndYear:   2026,
	}, dir)
	v.now = func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }

	rep, err := v.Validate(conformingTable(5))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if rep.Summary.Status != StatusPass {
		t.Fatalf("status=%s issues=%d; want PASS", rep.Summary.Status, rep.Summary.TotalIssues)
	}
	if !rep.Summary.SchemaValid {
		t.Fatalf("schema_valid=false; want true")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "validation_report_20250601_090000.json" {
		t.Fatalf("artifacts=%v; want single timestamped report", entries)
	}
}

func TestValidateCountsIssues(t *testing.T) {
	t.Parallel()

	// Two schema errors (bad month, bad day), one failed rule (row floor with
	// min 100), one outlier presence: 4 issues total, WARNING verdict.
	tbl := conformingTable(6)
	tbl.Rows[0]["dispatch_month"] = int64(13)
	tbl.Rows[1]["dispatch_day"] = int64(0)
	for i, rec := range tbl.Rows {
		rec["event_duration_mins"] = int64(i + 1)
	}
	tbl.Rows[5]["event_duration_mins"] = int64(100000)

	v := New(config.Validation{
		MaxNullPercentage:  10,
		MinRowsExpected:    100,
		MaxDurationMinutes: 1440,
		DateRangeStartYear: 2020,
		DateRangeEndYear:   2026,
	}, "")

	rep, err := v.Validate(tbl)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if rep.Summary.TotalIssues != 4 {
		t.Fatalf("total_issues=%d; want 4 (2 schema + 1 rule + 1 outlier presence)",
			rep.Summary.TotalIssues)
	}
	if rep.Summary.Status != StatusWarning {
		t.Fatalf("status=%s; want WARNING", rep.Summary.Status)
	}
	if rep.Summary.SchemaValid {
		t.Fatalf("schema_valid=true; want false with schema errors")
	}
}

func TestValidateSkipsArtifactWithoutDir(t *testing.T) {
	t.Parallel()

	v := New(config.Validation{MinRowsExpected: 1, MaxDurationMinutes: 1440,
		DateRangeStartYear: 2020, DateRangeEndYear: 2026, MaxNullPercentage: 10}, "")
	if _, err := v.Validate(conformingTable(2)); err != nil {
		t.Fatalf("Validate without reports dir: %v", err)
	}
}
