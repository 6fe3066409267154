package validate

import (
	"fmt"

	"fireetl/pkg/records"
)

// ExpectedColumns is the exact set of columns the extract must carry. Missing
// columns are FAIL-level errors; extra columns are non-fatal warnings.
var ExpectedColumns = []string{
	"event_number", "dispatch_year", "dispatch_month", "dispatch_day",
	"dispatch_month_name", "dispatch_dayofweek", "dispatch_date",
	"dispatch_date_date", "dispatch_time", "dispatch_datetime",
	"event_close_date", "event_close_date_date", "event_close_time",
	"event_close_datetime", "event_duration_mins", "event_type_group",
	"event_description", "neighbourhood_id", "neighbourhood_name",
	"approximate_location", "equipment_assigned", "latitude",
	"longitude", "geometry_point", "response_code",
}

// maxErrorExamples bounds the number of violation examples embedded in the
// report. Counts are always exact; only the example list is truncated.
const maxErrorExamples = 10

// ColumnCheck is a declarative per-column predicate evaluated uniformly over
// every row. OK is called only for non-nil cells; nil cells are governed by
// the nullability policy instead.
type ColumnCheck struct {
	Column string
	Name   string
	OK     func(v any) bool
}

// intRange builds a range check for an int64 column.
func intRange(column string, lo, hi int64) ColumnCheck {
	return ColumnCheck{
		Column: column,
		Name:   fmt.Sprintf("in_range(%d, %d)", lo, hi),
		OK: func(v any) bool {
			n, ok := v.(int64)
			return ok && n >= lo && n <= hi
		},
	}
}

// intMin builds a lower-bound check for an int64 column.
func intMin(column string, lo int64) ColumnCheck {
	return ColumnCheck{
		Column: column,
		Name:   fmt.Sprintf("greater_than_or_equal_to(%d)", lo),
		OK: func(v any) bool {
			n, ok := v.(int64)
			return ok && n >= lo
		},
	}
}

// floatRange builds a range check for a float64 column.
func floatRange(column string, lo, hi float64) ColumnCheck {
	return ColumnCheck{
		Column: column,
		Name:   fmt.Sprintf("in_range(%g, %g)", lo, hi),
		OK: func(v any) bool {
			f, ok := v.(float64)
			return ok && f >= lo && f <= hi
		},
	}
}

// typeIs builds a type-coercibility check: the cell must hold the declared Go
// type. The extractor nulls unparseable numerics, so a surviving mismatch
// means the raw extract carried garbage in that column.
func typeIs[T any](column, name string) ColumnCheck {
	return ColumnCheck{
		Column: column,
		Name:   name,
		OK: func(v any) bool {
			_, ok := v.(T)
			return ok
		},
	}
}

// schemaChecks is the declarative check list mirroring the warehouse contract:
// value ranges on dispatch date parts, duration and coordinates, and type
// checks on the numeric columns.
func schemaChecks() []ColumnCheck {
	return []ColumnCheck{
		intRange("dispatch_year", 2000, 2030),
		intRange("dispatch_month", 1, 12),
		intRange("dispatch_day", 1, 31),
		intMin("event_duration_mins", 0),
		floatRange("latitude", -90, 90),
		floatRange("longitude", -180, 180),
		typeIs[int64]("neighbourhood_id", "dtype(int64)"),
		typeIs[string]("event_number", "dtype(str)"),
	}
}

// SchemaReport holds the outcome of the schema-conformance pass.
type SchemaReport struct {
	Status         string   `json:"status"` // PASS or FAIL
	MissingColumns []string `json:"missing_columns,omitempty"`
	ExtraColumns   []string `json:"extra_columns,omitempty"`
	ErrorCount     int      `json:"error_count"`
	Errors         []string `json:"errors,omitempty"` // first maxErrorExamples examples
}

// validateSchema runs column presence, nullability/uniqueness of the event
// identifier, and every declarative check over all rows, collecting all
// violations before reporting.
func validateSchema(t *records.Table) SchemaReport {
	rep := SchemaReport{Status: "PASS"}

	expected := make(map[string]struct{}, len(ExpectedColumns))
	for _, c := range ExpectedColumns {
		expected[c] = struct{}{}
	}
	present := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		present[c] = struct{}{}
	}

	for _, c := range ExpectedColumns {
		if _, ok := present[c]; !ok {
			rep.MissingColumns = append(rep.MissingColumns, c)
		}
	}
	for _, c := range t.Columns {
		if _, ok := expected[c]; !ok {
			rep.ExtraColumns = append(rep.ExtraColumns, c)
		}
	}

	var errs []string
	addErr := func(msg string) {
		rep.ErrorCount++
		if len(errs) < maxErrorExamples {
			errs = append(errs, msg)
		}
	}

	for _, c := range rep.MissingColumns {
		addErr(fmt.Sprintf("Column: %s, Check: column_present", c))
	}

	// Nullability and global uniqueness of the event identifier.
	if _, ok := present["event_number"]; ok {
		seen := make(map[string]struct{}, t.Len())
		for i, rec := range t.Rows {
			v := rec["event_number"]
			if v == nil {
				addErr(fmt.Sprintf("Column: event_number, Check: not_nullable, Row: %d", i))
				continue
			}
			s, ok := v.(string)
			if !ok {
				continue // dtype check reports this
			}
			if _, dup := seen[s]; dup {
				addErr(fmt.Sprintf("Column: event_number, Check: unique, Row: %d, Value: %s", i, s))
				continue
			}
			seen[s] = struct{}{}
		}
	}

	// Declarative per-column checks, evaluated uniformly.
	for _, chk := range schemaChecks() {
		if _, ok := present[chk.Column]; !ok {
			continue
		}
		for i, rec := range t.Rows {
			v := rec[chk.Column]
			if v == nil {
				continue
			}
			if !chk.OK(v) {
				addErr(fmt.Sprintf("Column: %s, Check: %s, Row: %d, Value: %v", chk.Column, chk.Name, i, v))
			}
		}
	}

	rep.Errors = errs
	if rep.ErrorCount > 0 {
		rep.Status = "FAIL"
	}
	return rep
}
