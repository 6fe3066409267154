// Package records defines the in-memory row model shared by every pipeline
// stage. A Record is a column-name keyed map of already-typed values; a Table
// pairs a slice of Records with the ordered column list from the source header
// so that stages can iterate columns deterministically.
//
// Value conventions:
//
//	nil        missing / null cell
//	string     text columns
//	int64      integer columns (dispatch_year, event_duration_mins, ...)
//	float64    float columns (latitude, longitude)
//	time.Time  parsed date/datetime columns added by the transformer
package records

import "time"

// Record is a single row keyed by canonical column name.
type Record map[string]any

// Table is an ordered, column-typed in-memory table.
type Table struct {
	Columns []string
	Rows    []Record
}

// NewTable constructs a Table with the given column order.
func NewTable(columns []string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the row count.
func (t *Table) Len() int { return len(t.Rows) }

// HasColumn reports whether name is a declared column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn declares a new column at the end of the column order. Adding an
// already-declared column is a no-op.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// IsNull reports whether v is a null cell. Empty strings are not null; the
// transformer converts them to nil explicitly.
func IsNull(v any) bool { return v == nil }

// IntOK returns the value under key as int64. ok is false when the cell is
// missing, nil, or not an integer.
func (r Record) IntOK(key string) (int64, bool) {
	switch t := r[key].(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	default:
		return 0, false
	}
}

// FloatOK returns the value under key as float64, accepting integer cells.
func (r Record) FloatOK(key string) (float64, bool) {
	switch t := r[key].(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	default:
		return 0, false
	}
}

// StringOK returns the value under key as string. ok is false for missing,
// nil, or non-string cells.
func (r Record) StringOK(key string) (string, bool) {
	s, ok := r[key].(string)
	return s, ok
}

// TimeOK returns the value under key as time.Time.
func (r Record) TimeOK(key string) (time.Time, bool) {
	t, ok := r[key].(time.Time)
	return t, ok
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
