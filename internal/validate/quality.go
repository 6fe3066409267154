package validate

import (
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"fireetl/pkg/records"
)

// ColumnNulls summarizes missing values for one column.
type ColumnNulls struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// QualityReport carries the table-wide data-quality metrics. None of these
// are fatal on their own; columns breaching the null threshold surface as
// warnings.
type QualityReport struct {
	TotalRows         int                    `json:"total_rows"`
	TotalColumns      int                    `json:"total_columns"`
	DuplicateRows     int                    `json:"duplicate_rows"`
	MissingValues     map[string]ColumnNulls `json:"missing_values"`
	CompletenessScore float64                `json:"completeness_score"`
	Warnings          []string               `json:"warnings,omitempty"`
}

// checkQuality computes per-column null statistics, the full-row duplicate
// count, and the overall completeness score.
func checkQuality(t *records.Table, maxNullPct float64) QualityReport {
	rep := QualityReport{
		TotalRows:     t.Len(),
		TotalColumns:  len(t.Columns),
		MissingValues: map[string]ColumnNulls{},
	}
	if t.Len() == 0 || len(t.Columns) == 0 {
		return rep
	}

	nulls := make(map[string]int, len(t.Columns))
	for _, rec := range t.Rows {
		for _, c := range t.Columns {
			if records.IsNull(rec[c]) {
				nulls[c]++
			}
		}
	}

	totalNulls := 0
	for _, c := range t.Columns {
		n := nulls[c]
		totalNulls += n
		if n == 0 {
			continue
		}
		pct := round2(float64(n) / float64(t.Len()) * 100)
		rep.MissingValues[c] = ColumnNulls{Count: n, Percentage: pct}
		if pct > maxNullPct {
			msg := fmt.Sprintf("Column '%s' has %.2f%% missing values (threshold: %.0f%%)", c, pct, maxNullPct)
			rep.Warnings = append(rep.Warnings, msg)
			log.Printf("validate: %s", msg)
		}
	}

	rep.DuplicateRows = duplicateRowCount(t)

	totalCells := t.Len() * len(t.Columns)
	filled := totalCells - totalNulls
	rep.CompletenessScore = round2(float64(filled) / float64(totalCells) * 100)

	return rep
}

// duplicateRowCount counts rows that are exact duplicates of an earlier row
// across all declared columns. Rows are reduced to an xxh3 hash of their
// canonical serialization so the working set stays one word per row.
func duplicateRowCount(t *records.Table) int {
	seen := make(map[uint64]struct{}, t.Len())
	var b strings.Builder
	dups := 0
	for _, rec := range t.Rows {
		b.Reset()
		for _, c := range t.Columns {
			writeCanonical(&b, rec[c])
			b.WriteByte(0x1f)
		}
		h := xxh3.HashString(b.String())
		if _, ok := seen[h]; ok {
			dups++
			continue
		}
		seen[h] = struct{}{}
	}
	return dups
}

// writeCanonical renders a cell value with a type tag so that e.g. int64(1)
// and "1" hash differently.
func writeCanonical(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		b.WriteByte('n')
	case string:
		b.WriteByte('s')
		b.WriteString(x)
	case int64:
		fmt.Fprintf(b, "i%d", x)
	case float64:
		fmt.Fprintf(b, "f%g", x)
	case time.Time:
		b.WriteByte('t')
		b.WriteString(x.Format(time.RFC3339Nano))
	default:
		fmt.Fprintf(b, "?%v", x)
	}
}

// round2 rounds to two decimal places, matching the report precision.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
