package validate

import (
	"log"
	"sort"

	"fireetl/pkg/records"
)

// iqrFence is the IQR multiplier for the outlier fences. 3×IQR marks extreme
// outliers only; the routine durations in this dataset are heavily skewed, so
// the conventional 1.5 multiplier would flag far too much.
const iqrFence = 3.0

// Bounds are the computed outlier fences.
type Bounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// OutlierStats describes the duration outliers found by the IQR rule.
type OutlierStats struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Bounds     Bounds  `json:"bounds"`
}

// Inconsistency is a structural data inconsistency, counted over the table.
type Inconsistency struct {
	Type        string `json:"type"`
	Count       int    `json:"count"`
	Description string `json:"description"`
}

// AnomalyReport combines the statistical and structural findings. The
// structural scans always run, regardless of the IQR result.
type AnomalyReport struct {
	DurationOutliers    *OutlierStats   `json:"duration_outliers,omitempty"`
	UnusualPatterns     []Inconsistency `json:"unusual_patterns"`
	DataInconsistencies []Inconsistency `json:"data_inconsistencies"`
}

// detectAnomalies runs IQR outlier detection on event duration plus the two
// structural inconsistency scans.
func detectAnomalies(t *records.Table) AnomalyReport {
	rep := AnomalyReport{
		UnusualPatterns:     []Inconsistency{},
		DataInconsistencies: []Inconsistency{},
	}

	rep.DurationOutliers = durationOutliers(t)

	// Records with a neighbourhood identifier but no name.
	missingNames := 0
	for _, rec := range t.Rows {
		if _, ok := rec.IntOK("neighbourhood_id"); ok && records.IsNull(rec["neighbourhood_name"]) {
			missingNames++
		}
	}
	if missingNames > 0 {
		rep.DataInconsistencies = append(rep.DataInconsistencies, Inconsistency{
			Type:        "missing_neighbourhood_name",
			Count:       missingNames,
			Description: "Records have neighbourhood_id but missing neighbourhood_name",
		})
	}

	// Records with a location description but neither coordinate.
	missingCoords := 0
	for _, rec := range t.Rows {
		if records.IsNull(rec["latitude"]) && records.IsNull(rec["longitude"]) && !records.IsNull(rec["approximate_location"]) {
			missingCoords++
		}
	}
	if missingCoords > 0 {
		rep.UnusualPatterns = append(rep.UnusualPatterns, Inconsistency{
			Type:        "missing_coordinates",
			Count:       missingCoords,
			Description: "Events have location description but no coordinates",
		})
	}

	log.Printf("validate: anomaly detection complete")
	return rep
}

// durationOutliers applies the IQR rule over non-null durations. Returns nil
// when no outliers exist (or there is no duration data), so the verdict
// synthesizer can count "any outliers" as a single issue.
func durationOutliers(t *records.Table) *OutlierStats {
	durations := make([]float64, 0, t.Len())
	for _, rec := range t.Rows {
		if d, ok := rec.FloatOK("event_duration_mins"); ok {
			durations = append(durations, d)
		}
	}
	if len(durations) == 0 {
		return nil
	}

	sort.Float64s(durations)
	q1 := quantile(durations, 0.25)
	q3 := quantile(durations, 0.75)
	iqr := q3 - q1
	lower := q1 - iqrFence*iqr
	upper := q3 + iqrFence*iqr

	count := 0
	for _, d := range durations {
		if d < lower || d > upper {
			count++
		}
	}
	if count == 0 {
		return nil
	}
	log.Printf("validate: found %d duration outliers (bounds %.2f..%.2f)", count, lower, upper)
	return &OutlierStats{
		Count:      count,
		Percentage: round2(float64(count) / float64(t.Len()) * 100),
		Bounds:     Bounds{Lower: lower, Upper: upper},
	}
}

// quantile computes the q-th quantile of sorted using linear interpolation
// between closest ranks (the same estimator pandas and numpy default to).
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(pos)
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
