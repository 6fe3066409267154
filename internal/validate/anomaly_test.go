package validate

import (
	"math"
	"testing"

	"fireetl/pkg/records"
)

func durationsTable(durations []int64) *records.Table {
	t := records.NewTable([]string{"event_duration_mins"})
	for _, d := range durations {
		t.Rows = append(t.Rows, records.Record{"event_duration_mins": d})
	}
	return t
}

func TestQuantileLinearInterpolation(t *testing.T) {
	t.Parallel()

	sorted := []float64{1, 2, 3, 4, 5, 100}
	if q1 := quantile(sorted, 0.25); q1 != 2.25 {
		t.Fatalf("q1=%v; want 2.25", q1)
	}
	if q3 := quantile(sorted, 0.75); q3 != 4.75 {
		t.Fatalf("q3=%v; want 4.75", q3)
	}
	if med := quantile([]float64{1, 2, 3, 4}, 0.5); med != 2.5 {
		t.Fatalf("median=%v; want 2.5", med)
	}
	if v := quantile([]float64{7}, 0.75); v != 7 {
		t.Fatalf("single-element quantile=%v; want 7", v)
	}
}

func TestDurationOutliersIQR(t *testing.T) {
	t.Parallel()

	// Q1=2.25, Q3=4.75, IQR=2.5, upper fence 4.75+3*2.5=12.25: only 100 is out.
	stats := durationOutliers(durationsTable([]int64{1, 2, 3, 4, 5, 100}))
	if stats == nil {
		t.Fatalf("stats=nil; want one outlier")
	}
	if stats.Count != 1 {
		t.Fatalf("count=%d; want 1", stats.Count)
	}
	if math.Abs(stats.Bounds.Upper-12.25) > 1e-9 {
		t.Fatalf("upper=%v; want 12.25", stats.Bounds.Upper)
	}
}

func TestDurationOutliersNilWhenClean(t *testing.T) {
	t.Parallel()

	if stats := durationOutliers(durationsTable([]int64{10, 11, 12, 13, 14})); stats != nil {
		t.Fatalf("stats=%+v; want nil for uniform durations", stats)
	}
	if stats := durationOutliers(records.NewTable([]string{"event_duration_mins"})); stats != nil {
		t.Fatalf("stats=%+v; want nil for empty table", stats)
	}
}

func TestDetectAnomaliesStructuralScans(t *testing.T) {
	t.Parallel()

	tbl := records.NewTable([]string{
		"event_duration_mins", "neighbourhood_id", "neighbourhood_name",
		"latitude", "longitude", "approximate_location",
	})
	tbl.Rows = []records.Record{
		// id present, name missing
		{"neighbourhood_id": int64(1), "neighbourhood_name": nil,
			"latitude": 53.5, "longitude": -113.5, "approximate_location": "A"},
		// location described but both coordinates missing
		{"neighbourhood_id": int64(2), "neighbourhood_name": "Downtown",
			"latitude": nil, "longitude": nil, "approximate_location": "B"},
		// clean row
		{"neighbourhood_id": int64(3), "neighbourhood_name": "Oliver",
			"latitude": 53.5, "longitude": -113.5, "approximate_location": "C"},
	}

	rep := detectAnomalies(tbl)
	if len(rep.DataInconsistencies) != 1 || rep.DataInconsistencies[0].Count != 1 {
		t.Fatalf("data_inconsistencies=%+v; want 1 missing_neighbourhood_name", rep.DataInconsistencies)
	}
	if rep.DataInconsistencies[0].Type != "missing_neighbourhood_name" {
		t.Fatalf("type=%s; want missing_neighbourhood_name", rep.DataInconsistencies[0].Type)
	}
	if len(rep.UnusualPatterns) != 1 || rep.UnusualPatterns[0].Type != "missing_coordinates" {
		t.Fatalf("unusual_patterns=%+v; want 1 missing_coordinates", rep.UnusualPatterns)
	}
}
