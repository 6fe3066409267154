// Package validate implements the data-quality gate for the fire-incident
// pipeline. It runs four independent passes over the extracted table (schema
// conformance, data-quality metrics, business rules, anomaly detection) and
// synthesizes them into a single report whose status gates loading.
//
// All passes are read-only with respect to the table and collect every
// violation instead of failing fast; only the number of reported examples is
// bounded to keep the artifact compact.
package validate

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Status is the overall verdict of a validation run.
type Status string

const (
	// StatusPass means no issues were found; loading may proceed.
	StatusPass Status = "PASS"
	// StatusWarning means issues were found but below the failure threshold.
	// Callers must treat this as "continue with caution", not as success.
	StatusWarning Status = "WARNING"
	// StatusFail means loading must not proceed without explicit override.
	StatusFail Status = "FAIL"
)

// warningIssueCeiling is the largest issue count still reported as WARNING.
// The threshold is a fixed policy constant, deliberately uncorrelated with
// dataset size.
const warningIssueCeiling = 10

// statusFor derives the overall status from the total issue count.
func statusFor(totalIssues int) Status {
	switch {
	case totalIssues == 0:
		return StatusPass
	case totalIssues <= warningIssueCeiling:
		return StatusWarning
	default:
		return StatusFail
	}
}

// Report aggregates the four validation sub-reports plus the derived summary.
// A Report is created fresh per pipeline run and immutable once persisted.
type Report struct {
	SchemaValidation SchemaReport  `json:"schema_validation"`
	DataQuality      QualityReport `json:"data_quality"`
	BusinessRules    RulesReport   `json:"business_rules"`
	Anomalies        AnomalyReport `json:"anomalies"`
	Summary          Summary       `json:"summary"`
}

// Summary is the verdict block of the report.
type Summary struct {
	Timestamp        string  `json:"timestamp"`
	TotalRecords     int     `json:"total_records"`
	SchemaValid      bool    `json:"schema_valid"`
	TotalIssues      int     `json:"total_issues"`
	DataQualityScore float64 `json:"data_quality_score"`
	Status           Status  `json:"status"`
}

// WriteArtifact serializes the report as indented JSON to a timestamped file
// under dir. Artifacts form an append-only audit trail: each run writes a new
// file and nothing is ever overwritten. Returns the written path.
func (r *Report) WriteArtifact(dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	name := fmt.Sprintf("validation_report_%s.json", now.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	// O_EXCL guards the append-only contract: a second run in the same second
	// must not clobber the earlier artifact.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create report artifact: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		return "", fmt.Errorf("write report artifact: %w", err)
	}
	return path, nil
}

// PrintSummary writes a human-readable digest of the report to w.
func (r *Report) PrintSummary(w io.Writer) {
	fmt.Fprintln(w, "================================================================================")
	fmt.Fprintln(w, "VALIDATION SUMMARY")
	fmt.Fprintln(w, "================================================================================")
	fmt.Fprintf(w, "Status: %s\n", r.Summary.Status)
	fmt.Fprintf(w, "Total Records: %d\n", r.Summary.TotalRecords)
	fmt.Fprintf(w, "Data Quality Score: %.2f%%\n", r.Summary.DataQualityScore)
	fmt.Fprintf(w, "Total Issues: %d\n", r.Summary.TotalIssues)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Business Rules:")
	fmt.Fprintf(w, "  Passed: %d\n", len(r.BusinessRules.RulesPassed))
	fmt.Fprintf(w, "  Failed: %d\n", len(r.BusinessRules.RulesFailed))
	fmt.Fprintf(w, "  Warnings: %d\n", len(r.BusinessRules.Warnings))
	fmt.Fprintln(w, "================================================================================")
}
