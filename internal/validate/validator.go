package validate

import (
	"log"
	"time"

	"fireetl/internal/config"
	"fireetl/pkg/records"
)

// Validator is the multi-stage data-quality gate. It is read-only with
// respect to the table it validates; its only side effect is the report
// artifact written under ReportsDir.
type Validator struct {
	thresholds config.Validation
	reportsDir string

	// now is injectable for deterministic artifact names in tests.
	now func() time.Time
}

// New constructs a Validator. An empty reportsDir disables artifact writing.
func New(thresholds config.Validation, reportsDir string) *Validator {
	return &Validator{
		thresholds: thresholds,
		reportsDir: reportsDir,
		now:        time.Now,
	}
}

// Validate runs all four passes over the table, synthesizes the verdict, and
// persists the report artifact. The returned report is complete even when the
// artifact write fails; the write error is returned alongside it.
func (v *Validator) Validate(t *records.Table) (*Report, error) {
	log.Printf("validate: starting validation of %d rows", t.Len())

	rep := &Report{
		SchemaValidation: validateSchema(t),
		DataQuality:      checkQuality(t, v.thresholds.MaxNullPercentage),
		BusinessRules:    evaluateRules(t, v.thresholds),
		Anomalies:        detectAnomalies(t),
	}

	// total issues = schema errors + failed rules + one for the presence of
	// any duration outliers. See the status thresholds in report.go.
	totalIssues := rep.SchemaValidation.ErrorCount + len(rep.BusinessRules.RulesFailed)
	if rep.Anomalies.DurationOutliers != nil {
		totalIssues++
	}

	now := v.now()
	rep.Summary = Summary{
		Timestamp:        now.Format(time.RFC3339),
		TotalRecords:     t.Len(),
		SchemaValid:      rep.SchemaValidation.ErrorCount == 0,
		TotalIssues:      totalIssues,
		DataQualityScore: rep.DataQuality.CompletenessScore,
		Status:           statusFor(totalIssues),
	}

	log.Printf("validate: status=%s issues=%d completeness=%.2f%%",
		rep.Summary.Status, totalIssues, rep.Summary.DataQualityScore)

	if v.reportsDir == "" {
		return rep, nil
	}
	path, err := rep.WriteArtifact(v.reportsDir, now)
	if err != nil {
		return rep, err
	}
	log.Printf("validate: report saved to %s", path)
	return rep, nil
}
