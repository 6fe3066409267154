// Package config provides configuration models and helpers for the ETL
// pipeline.
//
// This file adds a lightweight linter/validator for Config values. It performs
// static checks over a decoded Config and returns a list of issues (errors and
// warnings) that callers can surface in the CLI or in tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Config.
//
// Path is a dotted path into the config (e.g. "db.host",
// "validation.min_rows_expected"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation / linting of a Config.
//
// It does not mutate the config. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
func Validate(c *Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Source.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.path",
			Message:  "source.path must not be empty",
		})
	}
	if c.Source.ChunkSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.chunk_size",
			Message:  "chunk_size must not be negative",
		})
	}

	issues = append(issues, validateDB(c.DB)...)

	if c.Load.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "load.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; must be positive", c.Load.BatchSize),
		})
	}

	issues = append(issues, validateThresholds(c.Validation)...)

	if strings.TrimSpace(c.ReportsDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "reports_dir",
			Message:  "reports_dir is empty; validation report artifacts will not be written",
		})
	}

	return issues
}

func validateDB(d DB) []Issue {
	var issues []Issue

	if strings.TrimSpace(d.Host) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "db.host",
			Message:  "db.host must not be empty",
		})
	}
	if d.Port <= 0 || d.Port > 65535 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "db.port",
			Message:  fmt.Sprintf("db.port=%d; must be in (0, 65535]", d.Port),
		})
	}
	if strings.TrimSpace(d.Name) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "db.name",
			Message:  "db.name must not be empty",
		})
	}
	if strings.TrimSpace(d.User) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "db.user",
			Message:  "db.user must not be empty",
		})
	}
	if d.Password == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "db.password",
			Message:  "db.password is empty; set DB_PASSWORD in the environment",
		})
	}

	return issues
}

func validateThresholds(v Validation) []Issue {
	var issues []Issue

	if v.MaxNullPercentage < 0 || v.MaxNullPercentage > 100 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "validation.max_null_percentage",
			Message:  fmt.Sprintf("max_null_percentage=%.2f; must be in [0, 100]", v.MaxNullPercentage),
		})
	}
	if v.MinRowsExpected < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "validation.min_rows_expected",
			Message:  "min_rows_expected must not be negative",
		})
	}
	if v.MinRowsExpected == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "validation.min_rows_expected",
			Message:  "min_rows_expected=0 disables the row-count floor",
		})
	}
	if v.MaxDurationMinutes <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "validation.max_duration_minutes",
			Message:  "max_duration_minutes must be positive",
		})
	}
	if v.DateRangeStartYear > v.DateRangeEndYear {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "validation.date_range_start_year",
			Message: fmt.Sprintf("date range start %d is after end %d",
				v.DateRangeStartYear, v.DateRangeEndYear),
		})
	}

	return issues
}
