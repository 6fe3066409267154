// Package config defines the canonical, JSON-serializable configuration model
// for the fire-incident ETL application. A Config is decoded from a JSON file
// and then overridden from the environment, so that database credentials and
// tuning thresholds never need to live in the checked-in config.
//
// Precedence: environment variable > config file > built-in default.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Config is the top-level configuration for a pipeline run.
type Config struct {
	// Source describes the input CSV extract.
	Source Source `json:"source"`

	// DB holds PostgreSQL connection parameters for the warehouse.
	DB DB `json:"db"`

	// Load controls the batched fact-table load.
	Load Load `json:"load"`

	// Validation carries the data-quality thresholds used by the validator.
	Validation Validation `json:"validation"`

	// ReportsDir is where validation report artifacts are written. Each run
	// produces a new timestamped file; existing reports are never touched.
	ReportsDir string `json:"reports_dir"`
}

// Source identifies the input file.
type Source struct {
	// Path is the local filesystem path to the fire-incident CSV extract.
	Path string `json:"path"`

	// ChunkSize, when > 0, reads the file in chunks of this many rows.
	// Chunks are concatenated in input order, so the result is identical to a
	// whole-file read.
	ChunkSize int `json:"chunk_size"`
}

// DB configures the PostgreSQL warehouse connection.
type DB struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Name     string `json:"name"`
	User     string `json:"user"`
	Password string `json:"password"`
	SSLMode  string `json:"ssl_mode"`
}

// DSN renders the pgx connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// Load controls fact-table batching.
type Load struct {
	// BatchSize is the number of fact rows per COPY batch.
	BatchSize int `json:"batch_size"`
}

// Validation holds the externally overridable data-quality thresholds.
type Validation struct {
	// MaxNullPercentage flags any column whose null share exceeds it (warning).
	MaxNullPercentage float64 `json:"max_null_percentage"`

	// MinRowsExpected is the hard row-count floor for the dataset.
	MinRowsExpected int `json:"min_rows_expected"`

	// MaxDurationMinutes is the ceiling above which event durations are
	// reported as a warning.
	MaxDurationMinutes int64 `json:"max_duration_minutes"`

	// DateRangeStartYear / DateRangeEndYear bound the expected dispatch years.
	DateRangeStartYear int64 `json:"date_range_start_year"`
	DateRangeEndYear   int64 `json:"date_range_end_year"`
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		Source: Source{Path: "fire_incidents.csv"},
		DB: DB{
			Host:    "localhost",
			Port:    5432,
			Name:    "fire_incidents_db",
			User:    "postgres",
			SSLMode: "disable",
		},
		Load: Load{BatchSize: 10000},
		Validation: Validation{
			MaxNullPercentage:  10,
			MinRowsExpected:    100000,
			MaxDurationMinutes: 1440,
			DateRangeStartYear: 2020,
			DateRangeEndYear:   2026,
		},
		ReportsDir: "logs",
	}
}

// LoadFile decodes the JSON config at path on top of the defaults and then
// applies environment overrides. When path is empty the defaults plus
// environment are used.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		dec := json.NewDecoder(f)
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays the well-known environment variables onto cfg.
func (c *Config) applyEnv() {
	setStr(&c.Source.Path, "CSV_FILE_PATH")
	setStr(&c.DB.Host, "DB_HOST")
	setInt(&c.DB.Port, "DB_PORT")
	setStr(&c.DB.Name, "DB_NAME")
	setStr(&c.DB.User, "DB_USER")
	setStr(&c.DB.Password, "DB_PASSWORD")
	setInt(&c.Load.BatchSize, "BATCH_SIZE")
	setFloat(&c.Validation.MaxNullPercentage, "MAX_NULL_PERCENTAGE")
	setInt(&c.Validation.MinRowsExpected, "MIN_ROWS_EXPECTED")
	setInt64(&c.Validation.MaxDurationMinutes, "MAX_DURATION_MINUTES")
	setInt64(&c.Validation.DateRangeStartYear, "DATE_RANGE_START_YEAR")
	setInt64(&c.Validation.DateRangeEndYear, "DATE_RANGE_END_YEAR")
	setStr(&c.ReportsDir, "REPORTS_DIR")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
