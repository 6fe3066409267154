// Package pipeline drives the extract, validate, transform, and load stages
// in order. Stages run sequentially; a FAIL verdict from validation aborts the
// run unless forced, and every stage is timed through the metrics facade.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"fireetl/internal/config"
	"fireetl/internal/extract"
	"fireetl/internal/load"
	"fireetl/internal/metrics"
	"fireetl/internal/transform"
	"fireetl/internal/validate"
	"fireetl/pkg/records"
)

// job is the metrics job label for every pipeline run.
const job = "fireetl"

// ErrValidationFailed aborts a run whose validation verdict is FAIL.
var ErrValidationFailed = errors.New("validation failed")

// Options control which stages run and how strictly.
type Options struct {
	// Force continues past a FAIL validation verdict.
	Force bool
	// SkipValidation bypasses the validation gate entirely.
	SkipValidation bool
	// SkipSchema skips table creation (tables must already exist).
	SkipSchema bool
	// Sample caps extraction at N rows; 0 means the full file.
	Sample int
}

// Result summarizes a completed run for the CLI.
type Result struct {
	RowsExtracted int
	RowsLoaded    int64
	FKUpdates     int64
	Validation    *validate.Report
	Elapsed       time.Duration
}

// PrintSummary writes the human-readable run summary.
func (r *Result) PrintSummary(w io.Writer) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "PIPELINE SUMMARY")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Rows extracted:       %d\n", r.RowsExtracted)
	fmt.Fprintf(w, "Rows loaded:          %d\n", r.RowsLoaded)
	fmt.Fprintf(w, "Foreign key updates:  %d\n", r.FKUpdates)
	if r.Validation != nil {
		fmt.Fprintf(w, "Validation status:    %s (%d issues)\n",
			r.Validation.Summary.Status, r.Validation.Summary.TotalIssues)
		fmt.Fprintf(w, "Completeness score:   %.2f%%\n",
			r.Validation.Summary.DataQualityScore)
	}
	fmt.Fprintf(w, "Elapsed:              %s\n", r.Elapsed.Truncate(time.Millisecond))
	fmt.Fprintln(w, rule)
}

// Pipeline wires the configured stages together.
type Pipeline struct {
	cfg  *config.Config
	opts Options
}

// New constructs a Pipeline for the given configuration.
func New(cfg *config.Config, opts Options) *Pipeline {
	return &Pipeline{cfg: cfg, opts: opts}
}

// timed runs fn as a named stage, recording its duration and outcome.
func timed(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStage(job, stage, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("stage %s: %w", stage, err)
	}
	return nil
}

// Run executes the pipeline end to end and returns the run summary. The
// returned Result carries the validation report even when the run aborts on
// a FAIL verdict.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{}
	finish := func(err error) (*Result, error) {
		res.Elapsed = time.Since(start)
		return res, err
	}

	var table *records.Table
	err := timed("extract", func() error {
		ex := &extract.Extractor{
			Path:      p.cfg.Source.Path,
			ChunkSize: p.cfg.Source.ChunkSize,
			MaxRows:   p.opts.Sample,
		}
		info, err := ex.Info()
		if err != nil {
			return err
		}
		log.Printf("pipeline: source %s (%.1f MB)", info.Path, float64(info.SizeBytes)/(1024*1024))
		table, err = ex.Extract()
		return err
	})
	if err != nil {
		return finish(err)
	}
	res.RowsExtracted = table.Len()
	metrics.RecordRows(job, "extracted", int64(res.RowsExtracted))

	if p.opts.SkipValidation {
		log.Printf("pipeline: validation skipped")
	} else {
		err = timed("validate", func() error {
			v := validate.New(p.cfg.Validation, p.cfg.ReportsDir)
			rep, err := v.Validate(table)
			res.Validation = rep
			if err != nil {
				return err
			}
			rep.PrintSummary(os.Stdout)
			if rep.Summary.Status == validate.StatusFail {
				if !p.opts.Force {
					return fmt.Errorf("%w: %d issues", ErrValidationFailed, rep.Summary.TotalIssues)
				}
				log.Printf("pipeline: validation FAILED with %d issues, continuing (force)",
					rep.Summary.TotalIssues)
			}
			return nil
		})
		if err != nil {
			return finish(err)
		}
	}

	var prepared *records.Table
	err = timed("transform", func() error {
		tr := transform.New()
		prepared = tr.PrepareForDatabase(tr.Transform(table))
		return nil
	})
	if err != nil {
		return finish(err)
	}

	err = timed("load", func() error {
		loader, closePool, err := load.New(ctx, p.cfg.DB.DSN(), p.cfg.Load.BatchSize)
		if err != nil {
			return err
		}
		defer closePool()

		if err := loader.TestConnection(ctx); err != nil {
			return err
		}
		if !p.opts.SkipSchema {
			if err := loader.BootstrapSchema(ctx); err != nil {
				return err
			}
		}
		if err := loader.PopulateDimensions(ctx, prepared); err != nil {
			return err
		}
		n, err := loader.LoadFacts(ctx, prepared)
		res.RowsLoaded = n
		if err != nil {
			return err
		}
		metrics.RecordRows(job, "loaded", n)
		metrics.RecordBatches(job, batchCount(prepared.Len(), p.cfg.Load.BatchSize))

		updates, err := loader.ReconcileForeignKeys(ctx)
		res.FKUpdates = updates
		if err != nil {
			return err
		}
		metrics.RecordRows(job, "fk_updates", updates)

		return loader.VerifyLoad(ctx)
	})
	if err != nil {
		return finish(err)
	}

	log.Printf("pipeline: completed in %s", time.Since(start).Truncate(time.Millisecond))
	return finish(nil)
}

// batchCount is ceil(rows / batchSize) for the batch counter.
func batchCount(rows, batchSize int) int64 {
	if batchSize <= 0 || rows <= 0 {
		return 0
	}
	return int64((rows + batchSize - 1) / batchSize)
}
