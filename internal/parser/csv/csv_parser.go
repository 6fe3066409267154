// Package csv implements a streaming CSV parser for the fire-incident extract.
// It reads rows directly off the file handle without whole-file buffering, so
// multi-hundred-MB municipal extracts parse safely, and it soft-fails
// malformed rows (skip and count) rather than aborting the run.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"fireetl/pkg/records"
)

// Options configures the CSV parser behavior. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	// When false, columns are synthesized as col_0, col_1, ...
	HasHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// HeaderMap maps source header names to canonical keys. Headers not in the
	// map fall back to lowercase snake_case normalization.
	HeaderMap map[string]string

	// MaxRows, when > 0, stops parsing after that many data rows. Used for
	// sample runs and previews.
	MaxRows int
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// skipLogLimit caps the number of per-row skip lines logged; the total skip
// count is always returned to the caller.
const skipLogLimit = 400

// Parse consumes CSV records from r and returns the parsed table along with
// the number of rows skipped due to parse errors or field-count mismatches.
// Field values come back as string, or nil for empty cells.
func (p *Parser) Parse(r io.Reader) (*records.Table, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var headers []string
	if p.opt.HasHeader {
		h, err := cr.Read()
		if err != nil {
			return nil, 0, fmt.Errorf("read csv header: %w", err)
		}
		headers = normalizeHeaders(h, p.opt)
	}

	table := records.NewTable(headers)
	var skipped int

	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < skipLogLimit {
				log.Printf("csv: skipping row %d: %v", line, err)
			}
			skipped++
			continue
		}

		// First data row of a headerless file fixes the expected width.
		if len(headers) == 0 {
			headers = make([]string, len(row))
			for i := range headers {
				headers[i] = fmt.Sprintf("col_%d", i)
			}
			table.Columns = headers
		}

		if len(row) != len(headers) {
			if skipped < skipLogLimit {
				log.Printf("csv: skipping row %d: incorrect number of fields (expected %d, got %d)",
					line, len(headers), len(row))
			}
			skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[headers[i]] = emptyToNil(val)
		}
		table.Rows = append(table.Rows, rec)

		if p.opt.MaxRows > 0 && len(table.Rows) >= p.opt.MaxRows {
			break
		}
	}

	return table, skipped, nil
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders produces canonical header keys using HeaderMap (when
// provided) and simple normalization (lowercase, spaces to underscores). It
// also strips a UTF-8 BOM from the first cell if present.
func normalizeHeaders(h []string, opt Options) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if opt.HeaderMap != nil {
			if m, ok := opt.HeaderMap[c]; ok {
				res[i] = m
				continue
			}
		}
		res[i] = strings.ReplaceAll(strings.ToLower(c), " ", "_")
	}
	return res
}
