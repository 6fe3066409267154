// Package clean rewrites a raw export CSV with embedded thousands separators
// stripped from numeric fields, producing a file that generic CSV tooling can
// ingest without custom parsing.
package clean

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
)

// stripNumericCommas removes commas from a field when the result parses as a
// number. Non-numeric fields keep their commas ("PUMPER, LADDER" stays).
func stripNumericCommas(field string) string {
	if !strings.Contains(field, ",") {
		return field
	}
	stripped := strings.ReplaceAll(field, ",", "")
	if _, err := strconv.ParseFloat(strings.TrimSpace(stripped), 64); err == nil {
		return stripped
	}
	return field
}

// CleanRow strips numeric thousands separators from every field of one row.
func CleanRow(row []string) []string {
	out := make([]string, len(row))
	for i, f := range row {
		out[i] = stripNumericCommas(f)
	}
	return out
}

// Clean streams the CSV from r to w, cleaning every data row. The header row
// passes through untouched. Returns the number of data rows written.
func Clean(r io.Reader, w io.Writer) (int, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	cw := csv.NewWriter(w)
	defer cw.Flush()

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	rows := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("read row %d: %w", rows+1, err)
		}
		if err := cw.Write(CleanRow(row)); err != nil {
			return rows, fmt.Errorf("write row %d: %w", rows+1, err)
		}
		rows++
	}
	if err := cw.Error(); err != nil {
		return rows, fmt.Errorf("flush: %w", err)
	}
	return rows, nil
}

// CleanFile cleans input into output, creating or truncating output.
func CleanFile(input, output string) error {
	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	n, err := Clean(in, out)
	if err != nil {
		return err
	}
	log.Printf("clean: wrote %d rows to %s", n, output)
	return out.Close()
}
