// Package dataset loads and validates one tab-delimited data source for
// clustering preparation.
//
// A Dataset is populated once by Read, then normalized and classified by
// CleanColumnNames and CheckDataTypes. After classification it is not mutated
// except for missing-value flags; Merge builds a new owned table instead of
// aliasing its sources.
package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"clusterprep/internal/encdetect"
)

// nameWhitelist matches every run of characters that is not allowed in a
// column name. Offending runs are replaced with a single underscore.
var nameWhitelist = regexp.MustCompile(`[^A-Za-z0-9 .+-]+`)

// Dataset is one loaded tabular source plus its per-column metadata.
type Dataset struct {
	// SourcePath identifies the originating file.
	SourcePath string
	// Table holds the parsed data. Nil until Read succeeds.
	Table *Table
	// ColumnMeta maps each data column name to its metadata.
	ColumnMeta map[string]ColumnMeta
}

// Read parses a tab-delimited file: first row is the header, first column is
// the row-key. The text encoding is detected from the raw bytes before
// decoding; a low-confidence detection falls back to a default instead of
// aborting. errVal is the error/tolerance for real-valued roles and is
// ignored for Discrete.
//
// Read fails without touching the receiver, so a Dataset is never left
// partially populated.
func (d *Dataset) Read(path string, role Role, errVal float64, det encdetect.Detector) error {
	if !role.Valid() {
		return fmt.Errorf("data type in %s should be 'real scalar', 'real location' or 'discrete'", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	decoded, enc, err := encdetect.Decode(raw, det)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	log.Printf("detected encoding: %s (confidence %.2f)", enc.Encoding, enc.Confidence)

	header, rows, err := parseTSV(decoded)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if len(header) < 2 {
		return fmt.Errorf("parse %s: need a row-key column and at least one data column", path)
	}
	if err := checkDuplicates(header); err != nil {
		return err
	}

	t := &Table{
		KeyName: header[0],
		Columns: append([]string(nil), header[1:]...),
		Rows:    make(map[string][]string, len(rows)),
	}
	for i, rec := range rows {
		key := rec[0]
		if key == "" {
			return fmt.Errorf("parse %s: empty row key on data line %d", path, i+1)
		}
		if _, ok := t.Rows[key]; ok {
			return fmt.Errorf("parse %s: duplicate row key %q on data line %d", path, key, i+1)
		}
		t.Keys = append(t.Keys, key)
		t.Rows[key] = append([]string(nil), rec[1:]...)
	}

	meta := make(map[string]ColumnMeta, len(t.Columns))
	for _, col := range t.Columns {
		meta[col] = ColumnMeta{Role: role, Err: errVal}
	}

	d.SourcePath = path
	d.Table = t
	d.ColumnMeta = meta

	nrows, ncols := t.Shape()
	log.Printf("found %d rows and %d columns", nrows, ncols+1)
	return nil
}

// parseTSV reads header and data records, requiring every record to have the
// header's field count. Cells are trimmed; empty cells mean missing.
func parseTSV(data []byte) ([]string, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = '\t'
	r.FieldsPerRecord = -1 // validated manually for a better message
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, fmt.Errorf("empty file")
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows [][]string
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) != len(header) {
			return nil, nil, fmt.Errorf("line %d: expected %d fields, got %d", line, len(header), len(rec))
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		rows = append(rows, append([]string(nil), rec...))
	}
	return header, rows, nil
}

// CleanColumnNames applies the character whitelist to the row-key name and
// every column name, replacing disallowed runs with "_". Renames are applied
// to both the table and the column metadata and logged. Returns the number of
// renames; running it again on clean names renames nothing.
func (d *Dataset) CleanColumnNames() (int, error) {
	renamed := 0

	if cleaned := nameWhitelist.ReplaceAllString(d.Table.KeyName, "_"); cleaned != d.Table.KeyName {
		log.Printf("warning: column '%s' renamed to '%s'", d.Table.KeyName, cleaned)
		d.Table.KeyName = cleaned
		renamed++
	}

	for i, col := range d.Table.Columns {
		cleaned := nameWhitelist.ReplaceAllString(col, "_")
		if cleaned == col {
			continue
		}
		log.Printf("warning: column '%s' renamed to '%s'", col, cleaned)
		d.Table.Columns[i] = cleaned
		d.ColumnMeta[cleaned] = d.ColumnMeta[col]
		delete(d.ColumnMeta, col)
		renamed++
	}

	// Independently valid names can collapse onto each other after cleaning.
	header := append([]string{d.Table.KeyName}, d.Table.Columns...)
	if err := checkDuplicates(header); err != nil {
		return renamed, err
	}
	return renamed, nil
}

// CheckDataTypes verifies that every real-valued column parses as float64,
// failing with CastFloat64Error naming the first offending column. Missing
// cells are skipped. Summary statistics are logged for real columns and a
// distinct-value count for discrete columns.
func (d *Dataset) CheckDataTypes() error {
	for _, col := range d.Table.Columns {
		meta := d.ColumnMeta[col]
		switch meta.Role {
		case RealScalar, RealLocation:
			values, err := d.columnFloats(col)
			if err != nil {
				return err
			}
			count, mean, std, min, max := describe(values)
			log.Printf("column '%s': count=%d mean=%g std=%g min=%g max=%g", col, count, mean, std, min, max)
		case Discrete:
			log.Printf("column '%s': %d different values", col, d.Table.DistinctCount(col))
		default:
			return fmt.Errorf("column %q has unrecognized role %v", col, meta.Role)
		}
	}
	return nil
}

func (d *Dataset) columnFloats(col string) ([]float64, error) {
	ci := d.Table.colIndex(col)
	values := make([]float64, 0, len(d.Table.Keys))
	for _, key := range d.Table.Keys {
		v := d.Table.Rows[key][ci]
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, &CastFloat64Error{Column: col}
		}
		values = append(values, f)
	}
	return values, nil
}

// describe computes count, mean, sample standard deviation, min and max.
// Percentiles are deliberately not reported.
func describe(values []float64) (count int, mean, std, min, max float64) {
	count = len(values)
	if count == 0 {
		return 0, 0, 0, 0, 0
	}
	min, max = values[0], values[0]
	var sum float64
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean = sum / float64(count)
	if count > 1 {
		var ss float64
		for _, v := range values {
			ss += (v - mean) * (v - mean)
		}
		std = math.Sqrt(ss / float64(count-1))
	}
	return count, mean, std, min, max
}

// SearchMissingValues scans every column for absent cells and flags the
// affected columns' metadata. The affected list is logged, or "no missing
// values found" when clean.
func (d *Dataset) SearchMissingValues() {
	var affected []string
	for i, col := range d.Table.Columns {
		for _, key := range d.Table.Keys {
			if d.Table.Rows[key][i] == "" {
				meta := d.ColumnMeta[col]
				meta.HasMissing = true
				d.ColumnMeta[col] = meta
				affected = append(affected, col)
				break
			}
		}
	}
	if len(affected) > 0 {
		log.Printf("warning: missing values found in columns: %s", strings.Join(affected, " "))
	} else {
		log.Printf("no missing values found")
	}
}
