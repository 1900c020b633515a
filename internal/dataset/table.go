package dataset

import (
	"fmt"
	"strconv"
)

// Table is an owned, ordered 2D structure: rows indexed by a unique row-key
// column, columns indexed by name. Cells are text; the empty string marks a
// missing value (absent in the source, or absent after an outer join).
type Table struct {
	// KeyName is the name of the row-key column (first column of the source).
	KeyName string
	// Columns are the data column names, in source order (row-key excluded).
	Columns []string
	// Keys are the row keys, in first-seen order.
	Keys []string
	// Rows maps a row key to its cells, aligned with Columns.
	Rows map[string][]string
}

// Shape returns the number of rows and data columns (row-key excluded).
func (t *Table) Shape() (rows, cols int) {
	return len(t.Keys), len(t.Columns)
}

func (t *Table) colIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (key, col). ok is false when the cell is missing
// or the coordinates do not exist.
func (t *Table) Cell(key, col string) (value string, ok bool) {
	ci := t.colIndex(col)
	if ci < 0 {
		return "", false
	}
	row, ok := t.Rows[key]
	if !ok || ci >= len(row) || row[ci] == "" {
		return "", false
	}
	return row[ci], true
}

// DistinctCount returns the number of distinct non-missing values in col.
func (t *Table) DistinctCount(col string) int {
	ci := t.colIndex(col)
	if ci < 0 {
		return 0
	}
	set := make(map[string]struct{})
	for _, key := range t.Keys {
		v := t.Rows[key][ci]
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	return len(set)
}

// Min parses every non-missing cell of col as float64 and returns the minimum.
// It fails on a column with no parseable values.
func (t *Table) Min(col string) (float64, error) {
	ci := t.colIndex(col)
	if ci < 0 {
		return 0, fmt.Errorf("unknown column %q", col)
	}
	var (
		min   float64
		found bool
	)
	for _, key := range t.Keys {
		v := t.Rows[key][ci]
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, &CastFloat64Error{Column: col}
		}
		if !found || f < min {
			min = f
			found = true
		}
	}
	if !found {
		return 0, fmt.Errorf("column %q has no values", col)
	}
	return min, nil
}
