package dataset

import (
	"fmt"
	"strings"
)

// DuplicateColumnNameError reports repeated names in a header, either as read
// from the source file, after name cleaning, or across a merge.
type DuplicateColumnNameError struct {
	Names []string
}

func (e *DuplicateColumnNameError) Error() string {
	quoted := make([]string, 0, len(e.Names))
	for _, n := range e.Names {
		quoted = append(quoted, fmt.Sprintf("'%s'", n))
	}
	return fmt.Sprintf("found duplicate column names:\n%s\nplease clean your header", strings.Join(quoted, " "))
}

// CastFloat64Error reports a column declared real-valued that contains at
// least one cell which does not parse as a 64-bit float.
type CastFloat64Error struct {
	Column string
}

func (e *CastFloat64Error) Error() string {
	return fmt.Sprintf("cannot cast column '%s' to float64\ncheck your input file", e.Column)
}

// checkDuplicates returns a DuplicateColumnNameError when names contains any
// repeated entry.
func checkDuplicates(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return &DuplicateColumnNameError{Names: names}
		}
		seen[n] = struct{}{}
	}
	return nil
}
