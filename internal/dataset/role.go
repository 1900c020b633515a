package dataset

import (
	"fmt"
	"strings"
)

// Role is the statistical classification of a column. It drives type checking,
// header-file rendering, and model-file bucketing, and is matched exhaustively
// wherever role-specific behavior occurs.
type Role int

const (
	// RealScalar is a zero-anchored continuous measurement (e.g. abundance).
	RealScalar Role = iota + 1
	// RealLocation is an unanchored continuous measurement (e.g. log-ratio).
	RealLocation
	// Discrete is a categorical annotation.
	Discrete
)

func (r Role) String() string {
	switch r {
	case RealScalar:
		return "real scalar"
	case RealLocation:
		return "real location"
	case Discrete:
		return "discrete"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Valid reports whether r is one of the three recognized roles.
func (r Role) Valid() bool {
	return r == RealScalar || r == RealLocation || r == Discrete
}

// Real reports whether r is one of the two continuous roles, which require an
// error/tolerance value and float64-castable data.
func (r Role) Real() bool {
	return r == RealScalar || r == RealLocation
}

// ParseRole accepts both the spaced spelling used in generated files
// ("real scalar") and the underscore spelling convenient on a command line
// ("real_scalar").
func ParseRole(s string) (Role, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", " ") {
	case "real scalar":
		return RealScalar, nil
	case "real location":
		return RealLocation, nil
	case "discrete":
		return Discrete, nil
	default:
		return 0, fmt.Errorf("data type should be 'real scalar', 'real location' or 'discrete', got %q", s)
	}
}

// ColumnMeta describes one data column: its declared role, the error value for
// real-valued roles, and whether any cell of the column is missing.
type ColumnMeta struct {
	Role       Role
	Err        float64
	HasMissing bool
}
