// Package snapshot exports the merged dataset into a local database so the
// exact table handed to the clustering engine can be inspected with SQL.
//
// Backends register themselves by kind; callers select one by name. All
// snapshot columns are TEXT: the export mirrors the generated data file, it
// does not re-type the data.
package snapshot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Config carries backend connection settings.
type Config struct {
	// DSN is backend-specific (file path / URI for sqlite, conninfo for postgres).
	DSN string
}

// Repository writes one snapshot table.
type Repository interface {
	// EnsureTable creates the destination table when absent. keyColumn becomes
	// the primary key; columns are the data columns, all TEXT.
	EnsureTable(ctx context.Context, table, keyColumn string, columns []string) error
	// InsertRows inserts rows aligned with keyColumn followed by columns.
	// Inserts are idempotent on the key: re-exporting the same table is safe.
	InsertRows(ctx context.Context, table, keyColumn string, columns []string, rows [][]any) (int64, error)
	Close()
}

// Factory builds a Repository for a registered backend kind.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu       sync.Mutex
	registry = map[string]Factory{}
)

// Register makes a backend available under kind. Backends call this from
// init; blank-import clusterprep/internal/snapshot/all to get them all.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[kind] = f
}

// New opens a Repository of the given kind.
func New(ctx context.Context, kind string, cfg Config) (Repository, error) {
	mu.Lock()
	f, ok := registry[kind]
	mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown snapshot backend %q (registered: %s)", kind, strings.Join(kinds(), ", "))
	}
	return f(ctx, cfg)
}

func kinds() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
