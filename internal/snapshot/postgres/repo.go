// Package postgres implements the snapshot backend for teams that keep their
// expression tables in a shared Postgres instance.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"clusterprep/internal/snapshot"
)

type Repo struct {
	pool *pgxpool.Pool
}

func init() {
	snapshot.Register("postgres", New)
}

func New(ctx context.Context, cfg snapshot.Config) (snapshot.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() { r.pool.Close() }

func (r *Repo) EnsureTable(ctx context.Context, table, keyColumn string, columns []string) error {
	if _, err := r.pool.Exec(ctx, buildCreateSQL(table, keyColumn, columns)); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// InsertRows performs a single multi-row INSERT with ON CONFLICT DO NOTHING on
// the key column, making re-exports idempotent.
func (r *Repo) InsertRows(ctx context.Context, table, keyColumn string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	q, args := buildInsertSQL(table, keyColumn, columns, rows)
	cmd, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func pgIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// buildCreateSQL and buildInsertSQL are pure so placeholder numbering and
// conflict handling can be unit tested without a database.
func buildCreateSQL(table, keyColumn string, columns []string) string {
	parts := make([]string, 0, len(columns)+1)
	parts = append(parts, pgIdent(keyColumn)+" TEXT PRIMARY KEY")
	for _, c := range columns {
		parts = append(parts, pgIdent(c)+" TEXT")
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", pgIdent(table), strings.Join(parts, ",\n  "))
}

func buildInsertSQL(table, keyColumn string, columns []string, rows [][]any) (string, []any) {
	width := len(columns) + 1

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(pgIdent(table))
	b.WriteString(" (")
	b.WriteString(pgIdent(keyColumn))
	for _, c := range columns {
		b.WriteString(", ")
		b.WriteString(pgIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*width)
	p := 1
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", p)
			args = append(args, row[j])
			p++
		}
		b.WriteString(")")
	}

	b.WriteString(" ON CONFLICT (")
	b.WriteString(pgIdent(keyColumn))
	b.WriteString(") DO NOTHING")
	return b.String(), args
}
