// Package sqlite implements the snapshot backend used by default: a local
// single-file database needing no server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"clusterprep/internal/snapshot"
)

type Repo struct {
	db *sql.DB
}

func init() {
	snapshot.Register("sqlite", New)
}

func New(ctx context.Context, cfg snapshot.Config) (snapshot.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

func (r *Repo) EnsureTable(ctx context.Context, table, keyColumn string, columns []string) error {
	if _, err := r.db.ExecContext(ctx, buildCreateSQL(table, keyColumn, columns)); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// InsertRows performs a multi-row INSERT OR IGNORE: the key column is the
// primary key, so re-exporting the same snapshot is a no-op.
func (r *Repo) InsertRows(ctx context.Context, table, keyColumn string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	q, args := buildInsertSQL(table, keyColumn, columns, rows)
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func sqlIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// buildCreateSQL is pure so table DDL can be unit tested without a database.
func buildCreateSQL(table, keyColumn string, columns []string) string {
	parts := make([]string, 0, len(columns)+1)
	parts = append(parts, sqlIdent(keyColumn)+" TEXT PRIMARY KEY")
	for _, c := range columns {
		parts = append(parts, sqlIdent(c)+" TEXT")
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", sqlIdent(table), strings.Join(parts, ",\n  "))
}

func buildInsertSQL(table, keyColumn string, columns []string, rows [][]any) (string, []any) {
	width := len(columns) + 1

	colList := make([]string, 0, width)
	colList = append(colList, sqlIdent(keyColumn))
	for _, c := range columns {
		colList = append(colList, sqlIdent(c))
	}
	placeholders := "(" + strings.TrimRight(strings.Repeat("?,", width), ",") + ")"

	var b strings.Builder
	b.WriteString("INSERT OR IGNORE INTO ")
	b.WriteString(sqlIdent(table))
	b.WriteString(" (")
	b.WriteString(strings.Join(colList, ", "))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*width)
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(placeholders)
		args = append(args, row...)
	}
	return b.String(), args
}
