package session

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	_ "clusterprep/internal/snapshot/all"
)

// TestExportSnapshot drives the merged two-file scenario into a sqlite file
// and inspects it with plain SQL.
func TestExportSnapshot(t *testing.T) {
	t.Parallel()

	s, dir := twoFileSession(t, Config{})
	dsn := filepath.Join(dir, "snap.db")

	s.ExportSnapshot(context.Background(), "sqlite", dsn)
	if s.HadError() {
		t.Fatal("session has error after export")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT count(*) FROM "clust"`).Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 3 {
		t.Errorf("row count = %d, want 3", count)
	}

	var group, expr sql.NullString
	if err := db.QueryRow(`SELECT "group", "expr" FROM "clust" WHERE "gene" = 'g3'`).Scan(&group, &expr); err != nil {
		t.Fatalf("select query: %v", err)
	}
	if !group.Valid || group.String != "x" {
		t.Errorf("g3 group = %+v, want \"x\"", group)
	}
	if expr.Valid {
		t.Errorf("g3 expr = %q, want NULL", expr.String)
	}
}

// TestExportSnapshotUnknownBackend verifies a bad backend name trips the
// sticky flag instead of panicking.
func TestExportSnapshotUnknownBackend(t *testing.T) {
	t.Parallel()

	s, _ := twoFileSession(t, Config{})
	s.ExportSnapshot(context.Background(), "oracle", "dsn")
	if !s.HadError() {
		t.Fatal("unknown backend should mark the session")
	}
}

// TestExportSnapshotBeforeMerge verifies the merged-table precondition.
func TestExportSnapshotBeforeMerge(t *testing.T) {
	t.Parallel()

	s := New(Config{OutputDir: t.TempDir()})
	s.ExportSnapshot(context.Background(), "sqlite", filepath.Join(t.TempDir(), "x.db"))
	if !s.HadError() {
		t.Fatal("export before merge should mark the session")
	}
}
