package postgres

import "testing"

func TestBuildCreateSQL(t *testing.T) {
	t.Parallel()

	got := buildCreateSQL("clust", "gene", []string{"expr"})
	want := "CREATE TABLE IF NOT EXISTS \"clust\" (\n  \"gene\" TEXT PRIMARY KEY,\n  \"expr\" TEXT\n);"
	if got != want {
		t.Errorf("buildCreateSQL() = %q, want %q", got, want)
	}
}

// TestBuildInsertSQL verifies placeholder numbering keeps counting across rows
// and the conflict target is the key column.
func TestBuildInsertSQL(t *testing.T) {
	t.Parallel()

	rows := [][]any{
		{"g1", "1.0"},
		{"g2", nil},
	}
	q, args := buildInsertSQL("clust", "gene", []string{"expr"}, rows)
	want := `INSERT INTO "clust" ("gene", "expr") VALUES ($1, $2), ($3, $4) ON CONFLICT ("gene") DO NOTHING`
	if q != want {
		t.Errorf("buildInsertSQL() query = %q, want %q", q, want)
	}
	if len(args) != 4 {
		t.Fatalf("buildInsertSQL() args = %d, want 4", len(args))
	}
	if args[0] != "g1" || args[3] != nil {
		t.Errorf("buildInsertSQL() args = %v", args)
	}
}

func TestPGIdentQuoting(t *testing.T) {
	t.Parallel()

	if got, want := pgIdent(`we"ird`), `"we""ird"`; got != want {
		t.Errorf("pgIdent() = %q, want %q", got, want)
	}
}
