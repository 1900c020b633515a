package session

import (
	"context"
	"log"

	"clusterprep/internal/snapshot"
)

// exportBatchSize bounds rows per INSERT to stay well under the placeholder
// limits of both backends.
const exportBatchSize = 500

// ExportSnapshot writes the merged table into a database for SQL inspection.
// kind selects a registered snapshot backend ("sqlite", "postgres"); the
// table is named after the session basename. Re-exports are idempotent.
func (s *Session) ExportSnapshot(ctx context.Context, kind, dsn string) {
	s.run("export snapshot", func() error {
		if err := s.requireMerged(); err != nil {
			return err
		}
		repo, err := snapshot.New(ctx, kind, snapshot.Config{DSN: dsn})
		if err != nil {
			return err
		}
		defer repo.Close()

		t := s.full.Table
		table := s.cfg.Basename
		if err := repo.EnsureTable(ctx, table, t.KeyName, t.Columns); err != nil {
			return err
		}

		var total int64
		batch := make([][]any, 0, exportBatchSize)
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			n, err := repo.InsertRows(ctx, table, t.KeyName, t.Columns, batch)
			if err != nil {
				return err
			}
			total += n
			batch = batch[:0]
			return nil
		}

		for _, key := range t.Keys {
			row := make([]any, 0, len(t.Columns)+1)
			row = append(row, key)
			for _, v := range t.Rows[key] {
				if v == "" {
					row = append(row, nil) // missing stays NULL, not the token
				} else {
					row = append(row, v)
				}
			}
			batch = append(batch, row)
			if len(batch) >= exportBatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if err := flush(); err != nil {
			return err
		}
		log.Printf("snapshot: %d rows written to %s table %q", total, kind, table)
		return nil
	})
}
