package database

import (
	"context"
	"database/sql"
	"fmt"
)

// SequenceTables are the tables with serial id columns.
var SequenceTables = []string{
	"countries",
	"cities",
	"areas",
	"scrape_jobs",
	"businesses",
	"business_interactions",
}

// SyncSequences moves each table's id sequence past its current max id, so
// inserts after a bulk copy with explicit ids do not collide. It keeps going
// after a failure and returns the tables that could not be synced.
func SyncSequences(ctx context.Context, db *sql.DB, tables []string) (map[string]error, error) {
	failed := map[string]error{}
	for _, table := range tables {
		query := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), coalesce(max(id), 0) + 1, false) FROM %s", table, table)
		if _, err := db.ExecContext(ctx, query); err != nil {
			failed[table] = err
		}
	}
	if len(failed) > 0 {
		return failed, fmt.Errorf("%d of %d sequences failed to sync", len(failed), len(tables))
	}
	return failed, nil
}
