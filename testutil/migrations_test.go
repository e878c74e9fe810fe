package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyantiq/itinerary/testutil"
)

// TestMigrations applies every migration, checks the tables and the
// activities foreign key, then rolls everything back.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)
	migrator, err := testutil.NewMigrator(db)
	require.NoError(t, err)
	ctx := context.Background()

	// Another package may have migrated the shared database already.
	_, err = migrator.DownTo(ctx, 0)
	require.NoError(t, err, "initial reset")

	results, err := migrator.Up(ctx)
	require.NoError(t, err, "goose up")
	assert.Len(t, results, 2)

	for _, table := range testutil.Tables {
		assert.True(t, tableExists(t, db, table), "table %q after up", table)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO activities (id, trip_id, position, title, category, start_time, end_time)
		VALUES (gen_random_uuid(), gen_random_uuid(), 0, 'orphan', 'culture', now(), now() + interval '1 hour')`)
	assert.Error(t, err, "activities must reference an existing trip")

	_, err = migrator.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")

	for _, table := range testutil.Tables {
		assert.False(t, tableExists(t, db, table), "table %q after reset", table)
	}
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`
	var exists bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, table).Scan(&exists))
	return exists
}
