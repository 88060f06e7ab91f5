package migrations_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"eventRegistry/internal/storage/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestRunAppliesPendingFilesInOrder(t *testing.T) {
	t.Parallel()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	fsys := fstest.MapFS{
		"0002_seed.sql": {Data: []byte(`INSERT INTO things (name) VALUES ('a');`)},
		"0001_init.sql": {Data: []byte(`CREATE TABLE things (name TEXT NOT NULL);`)},
		"README.md":     {Data: []byte(`not a migration`)},
	}

	require.NoError(t, migrations.Run(ctx, db, fsys, migrations.SQLite))
	// a second run must not re-apply anything
	require.NoError(t, migrations.Run(ctx, db, fsys, migrations.SQLite))

	var things, applied int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM things`).Scan(&things))
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))

	assert.Equal(t, 1, things)
	assert.Equal(t, 2, applied)
}

func TestRunStopsOnBrokenFile(t *testing.T) {
	t.Parallel()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	defer db.Close()

	fsys := fstest.MapFS{
		"0001_init.sql": {Data: []byte(`CREATE TABLE things (name TEXT NOT NULL);`)},
		"0002_bad.sql":  {Data: []byte(`CREATE TABLE oops (`)},
	}

	err = migrations.Run(context.Background(), db, fsys, migrations.SQLite)
	assert.ErrorContains(t, err, "0002_bad.sql")

	var applied int
	require.NoError(t, db.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 1, applied)
}
