package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrationsCreatesTables(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(db))
	// Running again is a no-op.
	require.NoError(t, RunMigrations(db))

	for _, table := range []string{"view_snapshots", "sync_log"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestRunMigrationsRequiresConnection(t *testing.T) {
	assert.Error(t, RunMigrations(nil))
}

func TestInitDBSetsGlobal(t *testing.T) {
	path := t.TempDir() + "/finsync.db"
	require.NoError(t, InitDB(path))
	t.Cleanup(func() { Close() })

	require.NotNil(t, DB)
	assert.NoError(t, DB.Ping())
}
