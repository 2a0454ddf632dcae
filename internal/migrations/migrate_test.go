package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLatestMigrationVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000001_init.up.sql",
		"000001_init.down.sql",
		"000003_operator_accounts.up.sql",
		"000002_race_runs_index.up.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "000009_nested"), 0o755))

	assert.Equal(t, int64(3), findLatestMigrationVersion(dir))
}

func TestFindLatestMigrationVersionMissingDir(t *testing.T) {
	assert.Equal(t, int64(0), findLatestMigrationVersion(filepath.Join(t.TempDir(), "nope")))
}

func TestRunMigrationsRequiresURL(t *testing.T) {
	assert.Error(t, RunMigrations("", ""))
}
