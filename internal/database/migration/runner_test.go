package migration

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bluujobs/internal/database"
)

func TestLoadMigrationsOrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"m/V2__second.sql": {Data: []byte("SELECT 2;")},
		"m/V1__first.sql":  {Data: []byte("SELECT 1;")},
		"m/README.md":      {Data: []byte("ignored")},
	}

	migs, err := loadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, migs, 2)
	assert.Equal(t, int64(1), migs[0].Version)
	assert.Equal(t, "first", migs[0].Name)
	assert.Equal(t, int64(2), migs[1].Version)
	assert.NotEqual(t, migs[0].Checksum, migs[1].Checksum)
}

func TestLoadMigrationsRejectsDuplicatesAndEmpty(t *testing.T) {
	_, err := loadMigrations(fstest.MapFS{
		"m/V1__a.sql": {Data: []byte("SELECT 1;")},
		"m/V1__b.sql": {Data: []byte("SELECT 1;")},
	}, "m")
	assert.ErrorContains(t, err, "duplicate migration version")

	_, err = loadMigrations(fstest.MapFS{
		"m/V1__a.sql": {Data: []byte("   ")},
	}, "m")
	assert.ErrorContains(t, err, "empty migration file")
}

func TestLoadMigrationsMissingDir(t *testing.T) {
	migs, err := loadMigrations(fstest.MapFS{}, "nope")
	require.NoError(t, err)
	assert.Empty(t, migs)
}

func TestDefaultRunnerEmbedsKVTable(t *testing.T) {
	migs, err := Default(nil).load()
	require.NoError(t, err)
	require.NotEmpty(t, migs)
	assert.Equal(t, "create_kv_entries", migs[0].Name)
	assert.Contains(t, migs[0].SQL, "kv_entries")
}

func TestPendingSkipsAppliedAndRejectsEditedFiles(t *testing.T) {
	migs, err := loadMigrations(fstest.MapFS{
		"m/V1__kv.sql":    {Data: []byte("CREATE TABLE kv_entries (key TEXT);")},
		"m/V2__index.sql": {Data: []byte("CREATE INDEX kv_idx ON kv_entries (key);")},
	}, "m")
	require.NoError(t, err)

	todo, err := pending(migs, map[int64]string{1: migs[0].Checksum})
	require.NoError(t, err)
	require.Len(t, todo, 1)
	assert.Equal(t, "index", todo[0].Name)

	todo, err = pending(migs, map[int64]string{1: migs[0].Checksum, 2: migs[1].Checksum})
	require.NoError(t, err)
	assert.Empty(t, todo)

	_, err = pending(migs, map[int64]string{1: "edited"})
	assert.ErrorIs(t, err, ErrChecksumMismatch)
	assert.ErrorContains(t, err, "V1__kv.sql")
}

func TestRunWithoutDB(t *testing.T) {
	err := Default(nil).Run(context.Background(), nil)
	assert.ErrorIs(t, err, database.ErrNotConnected)
}
