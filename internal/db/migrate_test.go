package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"parish-app-go/migrations"
)

func TestEmbeddedMigrationsPresent(t *testing.T) {
	contents, err := migrations.FS.ReadFile("0001_init.sql")
	require.NoError(t, err)
	assert.Contains(t, string(contents), "CREATE TABLE IF NOT EXISTS faithfuls")
	assert.Contains(t, string(contents), "CREATE TABLE IF NOT EXISTS donations")
}

func TestChecksumIsStable(t *testing.T) {
	assert.Equal(t, checksum("SELECT 1"), checksum("SELECT 1"))
	assert.NotEqual(t, checksum("SELECT 1"), checksum("SELECT 2"))
	assert.Len(t, checksum(""), 64)
}
