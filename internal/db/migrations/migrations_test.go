package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreEmbedded(t *testing.T) {
	names, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, name := range names {
		body, err := fs.ReadFile(FS, name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}

func TestVotersTableKeepsEpicUnique(t *testing.T) {
	body, err := fs.ReadFile(FS, "00001_create_voters.sql")
	require.NoError(t, err)

	sql := string(body)
	assert.Contains(t, sql, "UNIQUE (epic_no)")
	assert.True(t, strings.Contains(sql, "epic_no      TEXT NOT NULL"))
}
