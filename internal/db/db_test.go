package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/vocabflash/internal/db"
)

func TestOpen_AppliesMigrations(t *testing.T) {
	ctx := context.Background()
	database, err := db.OpenMemory(ctx)
	require.NoError(t, err)
	defer database.Close()

	for _, table := range []string{"profiles", "cards", "review_history"} {
		var name string
		err := database.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
	assert.NoError(t, database.Healthy(ctx))
}

func TestMigrate_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vocab.db")

	first, err := db.Open(ctx, path)
	require.NoError(t, err)
	_, err = first.ExecContext(ctx, `INSERT INTO profiles (username) VALUES ('ana')`)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := db.Open(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	var count int
	require.NoError(t, second.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count))
	assert.Equal(t, 1, count, "reopening must not reset data")
}
