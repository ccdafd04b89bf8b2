package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vytor/vocabflash/internal/db"
	"github.com/vytor/vocabflash/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenMemory(context.Background())
	require.NoError(t, err)
	return database.DB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// MustCreateProfile inserts a profile and returns its id.
func MustCreateProfile(t *testing.T, sqlDB *sql.DB, username string) int64 {
	t.Helper()
	var id int64
	err := sqlDB.QueryRowContext(context.Background(),
		`INSERT INTO profiles (username) VALUES (?) RETURNING id`, username).Scan(&id)
	require.NoError(t, err)
	return id
}

// NewCard returns an unsaved new card owned by profileID and due at now.
func NewCard(profileID int64, front, back string, now time.Time) models.Card {
	return models.Card{
		ProfileID:    profileID,
		Language:     "es",
		Category:     "basics",
		FrontText:    front,
		BackText:     back,
		EaseFactor:   2.5,
		NextReviewAt: now,
		IsNew:        true,
	}
}
