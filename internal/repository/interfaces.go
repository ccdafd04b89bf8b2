package repository

import (
	"context"
	"errors"

	"github.com/vytor/vocabflash/internal/models"
)

var (
	// ErrVersionConflict means the card changed since it was read.
	ErrVersionConflict = errors.New("repository: card version conflict")
	// ErrDuplicateSubmission means the review's submission id was already
	// applied to the card.
	ErrDuplicateSubmission = errors.New("repository: duplicate review submission")
)

// CardRepository handles card data access.
//
// Get returns (nil, nil) when the card does not exist. Mutations on a
// missing card return sql.ErrNoRows.
type CardRepository interface {
	Insert(ctx context.Context, card models.Card) (models.Card, error)
	InsertBatch(ctx context.Context, cards []models.Card) ([]models.Card, error)
	Get(ctx context.Context, profileID int64, id string) (*models.Card, error)
	List(ctx context.Context, filter models.CardFilter) ([]models.Card, error)
	Count(ctx context.Context, filter models.CardFilter) (int, error)
	// ApplyReview stores the scheduled card and its review record atomically.
	// The write only succeeds if the stored version still equals card.Version;
	// the returned card carries the new version.
	ApplyReview(ctx context.Context, card models.Card, review models.ReviewHistory) (models.Card, error)
	SetMastered(ctx context.Context, profileID int64, id string, mastered bool) (*models.Card, error)
	Delete(ctx context.Context, profileID int64, id string) error
	ReviewHistory(ctx context.Context, cardID string, limit int) ([]models.ReviewHistory, error)
	HasSubmission(ctx context.Context, cardID, submissionID string) (bool, error)
}

// ProfileRepository handles profile data access
type ProfileRepository interface {
	Get(ctx context.Context, id int64) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Upsert(ctx context.Context, username string) (*models.Profile, error)
	Delete(ctx context.Context, id int64) error
}
