package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/vytor/vocabflash/internal/clock"
	"github.com/vytor/vocabflash/internal/errors"
	"github.com/vytor/vocabflash/internal/flashcard"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/repository"
)

// NewCard is the content of a card to be added.
type NewCard struct {
	Language  string `json:"language" validate:"max=32"`
	Category  string `json:"category" validate:"max=64"`
	FrontText string `json:"front_text" validate:"required,max=500"`
	BackText  string `json:"back_text" validate:"required,max=500"`
}

// ReviewInput is a learner's rating of one card.
//
// Quality is required; a missing rating is rejected like an out-of-range
// one. SubmissionID identifies the attempt; a replayed submission is applied
// at most once. ExpectedVersion, when non-zero, must match the stored version.
type ReviewInput struct {
	Quality         *int    `json:"quality" validate:"required"`
	TimeSeconds     float64 `json:"time_seconds" validate:"gte=0"`
	SubmissionID    string  `json:"submission_id" validate:"max=128"`
	ExpectedVersion int64   `json:"expected_version" validate:"gte=0"`
}

// CardService handles card-related business logic
type CardService interface {
	AddCard(ctx context.Context, profileID int64, in NewCard) (*models.Card, error)
	ImportCards(ctx context.Context, profileID int64, in []NewCard) (int, error)
	GetCard(ctx context.Context, profileID int64, id string) (*models.Card, error)
	// ListCards returns one page of cards and the number of cards matching
	// the filter across all pages.
	ListCards(ctx context.Context, filter models.CardFilter) ([]models.Card, int, error)
	ReviewCard(ctx context.Context, profileID int64, id string, in ReviewInput) (*models.Card, error)
	ReviewHistory(ctx context.Context, profileID int64, id string, limit int) ([]models.ReviewHistory, error)
	SetMastered(ctx context.Context, profileID int64, id string, mastered bool) (*models.Card, error)
	DeleteCard(ctx context.Context, profileID int64, id string) error
}

type cardService struct {
	cards     repository.CardRepository
	scheduler *flashcard.Scheduler
	clock     clock.Clock
	locks     *cardLocks
}

// NewCardService creates a new CardService. A nil clock means wall time.
func NewCardService(cards repository.CardRepository, scheduler *flashcard.Scheduler, clk clock.Clock) CardService {
	return &cardService{
		cards:     cards,
		scheduler: scheduler,
		clock:     clock.OrReal(clk),
		locks:     newCardLocks(),
	}
}

func (s *cardService) newCard(profileID int64, in NewCard) models.Card {
	c := models.Card{
		ProfileID: profileID,
		Language:  strings.TrimSpace(in.Language),
		Category:  strings.TrimSpace(in.Category),
		FrontText: strings.TrimSpace(in.FrontText),
		BackText:  strings.TrimSpace(in.BackText),
	}
	return s.scheduler.InitCard(c, s.clock.Now())
}

func (s *cardService) AddCard(ctx context.Context, profileID int64, in NewCard) (*models.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("adding card: profile_id=%d, front=%q", profileID, in.FrontText)

	if err := validateStruct(in); err != nil {
		return nil, err
	}

	stored, err := s.cards.Insert(ctx, s.newCard(profileID, in))
	if err != nil {
		log.Error("failed to add card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &stored, nil
}

// ImportCards adds every card in one transaction. Nothing is stored if any
// entry is invalid.
func (s *cardService) ImportCards(ctx context.Context, profileID int64, in []NewCard) (int, error) {
	log := logger.FromContext(ctx)
	log.Debug("importing %d cards: profile_id=%d", len(in), profileID)

	batch := make([]models.Card, 0, len(in))
	for _, nc := range in {
		if err := validateStruct(nc); err != nil {
			return 0, err
		}
		batch = append(batch, s.newCard(profileID, nc))
	}
	if len(batch) == 0 {
		return 0, nil
	}

	stored, err := s.cards.InsertBatch(ctx, batch)
	if err != nil {
		log.Error("failed to import cards: %v", err)
		return 0, errors.NewInternalError(err)
	}
	log.Info("imported %d cards", len(stored))
	return len(stored), nil
}

func (s *cardService) GetCard(ctx context.Context, profileID int64, id string) (*models.Card, error) {
	card, err := s.cards.Get(ctx, profileID, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("card", id)
	}
	return card, nil
}

func (s *cardService) ListCards(ctx context.Context, filter models.CardFilter) ([]models.Card, int, error) {
	log := logger.FromContext(ctx)

	cards, err := s.cards.List(ctx, filter)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}

	total, err := s.cards.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count cards: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}

	return cards, total, nil
}

// ReviewCard applies a rating. Reviews of the same card are serialized; a
// stale ExpectedVersion or a concurrent writer yields a CONFLICT error.
func (s *cardService) ReviewCard(ctx context.Context, profileID int64, id string, in ReviewInput) (*models.Card, error) {
	log := logger.FromContext(ctx).WithField("card_id", id)

	if in.Quality == nil {
		log.Warn("rejected review without a rating")
		return nil, errors.NewInvalidRatingError(fmt.Errorf("%w: quality is missing", flashcard.ErrInvalidRating))
	}
	quality := *in.Quality
	log = log.WithField("quality", quality)
	log.Debug("reviewing card")

	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := s.scheduler.ValidateQuality(quality); err != nil {
		log.Warn("rejected rating: %v", err)
		return nil, errors.NewInvalidRatingError(err)
	}

	unlock := s.locks.lock(id)
	defer unlock()

	card, err := s.GetCard(ctx, profileID, id)
	if err != nil {
		return nil, err
	}

	if in.SubmissionID != "" {
		seen, err := s.cards.HasSubmission(ctx, id, in.SubmissionID)
		if err != nil {
			log.Error("failed to check submission: %v", err)
			return nil, errors.NewInternalError(err)
		}
		if seen {
			log.Info("submission %s already applied, returning stored card", in.SubmissionID)
			return card, nil
		}
	}

	if in.ExpectedVersion != 0 && in.ExpectedVersion != card.Version {
		log.Warn("stale review: expected version %d, stored %d", in.ExpectedVersion, card.Version)
		return nil, errors.NewConflictError("card was changed by another review, reload and try again", repository.ErrVersionConflict)
	}

	now := s.clock.Now()
	next, err := s.scheduler.ScheduleReview(*card, quality, now)
	if err != nil {
		if stderrors.Is(err, flashcard.ErrInvalidRating) {
			return nil, errors.NewInvalidRatingError(err)
		}
		return nil, errors.NewInternalError(err)
	}

	stored, err := s.cards.ApplyReview(ctx, next, models.ReviewHistory{
		CardID:       id,
		SubmissionID: in.SubmissionID,
		Quality:      quality,
		TimeSeconds:  in.TimeSeconds,
		ReviewedAt:   now,
	})
	switch {
	case stderrors.Is(err, repository.ErrDuplicateSubmission):
		log.Info("submission %s applied concurrently, returning stored card", in.SubmissionID)
		return s.GetCard(ctx, profileID, id)
	case stderrors.Is(err, repository.ErrVersionConflict):
		return nil, errors.NewConflictError("card was changed by another review, reload and try again", err)
	case err != nil:
		log.Error("failed to store review: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Debug("review applied: interval=%d days, ease_factor=%.2f, version=%d", stored.IntervalDays, stored.EaseFactor, stored.Version)
	return &stored, nil
}

func (s *cardService) ReviewHistory(ctx context.Context, profileID int64, id string, limit int) ([]models.ReviewHistory, error) {
	if _, err := s.GetCard(ctx, profileID, id); err != nil {
		return nil, err
	}
	history, err := s.cards.ReviewHistory(ctx, id, limit)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load review history: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return history, nil
}

func (s *cardService) SetMastered(ctx context.Context, profileID int64, id string, mastered bool) (*models.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("setting mastered: card_id=%s, mastered=%t", id, mastered)

	unlock := s.locks.lock(id)
	defer unlock()

	card, err := s.cards.SetMastered(ctx, profileID, id, mastered)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("card", id)
		}
		log.Error("failed to set mastered: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return card, nil
}

func (s *cardService) DeleteCard(ctx context.Context, profileID int64, id string) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting card: card_id=%s", id)

	unlock := s.locks.lock(id)
	defer unlock()

	if err := s.cards.Delete(ctx, profileID, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("card", id)
		}
		log.Error("failed to delete card: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}
