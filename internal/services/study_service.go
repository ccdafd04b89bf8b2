package services

import (
	"context"
	stderrors "errors"

	"github.com/vytor/vocabflash/internal/clock"
	"github.com/vytor/vocabflash/internal/errors"
	"github.com/vytor/vocabflash/internal/flashcard"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/repository"
)

// Deck narrows study to part of a profile's collection. Empty fields match
// everything.
type Deck struct {
	ProfileID int64
	Language  string
	Category  string
}

func (d Deck) filter() models.CardFilter {
	return models.CardFilter{ProfileID: d.ProfileID, Language: d.Language, Category: d.Category}
}

// StudyService answers "what should I study now" questions over a deck.
type StudyService interface {
	Due(ctx context.Context, deck Deck, mode string) ([]models.Card, error)
	Session(ctx context.Context, deck Deck, opts flashcard.SessionOptions) ([]models.Card, error)
	Stats(ctx context.Context, deck Deck) (models.CardStats, error)
	// DefaultSessionOptions returns the configured session shape.
	DefaultSessionOptions() flashcard.SessionOptions
}

type studyService struct {
	cards    repository.CardRepository
	clock    clock.Clock
	defaults flashcard.SessionOptions
}

// NewStudyService creates a new StudyService. A nil clock means wall time.
func NewStudyService(cards repository.CardRepository, clk clock.Clock, defaults flashcard.SessionOptions) StudyService {
	return &studyService{cards: cards, clock: clock.OrReal(clk), defaults: defaults}
}

func (s *studyService) DefaultSessionOptions() flashcard.SessionOptions {
	return s.defaults
}

func (s *studyService) load(ctx context.Context, deck Deck) ([]models.Card, error) {
	cards, err := s.cards.List(ctx, deck.filter())
	if err != nil {
		logger.FromContext(ctx).Error("failed to load deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return cards, nil
}

func (s *studyService) Due(ctx context.Context, deck Deck, mode string) ([]models.Card, error) {
	log := logger.FromContext(ctx)

	m, err := flashcard.ParseMode(mode)
	if err != nil {
		if stderrors.Is(err, flashcard.ErrInvalidMode) {
			return nil, errors.NewValidationError("mode", "must be one of review, new, all")
		}
		return nil, errors.NewInternalError(err)
	}

	cards, err := s.load(ctx, deck)
	if err != nil {
		return nil, err
	}
	due := flashcard.SelectDue(cards, m, s.clock.Now())
	log.Debug("selected %d of %d cards: profile_id=%d, mode=%s", len(due), len(cards), deck.ProfileID, m)
	return due, nil
}

func (s *studyService) Session(ctx context.Context, deck Deck, opts flashcard.SessionOptions) ([]models.Card, error) {
	cards, err := s.load(ctx, deck)
	if err != nil {
		return nil, err
	}
	session := flashcard.ComposeSession(cards, opts, s.clock.Now())
	logger.FromContext(ctx).Debug("built session of %d cards: profile_id=%d, limit=%d", len(session), deck.ProfileID, opts.Limit)
	return session, nil
}

func (s *studyService) Stats(ctx context.Context, deck Deck) (models.CardStats, error) {
	cards, err := s.load(ctx, deck)
	if err != nil {
		return models.CardStats{}, err
	}
	return flashcard.Summarize(cards, s.clock.Now()), nil
}
