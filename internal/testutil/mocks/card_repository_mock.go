package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/vocabflash/internal/models"
)

// MockCardRepository is a mock implementation of repository.CardRepository
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) Insert(ctx context.Context, card models.Card) (models.Card, error) {
	args := m.Called(ctx, card)
	return args.Get(0).(models.Card), args.Error(1)
}

func (m *MockCardRepository) InsertBatch(ctx context.Context, cards []models.Card) ([]models.Card, error) {
	args := m.Called(ctx, cards)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCardRepository) Get(ctx context.Context, profileID int64, id string) (*models.Card, error) {
	args := m.Called(ctx, profileID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardRepository) List(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCardRepository) Count(ctx context.Context, filter models.CardFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockCardRepository) ApplyReview(ctx context.Context, card models.Card, review models.ReviewHistory) (models.Card, error) {
	args := m.Called(ctx, card, review)
	return args.Get(0).(models.Card), args.Error(1)
}

func (m *MockCardRepository) SetMastered(ctx context.Context, profileID int64, id string, mastered bool) (*models.Card, error) {
	args := m.Called(ctx, profileID, id, mastered)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardRepository) Delete(ctx context.Context, profileID int64, id string) error {
	args := m.Called(ctx, profileID, id)
	return args.Error(0)
}

func (m *MockCardRepository) ReviewHistory(ctx context.Context, cardID string, limit int) ([]models.ReviewHistory, error) {
	args := m.Called(ctx, cardID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewHistory), args.Error(1)
}

func (m *MockCardRepository) HasSubmission(ctx context.Context, cardID, submissionID string) (bool, error) {
	args := m.Called(ctx, cardID, submissionID)
	return args.Bool(0), args.Error(1)
}
