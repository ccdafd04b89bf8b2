package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/vocabflash/internal/jobs"
	"github.com/vytor/vocabflash/internal/services"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueImport(ctx context.Context, profileID int64, cards []services.NewCard) (string, error) {
	args := m.Called(ctx, profileID, cards)
	return args.String(0), args.Error(1)
}

func (m *MockJobQueue) ImportStatus(id string) (jobs.ImportStatus, bool) {
	args := m.Called(id)
	return args.Get(0).(jobs.ImportStatus), args.Bool(1)
}
