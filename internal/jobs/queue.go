package jobs

import (
	"context"
	"time"

	"github.com/vytor/vocabflash/internal/services"
)

// Import job states.
const (
	StateQueued    = "queued"
	StateCompleted = "completed"
	StateFailed    = "failed"
)

// ImportStatus reports the progress of a background card import.
type ImportStatus struct {
	ID        string    `json:"id"`
	ProfileID int64     `json:"profile_id"`
	State     string    `json:"state"`
	Requested int       `json:"requested"`
	Imported  int       `json:"imported"`
	Error     string    `json:"error,omitempty"`
	QueuedAt  time.Time `json:"queued_at"`
	// FinishedAt is nil until the job has run.
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	// EnqueueImport queues cards for import and returns the job id.
	EnqueueImport(ctx context.Context, profileID int64, cards []services.NewCard) (string, error)
	ImportStatus(id string) (ImportStatus, bool)
}
