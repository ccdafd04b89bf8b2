package jobs

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vytor/vocabflash/internal/clock"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/services"
	"github.com/vytor/vocabflash/internal/worker"
)

// maxTrackedImports bounds the in-memory status table; the oldest finished
// entries are forgotten first.
const maxTrackedImports = 256

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	importPool *worker.Pool
	importer   worker.CardImporter
	clock      clock.Clock

	mu     sync.Mutex
	status map[string]*ImportStatus
	order  []string
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(importPool *worker.Pool, importer worker.CardImporter, clk clock.Clock) *WorkerQueue {
	return &WorkerQueue{
		importPool: importPool,
		importer:   importer,
		clock:      clock.OrReal(clk),
		status:     make(map[string]*ImportStatus),
	}
}

func (q *WorkerQueue) EnqueueImport(ctx context.Context, profileID int64, cards []services.NewCard) (string, error) {
	id := uuid.NewString()
	log := logger.FromContext(ctx).WithFields(map[string]any{"import_id": id, "profile_id": profileID})

	q.track(&ImportStatus{
		ID:        id,
		ProfileID: profileID,
		State:     StateQueued,
		Requested: len(cards),
		QueuedAt:  q.clock.Now(),
	})

	err := q.importPool.Submit(&worker.ImportCardsJob{
		Importer:  q.importer,
		ProfileID: profileID,
		Cards:     cards,
		Done: func(imported int, err error) {
			q.finish(id, imported, err)
		},
	})
	if err != nil {
		log.Warn("failed to enqueue import: %v", err)
		q.forget(id)
		return "", err
	}

	log.Info("queued import of %d cards", len(cards))
	return id, nil
}

func (q *WorkerQueue) ImportStatus(id string) (ImportStatus, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	st, ok := q.status[id]
	if !ok {
		return ImportStatus{}, false
	}
	return *st, true
}

func (q *WorkerQueue) track(st *ImportStatus) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.status[st.ID] = st
	q.order = append(q.order, st.ID)
	q.evictLocked()
}

func (q *WorkerQueue) finish(id string, imported int, err error) {
	now := q.clock.Now()
	q.mu.Lock()
	defer q.mu.Unlock()
	st, ok := q.status[id]
	if !ok {
		return
	}
	st.Imported = imported
	st.FinishedAt = &now
	if err != nil {
		st.State = StateFailed
		st.Error = err.Error()
		return
	}
	st.State = StateCompleted
}

func (q *WorkerQueue) forget(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.status, id)
	for i, v := range q.order {
		if v == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
}

func (q *WorkerQueue) evictLocked() {
	for i := 0; len(q.status) > maxTrackedImports && i < len(q.order); {
		id := q.order[i]
		if q.status[id].State == StateQueued {
			i++
			continue
		}
		delete(q.status, id)
		q.order = append(q.order[:i], q.order[i+1:]...)
	}
}
