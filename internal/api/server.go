package api

import (
	"context"

	"github.com/vytor/vocabflash/internal/jobs"
	"github.com/vytor/vocabflash/internal/services"
)

// HealthChecker reports whether a dependency can serve traffic.
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

type Server struct {
	CardService    services.CardService
	StudyService   services.StudyService
	ProfileService services.ProfileService
	JobQueue       jobs.JobQueue
	DB             HealthChecker
}
