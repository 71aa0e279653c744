package port

import (
	"time"

	"github.com/avasseur/reelpress/internal/domain"
)

// JobStore persists conversion job records across restarts so the expiry
// sweep can pick up outputs that outlived the process.
type JobStore interface {
	Save(j *domain.ConversionJob) error
	Update(j *domain.ConversionJob) error
	Get(id string) (*domain.ConversionJob, error)
	GetByOutputName(name string) (*domain.ConversionJob, error)

	// ListReady returns jobs whose output still exists on disk as far as
	// the store knows (state ready), regardless of expiry.
	ListReady() ([]*domain.ConversionJob, error)

	// ListUnfinished returns jobs left mid-flight by a previous run.
	ListUnfinished() ([]*domain.ConversionJob, error)

	MarkGone(id string, at time.Time) error
	Close() error
}
