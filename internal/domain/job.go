package domain

import (
	"time"

	"github.com/google/uuid"
)

type JobState string

const (
	JobStateCreated     JobState = "created"
	JobStateAcquiring   JobState = "acquiring"
	JobStateAcquired    JobState = "acquired"
	JobStateTranscoding JobState = "transcoding"
	JobStateReady       JobState = "ready"
	JobStateFailed      JobState = "failed"
	JobStateGone        JobState = "gone"
)

// ConversionJob correlates one source reference (or uploaded file), one
// quality tier, one temporary artifact and one output artifact. Ready is
// the only state from which the output is exposed to a caller.
type ConversionJob struct {
	ID        string
	SourceRaw string
	Quality   string
	State     JobState

	TempPath   string
	OutputPath string
	OutputName string
	SizeBytes  int64

	ErrorKind    string
	ErrorMessage string

	CreatedAt time.Time
	ExpiresAt time.Time
}

func NewJob(sourceRaw, quality string) *ConversionJob {
	if quality == "" {
		quality = DefaultTier
	}
	return &ConversionJob{
		ID:        uuid.NewString(),
		SourceRaw: sourceRaw,
		Quality:   quality,
		State:     JobStateCreated,
		CreatedAt: time.Now(),
	}
}

func (j *ConversionJob) MarkAcquiring(tempPath string) {
	j.State = JobStateAcquiring
	j.TempPath = tempPath
}

func (j *ConversionJob) MarkAcquired() {
	j.State = JobStateAcquired
}

func (j *ConversionJob) MarkTranscoding(outputPath, outputName string) {
	j.State = JobStateTranscoding
	j.OutputPath = outputPath
	j.OutputName = outputName
}

func (j *ConversionJob) MarkReady(sizeBytes int64, expiresAt time.Time) {
	j.State = JobStateReady
	j.SizeBytes = sizeBytes
	j.ExpiresAt = expiresAt
}

func (j *ConversionJob) MarkFailed(err error) {
	j.State = JobStateFailed
	j.ErrorKind = ErrorKind(err)
	j.ErrorMessage = err.Error()
}

func (j *ConversionJob) MarkGone() {
	j.State = JobStateGone
}

// Terminal reports whether the job can no longer change state on its own.
func (j *ConversionJob) Terminal() bool {
	return j.State == JobStateReady || j.State == JobStateFailed || j.State == JobStateGone
}

// Downloadable reports whether the output may be served right now.
func (j *ConversionJob) Downloadable(now time.Time) bool {
	return j.State == JobStateReady && now.Before(j.ExpiresAt)
}
