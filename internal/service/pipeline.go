package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avasseur/reelpress/internal/domain"
	"github.com/avasseur/reelpress/internal/infrastructure/logger"
	"github.com/avasseur/reelpress/internal/metrics"
	"github.com/avasseur/reelpress/internal/port"
)

// Pipeline sequences one conversion job end to end: classify, acquire,
// transcode, register the output for expiry. Each job runs synchronously
// in its caller's goroutine; jobs share nothing but the filesystem
// namespace, which stays collision-free because every path embeds a
// nanosecond timestamp.
//
// The temporary artifact is deleted on every exit path. Failure paths
// additionally delete any partially written output. A stage error is
// terminal for the job: nothing is retried across stages.
type Pipeline struct {
	acquirer   port.Acquirer
	transcoder port.Transcoder
	store      port.JobStore
	reaper     *Reaper
	events     EventPublisher

	tempDir   string
	outputDir string
}

// EventPublisher receives advisory progress and status events.
type EventPublisher interface {
	Publish(jobID string, event Event)
}

func NewPipeline(
	acquirer port.Acquirer,
	transcoder port.Transcoder,
	store port.JobStore,
	reaper *Reaper,
	events EventPublisher,
	tempDir, outputDir string,
) *Pipeline {
	return &Pipeline{
		acquirer:   acquirer,
		transcoder: transcoder,
		store:      store,
		reaper:     reaper,
		events:     events,
		tempDir:    tempDir,
		outputDir:  outputDir,
	}
}

// Convert runs a job for a remote source reference. The returned job is
// terminal: ready on success, failed (with kind and message) otherwise.
// The error mirrors the job's failure for callers that branch on it.
func (p *Pipeline) Convert(ctx context.Context, rawURL, quality, desiredName string, outputTTL time.Duration) (*domain.ConversionJob, error) {
	ref, err := domain.Classify(rawURL)
	if err != nil {
		return nil, err
	}

	job := domain.NewJob(rawURL, quality)
	if err := p.store.Save(job); err != nil {
		return nil, fmt.Errorf("save job: %w", err)
	}

	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	tempPath := p.tempPath()
	defer ReleaseTemp(tempPath)

	job.MarkAcquiring(tempPath)
	p.persist(job)
	p.publishStatus(job, "")

	start := time.Now()
	if err := p.acquirer.Acquire(ctx, ref, tempPath, p.acquireProgress(job.ID)); err != nil {
		return p.fail(job, err)
	}
	metrics.StageDuration.WithLabelValues("acquire").Observe(time.Since(start).Seconds())

	job.MarkAcquired()
	p.persist(job)
	p.publishStatus(job, "")

	return p.transcodeStage(ctx, job, tempPath, desiredName, outputTTL)
}

// ConvertUpload runs a job for an already-uploaded file. The pipeline
// takes ownership of uploadedPath and deletes it before returning.
func (p *Pipeline) ConvertUpload(ctx context.Context, uploadedPath, originalName, quality string, outputTTL time.Duration) (*domain.ConversionJob, error) {
	job := domain.NewJob("upload:"+originalName, quality)
	if err := p.store.Save(job); err != nil {
		ReleaseTemp(uploadedPath)
		return nil, fmt.Errorf("save job: %w", err)
	}

	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	defer ReleaseTemp(uploadedPath)

	job.MarkAcquiring(uploadedPath)
	job.MarkAcquired()
	p.persist(job)
	p.publishStatus(job, "")

	return p.transcodeStage(ctx, job, uploadedPath, originalName, outputTTL)
}

func (p *Pipeline) transcodeStage(ctx context.Context, job *domain.ConversionJob, inputPath, desiredName string, outputTTL time.Duration) (*domain.ConversionJob, error) {
	profile := domain.ProfileFor(job.Quality)
	outputName := p.outputName(desiredName, profile.Name)
	outputPath := filepath.Join(p.outputDir, outputName)

	job.MarkTranscoding(outputPath, outputName)
	p.persist(job)
	p.publishStatus(job, "")

	start := time.Now()
	if err := p.transcoder.Transcode(ctx, inputPath, outputPath, profile, p.transcodeProgress(job.ID)); err != nil {
		removePartial(outputPath)
		return p.fail(job, err)
	}
	metrics.StageDuration.WithLabelValues("transcode").Observe(time.Since(start).Seconds())

	info, err := os.Stat(outputPath)
	if err != nil {
		return p.fail(job, fmt.Errorf("%w: output missing after completion: %v", domain.ErrEngineFailed, err))
	}

	expiresAt := time.Now().Add(outputTTL)
	job.MarkReady(info.Size(), expiresAt)
	p.persist(job)
	p.publishStatus(job, "")

	p.reaper.Schedule(job.ID, outputPath, outputTTL)
	metrics.JobsTotal.WithLabelValues("ready").Inc()

	logger.Info.Printf("job %s ready: %s (%d bytes, expires %s)", job.ID, outputName, info.Size(), expiresAt.Format(time.RFC3339))
	return job, nil
}

// fail records the terminal failure, cleans up, and hands the caller both
// the failed job and the stage error. The temp file is removed by the
// deferred release in the caller.
func (p *Pipeline) fail(job *domain.ConversionJob, err error) (*domain.ConversionJob, error) {
	job.MarkFailed(err)
	p.persist(job)
	p.publishStatus(job, job.ErrorMessage)
	metrics.JobsTotal.WithLabelValues(job.ErrorKind).Inc()
	logger.Error.Printf("job %s failed (%s): %v", job.ID, job.ErrorKind, err)
	return job, err
}

func (p *Pipeline) tempPath() string {
	return filepath.Join(p.tempDir, fmt.Sprintf("in_%d.mp4", time.Now().UnixNano()))
}

// outputName derives a unique output filename. Callers sanitize the
// desired name at the transport boundary; any path components that
// survive are stripped here regardless.
func (p *Pipeline) outputName(desiredName, tier string) string {
	base := "video"
	if desiredName != "" {
		name := filepath.Base(desiredName)
		name = strings.TrimSuffix(name, filepath.Ext(name))
		if name != "" && name != "." && name != string(filepath.Separator) {
			base = name
		}
	}
	return fmt.Sprintf("%s_%d_%s.mp4", base, time.Now().UnixNano(), tier)
}

func (p *Pipeline) acquireProgress(jobID string) port.ProgressFunc {
	return func(received, total int64) {
		if p.events == nil || total <= 0 {
			return
		}
		p.events.Publish(jobID, Event{
			Type:    "progress",
			Stage:   "acquire",
			Percent: float64(received) / float64(total) * 100,
		})
	}
}

func (p *Pipeline) transcodeProgress(jobID string) func(float64) {
	return func(percent float64) {
		if p.events == nil {
			return
		}
		p.events.Publish(jobID, Event{
			Type:    "progress",
			Stage:   "transcode",
			Percent: percent,
		})
	}
}

func (p *Pipeline) publishStatus(job *domain.ConversionJob, message string) {
	if p.events == nil {
		return
	}
	p.events.Publish(job.ID, Event{
		Type:    "status",
		State:   string(job.State),
		Message: message,
	})
}

func (p *Pipeline) persist(job *domain.ConversionJob) {
	if err := p.store.Update(job); err != nil {
		logger.Error.Printf("failed to persist job %s: %v", job.ID, err)
	}
}

func removePartial(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Error.Printf("failed to delete partial output %s: %v", path, err)
	}
}
