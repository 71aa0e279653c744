package service

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/avasseur/reelpress/internal/domain"
	"github.com/avasseur/reelpress/internal/port"
)

// fakeStore is an in-memory JobStore for service tests.
type fakeStore struct {
	mu   sync.Mutex
	jobs map[string]domain.ConversionJob
	gone []string

	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{jobs: make(map[string]domain.ConversionJob)}
}

func (s *fakeStore) Save(j *domain.ConversionJob) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID] = *j
	return nil
}

func (s *fakeStore) Update(j *domain.ConversionJob) error {
	return s.Save(j)
}

func (s *fakeStore) Get(id string) (*domain.ConversionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &j, nil
}

func (s *fakeStore) GetByOutputName(name string) (*domain.ConversionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.OutputName == name {
			j := j
			return &j, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeStore) ListReady() ([]*domain.ConversionJob, error) {
	return s.listByState(domain.JobStateReady), nil
}

func (s *fakeStore) ListUnfinished() ([]*domain.ConversionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.ConversionJob
	for _, j := range s.jobs {
		if !j.Terminal() {
			j := j
			out = append(out, &j)
		}
	}
	return out, nil
}

func (s *fakeStore) listByState(state domain.JobState) []*domain.ConversionJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.ConversionJob
	for _, j := range s.jobs {
		if j.State == state {
			j := j
			out = append(out, &j)
		}
	}
	return out
}

func (s *fakeStore) MarkGone(id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		j.MarkGone()
		s.jobs[id] = j
	}
	s.gone = append(s.gone, id)
	return nil
}

func (s *fakeStore) Close() error { return nil }

var _ port.JobStore = (*fakeStore)(nil)

// fakeAcquirer writes canned bytes to destPath or fails.
type fakeAcquirer struct {
	data []byte
	err  error

	gotRef domain.SourceReference
}

func (a *fakeAcquirer) Acquire(_ context.Context, ref domain.SourceReference, destPath string, progress port.ProgressFunc) error {
	a.gotRef = ref
	if a.err != nil {
		return a.err
	}
	if progress != nil {
		progress(int64(len(a.data)), int64(len(a.data)))
	}
	return os.WriteFile(destPath, a.data, 0644)
}

// fakeTranscoder copies input to output or fails.
type fakeTranscoder struct {
	err error

	gotProfile domain.QualityProfile
	gotInput   string
}

func (f *fakeTranscoder) Transcode(_ context.Context, inputPath, outputPath string, profile domain.QualityProfile, progress func(float64)) error {
	f.gotProfile = profile
	f.gotInput = inputPath
	if f.err != nil {
		return f.err
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	if progress != nil {
		progress(100)
	}
	return os.WriteFile(outputPath, data, 0644)
}

// recordingBus captures published events in order.
type recordingBus struct {
	mu     sync.Mutex
	events []Event
}

func (b *recordingBus) Publish(_ string, event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) states() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, e := range b.events {
		if e.Type == "status" {
			out = append(out, e.State)
		}
	}
	return out
}
