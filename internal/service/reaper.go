package service

import (
	"container/heap"
	"context"
	"os"
	"sync"
	"time"

	"github.com/avasseur/reelpress/internal/infrastructure/logger"
	"github.com/avasseur/reelpress/internal/metrics"
	"github.com/avasseur/reelpress/internal/port"
)

// Reaper owns output artifact expiry: a min-heap of (deadline, path)
// entries drained by a single goroutine. Timers are one-shot and fixed;
// a download never extends or cancels them. The clock is injected so
// tests can advance time and call Sweep directly instead of sleeping.
type Reaper struct {
	store port.JobStore
	now   func() time.Time

	mu      sync.Mutex
	entries expiryHeap
	wake    chan struct{}
}

type expiry struct {
	deadline time.Time
	path     string
	jobID    string
}

func NewReaper(store port.JobStore, now func() time.Time) *Reaper {
	if now == nil {
		now = time.Now
	}
	return &Reaper{
		store: store,
		now:   now,
		wake:  make(chan struct{}, 1),
	}
}

// Schedule arms a one-shot deletion of path after ttl.
func (r *Reaper) Schedule(jobID, path string, ttl time.Duration) {
	r.ScheduleAt(jobID, path, r.now().Add(ttl))
}

// ScheduleAt arms a deletion at an absolute deadline; used at startup to
// re-arm expiry for outputs that survived a restart.
func (r *Reaper) ScheduleAt(jobID, path string, deadline time.Time) {
	r.mu.Lock()
	heap.Push(&r.entries, expiry{deadline: deadline, path: path, jobID: jobID})
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Run drains the heap until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	for {
		wait := r.untilNext()

		var timer *time.Timer
		var timerC <-chan time.Time
		if wait >= 0 {
			timer = time.NewTimer(wait)
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-r.wake:
			// Re-evaluate the earliest deadline.
			if timer != nil {
				timer.Stop()
			}
		case <-timerC:
			r.Sweep()
		}
	}
}

// untilNext returns how long until the earliest deadline, or -1 when the
// heap is empty.
func (r *Reaper) untilNext() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries.Len() == 0 {
		return -1
	}
	wait := r.entries[0].deadline.Sub(r.now())
	if wait < 0 {
		wait = 0
	}
	return wait
}

// Sweep deletes every artifact whose deadline has passed and returns how
// many were processed. Deletion is idempotent: a path already gone is
// success, never an error.
func (r *Reaper) Sweep() int {
	now := r.now()
	var due []expiry

	r.mu.Lock()
	for r.entries.Len() > 0 && !r.entries[0].deadline.After(now) {
		due = append(due, heap.Pop(&r.entries).(expiry))
	}
	r.mu.Unlock()

	for _, e := range due {
		if err := os.Remove(e.path); err != nil && !os.IsNotExist(err) {
			logger.Error.Printf("failed to delete expired output %s: %v", e.path, err)
		} else {
			logger.Info.Printf("expired output deleted: %s", e.path)
			metrics.OutputsExpired.Inc()
		}
		if r.store != nil && e.jobID != "" {
			if err := r.store.MarkGone(e.jobID, now); err != nil {
				logger.Error.Printf("failed to mark job %s gone: %v", e.jobID, err)
			}
		}
	}
	return len(due)
}

// Pending returns the number of armed deletions.
func (r *Reaper) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries.Len()
}

// ReleaseTemp deletes a temporary artifact; safe to call repeatedly and
// on paths that never came to exist.
func ReleaseTemp(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Error.Printf("failed to delete temp file %s: %v", path, err)
	}
}

type expiryHeap []expiry

func (h expiryHeap) Len() int           { return len(h) }
func (h expiryHeap) Less(i, j int) bool { return h[i].deadline.Before(h[j].deadline) }
func (h expiryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *expiryHeap) Push(x any)        { *h = append(*h, x.(expiry)) }
func (h *expiryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
