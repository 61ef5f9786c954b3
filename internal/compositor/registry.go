package compositor

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"mixdown/internal/timeline"
)

// ErrRegistryClosed is returned when a run is registered after shutdown has
// begun.
var ErrRegistryClosed = errors.New("registry closed")

// JobState is a snapshot of one in-flight composition run.
type JobState struct {
	RunID     string
	Shard     timeline.Shard
	StartedAt time.Time
}

// Registry tracks in-flight composition runs so operators can inspect a busy
// batch render and shutdown can refuse new work.
type Registry struct {
	mu     sync.Mutex
	jobs   map[string]JobState
	closed bool
}

func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]JobState)}
}

// Register allocates a run identifier and records the job as in flight.
func (r *Registry) Register(shard timeline.Shard) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return "", ErrRegistryClosed
	}
	id := uuid.NewString()
	r.jobs[id] = JobState{RunID: id, Shard: shard, StartedAt: time.Now()}
	return id, nil
}

// Complete removes a finished run. Unknown identifiers are ignored.
func (r *Registry) Complete(runID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, runID)
}

// InFlight returns the currently running jobs ordered by start time.
func (r *Registry) InFlight() []JobState {
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs := make([]JobState, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].StartedAt.Before(jobs[j].StartedAt) })
	return jobs
}

// Close refuses further registrations. Runs already in flight finish
// normally.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}
