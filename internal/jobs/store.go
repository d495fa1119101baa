// Package jobs owns the download job lifecycle: the in-memory store,
// the FIFO queue, the fixed worker pool and the retention sweeper.
package jobs

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"vidgrab/internal/models"
)

var (
	// ErrNotFound means the job identifier is unknown.
	ErrNotFound = errors.New("job not found")
	// ErrTerminal rejects updates to completed or failed jobs.
	ErrTerminal = errors.New("job is in a terminal state")
)

// Store is the concurrency-safe job table. Workers are the only
// writers during execution; polling requests read snapshots.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]*models.Job)}
}

// Create registers a fresh queued job under a never-reused identifier
// and returns a snapshot of it.
func (s *Store) Create() models.Job {
	job := &models.Job{
		ID:        uuid.New().String(),
		Status:    models.StatusQueued,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	return *job
}

// Get returns a snapshot of the job, or ErrNotFound.
func (s *Store) Get(id string) (models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return models.Job{}, ErrNotFound
	}
	return *job, nil
}

// Update applies mutate atomically under the store lock. Terminal
// jobs are never overwritten.
func (s *Store) Update(id string, mutate func(*models.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status.Terminal() {
		return ErrTerminal
	}
	mutate(job)
	return nil
}

// EvictTerminalBefore drops in-memory records of terminal jobs created
// before cutoff and returns how many were removed.
func (s *Store) EvictTerminalBefore(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, job := range s.jobs {
		if job.Status.Terminal() && job.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
			evicted++
		}
	}
	return evicted
}

// Count returns the number of tracked jobs.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
