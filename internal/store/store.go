package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/labortrack/labortrack/internal/variance"
	"github.com/labortrack/labortrack/pkg/types"
)

// Errors returned by Store operations.
var (
	ErrNotFound         = errors.New("job not found")
	ErrInvalidLifecycle = errors.New("invalid lifecycle status")
)

// Store is a thread-safe in-memory job ledger keyed by job ID.
type Store struct {
	mu   sync.RWMutex
	jobs map[int64]*types.Job
	now  func() time.Time // injectable for deterministic tests
}

// New creates a Store holding jobs.
func New(jobs []types.Job) *Store {
	s := &Store{now: time.Now}
	s.Replace(jobs)
	return s
}

// Replace swaps the whole ledger for jobs, e.g. after the jobs file changed.
func (s *Store) Replace(jobs []types.Job) {
	next := make(map[int64]*types.Job, len(jobs))
	for i := range jobs {
		j := clone(jobs[i])
		next[j.ID] = &j
	}
	s.mu.Lock()
	s.jobs = next
	s.mu.Unlock()
}

// Get returns a copy of the job with the given ID.
func (s *Store) Get(id int64) (types.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return types.Job{}, false
	}
	return clone(*j), true
}

// List returns copies of the jobs in lifecycle l, ordered by ID.
// An empty l lists every job.
func (s *Store) List(l types.Lifecycle) []types.Job {
	s.mu.RLock()
	out := make([]types.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if l == "" || j.Lifecycle == l {
			out = append(out, clone(*j))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// Count returns the number of jobs in the ledger.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Create adds a new active job and returns it. IDs are assigned after the
// highest ID already in the ledger.
func (s *Store) Create(name string, estimatedHours float64, expectedWeeks int) (types.Job, error) {
	if name == "" {
		return types.Job{}, fmt.Errorf("store: %w: name is required", variance.ErrInvalidInput)
	}
	if err := variance.ValidateEstimate(estimatedHours); err != nil || estimatedHours == 0 {
		return types.Job{}, fmt.Errorf("store: %w: estimated hours must be positive", variance.ErrInvalidInput)
	}
	if expectedWeeks <= 0 {
		return types.Job{}, fmt.Errorf("store: %w: expected weeks must be positive", variance.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var maxID int64
	for id := range s.jobs {
		if id > maxID {
			maxID = id
		}
	}
	j := &types.Job{
		ID:             maxID + 1,
		Name:           name,
		EstimatedHours: estimatedHours,
		ExpectedWeeks:  expectedWeeks,
		Lifecycle:      types.LifecycleActive,
		CreatedAt:      s.now().UTC(),
	}
	s.jobs[j.ID] = j
	return clone(*j), nil
}

// AddUpdate appends a progress update to the job and returns it.
// actualHours is the cumulative total to date.
func (s *Store) AddUpdate(id int64, actualHours, percentComplete float64) (types.WeeklyUpdate, error) {
	if err := variance.ValidateUpdate(actualHours, percentComplete); err != nil {
		return types.WeeklyUpdate{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return types.WeeklyUpdate{}, fmt.Errorf("store: job %d: %w", id, ErrNotFound)
	}
	if _, err := variance.ComputeVariance(j.EstimatedHours, actualHours, percentComplete); err != nil {
		return types.WeeklyUpdate{}, fmt.Errorf("store: job %d: %w", id, err)
	}

	u := types.WeeklyUpdate{
		ActualHours:     actualHours,
		PercentComplete: percentComplete,
		CreatedAt:       s.now().UTC(),
	}
	// Keep insertion order chronological even if the clock steps back.
	if last, ok := j.Latest(); ok && u.CreatedAt.Before(last.CreatedAt) {
		u.CreatedAt = last.CreatedAt
	}
	j.Updates = append(j.Updates, u)
	return u, nil
}

// SetLifecycle marks the job active or archived and returns the updated job.
func (s *Store) SetLifecycle(id int64, l types.Lifecycle) (types.Job, error) {
	if !l.Valid() {
		return types.Job{}, fmt.Errorf("store: %q: %w", l, ErrInvalidLifecycle)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return types.Job{}, fmt.Errorf("store: job %d: %w", id, ErrNotFound)
	}
	j.Lifecycle = l
	return clone(*j), nil
}

// clone copies j so callers never share the ledger's update slice.
func clone(j types.Job) types.Job {
	if j.Updates != nil {
		j.Updates = append([]types.WeeklyUpdate(nil), j.Updates...)
	}
	return j
}
