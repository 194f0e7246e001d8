package store

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/labortrack/labortrack/internal/variance"
	"github.com/labortrack/labortrack/pkg/types"
)

// jobsFile is the on-disk layout of the jobs YAML.
type jobsFile struct {
	Jobs []jobEntry `yaml:"jobs"`
}

type jobEntry struct {
	ID             int64           `yaml:"id"`
	Name           string          `yaml:"name"`
	EstimatedHours float64         `yaml:"estimated_hours"`
	ExpectedWeeks  int             `yaml:"expected_weeks"`
	Status         types.Lifecycle `yaml:"status"`
	CreatedAt      time.Time       `yaml:"created_at"`
	Updates        []updateEntry   `yaml:"updates"`
}

type updateEntry struct {
	ActualHours     float64   `yaml:"actual_hours"`
	PercentComplete float64   `yaml:"percent_complete"`
	CreatedAt       time.Time `yaml:"created_at"`
}

// LoadFile reads and validates the jobs YAML at path.
//
// Jobs without a status are active. Updates are sorted by created_at (stable,
// so undated updates keep file order) to give the engine oldest-first input.
func LoadFile(path string) ([]types.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read jobs file: %w", err)
	}

	var f jobsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("store: parse jobs yaml: %w", err)
	}

	seen := make(map[int64]bool, len(f.Jobs))
	jobs := make([]types.Job, 0, len(f.Jobs))
	for i, e := range f.Jobs {
		j, err := e.toJob()
		if err != nil {
			return nil, fmt.Errorf("store: jobs[%d]: %w", i, err)
		}
		if seen[j.ID] {
			return nil, fmt.Errorf("store: jobs[%d]: duplicate id %d", i, j.ID)
		}
		seen[j.ID] = true
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func (e jobEntry) toJob() (types.Job, error) {
	if e.ID <= 0 {
		return types.Job{}, fmt.Errorf("id must be positive")
	}
	if e.Name == "" {
		return types.Job{}, fmt.Errorf("job %d: name is required", e.ID)
	}
	if err := variance.ValidateEstimate(e.EstimatedHours); err != nil || e.EstimatedHours == 0 {
		return types.Job{}, fmt.Errorf("job %d: %w: estimated_hours must be positive", e.ID, variance.ErrInvalidInput)
	}
	if e.ExpectedWeeks <= 0 {
		return types.Job{}, fmt.Errorf("job %d: %w: expected_weeks must be positive", e.ID, variance.ErrInvalidInput)
	}
	if e.Status == "" {
		e.Status = types.LifecycleActive
	}
	if !e.Status.Valid() {
		return types.Job{}, fmt.Errorf("job %d: %q: %w", e.ID, e.Status, ErrInvalidLifecycle)
	}

	j := types.Job{
		ID:             e.ID,
		Name:           e.Name,
		EstimatedHours: e.EstimatedHours,
		ExpectedWeeks:  e.ExpectedWeeks,
		Lifecycle:      e.Status,
		CreatedAt:      e.CreatedAt,
	}
	for k, u := range e.Updates {
		if _, err := variance.ComputeVariance(e.EstimatedHours, u.ActualHours, u.PercentComplete); err != nil {
			return types.Job{}, fmt.Errorf("job %d: updates[%d]: %w", e.ID, k, err)
		}
		j.Updates = append(j.Updates, types.WeeklyUpdate{
			ActualHours:     u.ActualHours,
			PercentComplete: u.PercentComplete,
			CreatedAt:       u.CreatedAt,
		})
	}
	sort.SliceStable(j.Updates, func(a, b int) bool {
		return j.Updates[a].CreatedAt.Before(j.Updates[b].CreatedAt)
	})
	return j, nil
}

// Reload re-reads path and replaces the ledger. On error the current ledger
// is left untouched.
func (s *Store) Reload(path string) error {
	jobs, err := LoadFile(path)
	if err != nil {
		return err
	}
	s.Replace(jobs)
	return nil
}
