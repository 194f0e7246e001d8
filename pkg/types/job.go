package types

import "time"

// Lifecycle describes whether a job is still being tracked. It is set by the
// user and is independent of the job's variance status.
type Lifecycle string

const (
	LifecycleActive   Lifecycle = "active"
	LifecycleArchived Lifecycle = "archived"
)

// Valid reports whether l is one of the known lifecycle values.
func (l Lifecycle) Valid() bool {
	return l == LifecycleActive || l == LifecycleArchived
}

// Job is a field job with a fixed labor budget.
type Job struct {
	ID   int64
	Name string

	// EstimatedHours is the total labor budget for the job.
	EstimatedHours float64

	// ExpectedWeeks is the planned duration of the job.
	ExpectedWeeks int

	Lifecycle Lifecycle
	CreatedAt time.Time

	// Updates are ordered oldest first.
	Updates []WeeklyUpdate
}

// Latest returns the most recent update and false when the job has none.
func (j *Job) Latest() (WeeklyUpdate, bool) {
	if len(j.Updates) == 0 {
		return WeeklyUpdate{}, false
	}
	return j.Updates[len(j.Updates)-1], true
}

// WeeklyUpdate is one progress report for a job.
type WeeklyUpdate struct {
	// ActualHours is the cumulative number of hours worked to date.
	ActualHours float64

	// PercentComplete is the reported progress in the range 0–100.
	PercentComplete float64

	CreatedAt time.Time
}
