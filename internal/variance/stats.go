package variance

import (
	"fmt"
	"strings"

	"github.com/labortrack/labortrack/pkg/types"
)

// HoursMode selects how update hours combine into a job total.
type HoursMode string

const (
	// HoursCumulative treats every update's ActualHours as the running total
	// to date, so the latest update carries the job total.
	HoursCumulative HoursMode = "cumulative"

	// HoursIncremental treats every update's ActualHours as hours worked since
	// the previous update, so the job total is their sum.
	HoursIncremental HoursMode = "incremental"
)

// ParseHoursMode accepts a mode name; the empty string selects HoursCumulative.
func ParseHoursMode(v string) (HoursMode, error) {
	switch m := HoursMode(strings.ToLower(strings.TrimSpace(v))); m {
	case "":
		return HoursCumulative, nil
	case HoursCumulative, HoursIncremental:
		return m, nil
	}
	return "", fmt.Errorf("unknown hours mode %q: want cumulative|incremental", v)
}

// Stats is the aggregate view of a job across its whole update history.
type Stats struct {
	// CurrentWeek is the number of updates logged so far.
	CurrentWeek int

	TotalHours      float64
	PercentComplete float64
	PlannedUsage    float64
	LaborVariance   float64
	VariancePercent float64
	Status          Status

	// ProjectedTotal is the hours at completion at the current burn ratio,
	// or the estimate itself while no progress has been reported.
	ProjectedTotal float64

	// ProjectedOverrun is nil while no progress has been reported.
	ProjectedOverrun *float64

	Explanation string
}

// ComputeStats derives aggregate stats for job from updates, ordered oldest
// first. PercentComplete always comes from the latest update; how hours are
// totalled depends on mode.
//
// A job without updates is PENDING with all-zero metrics and a projected
// total equal to its estimate.
func ComputeStats(job types.Job, updates []types.WeeklyUpdate, mode HoursMode) (Stats, error) {
	if err := ValidateEstimate(job.EstimatedHours); err != nil {
		return Stats{}, err
	}
	for i, u := range updates {
		if err := ValidateUpdate(u.ActualHours, u.PercentComplete); err != nil {
			return Stats{}, fmt.Errorf("update %d: %w", i+1, err)
		}
	}

	s := Stats{
		CurrentWeek:    len(updates),
		ProjectedTotal: job.EstimatedHours,
	}
	if len(updates) == 0 {
		s.Status = StatusPending
		s.Explanation = Explain(StatusPending, 0, nil, 0)
		return s, nil
	}

	s.TotalHours = totalHours(updates, mode)
	s.PercentComplete = updates[len(updates)-1].PercentComplete

	if s.PercentComplete > 0 {
		s.PlannedUsage = planned(job.EstimatedHours, s.PercentComplete)
		s.LaborVariance = s.TotalHours - s.PlannedUsage
		s.VariancePercent = percentOf(s.LaborVariance, job.EstimatedHours)
		s.ProjectedTotal = project(s.TotalHours, s.PercentComplete)
		overrun := s.ProjectedTotal - job.EstimatedHours
		if err := checkFinite(s.PlannedUsage, s.LaborVariance, s.VariancePercent, s.ProjectedTotal, overrun); err != nil {
			return Stats{}, err
		}
		s.ProjectedOverrun = &overrun
	} else if err := checkFinite(s.TotalHours); err != nil {
		return Stats{}, err
	}
	s.Status = Classify(s.VariancePercent)
	s.Explanation = Explain(s.Status, s.VariancePercent, s.ProjectedOverrun, s.PercentComplete)
	return s, nil
}

func totalHours(updates []types.WeeklyUpdate, mode HoursMode) float64 {
	if mode == HoursIncremental {
		var sum float64
		for _, u := range updates {
			sum += u.ActualHours
		}
		return sum
	}
	return updates[len(updates)-1].ActualHours
}
