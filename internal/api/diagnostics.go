package api

import (
	"fmt"
	"sort"

	"github.com/labortrack/labortrack/internal/report"
	"github.com/labortrack/labortrack/internal/variance"
	"github.com/labortrack/labortrack/pkg/types"
)

// DiagnosticHint is one human-readable insight about a job. The UI shows
// these as chips next to the job; Detail is the full explanation.
type DiagnosticHint struct {
	// Key is a stable machine-readable identifier.
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning" | "critical"
	Level  string `json:"level"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	// Value is an optional number tied to the hint (e.g. overrun hours).
	Value *float64 `json:"value,omitempty"`
}

// computeDiagnostics derives hints from a job and its aggregate stats.
// Hints are ordered most severe first.
func computeDiagnostics(job types.Job, s variance.Stats) []DiagnosticHint {
	if s.Status == variance.StatusPending {
		return []DiagnosticHint{{
			Key:   "pending",
			Level: "info",
			Title: "No updates yet",
			Detail: "No weekly updates have been logged for this job, so there is nothing " +
				"to compare against the estimate. Log actual hours and percent complete " +
				"at the end of the first week.",
		}}
	}

	var hints []DiagnosticHint

	switch s.Status {
	case variance.StatusRed:
		v := s.VariancePercent
		hints = append(hints, DiagnosticHint{
			Key:    "variance",
			Level:  "critical",
			Title:  report.Label(s.Status),
			Detail: s.Explanation,
			Value:  &v,
		})
	case variance.StatusYellow:
		v := s.VariancePercent
		hints = append(hints, DiagnosticHint{
			Key:    "variance",
			Level:  "warning",
			Title:  report.Label(s.Status),
			Detail: s.Explanation,
			Value:  &v,
		})
	}

	if s.ProjectedOverrun != nil && *s.ProjectedOverrun > 0 {
		v := *s.ProjectedOverrun
		level := "info"
		if s.Status.AtLeast(variance.StatusYellow) {
			level = "warning"
		}
		hints = append(hints, DiagnosticHint{
			Key:   "projected_overrun",
			Level: level,
			Title: "Projected overrun",
			Detail: fmt.Sprintf(
				"At the current burn rate this job will need about %.0f hours against an "+
					"estimate of %.0f, an overrun of %.0f hours.",
				s.ProjectedTotal, job.EstimatedHours, v,
			),
			Value: &v,
		})
	}

	if job.ExpectedWeeks > 0 && s.CurrentWeek > job.ExpectedWeeks {
		v := float64(s.CurrentWeek - job.ExpectedWeeks)
		hints = append(hints, DiagnosticHint{
			Key:   "over_schedule",
			Level: "warning",
			Title: "Over schedule",
			Detail: fmt.Sprintf(
				"This is week %d of a job planned for %d weeks. Check whether the scope "+
					"changed or the remaining work needs re-estimating.",
				s.CurrentWeek, job.ExpectedWeeks,
			),
			Value: &v,
		})
	}

	if len(hints) == 0 {
		v := s.VariancePercent
		hints = append(hints, DiagnosticHint{
			Key:    "on_track",
			Level:  "ok",
			Title:  report.Label(s.Status),
			Detail: s.Explanation,
			Value:  &v,
		})
	}

	sort.SliceStable(hints, func(i, j int) bool {
		return levelRank[hints[i].Level] < levelRank[hints[j].Level]
	})
	return hints
}

var levelRank = map[string]int{"critical": 0, "warning": 1, "info": 2, "ok": 3}
