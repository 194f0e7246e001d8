package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/labortrack/labortrack/internal/variance"
	"github.com/labortrack/labortrack/pkg/types"
)

// ErrNoUpdates is returned when a report is requested for a job that has no
// progress updates yet.
var ErrNoUpdates = errors.New("no updates available for this job")

// Report is a rendered status report for one job.
type Report struct {
	JobID    int64
	JobName  string
	Subject  string
	Body     string
	Status   variance.Status
	Variance variance.Variance

	sections []section
}

// section is one titled block of the report body.
type section struct {
	title string
	lines []string
}

// Build computes the variance of the job's latest update and renders it.
func Build(job types.Job) (Report, error) {
	u, ok := job.Latest()
	if !ok {
		return Report{}, fmt.Errorf("report: job %d: %w", job.ID, ErrNoUpdates)
	}
	v, err := variance.ComputeVariance(job.EstimatedHours, u.ActualHours, u.PercentComplete)
	if err != nil {
		return Report{}, fmt.Errorf("report: job %d: %w", job.ID, err)
	}

	r := Report{
		JobID:    job.ID,
		JobName:  job.Name,
		Subject:  Subject(job.Name, v.Status),
		Status:   v.Status,
		Variance: v,
		sections: sections(job, u, v),
	}
	r.Body = r.text()
	return r, nil
}

// Subject returns the report subject line.
func Subject(jobName string, status variance.Status) string {
	return fmt.Sprintf("[%s] %s — labor vs progress", status, jobName)
}

func sections(job types.Job, u types.WeeklyUpdate, v variance.Variance) []section {
	analysis := []string{
		fmt.Sprintf("Planned Labor (at %s%% complete): %.1f hours", num(u.PercentComplete), v.PlannedLabor),
		fmt.Sprintf("Labor Variance: %.1f hours (%.1f%%)", v.LaborVariance, v.VariancePercent),
	}
	if v.ProjectedTotal != nil {
		analysis = append(analysis, fmt.Sprintf("Projected Total Labor: %.1f hours", *v.ProjectedTotal))
	}
	if v.ProjectedOverrun != nil {
		analysis = append(analysis, fmt.Sprintf("Projected Overrun: %.1f hours", *v.ProjectedOverrun))
	}

	return []section{
		{title: "JOB DETAILS", lines: []string{
			fmt.Sprintf("Estimated Labor: %s hours", num(job.EstimatedHours)),
			fmt.Sprintf("Expected Duration: %d weeks", job.ExpectedWeeks),
		}},
		{title: "CURRENT PROGRESS", lines: []string{
			fmt.Sprintf("Actual Labor to Date: %s hours", num(u.ActualHours)),
			fmt.Sprintf("Percent Complete: %s%%", num(u.PercentComplete)),
		}},
		{title: "VARIANCE ANALYSIS", lines: analysis},
	}
}

// text renders the plain-text body.
func (r Report) text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "LABOR VARIANCE REPORT\n%s\n\n", r.JobName)
	fmt.Fprintf(&b, "STATUS: %s\n%s\n\n---\n", r.Status, r.Variance.Explanation)
	for _, s := range r.sections {
		fmt.Fprintf(&b, "\n%s:\n", s.title)
		for _, l := range s.lines {
			fmt.Fprintf(&b, "• %s\n", l)
		}
	}
	heading, detail := Notice(r.Status)
	fmt.Fprintf(&b, "\n---\n\n%s\n\n%s\n\n---\nSent by Labor Tracker", heading, detail)
	return b.String()
}

// Markdown renders the report as Markdown.
func (r Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Subject)
	fmt.Fprintf(&b, "**STATUS: %s** — %s\n", r.Status, r.Variance.Explanation)
	for _, s := range r.sections {
		fmt.Fprintf(&b, "\n## %s\n\n", titleCase(s.title))
		for _, l := range s.lines {
			fmt.Fprintf(&b, "- %s\n", l)
		}
	}
	heading, detail := Notice(r.Status)
	fmt.Fprintf(&b, "\n---\n\n**%s**\n\n%s\n", heading, detail)
	return b.String()
}

// Notice returns the closing heading and advice for a status.
func Notice(status variance.Status) (heading, detail string) {
	switch status {
	case variance.StatusRed:
		return "⚠️ ACTION REQUIRED THIS WEEK",
			"This job is significantly over budget. Review crew efficiency, scope changes, or unforeseen conditions."
	case variance.StatusYellow:
		return "⚠️ MONITOR CLOSELY",
			"This job is trending over budget. Keep an eye on progress this week."
	default:
		return "✅ ON TRACK", "Job is performing within acceptable variance."
	}
}

// num formats v without trailing zeros: 500 → "500", 12.5 → "12.5".
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
