package api

import (
	"time"

	"github.com/labortrack/labortrack/internal/alerts"
	"github.com/labortrack/labortrack/internal/variance"
	"github.com/labortrack/labortrack/pkg/types"
)

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	// Status is the worst variance status across active jobs.
	Status       variance.Status `json:"status"`
	JobCount     int             `json:"job_count"`
	PendingCount int             `json:"pending_count"`
	GreenCount   int             `json:"green_count"`
	YellowCount  int             `json:"yellow_count"`
	RedCount     int             `json:"red_count"`
	AlertCount   int             `json:"alert_count"`
}

// JobResponse is one job entry in GET /api/v1/jobs.
type JobResponse struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	EstimatedHours float64         `json:"estimated_hours"`
	ExpectedWeeks  int             `json:"expected_weeks"`
	Lifecycle      types.Lifecycle `json:"status"`
	CreatedAt      string          `json:"created_at,omitempty"` // RFC3339
	Stats          StatsResponse   `json:"stats"`
}

// JobDetailResponse is the payload for GET /api/v1/jobs/{id}.
type JobDetailResponse struct {
	JobResponse
	Latest      *VarianceResponse `json:"latest,omitempty"`
	Updates     []UpdateResponse  `json:"updates"`
	Diagnostics []DiagnosticHint  `json:"diagnostics"`
}

// StatsResponse is the aggregate view of a job's update history.
type StatsResponse struct {
	CurrentWeek      int             `json:"current_week"`
	TotalHours       float64         `json:"total_hours"`
	PercentComplete  float64         `json:"percent_complete"`
	PlannedUsage     float64         `json:"planned_usage"`
	LaborVariance    float64         `json:"labor_variance"`
	VariancePercent  float64         `json:"variance_percent"`
	Status           variance.Status `json:"variance_status"`
	ProjectedTotal   float64         `json:"projected_total"`
	ProjectedOverrun *float64        `json:"projected_overrun,omitempty"`
	Explanation      string          `json:"explanation"`
}

// VarianceResponse is the variance of a single update.
type VarianceResponse struct {
	PlannedLabor     float64         `json:"planned_labor"`
	LaborVariance    float64         `json:"labor_variance"`
	VariancePercent  float64         `json:"variance_percent"`
	Status           variance.Status `json:"variance_status"`
	ProjectedTotal   *float64        `json:"projected_total,omitempty"`
	ProjectedOverrun *float64        `json:"projected_overrun,omitempty"`
	Explanation      string          `json:"explanation"`
}

// UpdateResponse is one weekly update.
type UpdateResponse struct {
	Week            int     `json:"week"`
	ActualHours     float64 `json:"actual_hours"`
	PercentComplete float64 `json:"percent_complete"`
	CreatedAt       string  `json:"created_at,omitempty"` // RFC3339
}

// CreatedUpdateResponse is the payload for POST /api/v1/jobs/{id}/updates.
type CreatedUpdateResponse struct {
	UpdateResponse
	JobID    int64            `json:"job_id"`
	Variance VarianceResponse `json:"variance"`
}

// ReportResponse is the payload for GET /api/v1/jobs/{id}/report.
type ReportResponse struct {
	JobID   int64           `json:"job_id"`
	Subject string          `json:"subject"`
	Body    string          `json:"body"`
	Status  variance.Status `json:"variance_status"`
}

// SendResponse is the payload for POST /api/v1/jobs/{id}/report/send.
type SendResponse struct {
	Success bool          `json:"success"`
	Alert   *alerts.Alert `json:"alert"`
}

// createJobRequest is the body of POST /api/v1/jobs.
type createJobRequest struct {
	Name           string   `json:"name"`
	EstimatedHours *float64 `json:"estimated_hours"`
	ExpectedWeeks  *int     `json:"expected_weeks"`
}

// createUpdateRequest is the body of POST /api/v1/jobs/{id}/updates.
type createUpdateRequest struct {
	ActualHours     *float64 `json:"actual_hours"`
	PercentComplete *float64 `json:"percent_complete"`
}

// patchJobRequest is the body of PATCH /api/v1/jobs/{id}.
type patchJobRequest struct {
	Status types.Lifecycle `json:"status"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
