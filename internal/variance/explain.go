package variance

import (
	"fmt"
	"math"
)

// Fixed explanation messages.
const (
	MsgJustStarted = "Job just started. No variance to report yet."
	MsgOnTrack     = "Job is on track. Labor usage is within 5% of planned progress."
)

// Explain renders the one-line explanation for a classified job.
// percentComplete == 0 always yields MsgJustStarted, whatever the status.
func Explain(status Status, variancePercent float64, projectedOverrun *float64, percentComplete float64) string {
	if percentComplete == 0 || status == StatusPending {
		return MsgJustStarted
	}

	switch status {
	case StatusGreen:
		return MsgOnTrack
	case StatusYellow:
		return fmt.Sprintf("Job is trending %.1f%% over budget. Projected overrun: %d hours. Monitor closely.",
			variancePercent, overrunHours(projectedOverrun))
	default:
		return fmt.Sprintf("ALERT: Job is %.1f%% over budget. Projected overrun: %d hours. Action needed this week.",
			variancePercent, overrunHours(projectedOverrun))
	}
}

// overrunHours rounds the projected overrun half up to whole hours; nil is 0.
// Values outside the int64 range saturate.
func overrunHours(overrun *float64) int64 {
	if overrun == nil || math.IsNaN(*overrun) {
		return 0
	}
	r := math.Floor(*overrun + 0.5)
	switch {
	case r >= math.MaxInt64:
		return math.MaxInt64
	case r <= math.MinInt64:
		return math.MinInt64
	}
	return int64(r)
}
