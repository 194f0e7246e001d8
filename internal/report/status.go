package report

import "github.com/labortrack/labortrack/internal/variance"

// Label returns the short human label shown next to a job.
func Label(status variance.Status) string {
	switch status {
	case variance.StatusGreen:
		return "✓ On Track"
	case variance.StatusYellow:
		return "⚠ Watch"
	case variance.StatusRed:
		return "⚠️ Action Needed"
	default:
		return "Pending"
	}
}

// Color returns the presentation color for a status; jobs without updates
// are gray.
func Color(status variance.Status) string {
	switch status {
	case variance.StatusGreen:
		return "green"
	case variance.StatusYellow:
		return "yellow"
	case variance.StatusRed:
		return "red"
	default:
		return "gray"
	}
}
