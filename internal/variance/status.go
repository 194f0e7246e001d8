package variance

import (
	"fmt"
	"strings"
)

// Status is the variance classification of a job.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusGreen   Status = "GREEN"
	StatusYellow  Status = "YELLOW"
	StatusRed     Status = "RED"
)

// Upper bounds (inclusive) on variance percent for each status.
const (
	ThresholdGreen  = 5.0
	ThresholdYellow = 15.0
)

// threshold maps an inclusive upper bound on variance percent to a status.
type threshold struct {
	max    float64
	status Status
}

// thresholds is ordered by ascending max. Anything above the last entry is RED.
var thresholds = []threshold{
	{max: ThresholdGreen, status: StatusGreen},
	{max: ThresholdYellow, status: StatusYellow},
}

// Classify maps a variance percent to a status. Negative variance (under
// budget) is GREEN like any other value at or below the first bound.
func Classify(variancePercent float64) Status {
	for _, t := range thresholds {
		if variancePercent <= t.max {
			return t.status
		}
	}
	return StatusRed
}

// Severity orders statuses: PENDING < GREEN < YELLOW < RED.
// Unknown values sort with PENDING.
func (s Status) Severity() int {
	switch s {
	case StatusGreen:
		return 1
	case StatusYellow:
		return 2
	case StatusRed:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether s is as severe as other or more.
func (s Status) AtLeast(other Status) bool {
	return s.Severity() >= other.Severity()
}

// ParseStatus accepts a status name in any letter case.
func ParseStatus(v string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(v)))
	switch s {
	case StatusPending, StatusGreen, StatusYellow, StatusRed:
		return s, nil
	}
	return "", fmt.Errorf("unknown status %q: want pending|green|yellow|red", v)
}
