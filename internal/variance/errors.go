package variance

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned when hours or progress values are outside their
// valid ranges. Callers should validate at the boundary; the engine refuses
// to compute variance from nonsensical values.
var ErrInvalidInput = errors.New("invalid input")

// ValidateEstimate checks a job's labor budget.
// Zero is accepted and handled by the engine's zero-estimate guard.
func ValidateEstimate(estimatedHours float64) error {
	if !finite(estimatedHours) || estimatedHours < 0 {
		return fmt.Errorf("%w: estimated hours %v must be a non-negative number", ErrInvalidInput, estimatedHours)
	}
	return nil
}

// ValidateUpdate checks one progress observation.
func ValidateUpdate(actualHours, percentComplete float64) error {
	if !finite(actualHours) || actualHours < 0 {
		return fmt.Errorf("%w: actual hours %v must be a non-negative number", ErrInvalidInput, actualHours)
	}
	if !finite(percentComplete) || percentComplete < 0 || percentComplete > 100 {
		return fmt.Errorf("%w: percent complete %v must be between 0 and 100", ErrInvalidInput, percentComplete)
	}
	return nil
}

// checkFinite fails when a derived value overflowed float64, e.g. a huge
// estimate or a vanishingly small percent complete.
func checkFinite(vals ...float64) error {
	for _, v := range vals {
		if !finite(v) {
			return fmt.Errorf("%w: hours and progress are out of computable range", ErrInvalidInput)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
