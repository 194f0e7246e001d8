package variance

// Variance is the single-update view of a job: how one cumulative observation
// compares to the labor that should have been spent for the reported progress.
type Variance struct {
	// PlannedLabor is EstimatedHours × PercentComplete/100.
	PlannedLabor float64

	// LaborVariance is ActualHours − PlannedLabor. Positive means over budget.
	LaborVariance float64

	// VariancePercent is LaborVariance as a percentage of the whole estimate.
	VariancePercent float64

	Status Status

	// ProjectedTotal is the hours at completion if the current burn ratio
	// holds. Nil when no progress has been reported.
	ProjectedTotal *float64

	// ProjectedOverrun is ProjectedTotal − EstimatedHours. Nil together with
	// ProjectedTotal.
	ProjectedOverrun *float64

	Explanation string
}

// ComputeVariance classifies one progress observation against the estimate.
//
// actualHours is the cumulative total worked to date. With no progress
// reported (percentComplete == 0) no variance is measured: the result is
// GREEN with zero variance and no projection. An estimate of zero is guarded
// the same way for the percentage, which is reported as 0.
func ComputeVariance(estimatedHours, actualHours, percentComplete float64) (Variance, error) {
	if err := ValidateEstimate(estimatedHours); err != nil {
		return Variance{}, err
	}
	if err := ValidateUpdate(actualHours, percentComplete); err != nil {
		return Variance{}, err
	}

	var v Variance
	if percentComplete > 0 {
		v.PlannedLabor = planned(estimatedHours, percentComplete)
		v.LaborVariance = actualHours - v.PlannedLabor
		v.VariancePercent = percentOf(v.LaborVariance, estimatedHours)

		total := project(actualHours, percentComplete)
		overrun := total - estimatedHours
		if err := checkFinite(v.PlannedLabor, v.LaborVariance, v.VariancePercent, total, overrun); err != nil {
			return Variance{}, err
		}
		v.ProjectedTotal = &total
		v.ProjectedOverrun = &overrun
	}
	v.Status = Classify(v.VariancePercent)
	v.Explanation = Explain(v.Status, v.VariancePercent, v.ProjectedOverrun, percentComplete)
	return v, nil
}

// planned returns the labor that should have been used at percentComplete.
func planned(estimatedHours, percentComplete float64) float64 {
	return estimatedHours * percentComplete / 100
}

// percentOf returns part as a percentage of whole, or 0 when whole is 0.
func percentOf(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part * 100 / whole
}

// project extrapolates hours at completion. percentComplete must be > 0.
func project(hours, percentComplete float64) float64 {
	return hours * 100 / percentComplete
}
