// Package variance turns a job's labor estimate and its progress updates into
// a variance status and a plain-English explanation.
//
// status.go holds the one ordered threshold table shared by every path:
// variance ≤ 5% is GREEN, ≤ 15% is YELLOW, anything above is RED. PENDING is
// reported for jobs that have no updates yet.
//
// variance.go computes the single-update view (ComputeVariance) from one
// cumulative observation. stats.go computes the aggregate view (ComputeStats)
// over a job's whole update history. explain.go renders the explanation text
// both views carry.
//
// Every function is pure: no I/O, no shared state, safe for concurrent use.
// Out-of-range input is rejected with ErrInvalidInput rather than turned into
// NaN or Inf.
package variance
