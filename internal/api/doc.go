// Package api serves the job ledger over a JSON REST API under /api/v1/ and
// exposes per-job variance gauges on /metrics.
package api
