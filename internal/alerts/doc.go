// Package alerts tracks each job's previous variance status and notifies when
// a job escalates into an alerting status or recovers from one. Status itself
// is always re-derived by the variance engine; this package is the only place
// that remembers what it was last time. Notifications are delivered to Slack,
// Teams, or generic HTTP webhooks, or logged as a preview in demo mode.
package alerts
