// Package metrics exposes per-job variance as Prometheus gauges in the text
// exposition format.
package metrics
