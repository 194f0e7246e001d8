// Package config loads and watches the labortrack configuration file.
//
// Config fields:
//   - JobsFile         — path to the job ledger YAML (required; relative paths
//     resolve against the config file's directory)
//   - HoursMode        — cumulative | incremental (default cumulative)
//   - HTTPPort         — port for the REST API and /metrics (default 8080)
//   - Report           — from / recipient / demo_mode for status reports
//   - Alerts           — min_status (default RED), cooldown (default 24h),
//     webhooks [] {type slack|teams|http, url_env}
//   - Metrics.Namespace — Prometheus metric prefix (default "labortrack")
//
// Load(path) applies defaults before unmarshalling, then validates.
//
// Watch(ctx, path, onChange) reloads the config with fsnotify whenever the
// file is written. WatchFile is the underlying primitive and is also used to
// follow the jobs file.
package config
