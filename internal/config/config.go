package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/labortrack/labortrack/internal/variance"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort         = 8080
	DefaultAlertCooldown    = 24 * time.Hour
	DefaultMetricsNamespace = "labortrack"
	DefaultReportFrom       = "Labor Tracker <reports@labortrack.local>"
)

// Config is the top-level configuration parsed from labortrack.yaml.
type Config struct {
	// JobsFile is the YAML ledger of jobs and their weekly updates.
	JobsFile string `yaml:"jobs_file"`

	// HoursMode controls how update hours are totalled: cumulative treats each
	// update as hours-to-date, incremental sums them.
	HoursMode variance.HoursMode `yaml:"hours_mode"`

	// HTTPPort is the port the REST API and /metrics listen on.
	HTTPPort int `yaml:"http_port"`

	Report  ReportConfig  `yaml:"report"`
	Alerts  AlertsConfig  `yaml:"alerts"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ReportConfig controls status report delivery.
type ReportConfig struct {
	// From is the sender shown on delivered reports.
	From string `yaml:"from"`

	// Recipient is the address reports are addressed to.
	Recipient string `yaml:"recipient"`

	// DemoMode logs a preview of every report instead of delivering it.
	DemoMode bool `yaml:"demo_mode"`
}

// AlertsConfig holds the status transition alert settings.
type AlertsConfig struct {
	// MinStatus is the lowest status that fires an alert: YELLOW or RED.
	MinStatus variance.Status `yaml:"min_status"`

	// Cooldown suppresses re-fires for the same job for this duration.
	Cooldown time.Duration `yaml:"cooldown"`

	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: slack | teams | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// MetricsConfig controls the Prometheus exposition.
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := normalize(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.JobsFile != "" && !filepath.IsAbs(cfg.JobsFile) {
		cfg.JobsFile = filepath.Join(filepath.Dir(path), cfg.JobsFile)
	}
	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		HoursMode: variance.HoursCumulative,
		HTTPPort:  DefaultHTTPPort,
		Report: ReportConfig{
			From: DefaultReportFrom,
		},
		Alerts: AlertsConfig{
			MinStatus: variance.StatusRed,
			Cooldown:  DefaultAlertCooldown,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultMetricsNamespace,
		},
	}
}

// normalize canonicalises enum fields so users may write them in any case.
func normalize(cfg *Config) error {
	mode, err := variance.ParseHoursMode(string(cfg.HoursMode))
	if err != nil {
		return fmt.Errorf("hours_mode: %w", err)
	}
	cfg.HoursMode = mode

	if cfg.Alerts.MinStatus == "" {
		cfg.Alerts.MinStatus = variance.StatusRed
	}
	st, err := variance.ParseStatus(string(cfg.Alerts.MinStatus))
	if err != nil {
		return fmt.Errorf("alerts.min_status: %w", err)
	}
	cfg.Alerts.MinStatus = st
	return nil
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.JobsFile == "" {
		return fmt.Errorf("jobs_file is required")
	}
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return fmt.Errorf("http_port %d is out of range [1, 65535]", cfg.HTTPPort)
	}
	switch cfg.Alerts.MinStatus {
	case variance.StatusYellow, variance.StatusRed:
	default:
		return fmt.Errorf("alerts.min_status %q: want YELLOW|RED", cfg.Alerts.MinStatus)
	}
	if cfg.Alerts.Cooldown < 0 {
		return fmt.Errorf("alerts.cooldown must not be negative")
	}
	for i, wh := range cfg.Alerts.Webhooks {
		switch wh.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("alerts.webhooks[%d]: unknown type %q", i, wh.Type)
		}
		if wh.URLEnv == "" {
			return fmt.Errorf("alerts.webhooks[%d]: url_env is required", i)
		}
	}
	if cfg.Metrics.Namespace == "" {
		return fmt.Errorf("metrics.namespace must not be empty")
	}
	return nil
}
