package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/labortrack/labortrack/internal/config"
	"github.com/labortrack/labortrack/internal/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "labortrack",
	Short: "Labor-hour variance tracker",
	Long: `labortrack compares the labor hours spent on each job with the hours its
reported progress should have taken, classifies the gap as GREEN, YELLOW or
RED, and reports it over a JSON API, Prometheus metrics and webhooks.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "labortrack.yaml", "path to config file")
	rootCmd.AddCommand(serveCmd, statusCmd, reportCmd, metricsCmd)
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// load reads the config and the jobs ledger it points to.
func load(path string) (*config.Config, *store.Store, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	jobs, err := store.LoadFile(cfg.JobsFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store.New(jobs), nil
}
