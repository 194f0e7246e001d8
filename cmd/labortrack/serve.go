package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/labortrack/labortrack/internal/alerts"
	"github.com/labortrack/labortrack/internal/api"
	"github.com/labortrack/labortrack/internal/config"
	"github.com/labortrack/labortrack/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the REST API and /metrics, alerting on status changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return serve(ctx, configPath)
	},
}

func serve(ctx context.Context, path string) error {
	slog.Info("labortrack starting", "config", path)

	cfg, st, err := load(path)
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"jobs_file", cfg.JobsFile,
		"jobs", st.Count(),
		"hours_mode", cfg.HoursMode,
		"http_port", cfg.HTTPPort,
		"alert_min_status", cfg.Alerts.MinStatus,
		"demo_mode", cfg.Report.DemoMode,
	)

	// Alerts engine: seeded with the current ledger, then re-evaluated on
	// every write and every reload of the jobs file.
	engine := alerts.New(cfg.Alerts, cfg.Report)
	engine.ObserveAll(st.List(types.LifecycleActive))

	onChange := func(j types.Job) {
		if j.Lifecycle == types.LifecycleArchived {
			engine.Forget(j.ID)
			return
		}
		if _, err := engine.Observe(j); err != nil {
			slog.Error("alerts: observe failed", "job", j.ID, "err", err)
		}
	}

	go func() {
		err := config.WatchFile(ctx, cfg.JobsFile, func() {
			if err := st.Reload(cfg.JobsFile); err != nil {
				slog.Error("jobs reload failed, keeping previous ledger", "err", err)
				return
			}
			slog.Info("jobs reloaded", "count", st.Count())
			for _, j := range st.List("") {
				onChange(j)
			}
		})
		if err != nil {
			slog.Error("jobs watcher stopped", "err", err)
		}
	}()

	go func() {
		err := config.Watch(ctx, path, func(next *config.Config) {
			if next.HTTPPort != cfg.HTTPPort || next.JobsFile != cfg.JobsFile || next.HoursMode != cfg.HoursMode {
				slog.Warn("restart to apply http_port, jobs_file or hours_mode changes")
			}
			engine.Configure(next.Alerts, next.Report)
		})
		if err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	handler := api.New(st, api.Options{
		HoursMode: cfg.HoursMode,
		Namespace: cfg.Metrics.Namespace,
		Notifier:  engine,
		OnChange:  onChange,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", handler)
	mux.Handle("/metrics", handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	}

	slog.Info("labortrack shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown", "err", err)
	}
	engine.Wait()
	return nil
}
