package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/labortrack/labortrack/internal/metrics"
	"github.com/labortrack/labortrack/internal/report"
	"github.com/labortrack/labortrack/internal/store"
	"github.com/labortrack/labortrack/internal/variance"
	"github.com/labortrack/labortrack/pkg/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the variance status of every active job",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		cfg, st, err := load(configPath)
		if err != nil {
			return err
		}
		return printStatus(cmd.OutOrStdout(), st, cfg.HoursMode, all)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report <job-id>",
	Short: "Print the status report for a job's latest update",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid job id %q", args[0])
		}
		pretty, _ := cmd.Flags().GetBool("pretty")
		width, _ := cmd.Flags().GetInt("width")
		style, _ := cmd.Flags().GetString("style")

		_, st, err := load(configPath)
		if err != nil {
			return err
		}
		var r *report.Renderer
		if pretty {
			r = &report.Renderer{Style: style, Width: width}
		}
		return printReport(cmd.OutOrStdout(), st, id, r)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Write the Prometheus text exposition for active jobs to stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, st, err := load(configPath)
		if err != nil {
			return err
		}
		return writeMetrics(cmd.OutOrStdout(), st, cfg.HoursMode, cfg.Metrics.Namespace)
	},
}

func init() {
	statusCmd.Flags().Bool("all", false, "include archived jobs")
	reportCmd.Flags().Bool("pretty", false, "render the report as styled terminal output")
	reportCmd.Flags().Int("width", 80, "word-wrap width for --pretty")
	reportCmd.Flags().String("style", "dark", "glamour style for --pretty: dark, light, notty")
}

// printStatus writes one line per job: id, name, status, progress, variance.
func printStatus(w io.Writer, st *store.Store, mode variance.HoursMode, all bool) error {
	filter := types.LifecycleActive
	if all {
		filter = ""
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tJOB\tSTATUS\tWEEK\tCOMPLETE\tHOURS\tVARIANCE")
	for _, j := range st.List(filter) {
		s, err := variance.ComputeStats(j, j.Updates, mode)
		if err != nil {
			return fmt.Errorf("job %d: %w", j.ID, err)
		}
		name := j.Name
		if j.Lifecycle == types.LifecycleArchived {
			name += " (archived)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d/%d\t%.0f%%\t%s/%s\t%+.1f%%\n",
			j.ID, name, s.Status, s.CurrentWeek, j.ExpectedWeeks,
			s.PercentComplete, trim(s.TotalHours), trim(j.EstimatedHours), s.VariancePercent)
	}
	return tw.Flush()
}

// printReport writes the job's report body, or its terminal rendering when r
// is set.
func printReport(w io.Writer, st *store.Store, id int64, r *report.Renderer) error {
	j, ok := st.Get(id)
	if !ok {
		return fmt.Errorf("job %d: %w", id, store.ErrNotFound)
	}
	rep, err := report.Build(j)
	if err != nil {
		return err
	}
	if r == nil {
		_, err := fmt.Fprintf(w, "Subject: %s\n\n%s\n", rep.Subject, rep.Body)
		return err
	}
	out, err := r.Render(rep)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func writeMetrics(w io.Writer, st *store.Store, mode variance.HoursMode, namespace string) error {
	jobs := st.List(types.LifecycleActive)
	rows := make([]metrics.Row, 0, len(jobs))
	for _, j := range jobs {
		s, err := variance.ComputeStats(j, j.Updates, mode)
		if err != nil {
			return fmt.Errorf("job %d: %w", j.ID, err)
		}
		rows = append(rows, metrics.Row{Job: j, Stats: s})
	}
	return metrics.Write(w, metrics.Families(namespace, rows))
}

func trim(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
