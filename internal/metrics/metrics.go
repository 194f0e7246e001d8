package metrics

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/labortrack/labortrack/internal/variance"
	"github.com/labortrack/labortrack/pkg/types"
)

// Row pairs a job with its aggregate stats.
type Row struct {
	Job   types.Job
	Stats variance.Stats
}

// statusValue is the numeric encoding used by the <ns>_job_status gauge.
var statusValue = map[variance.Status]float64{
	variance.StatusPending: 0,
	variance.StatusGreen:   1,
	variance.StatusYellow:  2,
	variance.StatusRed:     3,
}

// statusOrder fixes the series order of the <ns>_jobs gauge.
var statusOrder = []variance.Status{
	variance.StatusPending,
	variance.StatusGreen,
	variance.StatusYellow,
	variance.StatusRed,
}

type jobGauge struct {
	suffix string
	help   string
	value  func(variance.Stats) float64
}

var jobGauges = []jobGauge{
	{"job_variance_percent", "Labor variance as a percentage of the estimate.",
		func(s variance.Stats) float64 { return s.VariancePercent }},
	{"job_labor_variance_hours", "Actual minus planned labor hours.",
		func(s variance.Stats) float64 { return s.LaborVariance }},
	{"job_percent_complete", "Reported progress of the job.",
		func(s variance.Stats) float64 { return s.PercentComplete }},
	{"job_total_hours", "Labor hours spent to date.",
		func(s variance.Stats) float64 { return s.TotalHours }},
	{"job_projected_total_hours", "Projected labor hours at completion.",
		func(s variance.Stats) float64 { return s.ProjectedTotal }},
	{"job_status", "Variance status: 0 pending, 1 green, 2 yellow, 3 red.",
		func(s variance.Stats) float64 { return statusValue[s.Status] }},
}

// Families builds one gauge family per job metric plus <ns>_jobs, the number
// of jobs in each status. Rows are emitted in job ID order.
func Families(namespace string, rows []Row) []*dto.MetricFamily {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Job.ID < sorted[j].Job.ID })

	fams := make([]*dto.MetricFamily, 0, len(jobGauges)+1)
	for _, g := range jobGauges {
		mf := gaugeFamily(namespace+"_"+g.suffix, g.help)
		for _, r := range sorted {
			mf.Metric = append(mf.Metric, gauge(g.value(r.Stats),
				label("job", r.Job.Name),
				label("job_id", strconv.FormatInt(r.Job.ID, 10)),
			))
		}
		fams = append(fams, mf)
	}

	counts := make(map[variance.Status]int, len(statusOrder))
	for _, r := range sorted {
		counts[r.Stats.Status]++
	}
	jobs := gaugeFamily(namespace+"_jobs", "Number of tracked jobs by variance status.")
	for _, s := range statusOrder {
		jobs.Metric = append(jobs.Metric, gauge(float64(counts[s]), label("status", string(s))))
	}
	return append(fams, jobs)
}

// Write encodes fams in the Prometheus text exposition format. Families
// without series are skipped.
func Write(w io.Writer, fams []*dto.MetricFamily) error {
	for _, mf := range fams {
		if len(mf.GetMetric()) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// ContentType is the Content-Type of the output of Write.
var ContentType = string(expfmt.NewFormat(expfmt.TypeTextPlain))

func gaugeFamily(name, help string) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: strPtr(name),
		Help: strPtr(help),
		Type: dto.MetricType_GAUGE.Enum(),
	}
}

func gauge(v float64, labels ...*dto.LabelPair) *dto.Metric {
	return &dto.Metric{
		Label: labels,
		Gauge: &dto.Gauge{Value: &v},
	}
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: strPtr(name), Value: strPtr(value)}
}

func strPtr(s string) *string { return &s }
