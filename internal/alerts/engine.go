package alerts

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/labortrack/labortrack/internal/config"
	"github.com/labortrack/labortrack/internal/report"
	"github.com/labortrack/labortrack/internal/variance"
	"github.com/labortrack/labortrack/pkg/types"
)

const (
	maxHistoryLen = 200
	recentWindow  = time.Hour
)

// Alert states.
const (
	StateFiring   = "firing"
	StateResolved = "resolved"

	// StateSent marks a report delivered on request rather than by a transition.
	StateSent = "sent"
)

// Alert is one notification produced by a status transition.
type Alert struct {
	ID              string          `json:"id"`
	JobID           int64           `json:"job_id"`
	JobName         string          `json:"job_name"`
	Status          variance.Status `json:"status"`
	Previous        variance.Status `json:"previous"`
	VariancePercent float64         `json:"variance_percent"`
	Subject         string          `json:"subject"`
	Body            string          `json:"body"`
	FiredAt         time.Time       `json:"fired_at"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`
	State           string          `json:"state"`
}

// Engine remembers the last status seen for every job and turns changes into
// alerts. The first observation of a job counts as a transition from PENDING.
//
// Engine is safe for concurrent use.
type Engine struct {
	minStatus variance.Status
	cooldown  time.Duration
	webhooks  []config.WebhookConfig
	report    config.ReportConfig

	mu       sync.Mutex
	previous map[int64]variance.Status
	active   map[int64]*Alert
	lastFire map[string]time.Time // key: "jobID:status"
	history  []*Alert

	client *http.Client
	newID  func() string
	now    func() time.Time
	wg     sync.WaitGroup
}

// New creates an Engine from the alert and report configuration.
func New(cfg config.AlertsConfig, rc config.ReportConfig) *Engine {
	return &Engine{
		minStatus: effectiveMin(cfg.MinStatus),
		cooldown:  cfg.Cooldown,
		webhooks:  cfg.Webhooks,
		report:    rc,
		previous:  make(map[int64]variance.Status),
		active:    make(map[int64]*Alert),
		lastFire:  make(map[string]time.Time),
		client:    &http.Client{Timeout: 10 * time.Second},
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Configure swaps the alerting and delivery settings, e.g. after the config
// file was reloaded. Remembered statuses and active alerts are kept.
func (e *Engine) Configure(cfg config.AlertsConfig, rc config.ReportConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.minStatus = effectiveMin(cfg.MinStatus)
	e.cooldown = cfg.Cooldown
	e.webhooks = cfg.Webhooks
	e.report = rc
}

func effectiveMin(s variance.Status) variance.Status {
	if s.Severity() < variance.StatusYellow.Severity() {
		return variance.StatusRed
	}
	return s
}

// Observe re-derives the job's status and compares it with the status seen
// last time. It returns the alert that fired or resolved, or nil when the
// change does not cross the alerting threshold. Delivery is asynchronous.
func (e *Engine) Observe(job types.Job) (*Alert, error) {
	status := variance.StatusPending
	var rep report.Report
	if _, ok := job.Latest(); ok {
		r, err := report.Build(job)
		if err != nil {
			return nil, fmt.Errorf("alerts: %w", err)
		}
		rep = r
		status = r.Status
	}

	now := e.now()
	e.mu.Lock()

	prev, seen := e.previous[job.ID]
	if !seen {
		prev = variance.StatusPending
	}
	e.previous[job.ID] = status
	if prev != status {
		slog.Info("alerts: status changed", "job", job.ID, "from", prev, "to", status)
	}

	var out *Alert
	switch {
	case status.AtLeast(e.minStatus) && status.Severity() > prev.Severity():
		key := fmt.Sprintf("%d:%s", job.ID, status)
		if last, ok := e.lastFire[key]; ok && now.Sub(last) < e.cooldown {
			slog.Debug("alerts: suppressed by cooldown", "job", job.ID, "status", status)
			break
		}
		a := &Alert{
			ID:              e.newID(),
			JobID:           job.ID,
			JobName:         job.Name,
			Status:          status,
			Previous:        prev,
			VariancePercent: rep.Variance.VariancePercent,
			Subject:         rep.Subject,
			Body:            rep.Body,
			FiredAt:         now,
			State:           StateFiring,
		}
		if old, ok := e.active[job.ID]; ok {
			e.archive(old, now)
		}
		e.active[job.ID] = a
		e.lastFire[key] = now
		cp := *a
		out = &cp
		slog.Warn("alerts: alert fired", "job", job.ID, "status", status,
			"variance_pct", rep.Variance.VariancePercent)

	case !status.AtLeast(e.minStatus):
		a, ok := e.active[job.ID]
		if !ok {
			break
		}
		delete(e.active, job.ID)
		e.archive(a, now)
		cp := *a
		cp.Previous = a.Status
		cp.Status = status
		if status != variance.StatusPending {
			cp.Subject = rep.Subject
			cp.Body = rep.Body
		}
		out = &cp
		slog.Info("alerts: alert resolved", "job", job.ID, "status", status)
	}
	e.mu.Unlock()

	if out != nil {
		e.wg.Add(1)
		go func(a Alert) {
			defer e.wg.Done()
			e.deliver(&a)
		}(*out)
	}
	return out, nil
}

// Send builds the report for the job's latest update and delivers it right
// away, regardless of status or cooldown.
func (e *Engine) Send(job types.Job) (*Alert, error) {
	r, err := report.Build(job)
	if err != nil {
		return nil, fmt.Errorf("alerts: %w", err)
	}
	a := &Alert{
		ID:              e.newID(),
		JobID:           job.ID,
		JobName:         job.Name,
		Status:          r.Status,
		Previous:        r.Status,
		VariancePercent: r.Variance.VariancePercent,
		Subject:         r.Subject,
		Body:            r.Body,
		FiredAt:         e.now(),
		State:           StateSent,
	}
	e.deliver(a)
	return a, nil
}

// ObserveAll observes every job, logging rather than returning per-job errors.
func (e *Engine) ObserveAll(jobs []types.Job) []*Alert {
	var fired []*Alert
	for _, j := range jobs {
		a, err := e.Observe(j)
		if err != nil {
			slog.Error("alerts: observe failed", "job", j.ID, "err", err)
			continue
		}
		if a != nil {
			fired = append(fired, a)
		}
	}
	return fired
}

// Forget drops the remembered status of a job, e.g. once it is archived.
func (e *Engine) Forget(jobID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.previous, jobID)
	if a, ok := e.active[jobID]; ok {
		delete(e.active, jobID)
		e.archive(a, e.now())
	}
}

// Previous returns the last status observed for a job.
func (e *Engine) Previous(jobID int64) (variance.Status, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.previous[jobID]
	return s, ok
}

// Active returns copies of all firing alerts plus alerts resolved within the
// past hour, newest first.
func (e *Engine) Active() []*Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-recentWindow)
	out := make([]*Alert, 0, len(e.active))
	for _, a := range e.active {
		cp := *a
		out = append(out, &cp)
	}
	for _, a := range e.history {
		if a.ResolvedAt != nil && a.ResolvedAt.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FiredAt.After(out[j].FiredAt) })
	return out
}

// Wait blocks until all in-flight deliveries have finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// archive marks a resolved and appends it to history. Caller holds e.mu.
func (e *Engine) archive(a *Alert, now time.Time) {
	resolved := now
	a.State = StateResolved
	a.ResolvedAt = &resolved
	e.history = append(e.history, a)
	if len(e.history) > maxHistoryLen {
		e.history = e.history[len(e.history)-maxHistoryLen:]
	}
}

// errNoTargets reports that no webhook resolved to a URL.
var errNoTargets = errors.New("no webhook targets configured")
