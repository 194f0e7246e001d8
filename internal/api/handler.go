package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labortrack/labortrack/internal/alerts"
	"github.com/labortrack/labortrack/internal/metrics"
	"github.com/labortrack/labortrack/internal/report"
	"github.com/labortrack/labortrack/internal/store"
	"github.com/labortrack/labortrack/internal/variance"
	"github.com/labortrack/labortrack/pkg/types"
)

// Notifier is the part of the alert engine the API needs.
type Notifier interface {
	Active() []*alerts.Alert
	Send(job types.Job) (*alerts.Alert, error)
}

// Options configures a Handler. The zero value is usable.
type Options struct {
	HoursMode variance.HoursMode

	// Namespace prefixes every metric name; defaults to "labortrack".
	Namespace string

	// Notifier backs /api/v1/alerts and report sending; may be nil.
	Notifier Notifier

	// OnChange is called after every successful write with the updated job.
	OnChange func(types.Job)
}

// Handler is the HTTP handler for all /api/v1/* endpoints and /metrics.
type Handler struct {
	store *store.Store
	opts  Options
	mux   *http.ServeMux
}

// New creates a Handler wired to the given job ledger and registers all routes.
func New(st *store.Store, opts Options) http.Handler {
	if opts.HoursMode == "" {
		opts.HoursMode = variance.HoursCumulative
	}
	if opts.Namespace == "" {
		opts.Namespace = "labortrack"
	}
	h := &Handler{store: st, opts: opts, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/jobs", h.jobs)
	h.mux.HandleFunc("/api/v1/jobs/", h.job) // subtree — extracts {id}
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)
	h.mux.HandleFunc("/metrics", h.serveMetrics)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — status counts across active jobs.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	jobs := h.store.List(types.LifecycleActive)
	resp := HealthResponse{
		Status:   variance.StatusPending,
		JobCount: len(jobs),
	}
	for _, j := range jobs {
		s, err := h.stats(j)
		if err != nil {
			slog.Warn("api: stats failed", "job", j.ID, "err", err)
			continue
		}
		switch s.Status {
		case variance.StatusGreen:
			resp.GreenCount++
		case variance.StatusYellow:
			resp.YellowCount++
		case variance.StatusRed:
			resp.RedCount++
		default:
			resp.PendingCount++
		}
		if s.Status.Severity() > resp.Status.Severity() {
			resp.Status = s.Status
		}
	}
	if h.opts.Notifier != nil {
		for _, a := range h.opts.Notifier.Active() {
			if a.State == alerts.StateFiring {
				resp.AlertCount++
			}
		}
	}
	jsonResp(w, http.StatusOK, resp)
}

// jobs handles GET /api/v1/jobs?status=active|archived|all and POST /api/v1/jobs.
func (h *Handler) jobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listJobs(w, r)
	case http.MethodPost:
		h.createJob(w, r)
	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	var filter types.Lifecycle
	switch q := r.URL.Query().Get("status"); q {
	case "", string(types.LifecycleActive):
		filter = types.LifecycleActive
	case string(types.LifecycleArchived):
		filter = types.LifecycleArchived
	case "all":
	default:
		jsonErr(w, http.StatusBadRequest, "Invalid status")
		return
	}

	jobs := h.store.List(filter)
	out := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		s, err := h.stats(j)
		if err != nil {
			slog.Warn("api: stats failed", "job", j.ID, "err", err)
			continue
		}
		out = append(out, toJobResponse(j, s))
	}
	jsonResp(w, http.StatusOK, out)
}

func (h *Handler) createJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" || req.EstimatedHours == nil || req.ExpectedWeeks == nil {
		jsonErr(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	j, err := h.store.Create(req.Name, *req.EstimatedHours, *req.ExpectedWeeks)
	if err != nil {
		h.storeErr(w, err)
		return
	}
	h.changed(j)
	s, err := h.stats(j)
	if err != nil {
		slog.Warn("api: stats failed", "job", j.ID, "err", err)
	}
	jsonResp(w, http.StatusCreated, toJobResponse(j, s))
}

// job routes the /api/v1/jobs/{id}[/...] subtree.
func (h *Handler) job(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/"), "/")
	if rest == "" {
		// Bare /api/v1/jobs/ behaves like the collection.
		h.jobs(w, r)
		return
	}

	idPart, sub, _ := strings.Cut(rest, "/")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		jsonErr(w, http.StatusBadRequest, "invalid job id")
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.getJob(w, id)
	case sub == "" && r.Method == http.MethodPatch:
		h.patchJob(w, r, id)
	case sub == "updates" && r.Method == http.MethodPost:
		h.addUpdate(w, r, id)
	case sub == "report" && r.Method == http.MethodGet:
		h.getReport(w, id)
	case sub == "report/send" && r.Method == http.MethodPost:
		h.sendReport(w, id)
	case sub == "" || sub == "updates" || sub == "report" || sub == "report/send":
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	default:
		jsonErr(w, http.StatusNotFound, "not found")
	}
}

// getJob returns GET /api/v1/jobs/{id} — the job with stats, history and hints.
func (h *Handler) getJob(w http.ResponseWriter, id int64) {
	j, ok := h.store.Get(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "Job not found")
		return
	}
	s, err := h.stats(j)
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := JobDetailResponse{
		JobResponse: toJobResponse(j, s),
		Updates:     make([]UpdateResponse, 0, len(j.Updates)),
		Diagnostics: computeDiagnostics(j, s),
	}
	for i, u := range j.Updates {
		resp.Updates = append(resp.Updates, toUpdateResponse(i+1, u))
	}
	if u, ok := j.Latest(); ok {
		v, err := variance.ComputeVariance(j.EstimatedHours, u.ActualHours, u.PercentComplete)
		if err == nil {
			vr := toVarianceResponse(v)
			resp.Latest = &vr
		}
	}
	jsonResp(w, http.StatusOK, resp)
}

// patchJob handles PATCH /api/v1/jobs/{id} — {status: active|archived}.
func (h *Handler) patchJob(w http.ResponseWriter, r *http.Request, id int64) {
	var req patchJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !req.Status.Valid() {
		jsonErr(w, http.StatusBadRequest, "Invalid status")
		return
	}

	j, err := h.store.SetLifecycle(id, req.Status)
	if err != nil {
		h.storeErr(w, err)
		return
	}
	h.changed(j)
	s, err := h.stats(j)
	if err != nil {
		slog.Warn("api: stats failed", "job", j.ID, "err", err)
	}
	jsonResp(w, http.StatusOK, toJobResponse(j, s))
}

// addUpdate handles POST /api/v1/jobs/{id}/updates.
func (h *Handler) addUpdate(w http.ResponseWriter, r *http.Request, id int64) {
	var req createUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ActualHours == nil || req.PercentComplete == nil {
		jsonErr(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if pct := *req.PercentComplete; pct < 0 || pct > 100 {
		jsonErr(w, http.StatusBadRequest, "Percent complete must be between 0 and 100")
		return
	}

	u, err := h.store.AddUpdate(id, *req.ActualHours, *req.PercentComplete)
	if err != nil {
		h.storeErr(w, err)
		return
	}
	j, _ := h.store.Get(id)
	h.changed(j)

	v, err := variance.ComputeVariance(j.EstimatedHours, u.ActualHours, u.PercentComplete)
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResp(w, http.StatusCreated, CreatedUpdateResponse{
		UpdateResponse: toUpdateResponse(len(j.Updates), u),
		JobID:          id,
		Variance:       toVarianceResponse(v),
	})
}

// getReport returns GET /api/v1/jobs/{id}/report — the latest status report.
func (h *Handler) getReport(w http.ResponseWriter, id int64) {
	j, ok := h.store.Get(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "Job not found")
		return
	}
	rep, err := report.Build(j)
	if err != nil {
		h.reportErr(w, err)
		return
	}
	jsonResp(w, http.StatusOK, ReportResponse{
		JobID:   j.ID,
		Subject: rep.Subject,
		Body:    rep.Body,
		Status:  rep.Status,
	})
}

// sendReport handles POST /api/v1/jobs/{id}/report/send — deliver the latest
// report to the configured targets now.
func (h *Handler) sendReport(w http.ResponseWriter, id int64) {
	if h.opts.Notifier == nil {
		jsonErr(w, http.StatusServiceUnavailable, "report delivery is not configured")
		return
	}
	j, ok := h.store.Get(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "Job not found")
		return
	}
	a, err := h.opts.Notifier.Send(j)
	if err != nil {
		h.reportErr(w, err)
		return
	}
	jsonResp(w, http.StatusOK, SendResponse{Success: true, Alert: a})
}

// listAlerts returns GET /api/v1/alerts — firing and recently resolved alerts.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.opts.Notifier == nil {
		jsonResp(w, http.StatusOK, []struct{}{})
		return
	}
	jsonResp(w, http.StatusOK, h.opts.Notifier.Active())
}

// serveMetrics returns GET /metrics — gauges for every active job.
func (h *Handler) serveMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	jobs := h.store.List(types.LifecycleActive)
	rows := make([]metrics.Row, 0, len(jobs))
	for _, j := range jobs {
		s, err := h.stats(j)
		if err != nil {
			continue
		}
		rows = append(rows, metrics.Row{Job: j, Stats: s})
	}

	w.Header().Set("Content-Type", metrics.ContentType)
	if err := metrics.Write(w, metrics.Families(h.opts.Namespace, rows)); err != nil {
		slog.Error("api: write metrics", "err", err)
	}
}

// --- helpers ----------------------------------------------------------------

func (h *Handler) stats(j types.Job) (variance.Stats, error) {
	return variance.ComputeStats(j, j.Updates, h.opts.HoursMode)
}

func (h *Handler) changed(j types.Job) {
	if h.opts.OnChange != nil {
		h.opts.OnChange(j)
	}
}

// storeErr maps ledger errors to HTTP status codes.
func (h *Handler) storeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonErr(w, http.StatusNotFound, "Job not found")
	case errors.Is(err, store.ErrInvalidLifecycle):
		jsonErr(w, http.StatusBadRequest, "Invalid status")
	case errors.Is(err, variance.ErrInvalidInput):
		jsonErr(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("api: store error", "err", err)
		jsonErr(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handler) reportErr(w http.ResponseWriter, err error) {
	if errors.Is(err, report.ErrNoUpdates) {
		jsonErr(w, http.StatusBadRequest, "No updates available for this job")
		return
	}
	h.storeErr(w, err)
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

func toJobResponse(j types.Job, s variance.Stats) JobResponse {
	return JobResponse{
		ID:             j.ID,
		Name:           j.Name,
		EstimatedHours: j.EstimatedHours,
		ExpectedWeeks:  j.ExpectedWeeks,
		Lifecycle:      j.Lifecycle,
		CreatedAt:      formatTime(j.CreatedAt),
		Stats: StatsResponse{
			CurrentWeek:      s.CurrentWeek,
			TotalHours:       s.TotalHours,
			PercentComplete:  s.PercentComplete,
			PlannedUsage:     s.PlannedUsage,
			LaborVariance:    s.LaborVariance,
			VariancePercent:  s.VariancePercent,
			Status:           s.Status,
			ProjectedTotal:   s.ProjectedTotal,
			ProjectedOverrun: s.ProjectedOverrun,
			Explanation:      s.Explanation,
		},
	}
}

func toVarianceResponse(v variance.Variance) VarianceResponse {
	return VarianceResponse{
		PlannedLabor:     v.PlannedLabor,
		LaborVariance:    v.LaborVariance,
		VariancePercent:  v.VariancePercent,
		Status:           v.Status,
		ProjectedTotal:   v.ProjectedTotal,
		ProjectedOverrun: v.ProjectedOverrun,
		Explanation:      v.Explanation,
	}
}

func toUpdateResponse(week int, u types.WeeklyUpdate) UpdateResponse {
	return UpdateResponse{
		Week:            week,
		ActualHours:     u.ActualHours,
		PercentComplete: u.PercentComplete,
		CreatedAt:       formatTime(u.CreatedAt),
	}
}
