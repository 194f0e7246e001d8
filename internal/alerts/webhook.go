package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labortrack/labortrack/internal/config"
	"github.com/labortrack/labortrack/internal/variance"
)

// deliver sends a to every configured webhook. In demo mode, or when no
// webhook resolves to a URL, the report is logged as a preview instead.
// Errors are logged but do not affect the caller.
func (e *Engine) deliver(a *Alert) {
	e.mu.Lock()
	webhooks, rc := e.webhooks, e.report
	e.mu.Unlock()

	if rc.DemoMode {
		preview(a, rc)
		return
	}

	sent := 0
	for _, wh := range webhooks {
		url := wh.URL()
		if url == "" {
			continue
		}

		var err error
		switch wh.Type {
		case "slack":
			err = e.sendSlack(url, a)
		case "teams":
			err = e.sendTeams(url, a)
		case "http":
			err = e.sendHTTP(url, a, rc.Recipient)
		default:
			slog.Warn("alerts: unknown webhook type, skipping", "type", wh.Type)
			continue
		}
		sent++

		if err != nil {
			slog.Error("alerts: webhook delivery failed",
				"type", wh.Type,
				"job", a.JobID,
				"err", err,
			)
		} else {
			slog.Debug("alerts: webhook delivered",
				"type", wh.Type,
				"job", a.JobID,
				"state", a.State,
			)
		}
	}

	if sent == 0 {
		slog.Warn("alerts: falling back to preview", "job", a.JobID, "err", errNoTargets)
		preview(a, rc)
	}
}

// preview logs the report that would have been delivered.
func preview(a *Alert, rc config.ReportConfig) {
	slog.Info("alerts: report preview (not sent)",
		"from", rc.From,
		"to", rc.Recipient,
		"subject", a.Subject,
		"state", a.State,
		"body", a.Body,
	)
}

func (e *Engine) sendSlack(url string, a *Alert) error {
	body, _ := json.Marshal(map[string]string{
		"text": fmt.Sprintf("*%s* %s\n%s", stateLabel(a), a.Subject, a.Body),
	})
	return e.post(url, body)
}

func (e *Engine) sendTeams(url string, a *Alert) error {
	payload := map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": statusColor(a.Status),
		"summary":    a.Subject,
		"title":      a.Subject,
		"text":       a.Body,
	}
	body, _ := json.Marshal(payload)
	return e.post(url, body)
}

func (e *Engine) sendHTTP(url string, a *Alert, recipient string) error {
	body, _ := json.Marshal(map[string]interface{}{
		"alert":     a,
		"recipient": recipient,
	})
	return e.post(url, body)
}

func (e *Engine) post(url string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func stateLabel(a *Alert) string {
	if a.State == StateResolved {
		return "[RESOLVED]"
	}
	return "[" + string(a.Status) + "]"
}

func statusColor(s variance.Status) string {
	switch s {
	case variance.StatusRed:
		return "FF4F6A"
	case variance.StatusYellow:
		return "FFAB40"
	default:
		return "2ECC71"
	}
}
