package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"journal-backend/internal/domain/job"
	"journal-backend/internal/pkg/config"
)

const maxReportedErrors = 10

// Notifier posts job summaries to a Slack incoming webhook. Delivery is
// best-effort: a failed post is logged and dropped, never retried and never
// surfaced to the job itself.
type Notifier struct {
	webhookURL string
	channel    string
	client     *http.Client
}

func NewNotifier(cfg config.SlackConfig) *Notifier {
	return &Notifier{
		webhookURL: cfg.JobReportWebhookURL,
		channel:    cfg.Channel,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookMessage struct {
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
}

func (n *Notifier) ReportCompleted(ctx context.Context, result job.PageResult) {
	var b strings.Builder
	fmt.Fprintf(&b, ":white_check_mark: `%s` batch %d finished: %d succeeded, %d skipped, %d failed",
		result.Kind, result.BatchNumber, result.Succeeded, result.Skipped, result.Failed)
	if result.HasNext() {
		b.WriteString(" (chain continues)")
	}
	if len(result.Errors) > 0 {
		fmt.Fprintf(&b, "\nerrors (%d total):", len(result.Errors))
		for i, itemErr := range result.Errors {
			if i == maxReportedErrors {
				fmt.Fprintf(&b, "\n... and %d more", len(result.Errors)-maxReportedErrors)
				break
			}
			fmt.Fprintf(&b, "\n- %s", itemErr.String())
		}
	}
	n.post(ctx, b.String())
}

func (n *Notifier) ReportFailed(ctx context.Context, kind job.Kind, batchNumber int, err error) {
	n.post(ctx, fmt.Sprintf(":x: `%s` batch %d failed: %s", kind, batchNumber, err.Error()))
}

func (n *Notifier) post(ctx context.Context, text string) {
	if n.webhookURL == "" {
		return
	}

	body, err := json.Marshal(webhookMessage{Channel: n.channel, Text: text})
	if err != nil {
		slog.Warn("failed to marshal slack message", "error", err.Error())
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		slog.Warn("failed to build slack request", "error", err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		slog.Warn("failed to post slack report", "error", err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Warn("slack report rejected", "status", resp.StatusCode, "body", string(respBody))
	}
}
