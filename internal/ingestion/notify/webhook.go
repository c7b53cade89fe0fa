// Package notify pushes import run summaries to operator webhooks.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"spaceledger/internal/ingestion/application"
)

// WebhookNotifier posts run summaries to a chat webhook.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

type webhookPayload struct {
	MsgType string      `json:"msgtype"`
	Text    webhookText `json:"text"`
}

type webhookText struct {
	Content string `json:"content"`
}

// NewWebhookNotifier constructs a notifier.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// NotifyRun posts one run summary.
func (n *WebhookNotifier) NotifyRun(ctx context.Context, report application.Report) error {
	if n == nil || n.url == "" {
		return errors.New("webhook notifier: empty url")
	}
	payload := webhookPayload{
		MsgType: "text",
		Text:    webhookText{Content: formatRunMessage(report)},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("webhook notifier: non-2xx")
	}
	return nil
}

func formatRunMessage(report application.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Import %s]\n", report.Outcome)
	fmt.Fprintf(&b, "Source: %s\n", report.Source)
	if report.FileName != "" {
		fmt.Fprintf(&b, "File: %s\n", report.FileName)
	}
	fmt.Fprintf(&b, "Rows: %d parsed, %d inserted, %d duplicates, %d unmapped, %d errors\n",
		report.RowsParsed, report.Inserted, report.Skipped, report.Unmapped, len(report.Errors))
	if len(report.UnmappedNames) > 0 {
		fmt.Fprintf(&b, "Unmapped: %s\n", strings.Join(report.UnmappedNames, "、"))
	}
	if report.Duration > 0 {
		fmt.Fprintf(&b, "Duration: %s\n", report.Duration.Round(time.Millisecond))
	}
	return strings.TrimSpace(b.String())
}
