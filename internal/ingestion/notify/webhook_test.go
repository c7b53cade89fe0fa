package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spaceledger/internal/ingestion/application"
)

func TestWebhookNotifierPayload(t *testing.T) {
	payloadCh := make(chan webhookPayload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var payload webhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		payloadCh <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL)
	report := application.Report{
		RunID:         "run-1",
		Source:        "spacee",
		FileName:      "spacee_june.csv",
		Outcome:       "partial",
		RowsParsed:    3,
		Inserted:      1,
		Skipped:       1,
		Unmapped:      1,
		UnmappedNames: []string{"未知のスタジオ"},
		Duration:      1200 * time.Millisecond,
	}
	if err := notifier.NotifyRun(context.Background(), report); err != nil {
		t.Fatalf("notify: %v", err)
	}

	select {
	case payload := <-payloadCh:
		if payload.MsgType != "text" {
			t.Fatalf("expected msgtype text, got %s", payload.MsgType)
		}
		content := payload.Text.Content
		checks := []string{
			"[Import partial]",
			"Source: spacee",
			"File: spacee_june.csv",
			"3 parsed, 1 inserted, 1 duplicates, 1 unmapped, 0 errors",
			"Unmapped: 未知のスタジオ",
		}
		for _, expected := range checks {
			if !strings.Contains(content, expected) {
				t.Fatalf("expected content to include %q, got %s", expected, content)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for webhook payload")
	}
}

func TestWebhookNotifierNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL)
	if err := notifier.NotifyRun(context.Background(), application.Report{Source: "generic"}); err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}

func TestWebhookNotifierEmptyURL(t *testing.T) {
	notifier := NewWebhookNotifier("")
	if err := notifier.NotifyRun(context.Background(), application.Report{Source: "generic"}); err == nil {
		t.Fatal("expected error for empty url")
	}
}
