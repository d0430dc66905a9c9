// Package publish executes queued schedules against a platform
// connector and records the outcome. Connector failures never escape the
// dispatcher; every attempt ends in exactly one Post and a terminal
// schedule/asset state.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/viral-factory/internal/types"
)

// ConnectorResult is the outcome of one connector invocation.
type ConnectorResult struct {
	Success     bool
	ExternalID  string
	RawResponse map[string]any
}

// Connector publishes one payload to a platform.
type Connector interface {
	Publish(ctx context.Context, platform types.Platform, payload types.Payload) (*ConnectorResult, error)
}

// MockConnector simulates a successful publish after a fixed delay. It
// backs MOCK mode and the non-production fallback.
type MockConnector struct {
	Delay time.Duration
	now   func() time.Time
}

// NewMockConnector builds a mock connector with the given artificial
// delay.
func NewMockConnector(delay time.Duration) *MockConnector {
	return &MockConnector{Delay: delay, now: time.Now}
}

// Publish always succeeds with a generated external id.
func (m *MockConnector) Publish(ctx context.Context, platform types.Platform, payload types.Payload) (*ConnectorResult, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	externalID := fmt.Sprintf("mock_%s_%d", strings.ToLower(string(platform)), m.now().UnixMilli())
	return &ConnectorResult{
		Success:    true,
		ExternalID: externalID,
		RawResponse: map[string]any{
			"mock":       true,
			"platform":   string(platform),
			"externalId": externalID,
		},
	}, nil
}

// WebhookConnector relays publishes as a generic POST to a configured
// endpoint. Any non-error HTTP response counts as success; the external
// id is taken from the response body when present.
type WebhookConnector struct {
	url    string
	client *http.Client
}

// NewWebhookConnector builds a webhook connector for url.
func NewWebhookConnector(url string) *WebhookConnector {
	return &WebhookConnector{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Publish posts {platform, payload} to the webhook.
func (w *WebhookConnector) Publish(ctx context.Context, platform types.Platform, payload types.Payload) (*ConnectorResult, error) {
	body, err := json.Marshal(map[string]any{
		"platform": string(platform),
		"payload":  payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize webhook body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	raw := map[string]any{"status": resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var parsed map[string]any
	if json.Unmarshal(data, &parsed) == nil {
		raw["body"] = parsed
	}

	if resp.StatusCode >= 400 {
		return &ConnectorResult{Success: false, RawResponse: raw}, nil
	}

	externalID, _ := parsed["externalId"].(string)
	if externalID == "" {
		externalID = fmt.Sprintf("webhook_%s_%d", strings.ToLower(string(platform)), time.Now().UnixMilli())
	}
	return &ConnectorResult{Success: true, ExternalID: externalID, RawResponse: raw}, nil
}
