package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/robert1948/localstorm-sub001/internal/alerting"
)

// WebhookAdapter POSTs the payload as JSON to a configured endpoint with
// optional extra headers. The HTTP client carries no timeout of its own;
// the dispatcher's per-channel context deadline bounds each request.
type WebhookAdapter struct {
	name    string
	url     string
	headers map[string]string
	client  *http.Client
}

// NewWebhookAdapter creates a webhook adapter for the given endpoint.
func NewWebhookAdapter(name, url string, headers map[string]string) *WebhookAdapter {
	return &WebhookAdapter{
		name:    name,
		url:     url,
		headers: headers,
		client:  &http.Client{},
	}
}

func (a *WebhookAdapter) Name() string { return a.name }

// Send delivers the payload. Any non-2xx response is a delivery failure.
func (a *WebhookAdapter) Send(ctx context.Context, p *alerting.Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range a.headers {
		req.Header.Set(k, v)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
