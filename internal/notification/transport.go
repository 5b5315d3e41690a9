package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"raceday/pkg/email"
	"raceday/pkg/platform/sentinel"
)

// maxErrorBody caps how much of a provider error response is kept.
const maxErrorBody = 512

// Transport delivers one email. Implementations must honor ctx cancellation.
type Transport interface {
	Send(ctx context.Context, msg email.Message) error
}

// APITransport posts messages to a Resend-compatible HTTP API.
type APITransport struct {
	url    string
	apiKey string
	client *http.Client
}

// NewAPITransport creates a transport that POSTs JSON to url with apiKey as
// bearer token.
func NewAPITransport(url, apiKey string, client *http.Client) *APITransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &APITransport{url: url, apiKey: apiKey, client: client}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html,omitempty"`
}

// Send returns an error wrapping sentinel.ErrUnavailable when the provider
// rejects the credentials, so callers can tell misconfiguration from outages.
func (t *APITransport) Send(ctx context.Context, msg email.Message) error {
	if t.apiKey == "" || t.url == "" {
		return fmt.Errorf("email api not configured: %w", sentinel.ErrUnavailable)
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("email not sendable: %w", err)
	}

	body, err := json.Marshal(sendRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	err = fmt.Errorf("email api returned %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err)
	}
	return err
}
