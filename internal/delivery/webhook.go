package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/contractor-leads/internal/leads"
	"github.com/wolfman30/contractor-leads/pkg/logging"
)

var tracer = otel.Tracer("contractor/delivery")

const (
	// HeaderSource names the site a payload came from.
	HeaderSource = "X-Lead-Source"
	// HeaderFormVersion carries meta.formVersion.
	HeaderFormVersion = "X-Form-Version"

	maxResponseBody = 64 << 10
)

// WebhookConfig configures one webhook tier.
type WebhookConfig struct {
	Name string
	URL  string
	// Client defaults to an http.Client with Timeout; zero Timeout leaves
	// the transport defaults in charge.
	Client  *http.Client
	Timeout time.Duration
}

// WebhookStrategy POSTs the payload as JSON to a single endpoint.
type WebhookStrategy struct {
	name   string
	url    string
	client *http.Client
	logger *logging.Logger
}

// NewWebhookStrategy creates a webhook tier.
func NewWebhookStrategy(cfg WebhookConfig, logger *logging.Logger) *WebhookStrategy {
	if logger == nil {
		logger = logging.Default()
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	name := cfg.Name
	if name == "" {
		name = "webhook"
	}
	return &WebhookStrategy{name: name, url: cfg.URL, client: client, logger: logger}
}

func (w *WebhookStrategy) Name() string { return w.name }

// Attempt sends the payload. Any 2xx counts as delivered; the response body
// may carry an id that is echoed back as the remote id.
func (w *WebhookStrategy) Attempt(ctx context.Context, payload *leads.Payload) Attempt {
	ctx, span := tracer.Start(ctx, "delivery.webhook", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("delivery.strategy", w.name),
		attribute.String("lead.service_id", payload.Service.ID),
	)

	start := time.Now()
	attempt := Attempt{Strategy: w.name}

	remoteID, err := w.post(ctx, payload)
	if err != nil {
		span.RecordError(err)
		w.logger.Warn("webhook delivery failed", "strategy", w.name, "service_id", payload.Service.ID, "error", err)
		attempt.Err = err
		attempt.Duration = time.Since(start)
		return attempt
	}

	attempt.Success = true
	attempt.Message = "Form submitted successfully"
	attempt.RemoteID = remoteID
	attempt.Duration = time.Since(start)
	span.SetAttributes(attribute.String("delivery.remote_id", remoteID))
	w.logger.Info("webhook delivery succeeded", "strategy", w.name, "service_id", payload.Service.ID, "remote_id", remoteID)
	return attempt
}

func (w *WebhookStrategy) post(ctx context.Context, payload *leads.Payload) (string, error) {
	if strings.TrimSpace(w.url) == "" {
		return "", fmt.Errorf("delivery: %s has no url", w.name)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("delivery: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("delivery: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderSource, payload.Meta.Source)
	req.Header.Set(HeaderFormVersion, payload.Meta.FormVersion)

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("delivery: %s request failed: %w", w.name, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Endpoint: w.name, StatusCode: resp.StatusCode, Body: truncate(string(respBody), 200)}
	}
	return parseRemoteID(respBody), nil
}

// parseRemoteID pulls an identifier out of a JSON response, tolerating
// empty or non-JSON bodies.
func parseRemoteID(body []byte) string {
	var resp struct {
		ID        string `json:"id"`
		WebhookID string `json:"webhookId"`
		RequestID string `json:"request_id"`
	}
	if len(bytes.TrimSpace(body)) == 0 || json.Unmarshal(body, &resp) != nil {
		return ""
	}
	for _, id := range []string{resp.WebhookID, resp.ID, resp.RequestID} {
		if id != "" {
			return id
		}
	}
	return ""
}

// truncate keeps at most n bytes of s without splitting a rune.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
