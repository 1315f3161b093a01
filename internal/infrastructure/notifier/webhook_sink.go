package notifier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/esports-match-sync/internal/domain/notification"
	"github.com/riskibarqy/esports-match-sync/internal/platform/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type WebhookSinkConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// WebhookSink posts events to a push gateway. The event id is forwarded as an idempotency key.
type WebhookSink struct {
	client *http.Client
	url    string
	token  string
	logger *logging.Logger
}

func NewWebhookSink(cfg WebhookSinkConfig, logger *logging.Logger) (*WebhookSink, error) {
	target, err := validateHTTPURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_WEBHOOK_URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &WebhookSink{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		url:    target,
		token:  strings.TrimSpace(cfg.Token),
		logger: logger,
	}, nil
}

func (s *WebhookSink) Publish(ctx context.Context, event notification.Event) error {
	body, err := sonic.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}
	curlPreview := buildCurlPreview(s.url, event.ID, truncateForLog(string(body), 4096), s.token != "")

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("notify.webhook_url", s.url),
			attribute.String("notify.match_id", event.MatchID),
			attribute.String("notify.category", string(event.Category)),
		)
	}
	s.logger.DebugContext(ctx, "notification webhook request", "match_id", event.MatchID, "curl_preview", curlPreview)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if event.ID != "" {
		req.Header.Set("Idempotency-Key", event.ID)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post notification webhook match_id=%s: %w", event.MatchID, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf(
			"post notification webhook status=%d match_id=%s body=%s",
			resp.StatusCode,
			event.MatchID,
			strings.TrimSpace(string(raw)),
		)
	}
	return nil
}

func validateHTTPURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", fmt.Errorf("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", candidate, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", fmt.Errorf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func buildCurlPreview(target, eventID, body string, withToken bool) string {
	parts := []string{
		"curl -X POST",
		shellQuote(target),
		"-H", shellQuote("Content-Type: application/json"),
	}
	if eventID != "" {
		parts = append(parts, "-H", shellQuote("Idempotency-Key: "+eventID))
	}
	if withToken {
		parts = append(parts, "-H", shellQuote("Authorization: Bearer ***"))
	}
	parts = append(parts, "-d", shellQuote(body))
	return strings.Join(parts, " ")
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}
