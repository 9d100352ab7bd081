package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultTimeout    = 20 * time.Second
	DefaultRetryAfter = 2 * time.Second
	MinRetryAfter     = 1 * time.Second
)

// Notifier delivers one item to the chat destination.
type Notifier interface {
	Notify(ctx context.Context, title, link string) error
}

var _ Notifier = (*WebhookNotifier)(nil)

// StatusError is returned when the webhook answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("webhook returned HTTP %d: %s", e.StatusCode, e.Body)
}

type rateLimitedError struct {
	StatusError
	retryAfter time.Duration
}

type message struct {
	Text string `json:"text"`
}

// WebhookNotifier posts Slack-style {"text": ...} messages. A 429 answer is
// retried once after the server's Retry-After delay.
type WebhookNotifier struct {
	webhookURL string
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	timer      backoff.Timer
}

func NewWebhookNotifier(webhookURL string, httpClient *http.Client, userAgent string, timeout time.Duration) *WebhookNotifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &WebhookNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func FormatMessage(title, link string) string {
	return title + "\n" + link
}

func (n *WebhookNotifier) Notify(ctx context.Context, title, link string) error {
	body, err := json.Marshal(message{Text: FormatMessage(title, link)})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	delay := &retryAfterBackOff{}
	policy := backoff.WithContext(backoff.WithMaxRetries(delay, 1), ctx)

	operation := func() error {
		err := n.post(ctx, body)
		var limited *rateLimitedError
		if errors.As(err, &limited) {
			delay.next = limited.retryAfter
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	notifyRetry := func(err error, wait time.Duration) {
		slog.Warn("Webhook rate limited, retrying", "wait", wait, "title", title)
	}

	err = backoff.RetryNotifyWithTimer(operation, policy, notifyRetry, n.timer)
	var limited *rateLimitedError
	if errors.As(err, &limited) {
		return &limited.StatusError
	}
	return err
}

func (n *WebhookNotifier) post(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to webhook: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	if resp.StatusCode == http.StatusTooManyRequests {
		return &rateLimitedError{
			StatusError: StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))},
			retryAfter:  parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	return nil
}

// parseRetryAfter reads an integer seconds value. Missing or unreadable
// headers fall back to DefaultRetryAfter; the result is never below
// MinRetryAfter.
func parseRetryAfter(header string) time.Duration {
	wait := DefaultRetryAfter
	if seconds, err := strconv.Atoi(strings.TrimSpace(header)); err == nil {
		wait = time.Duration(seconds) * time.Second
	}
	return max(wait, MinRetryAfter)
}

// retryAfterBackOff hands back whatever delay the last 429 asked for.
type retryAfterBackOff struct {
	next time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	return b.next
}

func (b *retryAfterBackOff) Reset() {}
