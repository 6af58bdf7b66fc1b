package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Cephu/internal/domain/models"
	xhttp "Cephu/pkg/http"
)

// Webhook POSTs the notification as JSON.
type Webhook struct {
	url      string
	client   *xhttp.Client
	attempts int
	backoff  time.Duration
}

// WebhookOption configures Webhook.
type WebhookOption func(*Webhook)

func WithRetries(n int) WebhookOption {
	return func(w *Webhook) {
		if n >= 0 {
			w.attempts = n + 1
		}
	}
}

func WithBackoff(d time.Duration) WebhookOption {
	return func(w *Webhook) { w.backoff = d }
}

func WithClient(c *xhttp.Client) WebhookOption {
	return func(w *Webhook) { w.client = c }
}

func NewWebhook(url string, timeout time.Duration, opts ...WebhookOption) *Webhook {
	w := &Webhook{
		url:      url,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
		attempts: 1,
		backoff:  200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Notify retries transport errors and 5xx with linear backoff. 4xx fails at once.
func (w *Webhook) Notify(ctx context.Context, n *models.Notification) error {
	var err error
	for i := 1; i <= w.attempts; i++ {
		err = w.post(ctx, n)
		if err == nil || !retryable(err) || i == w.attempts {
			break
		}
		select {
		case <-time.After(time.Duration(i) * w.backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (w *Webhook) post(ctx context.Context, n *models.Notification) error {
	err := w.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     w.url,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    n,
	}, nil)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	return nil
}

func retryable(err error) bool {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return true
}
