package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"Cephu/internal/domain/models"
	domrepo "Cephu/internal/domain/repository"
	applogger "Cephu/pkg/logger"
)

// Multi fans a notification out to every channel and joins their errors.
type Multi struct {
	channels []domrepo.Notifier
	l        *applogger.Logger
}

func NewMulti(channels ...domrepo.Notifier) *Multi {
	return &Multi{channels: channels}
}

// SetLogger injects a structured logger.
func (m *Multi) SetLogger(l *applogger.Logger) { m.l = l }

// Len reports how many channels are configured.
func (m *Multi) Len() int { return len(m.channels) }

var _ domrepo.Notifier = (*Multi)(nil)

func (m *Multi) Notify(ctx context.Context, n *models.Notification) error {
	var errs []error
	for _, ch := range m.channels {
		if err := ch.Notify(ctx, n); err != nil {
			if m.l != nil {
				m.l.Warn("notification failed",
					applogger.String("channel", fmt.Sprintf("%T", ch)),
					applogger.String("symbol", n.Symbol),
					applogger.Error(err),
				)
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Format renders n as the short HTML message used by chat channels.
func Format(n *models.Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b> %s\n", html.EscapeString(n.Title), html.EscapeString(n.Symbol))
	if n.Text != "" {
		b.WriteString(html.EscapeString(n.Text))
		b.WriteString("\n")
	}
	if n.Location != "" {
		fmt.Fprintf(&b, "%s\n", html.EscapeString(n.Location))
	}
	b.WriteString(n.At.UTC().Format("2006-01-02 15:04 MST"))
	return b.String()
}
