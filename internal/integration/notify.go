package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Notifier delivers an SMS or email.
type Notifier interface {
	Send(ctx context.Context, msg domain.MessagePayload) error
}

// NewNotifier returns the provider named by kind for channel ("sms" or
// "email"). kind is log, noop, fail, webhook, or an http(s) URL. The
// webhook provider reads PRIMACY_<CHANNEL>_WEBHOOK_URL and
// PRIMACY_<CHANNEL>_WEBHOOK_TOKEN and falls back to log when unset.
func NewNotifier(kind, channel string) Notifier {
	switch kind {
	case "", "stub", "log":
		return logNotifier{channel: channel}
	case "noop":
		return noopNotifier{}
	case "fail":
		return failNotifier{}
	case "webhook":
		url := os.Getenv("PRIMACY_" + strings.ToUpper(channel) + "_WEBHOOK_URL")
		token := os.Getenv("PRIMACY_" + strings.ToUpper(channel) + "_WEBHOOK_TOKEN")
		if url == "" {
			return logNotifier{channel: channel}
		}
		return newWebhookNotifier(channel, url, token)
	default:
		if strings.HasPrefix(kind, "http://") || strings.HasPrefix(kind, "https://") {
			return newWebhookNotifier(channel, kind, "")
		}
		return logNotifier{channel: channel}
	}
}

type logNotifier struct {
	channel string
}

func (n logNotifier) Send(ctx context.Context, msg domain.MessagePayload) error {
	slog.Info("notification",
		"channel", n.channel,
		"recipient", msg.Recipient,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Send(ctx context.Context, msg domain.MessagePayload) error {
	return nil
}

type failNotifier struct{}

func (failNotifier) Send(ctx context.Context, msg domain.MessagePayload) error {
	return errors.New("provider failure")
}

type webhookNotifier struct {
	channel string
	url     string
	token   string
	client  *http.Client
}

func newWebhookNotifier(channel, url, token string) webhookNotifier {
	return webhookNotifier{
		channel: channel,
		url:     url,
		token:   token,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   5 * time.Second,
		},
	}
}

func (n webhookNotifier) Send(ctx context.Context, msg domain.MessagePayload) error {
	body, err := json.Marshal(map[string]string{
		"channel":   n.channel,
		"recipient": msg.Recipient,
		"subject":   msg.Subject,
		"message":   msg.Body,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("provider rejected request")
	}
	return nil
}
