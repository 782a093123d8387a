package announcer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const webhookAnnouncePath = "/announcements"

type Option func(*webhookAnnouncer)

type Service interface {
	Do(ctx context.Context, action, mailbox string, count int) error
}

func WithWebhookURL(webhookURL string) Option {
	return func(a *webhookAnnouncer) {
		a.baseURL = strings.TrimSpace(webhookURL)
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(a *webhookAnnouncer) {
		if client != nil {
			a.client = client
		}
	}
}

type webhookAnnouncer struct {
	baseURL string
	client  *http.Client
}

func New(opts ...Option) *webhookAnnouncer {
	announcer := &webhookAnnouncer{client: &http.Client{Timeout: 10 * time.Second}}
	for _, opt := range opts {
		opt(announcer)
	}
	return announcer
}

// Do posts a one-line summary of a finished mutation. Without a webhook URL
// it does nothing.
func (a *webhookAnnouncer) Do(ctx context.Context, action, mailbox string, count int) error {
	if a.baseURL == "" {
		return nil
	}
	payload, err := json.Marshal(map[string]string{
		"message": fmt.Sprintf("%s: mailbox %q matched %d messages", action, mailbox, count),
	})
	if err != nil {
		return err
	}

	url := strings.TrimRight(a.baseURL, "/") + webhookAnnouncePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build announcement")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "post announcement")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("announcement webhook returned status %s", resp.Status)
	}
	return nil
}
