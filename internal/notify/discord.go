package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Notifier announces a newly published post.
type Notifier interface {
	Published(ctx context.Context, title, link string) error
}

// Discord posts announcements to a Discord webhook.
type Discord struct {
	webhookURL string
	client     *http.Client
}

func NewDiscord(webhookURL string, client *http.Client) *Discord {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Discord{webhookURL: webhookURL, client: client}
}

type webhookPayload struct {
	Content string `json:"content"`
}

// Message is the announcement text.
func Message(title, link string) string {
	return fmt.Sprintf("New Blog Published: **%s**\nRead it here: %s", title, link)
}

func (d *Discord) Published(ctx context.Context, title, link string) error {
	body, err := json.Marshal(webhookPayload{Content: Message(title, link)})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	log.Printf("[notify] discord notification sent for %q", title)
	return nil
}

// Nop drops announcements. Used when no webhook is configured.
type Nop struct{}

func (Nop) Published(context.Context, string, string) error { return nil }

// New returns a Discord notifier, or Nop for an empty webhook URL.
func New(webhookURL string) Notifier {
	if webhookURL == "" {
		return Nop{}
	}
	return NewDiscord(webhookURL, nil)
}
