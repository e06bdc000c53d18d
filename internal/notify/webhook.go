// Package notify provides webhook announcements for gamification events.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/crithinklab/crithink/internal/config"
	"github.com/crithinklab/crithink/internal/models"
	"github.com/crithinklab/crithink/pkg/logger"
)

// Client posts announcements to a configured incoming webhook.
type Client struct {
	webhookURL string
	channel    string
	enabled    bool
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a new webhook client.
func NewClient(cfg *config.NotificationsConfig, log *logger.Logger) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		enabled:    cfg.Enabled,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// Message represents a webhook message payload.
type Message struct {
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

// AnnounceBadge posts a new-badge announcement. Disabled clients no-op.
func (c *Client) AnnounceBadge(ctx context.Context, userID uint, badge *models.Badge) error {
	title := badge.Title
	if title == "" {
		title = badge.Name
	}
	text := fmt.Sprintf("User %d earned the **%s** badge! %s", userID, title, badge.Description)
	return c.send(ctx, &Message{Text: text, IconURL: badge.ImageRef})
}

// AnnounceDigest posts a summary of recent badge awards.
func (c *Client) AnnounceDigest(ctx context.Context, awards []models.BadgeAward) error {
	if len(awards) == 0 {
		return nil
	}
	text := fmt.Sprintf("%d badges were earned in the last day:\n", len(awards))
	for _, a := range awards {
		text += fmt.Sprintf("- %s earned %s\n", a.User.Username, a.Badge.Name)
	}
	return c.send(ctx, &Message{Text: text})
}

func (c *Client) send(ctx context.Context, msg *Message) error {
	if !c.enabled {
		c.log.Debug().Msg("Notifications are disabled, skipping message")
		return nil
	}

	if msg.Channel == "" {
		msg.Channel = c.channel
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
