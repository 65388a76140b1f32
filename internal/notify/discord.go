package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/donaldgifford/pricelens/internal/metrics"
)

const (
	colorGreen  = 0x2ECC71 // at or below target
	colorYellow = 0xF1C40F // dropped but above target
)

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Thumbnail   *discordThumbnail   `json:"thumbnail,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordThumbnail struct {
	URL string `json:"url"`
}

// SendAlert sends a single price drop alert as a Discord embed.
func (d *DiscordNotifier) SendAlert(ctx context.Context, alert *PriceAlert) error {
	payload := discordWebhookPayload{
		Embeds: []discordEmbed{buildEmbed(alert)},
	}
	if err := d.post(ctx, payload); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		return err
	}
	return nil
}

func buildEmbed(alert *PriceAlert) discordEmbed {
	embed := discordEmbed{
		Title: fmt.Sprintf("Price Drop: %s", alert.ItemTitle),
		URL:   alert.ProductURL,
		Color: alertColor(alert),
		Fields: []discordEmbedField{
			{Name: "Current Price", Value: formatPrice(alert.CurrentPrice), Inline: true},
			{Name: "Target Price", Value: formatPrice(alert.TargetPrice), Inline: true},
			{Name: "Original Price", Value: formatPrice(alert.OriginalPrice), Inline: true},
			{Name: "Lowest Seen", Value: formatPrice(alert.LowestPrice), Inline: true},
			{Name: "Store", Value: alert.Store, Inline: true},
		},
	}

	if alert.ImageURL != "" {
		embed.Thumbnail = &discordThumbnail{URL: alert.ImageURL}
	}

	return embed
}

func alertColor(alert *PriceAlert) int {
	if alert.TargetPrice > 0 && alert.CurrentPrice <= alert.TargetPrice {
		return colorGreen
	}
	return colorYellow
}

func formatPrice(p float64) string {
	return fmt.Sprintf("₹%.2f", p)
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
