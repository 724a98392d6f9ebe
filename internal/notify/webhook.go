//nolint:tagliatelle // superior snake-case yo.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/raid-crawler/internal/version"
)

// DefaultSpriteBaseURL is prefixed to sprite names to build thumbnail URLs.
const DefaultSpriteBaseURL = "https://raw.githubusercontent.com/kwsch/PKHeX/master/PKHeX.Drawing.PokeSprite/Resources/img/Artwork%20Pokemon%20Sprites/a"

// WebhookConfig configures the webhook sink.
type WebhookConfig struct {
	URLs          []string
	Content       string // prepended text, e.g. a role mention
	SpriteBaseURL string
	Timeout       time.Duration
}

// WebhookSink posts Discord-compatible embeds.
type WebhookSink struct {
	log    logrus.FieldLogger
	cfg    WebhookConfig
	client *http.Client
}

var _ Sink = (*WebhookSink)(nil)

// NewWebhookSink creates a webhook sink.
func NewWebhookSink(log logrus.FieldLogger, cfg WebhookConfig) *WebhookSink {
	if cfg.SpriteBaseURL == "" {
		cfg.SpriteBaseURL = DefaultSpriteBaseURL
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &WebhookSink{
		log:    log.WithField("component", "webhook"),
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type webhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []webhookEmbed `json:"embeds"`
}

type webhookEmbed struct {
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Color       int               `json:"color"`
	Thumbnail   *webhookThumbnail `json:"thumbnail,omitempty"`
	Fields      []webhookField    `json:"fields,omitempty"`
}

type webhookThumbnail struct {
	URL string `json:"url"`
}

type webhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Send implements Sink. Every URL is attempted; failures are joined.
func (w *WebhookSink) Send(ctx context.Context, n Notification) error {
	if len(w.cfg.URLs) == 0 {
		return nil
	}

	body, err := json.Marshal(w.payload(n))
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	var errs []error

	for _, url := range w.cfg.URLs {
		if err := w.post(ctx, url, body); err != nil {
			webhookFailures.Inc()
			errs = append(errs, err)

			continue
		}

		webhookSent.Inc()
	}

	return errors.Join(errs...)
}

func (w *WebhookSink) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func (w *WebhookSink) payload(n Notification) webhookPayload {
	color, err := strconv.ParseInt(n.Color, 16, 32)
	if err != nil {
		color = 0xFFFFFF
	}

	shiny := "No"
	if n.Shiny {
		shiny = "Yes"
	}

	rewards := make([]string, 0, len(n.Rewards))
	for _, r := range n.Rewards {
		rewards = append(rewards, fmt.Sprintf("%d x%d", r.ItemID, r.Quantity))
	}

	rewardText := "None"
	if len(rewards) > 0 {
		rewardText = strings.Join(rewards, ", ")
	}

	return webhookPayload{
		Content: w.cfg.Content,
		Embeds: []webhookEmbed{{
			Title:       fmt.Sprintf("%s matched", n.Filter),
			Description: fmt.Sprintf("Found after %s", n.Elapsed),
			Color:       int(color),
			Thumbnail:   &webhookThumbnail{URL: w.cfg.SpriteBaseURL + n.Sprite + ".png"},
			Fields: []webhookField{
				{Name: "Species", Value: strconv.Itoa(int(n.Encounter.Species)), Inline: true},
				{Name: "Stars", Value: strconv.Itoa(n.Stars), Inline: true},
				{Name: "Tera Type", Value: n.Raid.TeraType.String(), Inline: true},
				{Name: "Shiny", Value: shiny, Inline: true},
				{Name: "Region", Value: n.Raid.Region.String(), Inline: true},
				{Name: "Seed", Value: fmt.Sprintf("%08X", n.Raid.Seed), Inline: true},
				{Name: "Rewards", Value: rewardText},
			},
		}},
	}
}
