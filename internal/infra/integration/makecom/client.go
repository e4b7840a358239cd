package makecom

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/xavierca1/outreach-dashboard/internal/entity"
)

var ErrNotConfigured = eris.New("makecom: scenario webhook url not configured")

// TriggerPayload is what the scenario receives when the daily run starts.
type TriggerPayload struct {
	Trigger     string            `json:"trigger"`
	TriggeredAt time.Time         `json:"triggeredAt"`
	Counts      entity.LeadCounts `json:"counts"`
	DailyQuota  int               `json:"dailyQuota"`
}

// Client starts the Make.com scenario that runs the Instagram scraping agent.
type Client struct {
	HTTPClient *http.Client
	WebhookURL string
	APIKey     string
	Log        *zap.Logger
}

func NewClient(webhookURL, apiKey string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		WebhookURL: webhookURL,
		APIKey:     apiKey,
		Log:        log,
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.WebhookURL != ""
}

func (c *Client) TriggerScenario(ctx context.Context, p TriggerPayload) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "makecom: encode trigger")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "makecom: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("x-make-apikey", c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "makecom: trigger scenario")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return eris.Errorf("makecom: trigger scenario: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	c.Log.Info("make.com scenario triggered",
		zap.String("trigger", p.Trigger),
		zap.Int("warm_leads", p.Counts.WarmLead),
		zap.Int("status", resp.StatusCode),
	)
	return nil
}
