// Package workflow triggers the external scraping automation through its
// webhooks and turns the responses into location rows.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"leadgen-dashboard/internal/apperrors"
	"leadgen-dashboard/internal/config"
	"leadgen-dashboard/internal/logger"
	"leadgen-dashboard/internal/metrics"
	"leadgen-dashboard/internal/models"
	wire "leadgen-dashboard/pkg/models"
)

const actionContextAreas = "context_areas"

type Client struct {
	cfg  config.WebhookConfig
	http *http.Client
	log  logger.Logger
	now  func() time.Time
}

func NewClient(cfg config.WebhookConfig, log logger.Logger) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
		now:  time.Now,
	}
}

// PopulateCities asks the automation to fill in the cities of a country and
// returns them. An empty result is not an error here.
func (c *Client) PopulateCities(ctx context.Context, req wire.PopulateCitiesRequest) ([]models.City, error) {
	req.Action = wire.ActionPopulateCities
	if req.TargetKeywords == nil {
		req.TargetKeywords = []string{}
	}

	body, err := c.post(ctx, req.Action, c.cfg.Cities, req)
	if err != nil {
		return nil, err
	}
	cities, err := NormalizeCities(req.Action, body)
	if err != nil {
		metrics.WebhookRequests.WithLabelValues(req.Action, metrics.OutcomeError).Inc()
		return nil, err
	}
	c.record(req.Action, len(cities))
	return cities, nil
}

func (c *Client) PopulateAreas(ctx context.Context, req wire.PopulateAreasRequest) ([]models.Area, error) {
	req.Action = wire.ActionPopulateAreas

	body, err := c.post(ctx, req.Action, c.cfg.Areas, req)
	if err != nil {
		return nil, err
	}
	areas, err := NormalizeAreas(req.Action, body, req.CityID, c.now())
	if err != nil {
		metrics.WebhookRequests.WithLabelValues(req.Action, metrics.OutcomeError).Inc()
		return nil, err
	}
	c.record(req.Action, len(areas))
	return areas, nil
}

// GenerateContextAreas asks for areas of a city that match the given keywords.
// The context webhook falls back to the areas webhook when not configured.
func (c *Client) GenerateContextAreas(ctx context.Context, req wire.ContextAreasRequest) ([]models.Area, error) {
	if req.Keywords == nil {
		req.Keywords = []string{}
	}
	url := c.cfg.ContextAreas
	if url == "" {
		url = c.cfg.Areas
	}

	body, err := c.post(ctx, actionContextAreas, url, req)
	if err != nil {
		return nil, err
	}
	areas, err := NormalizeAreas(actionContextAreas, body, 0, c.now())
	if err != nil {
		metrics.WebhookRequests.WithLabelValues(actionContextAreas, metrics.OutcomeError).Inc()
		return nil, err
	}
	c.record(actionContextAreas, len(areas))
	return areas, nil
}

func (c *Client) record(action string, n int) {
	outcome := metrics.OutcomeSuccess
	if n == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.WebhookRequests.WithLabelValues(action, outcome).Inc()
}

func (c *Client) post(ctx context.Context, action, url string, payload interface{}) ([]byte, error) {
	if strings.TrimSpace(url) == "" {
		metrics.WebhookRequests.WithLabelValues(action, metrics.OutcomeError).Inc()
		return nil, apperrors.Config(action, "webhook URL is not configured")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: encoding request: %w", action, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		metrics.WebhookRequests.WithLabelValues(action, metrics.OutcomeError).Inc()
		return nil, apperrors.Config(action, "invalid webhook URL: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.WebhookDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.WebhookRequests.WithLabelValues(action, metrics.OutcomeError).Inc()
		c.log.Warn("webhook request failed", map[string]interface{}{"action": action, "error": err.Error()})
		return nil, apperrors.Network(action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		metrics.WebhookRequests.WithLabelValues(action, metrics.OutcomeError).Inc()
		c.log.Warn("webhook returned error status", map[string]interface{}{"action": action, "status": resp.StatusCode})
		return nil, apperrors.Status(action, resp.StatusCode, strings.TrimSpace(string(rb)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.WebhookRequests.WithLabelValues(action, metrics.OutcomeError).Inc()
		return nil, apperrors.Network(action, err)
	}
	c.log.Debug("webhook responded", map[string]interface{}{
		"action":   action,
		"bytes":    len(body),
		"duration": time.Since(start).String(),
	})
	return body, nil
}
