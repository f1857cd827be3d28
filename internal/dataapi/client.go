package dataapi

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
	"leadgen-dashboard/internal/logger"
	"leadgen-dashboard/internal/metrics"
	"leadgen-dashboard/internal/store"
)

// Client talks to the hosted Postgres REST API at {baseURL}/rest/v1.
type Client struct {
	baseURL string
	key     string
	http    *http.Client
	log     logger.Logger
}

func NewClient(baseURL, key string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// List runs q and decodes the resulting JSON array into out.
func (c *Client) List(ctx context.Context, q *Query, out interface{}) error {
	return c.do(ctx, http.MethodGet, q.Table(), q.Encode(), nil, out)
}

// Insert creates one row and decodes the created representation into out,
// which must be a pointer to a slice.
func (c *Client) Insert(ctx context.Context, table string, row interface{}, out interface{}) error {
	return c.do(ctx, http.MethodPost, table, "", row, out)
}

// Update patches the row with the given id. A patch matching no row returns
// store.ErrNotFound.
func (c *Client) Update(ctx context.Context, table string, id int64, patch interface{}) error {
	var rows []json.RawMessage
	if err := c.do(ctx, http.MethodPatch, table, From(table).Eq("id", id).Encode(), patch, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s %d: %w", table, id, store.ErrNotFound)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, table string, id int64) error {
	var rows []json.RawMessage
	if err := c.do(ctx, http.MethodDelete, table, From(table).Eq("id", id).Encode(), nil, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s %d: %w", table, id, store.ErrNotFound)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, table, rawQuery string, body interface{}, out interface{}) (err error) {
	op := strings.ToLower(method) + " " + table
	defer func() {
		outcome := metrics.OutcomeSuccess
		if err != nil {
			outcome = metrics.OutcomeError
		}
		metrics.DataAPIRequests.WithLabelValues(table, method, outcome).Inc()
	}()

	if c.baseURL == "" || c.key == "" {
		return apperrors.Config(op, "data API URL and key must be configured")
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encoding body: %w", op, err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + "/rest/v1/" + table
	if rawQuery != "" {
		endpoint += "?" + rawQuery
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return apperrors.Config(op, "invalid data API URL: %v", err)
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("data API request failed", map[string]interface{}{"op": op, "error": err.Error()})
		return apperrors.Network(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return apperrors.Status(op, resp.StatusCode, strings.TrimSpace(string(rb)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return apperrors.Shape(op, "decoding response: %v", err)
	}
	return nil
}
