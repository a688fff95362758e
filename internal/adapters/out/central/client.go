// Package central is the HTTP client for the upstream order-intake system.
package central

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/menu"
	"fulfillment/internal/core/domain/model/relay"
	"fulfillment/internal/pkg/errs"
)

const (
	decisionsPath   = "/api/v1/orders/decisions"
	menuChangesPath = "/api/v1/menu/changes"

	defaultTimeout    = 10 * time.Second
	defaultRetryAfter = time.Minute
	maxErrorBody      = 512
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SubmitDecision posts the decision. Central deduplicates by order number, which is also
// sent as the idempotency key.
func (c *Client) SubmitDecision(ctx context.Context, decision relay.Decision) error {
	return c.post(ctx, decisionsPath, decision.Key(), decision)
}

func (c *Client) SubmitMenuChange(ctx context.Context, change menu.Change) error {
	return c.post(ctx, menuChangesPath, change.Key(), change)
}

func (c *Client) post(ctx context.Context, path, idempotencyKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errs.NewRelayUnavailableError(path, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.NewRelayUnavailableError(path, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return errs.NewQuotaExceededError("central "+path, parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()))
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return errs.NewRelayUnavailableError(path, resp.StatusCode, fmt.Errorf("%s", strings.TrimSpace(string(msg))))
}

// parseRetryAfter accepts delay-seconds and HTTP-date forms.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultRetryAfter
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return defaultRetryAfter
}
