// Package helios is a Go SDK for the Helios backend: the story feed, story
// insights, the simulated portfolio, and trade submission.
package helios

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"helios/internal/domain"
	"helios/internal/util"
)

// SessionHeader carries the client session id on every request.
const SessionHeader = "X-Helios-Session"

// Default user-facing messages for failed calls without an error body.
const (
	msgStories   = "Unable to load stories"
	msgStory     = "Unable to load story"
	msgPortfolio = "Unable to load portfolio"
	msgTrade     = "Trade failed"
)

// APIError is returned for non-2xx responses.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Client provides a Go SDK for interacting with the Helios API.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	sessionID     string
	retryAttempts int
	retryDelay    time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry retries idempotent GET calls up to attempts times.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.retryAttempts = attempts
		c.retryDelay = delay
	}
}

// WithSessionID tags every request with the given session id.
func WithSessionID(id string) Option {
	return func(c *Client) { c.sessionID = id }
}

// NewClient creates a new Helios API client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{},
		retryAttempts: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListStories retrieves the ordered story feed.
func (c *Client) ListStories(ctx context.Context) ([]domain.StorySummary, error) {
	var stories []domain.StorySummary
	if err := c.get(ctx, "/api/stories", msgStories, &stories); err != nil {
		return nil, err
	}
	if stories == nil {
		stories = []domain.StorySummary{}
	}
	return stories, nil
}

// GetStory retrieves the detail and recommendations for a story.
func (c *Client) GetStory(ctx context.Context, id string) (*domain.StoryInsights, error) {
	var insights domain.StoryInsights
	path := "/api/story?id=" + url.QueryEscape(id)
	if err := c.get(ctx, path, msgStory, &insights); err != nil {
		return nil, err
	}
	return &insights, nil
}

// GetPortfolio retrieves the current portfolio snapshot.
func (c *Client) GetPortfolio(ctx context.Context) (*domain.Portfolio, error) {
	var p domain.Portfolio
	if err := c.get(ctx, "/api/portfolio", msgPortfolio, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SubmitTrade posts a trade ticket and returns the updated portfolio.
func (c *Client) SubmitTrade(ctx context.Context, req domain.TradeRequest) (*domain.Portfolio, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding trade: %w", err)
	}
	var result domain.TradeResult
	if err := c.do(ctx, http.MethodPost, "/api/trades", body, msgTrade, &result); err != nil {
		return nil, err
	}
	return &result.Portfolio, nil
}

func (c *Client) get(ctx context.Context, path, fallback string, out any) error {
	return util.Retry(ctx, c.retryAttempts, c.retryDelay, func() error {
		err := c.do(ctx, http.MethodGet, path, nil, fallback, out)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			return util.Permanent(err)
		}
		return err
	})
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, fallback string, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sessionID != "" {
		req.Header.Set(SessionHeader, c.sessionID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: reading response: %w", fallback, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, data, fallback)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", fallback, err)
	}
	return nil
}

func decodeAPIError(status int, data []byte, fallback string) *APIError {
	var body struct {
		Error string `json:"error"`
	}
	msg := fallback
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		msg = body.Error
	}
	return &APIError{Status: status, Message: msg}
}
