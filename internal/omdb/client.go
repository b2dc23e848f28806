// Package omdb provides a client for the OMDb API, used as a secondary
// catalog for enrichment.
package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL    = "http://www.omdbapi.com/"
	defaultAttempts   = 3
	defaultRetryDelay = time.Second
)

// Client is an OMDb API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
	attempts   int
	retryDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets a logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "omdb")
	}
}

// WithRetry sets the number of attempts per request and the delay between them.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.retryDelay = delay
	}
}

// New creates a new OMDb client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        slog.New(slog.DiscardHandler),
		attempts:   defaultAttempts,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// ByIMDBID fetches a title by IMDb ID. Transport and server errors are
// retried; a "not found" answer is final.
func (c *Client) ByIMDBID(ctx context.Context, imdbID string) (*Title, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}
	if imdbID == "" {
		return nil, ErrNotFound
	}

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("i", imdbID)
	params.Set("plot", "full")
	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		title, retry, err := c.fetch(ctx, reqURL)
		if err == nil {
			return title, nil
		}
		if !retry || ctx.Err() != nil {
			return nil, err
		}
		c.log.Warn("request failed, retrying", "imdb_id", imdbID, "attempt", attempt, "error", err)
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) fetch(ctx context.Context, reqURL string) (*Title, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		retry := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, retry, fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	var title Title
	if err := json.NewDecoder(resp.Body).Decode(&title); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}

	if title.Response == "False" {
		if title.Error == "Movie not found!" || title.Error == "Incorrect IMDb ID." {
			return nil, false, ErrNotFound
		}
		return nil, false, fmt.Errorf("%w: %s", ErrAPIError, title.Error)
	}
	return &title, false, nil
}
