package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// ImageBaseURL serves images at their original size.
const ImageBaseURL = "https://image.tmdb.org/t/p/original"

const (
	defaultBaseURL    = "https://api.themoviedb.org/3"
	defaultAttempts   = 3
	defaultRetryDelay = time.Second
)

// Client is a TMDB API v3 client. Every request is retried on transport
// errors, rate limiting and server errors.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
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

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "tmdb")
	}
}

// WithLanguage sets the preferred response language, e.g. "zh-CN".
func WithLanguage(lang string) Option {
	return func(c *Client) {
		c.language = lang
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

// New creates a new TMDB client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		language: langSimplifiedChinese,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:        slog.New(slog.DiscardHandler),
		attempts:   defaultAttempts,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Language returns the preferred response language.
func (c *Client) Language() string {
	return c.language
}

// SearchTV searches shows by name.
func (c *Client) SearchTV(ctx context.Context, query string) ([]SearchResult, error) {
	return c.search(ctx, MediaTV, query)
}

// SearchMovie searches movies by title.
func (c *Client) SearchMovie(ctx context.Context, query string) ([]SearchResult, error) {
	return c.search(ctx, MediaMovie, query)
}

func (c *Client) search(ctx context.Context, mt MediaType, query string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("language", c.language)

	var resp searchResponse
	if err := c.get(ctx, "/search/"+string(mt), params, &resp); err != nil {
		return nil, fmt.Errorf("search %s: %w", mt, err)
	}
	return resp.Results, nil
}

// MovieDetails fetches movie details, trying each locale of the language
// priority until one succeeds.
func (c *Client) MovieDetails(ctx context.Context, id int64) (*Movie, error) {
	var movie Movie
	path := fmt.Sprintf("/movie/%d", id)
	if err := c.getLocalized(ctx, path, url.Values{"append_to_response": {"translations"}}, &movie); err != nil {
		return nil, fmt.Errorf("movie %d: %w", id, err)
	}
	return &movie, nil
}

// TVDetails fetches show details, trying each locale of the language priority
// until one succeeds.
func (c *Client) TVDetails(ctx context.Context, id int64) (*TVShow, error) {
	var show TVShow
	path := fmt.Sprintf("/tv/%d", id)
	if err := c.getLocalized(ctx, path, url.Values{"append_to_response": {"translations,external_ids"}}, &show); err != nil {
		return nil, fmt.Errorf("tv %d: %w", id, err)
	}
	return &show, nil
}

// SeasonDetails fetches a season with its episode list.
func (c *Client) SeasonDetails(ctx context.Context, tvID int64, season int) (*Season, error) {
	var s Season
	path := fmt.Sprintf("/tv/%d/season/%d", tvID, season)
	if err := c.getLocalized(ctx, path, nil, &s); err != nil {
		return nil, fmt.Errorf("tv %d season %d: %w", tvID, season, err)
	}
	return &s, nil
}

// EpisodeDetails fetches a single episode including its crew.
func (c *Client) EpisodeDetails(ctx context.Context, tvID int64, season, episode int) (*Episode, error) {
	var ep Episode
	path := fmt.Sprintf("/tv/%d/season/%d/episode/%d", tvID, season, episode)
	if err := c.getLocalized(ctx, path, nil, &ep); err != nil {
		return nil, fmt.Errorf("tv %d S%02dE%02d: %w", tvID, season, episode, err)
	}
	return &ep, nil
}

// Images fetches posters, backdrops and logos of a title.
func (c *Client) Images(ctx context.Context, mt MediaType, id int64) (*Images, error) {
	var images Images
	path := fmt.Sprintf("/%s/%d/images", mt, id)
	if err := c.get(ctx, path, c.imageLanguages(), &images); err != nil {
		return nil, fmt.Errorf("%s %d images: %w", mt, id, err)
	}
	return &images, nil
}

// EpisodeImages fetches the stills of an episode.
func (c *Client) EpisodeImages(ctx context.Context, tvID int64, season, episode int) (*Images, error) {
	var images Images
	path := fmt.Sprintf("/tv/%d/season/%d/episode/%d/images", tvID, season, episode)
	if err := c.get(ctx, path, nil, &images); err != nil {
		return nil, fmt.Errorf("tv %d S%02dE%02d images: %w", tvID, season, episode, err)
	}
	return &images, nil
}

// Credits fetches cast and crew of a title.
func (c *Client) Credits(ctx context.Context, mt MediaType, id int64) (*Credits, error) {
	var credits Credits
	params := url.Values{}
	params.Set("language", c.language)
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/credits", mt, id), params, &credits); err != nil {
		return nil, fmt.Errorf("%s %d credits: %w", mt, id, err)
	}
	return &credits, nil
}

// Keywords fetches the keywords of a title. Keywords are optional metadata, so
// failures are logged and yield an empty result.
func (c *Client) Keywords(ctx context.Context, mt MediaType, id int64) *Keywords {
	var kw Keywords
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/keywords", mt, id), nil, &kw); err != nil {
		c.log.Warn("keywords unavailable", "media_type", mt, "tmdb_id", id, "error", err)
		return &Keywords{ID: id}
	}
	return &kw
}

// FindByIMDBID looks up TMDB entries by IMDb ID.
func (c *Client) FindByIMDBID(ctx context.Context, imdbID string) (*FindResult, error) {
	params := url.Values{}
	params.Set("external_source", "imdb_id")
	params.Set("language", c.language)

	var result FindResult
	if err := c.get(ctx, "/find/"+url.PathEscape(imdbID), params, &result); err != nil {
		return nil, fmt.Errorf("find %s: %w", imdbID, err)
	}
	return &result, nil
}

func (c *Client) imageLanguages() url.Values {
	params := url.Values{}
	langs := "null,en"
	if tag := c.language; len(tag) >= 2 && tag[:2] != "en" {
		langs = tag[:2] + "," + langs
	}
	params.Set("include_image_language", langs)
	return params
}

// getLocalized issues the request once per locale of the language priority
// and returns the first success.
func (c *Client) getLocalized(ctx context.Context, path string, params url.Values, out any) error {
	var lastErr error
	for _, lang := range LanguagePriority(c.language) {
		p := url.Values{}
		for k, v := range params {
			p[k] = v
		}
		p.Set("language", lang)

		err := c.get(ctx, path, p, out)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		c.log.Debug("localized request failed, trying next language", "path", path, "language", lang, "error", err)
		lastErr = err
	}
	return lastErr
}

// get performs a GET request with retries and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.apiKey == "" {
		return ErrAPIKeyMissing
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		start := time.Now()
		err := c.doOnce(ctx, reqURL, out)
		if err == nil {
			c.log.Debug("request complete", "path", path, "attempt", attempt, "duration_ms", time.Since(start).Milliseconds())
			return nil
		}
		if !retryable(err) || ctx.Err() != nil {
			return err
		}
		c.log.Warn("request failed, retrying", "path", path, "attempt", attempt, "error", err)
		lastErr = err
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transientError{err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkResponse(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// checkResponse maps HTTP status codes to errors.
func checkResponse(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return &transientError{err: ErrRateLimited}
	case resp.StatusCode >= 500:
		return &transientError{err: fmt.Errorf("TMDB API error: %s", resp.Status)}
	default:
		return fmt.Errorf("TMDB API error: %s", resp.Status)
	}
}

// transientError marks failures worth retrying.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}

// ImageURL returns the original-size URL for an image path.
func ImageURL(path string) string {
	if path == "" {
		return ""
	}
	return ImageBaseURL + path
}
