// Package websearch finds TMDB identifiers through a general web search when
// the catalog's own search comes up empty. Every failure is silent: callers
// only learn whether an ID was found.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/vmunix/arrnfo/internal/tmdb"
)

const (
	defaultAPIURL    = "https://www.googleapis.com/customsearch/v1"
	defaultSearchURL = "https://www.google.com/search"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxResults       = 3
	maxBodyBytes     = 4 << 20
)

var catalogURLPattern = regexp.MustCompile(`https://www\.themoviedb\.org/(movie|tv)/(\d+)`)

// Client searches the web for catalog pages. It uses the Custom Search JSON
// API when a key and engine ID are configured and scrapes the public results
// page otherwise.
type Client struct {
	apiKey     string
	engineID   string
	apiURL     string
	searchURL  string
	httpClient *http.Client
	log        *slog.Logger
	attempts   int
	retryDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithAPI enables the Custom Search JSON API.
func WithAPI(apiKey, engineID string) Option {
	return func(c *Client) {
		c.apiKey = apiKey
		c.engineID = engineID
	}
}

// WithBaseURLs overrides both endpoints (for testing).
func WithBaseURLs(apiURL, searchURL string) Option {
	return func(c *Client) {
		c.apiURL = apiURL
		c.searchURL = searchURL
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
		c.log = log.With("component", "websearch")
	}
}

// WithRetry sets the number of scrape attempts and the delay between them.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.retryDelay = delay
	}
}

// New creates a web search client.
func New(opts ...Option) *Client {
	c := &Client{
		apiURL:     defaultAPIURL,
		searchURL:  defaultSearchURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        slog.New(slog.DiscardHandler),
		attempts:   2,
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UsesAPI reports whether the structured API is configured.
func (c *Client) UsesAPI() bool {
	return c.apiKey != "" && c.engineID != ""
}

// SearchCatalogID looks for a themoviedb.org page of the given media type and
// returns its numeric ID.
func (c *Client) SearchCatalogID(ctx context.Context, query string, mt tmdb.MediaType) (int64, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, false
	}

	var (
		id int64
		ok bool
	)
	if c.UsesAPI() {
		id, ok = c.searchAPI(ctx, query, mt)
	} else {
		id, ok = c.searchHTML(ctx, query, mt)
	}
	if ok {
		c.log.Info("web search found catalog id", "query", query, "media_type", mt, "tmdb_id", id)
	} else {
		c.log.Debug("web search found nothing", "query", query, "media_type", mt)
	}
	return id, ok
}

type apiResponse struct {
	Items []struct {
		Link  string `json:"link"`
		Title string `json:"title"`
	} `json:"items"`
}

func (c *Client) searchAPI(ctx context.Context, query string, mt tmdb.MediaType) (int64, bool) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query+" tmdb site:themoviedb.org")
	params.Set("num", strconv.Itoa(maxResults))

	body, err := c.fetch(ctx, c.apiURL+"?"+params.Encode(), false)
	if err != nil {
		c.log.Debug("custom search request failed", "error", err)
		return 0, false
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.log.Debug("custom search decode failed", "error", err)
		return 0, false
	}

	links := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		links = append(links, item.Link)
	}
	return matchCatalogID(links, mt)
}

func (c *Client) searchHTML(ctx context.Context, query string, mt tmdb.MediaType) (int64, bool) {
	params := url.Values{}
	params.Set("q", query+" tmdb")
	params.Set("num", strconv.Itoa(maxResults))
	reqURL := c.searchURL + "?" + params.Encode()

	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return 0, false
			case <-time.After(c.retryDelay):
			}
		}

		body, err := c.fetch(ctx, reqURL, true)
		if err != nil {
			c.log.Debug("search page request failed", "attempt", attempt, "error", err)
			continue
		}
		if requiresJavaScript(body) {
			c.log.Debug("search page requires javascript, giving up")
			return 0, false
		}
		return matchCatalogID(resultLinks(body), mt)
	}
	return 0, false
}

func (c *Client) fetch(ctx context.Context, reqURL string, browser bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if browser {
		req.Header.Set("User-Agent", defaultUserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

func requiresJavaScript(body []byte) bool {
	return bytes.Contains(body, []byte("<noscript>")) || bytes.Contains(body, []byte("enablejs"))
}

// resultLinks collects candidate URLs from a results page: anchor targets
// (unwrapping "/url?q=" redirects) followed by any catalog URL in the raw
// markup.
func resultLinks(body []byte) []string {
	var links []string
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err == nil {
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			links = append(links, unwrapRedirect(strings.TrimSpace(href)))
		})
	}
	for _, m := range catalogURLPattern.FindAll(body, -1) {
		links = append(links, string(m))
	}
	return links
}

func unwrapRedirect(href string) string {
	if !strings.HasPrefix(href, "/url?") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("q"); target != "" {
		return target
	}
	return href
}

// matchCatalogID returns the ID of the first link pointing at a catalog page
// of the requested media type.
func matchCatalogID(links []string, mt tmdb.MediaType) (int64, bool) {
	for _, link := range links {
		m := catalogURLPattern.FindStringSubmatch(link)
		if m == nil || m[1] != string(mt) {
			continue
		}
		id, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		return id, true
	}
	return 0, false
}
