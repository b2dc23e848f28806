package artwork

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vmunix/arrnfo/internal/tmdb"
)

const (
	defaultAttempts   = 3
	defaultRetryDelay = time.Second
)

var errNotFound = errors.New("image not found")

// Downloader fetches catalog images with retries.
type Downloader struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
	attempts   int
	retryDelay time.Duration
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithBaseURL sets the image base URL (for testing).
func WithBaseURL(url string) Option {
	return func(d *Downloader) {
		d.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(d *Downloader) {
		d.httpClient = hc
	}
}

// WithLogger sets a logger.
func WithLogger(log *slog.Logger) Option {
	return func(d *Downloader) {
		d.log = log.With("component", "artwork")
	}
}

// WithRetry sets the attempts per image and the delay between them.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(d *Downloader) {
		if attempts > 0 {
			d.attempts = attempts
		}
		d.retryDelay = delay
	}
}

// NewDownloader creates an image downloader.
func NewDownloader(opts ...Option) *Downloader {
	d := &Downloader{
		baseURL:    tmdb.ImageBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        slog.New(slog.DiscardHandler),
		attempts:   defaultAttempts,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Result reports what a plan download produced.
type Result struct {
	Written []string // media-relative paths
	Failed  []string // catalog paths that could not be fetched
}

// Download fetches every planned image into mediaDir. Failures are per image
// and never abort the plan; only context cancellation returns an error.
func (d *Downloader) Download(ctx context.Context, plan *Plan, mediaDir string) (*Result, error) {
	res := &Result{}
	start := time.Now()
	for _, it := range plan.Items {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		data, err := d.fetch(ctx, it.Source)
		if err != nil {
			d.log.Warn("image download failed", "source", it.Source, "error", err)
			res.Failed = append(res.Failed, it.Source)
			continue
		}
		for _, target := range it.Targets {
			if err := writeFile(filepath.Join(mediaDir, filepath.FromSlash(target)), data); err != nil {
				d.log.Warn("image write failed", "path", target, "error", err)
				continue
			}
			res.Written = append(res.Written, target)
		}
	}
	d.log.Info("artwork downloaded",
		"written", len(res.Written),
		"failed", len(res.Failed),
		"duration_ms", time.Since(start).Milliseconds())
	return res, nil
}

// Fetch downloads a single catalog image to dest.
func (d *Downloader) Fetch(ctx context.Context, source, dest string) error {
	data, err := d.fetch(ctx, source)
	if err != nil {
		return err
	}
	return writeFile(dest, data)
}

func (d *Downloader) fetch(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "/") {
		source = "/" + source
	}
	url := d.baseURL + source

	var lastErr error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(d.retryDelay):
			}
		}
		data, err := d.get(ctx, url)
		if err == nil {
			return data, nil
		}
		if errors.Is(err, errNotFound) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (d *Downloader) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, errNotFound
	default:
		return nil, fmt.Errorf("image server error: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// writeFile writes through a temp file so a failed write never leaves a
// truncated image behind.
func writeFile(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp := dest + ".part"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename image: %w", err)
	}
	return nil
}
