package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DefaultEndpoint is the placeholder live-data URL.
const DefaultEndpoint = "https://example.com/api/marketshare"

// DefaultFetchTimeout bounds a single fetch when no timeout is configured.
const DefaultFetchTimeout = 5 * time.Second

// Fetch errors.
var (
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
	ErrNoEndpoint       = errors.New("live data endpoint not configured")
)

// Fetcher retrieves a live override payload over HTTP.
type Fetcher struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
	logger   *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher creates a fetcher for endpoint. A non-positive timeout falls
// back to DefaultFetchTimeout. An empty endpoint makes every fetch fail with
// ErrNoEndpoint.
func NewFetcher(endpoint string, timeout time.Duration, opts ...FetcherOption) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	f := &Fetcher{
		endpoint: endpoint,
		timeout:  timeout,
		client:   http.DefaultClient,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Endpoint returns the configured URL.
func (f *Fetcher) Endpoint() string { return f.endpoint }

// Fetch performs one GET against the endpoint and returns the validated
// payload.
func (f *Fetcher) Fetch(ctx context.Context) (Payload, error) {
	if f.endpoint == "" {
		return nil, ErrNoEndpoint
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", f.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, f.endpoint)
	}

	p, err := DecodePayload(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", f.endpoint, err)
	}

	return p, nil
}

// Apply fetches and merges the payload into store. On any error the store is
// left untouched and the error is returned.
func (f *Fetcher) Apply(ctx context.Context, store *Store) error {
	p, err := f.Fetch(ctx)
	if err != nil {
		f.logger.WarnContext(ctx, "live data unavailable", "endpoint", f.endpoint, "error", err)

		return err
	}

	store.MergeOverride(p)

	f.logger.InfoContext(ctx, "live data loaded", "endpoint", f.endpoint, "countries", len(p))

	return nil
}
