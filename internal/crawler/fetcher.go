package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bradykim7/pagecrawl/internal/events"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Fetcher retrieves the markup of a single page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// PageFetcher issues one GET per page. It never retries; the caller decides
// whether a failure is fatal.
type PageFetcher struct {
	Client   *http.Client
	Logger   *zap.Logger
	Headers  map[string]string
	Observer events.Observer
}

// NewPageFetcher creates a fetcher with default settings
func NewPageFetcher(log *zap.Logger, observer events.Observer) *PageFetcher {
	return &PageFetcher{
		Client: &http.Client{
			Timeout: defaultTimeout,
		},
		Logger:   log.Named("fetcher"),
		Headers:  DefaultHeaders(),
		Observer: observer,
	}
}

// Fetch retrieves the body of url as a string
func (f *PageFetcher) Fetch(ctx context.Context, url string) (string, error) {
	events.Emit(ctx, f.Observer, events.Event{Kind: events.FetchStarted, URL: url})
	start := time.Now()

	body, status, err := f.get(ctx, url)

	events.Emit(ctx, f.Observer, events.Event{
		Kind:       events.FetchFinished,
		URL:        url,
		StatusCode: status,
		Elapsed:    time.Since(start),
		Err:        err,
	})
	if err != nil {
		return "", err
	}

	f.Logger.Debug("Successfully fetched URL",
		zap.String("url", url),
		zap.Int("content_length", len(body)))

	return string(body), nil
}

func (f *PageFetcher) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, &TransportError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	for key, value := range f.Headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client().Do(req)
	if err != nil {
		return nil, 0, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, &TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &TransportError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response body: %w", err),
		}
	}

	return content, resp.StatusCode, nil
}

func (f *PageFetcher) client() *http.Client {
	if f.Client == nil {
		return http.DefaultClient
	}
	return f.Client
}

// DefaultHeaders returns common headers for HTTP requests
func DefaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"Cache-Control":   "no-cache",
		"Pragma":          "no-cache",
	}
}
