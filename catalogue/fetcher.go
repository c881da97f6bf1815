package catalogue

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// HTTPFetcher is the default Fetcher, an HTTP client with bounded retries
// and exponential backoff. Grounded on the teacher's
// utils/http.go OptimizedHTTPClient, narrowed to the single GET-with-retry
// operation the catalogue needs.
type HTTPFetcher struct {
	client       *http.Client
	maxRetries   int
	retryBackoff time.Duration
}

// NewHTTPFetcher builds a Fetcher tuned for one-shot schema archive
// downloads: keep-alive connections, bounded retries on transient failures.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
			},
		},
		maxRetries:   3,
		retryBackoff: time.Second,
	}
}

// Fetch performs a GET request with exponential-backoff retry on timeouts
// and 5xx/429 responses.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("catalogue: build request: %w", err)
		}
		req.Header.Set("User-Agent", "netex-validator/1.0")
		req.Header.Set("Accept", "application/zip, application/octet-stream, */*")

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			if !isRetryableError(err) || attempt == f.maxRetries {
				break
			}
			if !sleepBackoff(ctx, f.retryBackoff, attempt) {
				return nil, ctx.Err()
			}
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp.Body, nil
		}

		resp.Body.Close()
		lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
		if !isRetryableStatus(resp.StatusCode) || attempt == f.maxRetries {
			break
		}
		if !sleepBackoff(ctx, f.retryBackoff, attempt) {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("catalogue: fetch %s failed after %d attempts: %w", url, f.maxRetries+1, lastErr)
}

func isRetryableError(err error) bool {
	netErr, ok := err.(net.Error)
	return ok && netErr.Timeout()
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func sleepBackoff(ctx context.Context, base time.Duration, attempt int) bool {
	backoff := base * time.Duration(1<<uint(attempt))
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(backoff):
		return true
	}
}
