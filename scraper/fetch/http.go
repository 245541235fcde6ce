package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"hackermove/models"
)

// maxBodyBytes caps a page body; result pages are a few hundred KB.
const maxBodyBytes = 8 << 20

// HTTPFetcher performs plain GET requests.
type HTTPFetcher struct {
	client    *retryablehttp.Client
	userAgent string
}

// HTTPOptions configures an HTTPFetcher.
type HTTPOptions struct {
	Timeout   time.Duration
	Retries   int
	UserAgent string
}

// NewHTTPFetcher creates a fetcher. Retries default to zero.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.Retries
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = nil
	if opts.Timeout > 0 {
		rc.HTTPClient.Timeout = opts.Timeout
	}
	// Hand non-2xx responses back to Get instead of an opaque "giving up" error.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &HTTPFetcher{client: rc, userAgent: opts.UserAgent}
}

// Get returns the response body of url as text. Transport failures and
// non-2xx statuses are *models.FetchError.
func (f *HTTPFetcher) Get(ctx context.Context, url string) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &models.FetchError{URL: url, Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/json;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &models.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &models.FetchError{URL: url, Err: fmt.Errorf("status code %d", resp.StatusCode)}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return "", &models.FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(b) > maxBodyBytes {
		return "", &models.FetchError{URL: url, Err: errors.New("body too large")}
	}
	return string(b), nil
}
