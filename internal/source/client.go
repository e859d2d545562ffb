package source

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "AirspacePublisher/1.0 (https://github.com/mrlokans/airspace)"
)

// Client downloads the raw OpenAir text. It never retries: the caller decides
// whether a failed run is re-triggered.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a fetcher whose requests are bounded by timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch performs a single GET and returns the body as text.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	log.Printf("Getting airspace file from: %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	return string(body), nil
}
