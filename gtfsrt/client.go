package gtfsrt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a simple HTTP client for fetching GTFS-RT protobuf data.
type Client struct {
	httpClient *http.Client
	apiKey     string
}

// NewClient creates a GTFS-RT HTTP client. A non-empty apiKey is sent as the
// x-api-key header.
func NewClient(timeout time.Duration, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
	}
}

// Fetch fetches a GTFS-RT feed from url and returns raw protobuf bytes.
// Returns nil if url is empty (allows optional feeds).
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}
