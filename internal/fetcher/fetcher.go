package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/endless-browser/resource-convert/internal/models"
)

const defaultUserAgent = "resource-convert/1.0"

// Fetcher downloads remote sources. Requests are made once; there is no retry.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// New creates a new fetcher from config. A zero timeout leaves requests
// unbounded.
func New(cfg models.HTTPConfig) *Fetcher {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent: userAgent,
	}
}

// Fetch downloads content from a URL
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	data, err := f.doFetch(ctx, url)
	if err != nil {
		return nil, &models.ConvertError{Kind: models.ErrFetch, Source: url, Cause: err}
	}
	return data, nil
}

func (f *Fetcher) doFetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}
