package mediafetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"eventalbum/internal/domain"
)

// ResponseTooLargeError reports that a media body exceeded the per-item limit.
type ResponseTooLargeError struct {
	Limit int64
}

func (e ResponseTooLargeError) Error() string {
	return fmt.Sprintf("response body exceeded limit of %d bytes", e.Limit)
}

type httpFetcher struct {
	client *http.Client
}

// NewHTTPFetcher returns a MediaFetcher that downloads media over HTTP(S) by public URL.
// A nil client gets one with sane transport timeouts; per-item deadlines come from ctx.
func NewHTTPFetcher(client *http.Client) domain.MediaFetcher {
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				MaxIdleConnsPerHost:   8,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 15 * time.Second,
			},
		}
	}
	return &httpFetcher{client: client}
}

func (f *httpFetcher) Fetch(ctx context.Context, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("media host returned status: %d", resp.StatusCode)
	}
	if limit > 0 && resp.ContentLength > limit {
		return nil, ResponseTooLargeError{Limit: limit}
	}
	return readAllWithLimit(resp.Body, limit)
}

// readAllWithLimit reads r up to limit bytes. If limit <= 0, it behaves like io.ReadAll.
func readAllWithLimit(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	lr := &io.LimitedReader{R: r, N: limit + 1}
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ResponseTooLargeError{Limit: limit}
	}
	return data, nil
}
