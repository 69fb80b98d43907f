package fetcher

import (
	"context"
	"io"
	"net/http"

	"github.com/nao1215/hncrawl/internal/model"
)

// defaultMaxBodySize is used when no limit is configured.
const defaultMaxBodySize = 32 * 1024 * 1024

// Fetcher performs bounded GET requests.
type Fetcher struct {
	client      *http.Client
	maxBodySize int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxBodySize limits the number of bytes read from one response.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// New creates a Fetcher using client. The client must have a timeout; see
// transport.NewHTTPClient.
func New(client *http.Client, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      client,
		maxBodySize: defaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs a GET on rawURL and returns the status, declared content
// type and full payload. Transport failures are returned as *Error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Op: "request", Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Op: "do", Err: err}
	}
	defer resp.Body.Close()

	// Read one byte past the limit to tell "exactly at limit" from "over".
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, &Error{URL: rawURL, Op: "read", Err: err}
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, &Error{URL: rawURL, Op: "read", Err: ErrBodyTooLarge}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = model.DefaultContentType
	}

	return &model.FetchResult{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
	}, nil
}
