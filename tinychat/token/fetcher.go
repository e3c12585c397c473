package token

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL    = "https://tinychat.com/api/v1.0/room/token"
	DefaultResultPath = "result"
	DefaultTimeout    = 10 * time.Second

	// Token responses are a few hundred bytes.
	maxBodySize = 1 << 20
)

var (
	ErrFetch    = errors.New("token fetch failed")
	ErrNoResult = errors.New("token field missing")
)

// Fetcher requests join tokens for a room.
type Fetcher struct {
	baseURL    string
	resultPath string
	httpClient *http.Client
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithResultPath sets the gjson path of the token inside the response body.
func WithResultPath(path string) Option {
	return func(f *Fetcher) {
		if path != "" {
			f.resultPath = path
		}
	}
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// NewFetcher creates a fetcher for the token endpoint rooted at baseURL.
func NewFetcher(baseURL string, opts ...Option) *Fetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	f := &Fetcher{
		baseURL:    strings.TrimRight(baseURL, "/"),
		resultPath: DefaultResultPath,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs one token request for room.
func (f *Fetcher) Fetch(ctx context.Context, room string) (string, error) {
	endpoint := f.baseURL + "/" + url.PathEscape(room)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: API error: %d", ErrFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}

	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: invalid JSON body", ErrFetch)
	}

	result := gjson.GetBytes(body, f.resultPath)
	if result.Type != gjson.String {
		return "", fmt.Errorf("%w: %w: %q", ErrFetch, ErrNoResult, f.resultPath)
	}

	return result.String(), nil
}
