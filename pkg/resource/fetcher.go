package resource

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	stdnet "regionflow/std/net"
)

// Fetcher retrieves resources by URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (body []byte, contentType string, err error)
}

// DefaultFetcher fetches http(s) URLs, data: URIs and local files,
// resolving relative URIs against a base which is either a URL or a file
// path.
type DefaultFetcher struct {
	baseURL string
	timeout time.Duration
}

// NewFetcher creates a DefaultFetcher with the given base URL.
// Relative URIs passed to Fetch will be resolved against this base.
func NewFetcher(baseURL string, timeout time.Duration) *DefaultFetcher {
	return &DefaultFetcher{baseURL: baseURL, timeout: timeout}
}

// Resolve returns the absolute form of uri.
func (f *DefaultFetcher) Resolve(uri string) string {
	switch {
	case uri == "", stdnet.IsNetworkURL(uri), stdnet.IsDataURI(uri), f.baseURL == "":
		return uri
	case stdnet.IsNetworkURL(f.baseURL):
		return stdnet.ResolveURL(f.baseURL, uri)
	}
	path := strings.TrimPrefix(uri, "file://")
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(strings.TrimPrefix(f.baseURL, "file://")), path)
}

// Fetch retrieves the resource at the given URI.
// Relative URIs are resolved against the fetcher's base URL.
func (f *DefaultFetcher) Fetch(ctx context.Context, uri string) ([]byte, string, error) {
	resolved := f.Resolve(uri)

	if stdnet.IsDataURI(resolved) {
		return stdnet.ParseDataURI(resolved)
	}
	if stdnet.IsNetworkURL(resolved) {
		if f.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, f.timeout)
			defer cancel()
		}
		return stdnet.Fetch(ctx, resolved)
	}

	path := strings.TrimPrefix(resolved, "file://")
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	return body, mime.TypeByExtension(filepath.Ext(path)), nil
}

// FetchCSS fetches a stylesheet URI and returns its text content.
// Returns an error if the content type does not look like CSS or text.
func (f *DefaultFetcher) FetchCSS(ctx context.Context, uri string) (string, error) {
	return FetchCSS(ctx, f, uri)
}

// FetchImage fetches an image URI and returns its raw bytes.
func (f *DefaultFetcher) FetchImage(ctx context.Context, uri string) ([]byte, error) {
	body, _, err := f.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// FetchCSS fetches uri through any fetcher and checks the content type.
func FetchCSS(ctx context.Context, f Fetcher, uri string) (string, error) {
	body, contentType, err := f.Fetch(ctx, uri)
	if err != nil {
		return "", err
	}
	// Accept text/css, text/plain, or any text/* content type
	ct := strings.ToLower(contentType)
	if ct != "" && !strings.HasPrefix(ct, "text/") && !strings.Contains(ct, "css") {
		return "", fmt.Errorf("unexpected content type for CSS: %s", contentType)
	}
	return string(body), nil
}
