package pngme

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
)

// DefaultMaxBytes is the read limit used when ReadOptions.MaxBytes is zero.
const DefaultMaxBytes = 64 << 20

// ReadOptions configures Open and Fetch.
type ReadOptions struct {
	// HTTPClient is used for URL sources. Nil means http.DefaultClient.
	HTTPClient *http.Client
	// MaxBytes limits how much is read from a URL source. Zero means DefaultMaxBytes.
	MaxBytes int64
}

// ReadFile reads and parses a PNG file.
func ReadFile(path string) (*PNG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrOpenFile, path, err)
	}
	defer func() { _ = f.Close() }()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrReadFile, path, err)
	}

	return Parse(b)
}

// ReadFrom reads r to EOF and parses the result.
func ReadFrom(r io.Reader) (*PNG, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFile, err)
	}

	return Parse(b)
}

// Open parses src, fetching it over HTTP when it is a URL and reading it
// from disk otherwise. Nil opts uses defaults.
func Open(ctx context.Context, src string, opts *ReadOptions) (*PNG, error) {
	if IsURL(src) {
		return Fetch(ctx, src, opts)
	}

	return ReadFile(src)
}

// IsURL reports whether src is an http or https URL.
func IsURL(src string) bool {
	u, err := url.Parse(src)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch downloads and parses a PNG. Nil opts uses defaults.
func Fetch(ctx context.Context, rawURL string, opts *ReadOptions) (*PNG, error) {
	client := http.DefaultClient
	limit := int64(DefaultMaxBytes)
	if opts != nil {
		if opts.HTTPClient != nil {
			client = opts.HTTPClient
		}
		if opts.MaxBytes > 0 {
			limit = opts.MaxBytes
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrFetch, rawURL, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrFetch, rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %q: %s", ErrFetch, rawURL, resp.Status)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrFetch, rawURL, err)
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("%w: %q exceeds %d bytes", ErrInputTooLarge, rawURL, limit)
	}

	return Parse(b)
}
