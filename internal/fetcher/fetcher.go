package fetcher

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Fetcher downloads JSON documents: listings files and sold listings search pages.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher returns new Fetcher.
func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	return &Fetcher{
		client:    client,
		userAgent: userAgent,
	}
}

// FetchDocument returns ReadCloser with JSON document fetched from url.
// Gzipped documents are decompressed. Non-200 responses are returned as *StatusError.
// The caller is responsible for closing returned ReadCloser.
func (f *Fetcher) FetchDocument(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("can't build http request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("can't get http response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			RetryAfter: retryAfter(resp.Header.Get("Retry-After")),
		}
	}

	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		return gunzip(resp.Body)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch {
	case isJSON(mediaType):
		return resp.Body, nil
	case mediaType == "application/gzip", mediaType == "application/x-gzip":
		return gunzip(resp.Body)
	default:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %q", ErrContentTypeNotSupported, mediaType)
	}
}

// StatusError is returned for responses other than 200 OK.
type StatusError struct {
	StatusCode int
	// RetryAfter is delay requested by the server, zero when not sent.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d", ErrStatusNotOK, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrStatusNotOK
}

// Temporary reports whether the same request may succeed later.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode >= http.StatusInternalServerError
}

func isJSON(mediaType string) bool {
	return mediaType == "application/json" || mediaType == "text/json" || strings.HasSuffix(mediaType, "+json")
}

// retryAfter parses Retry-After header given in seconds, HTTP dates are ignored.
func retryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func gunzip(body io.ReadCloser) (io.ReadCloser, error) {
	decompressed, err := gzip.NewReader(body)
	if err != nil {
		_ = body.Close()
		return nil, fmt.Errorf("can't decompress response: %w", err)
	}

	return &gzipReadCloser{
		Reader: decompressed,
		body:   body,
	}, nil
}

// gzipReadCloser reads decompressed stream and closes both it and the response body.
type gzipReadCloser struct {
	*gzip.Reader
	body io.ReadCloser
}

func (r *gzipReadCloser) Close() error {
	_ = r.Reader.Close()
	return r.body.Close()
}
