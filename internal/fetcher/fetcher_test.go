package fetcher_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MichalMitros/marketguard/internal/fetcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	userAgent   = "marketguard-test/0.0.0"
	listings    = `[{"title":"Fluke 117 Multimeter","price":50}]`
	contentType = "Content-Type"
)

func TestUnitFetchDocument(t *testing.T) {
	tests := map[string]struct {
		contentType     string
		contentEncoding string
		status          int
		retryAfter      string
		body            []byte
		wantBody        string
		wantErr         error
		wantStatus      *fetcher.StatusError
	}{
		"json": {
			contentType: "application/json; charset=utf-8",
			status:      http.StatusOK,
			body:        []byte(listings),
			wantBody:    listings,
		},
		"vendor json": {
			contentType: "application/vnd.marketplace.search+json",
			status:      http.StatusOK,
			body:        []byte(listings),
			wantBody:    listings,
		},
		"gzip file": {
			contentType: "application/gzip",
			status:      http.StatusOK,
			body:        gzipped(t, listings),
			wantBody:    listings,
		},
		"gzip encoded json": {
			contentType:     "application/json",
			contentEncoding: "gzip",
			status:          http.StatusOK,
			body:            gzipped(t, listings),
			wantBody:        listings,
		},
		"rate limited": {
			status:     http.StatusTooManyRequests,
			retryAfter: "3",
			wantErr:    fetcher.ErrStatusNotOK,
			wantStatus: &fetcher.StatusError{StatusCode: http.StatusTooManyRequests, RetryAfter: 3 * time.Second},
		},
		"not found": {
			status:     http.StatusNotFound,
			wantErr:    fetcher.ErrStatusNotOK,
			wantStatus: &fetcher.StatusError{StatusCode: http.StatusNotFound},
		},
		"html page": {
			contentType: "text/html",
			status:      http.StatusOK,
			body:        []byte("<html></html>"),
			wantErr:     fetcher.ErrContentTypeNotSupported,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, req *http.Request) {
				assert.Equal(t, userAgent, req.Header.Get("User-Agent"), "should send user agent")
				assert.Equal(t, "application/json", req.Header.Get("Accept"), "should accept json")
				assert.Equal(t, "gzip", req.Header.Get("Accept-Encoding"), "should accept gzip")

				if tt.contentType != "" {
					wrt.Header().Set(contentType, tt.contentType)
				}
				if tt.contentEncoding != "" {
					wrt.Header().Set("Content-Encoding", tt.contentEncoding)
				}
				if tt.retryAfter != "" {
					wrt.Header().Set("Retry-After", tt.retryAfter)
				}
				wrt.WriteHeader(tt.status)
				wrt.Write(tt.body)
			}))
			t.Cleanup(srv.Close)

			body, err := fetcher.NewFetcher(srv.Client(), userAgent).FetchDocument(context.TODO(), srv.URL+"/listings.json")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr, "should return correct error")
				if tt.wantStatus != nil {
					var statusErr *fetcher.StatusError
					require.ErrorAs(t, err, &statusErr, "should return status error")
					assert.Equal(t, tt.wantStatus, statusErr, "should return response status details")
				}
				return
			}

			require.NoError(t, err, "shouldn't return any error")
			assert.Equal(t, tt.wantBody, readAndClose(t, body), "should return document")
		})
	}
}

func TestUnitStatusErrorTemporary(t *testing.T) {
	tests := map[int]bool{
		http.StatusTooManyRequests:     true,
		http.StatusRequestTimeout:      true,
		http.StatusBadGateway:          true,
		http.StatusInternalServerError: true,
		http.StatusNotFound:            false,
		http.StatusForbidden:           false,
	}

	for status, want := range tests {
		err := &fetcher.StatusError{StatusCode: status}
		assert.Equal(t, want, err.Temporary(), "should classify status %d", status)
	}
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()

	var buf bytes.Buffer
	wrt := gzip.NewWriter(&buf)
	_, err := wrt.Write([]byte(s))
	require.NoError(t, err, "can't compress test data")
	require.NoError(t, wrt.Close(), "can't compress test data")

	return buf.Bytes()
}

func readAndClose(t *testing.T, reader io.ReadCloser) string {
	t.Helper()

	result, err := io.ReadAll(reader)
	require.NoError(t, err, "can't read document")
	assert.NoError(t, reader.Close(), "should close document")

	return string(result)
}
