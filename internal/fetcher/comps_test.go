package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MichalMitros/marketguard/internal/fetcher"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitFetchRecentSales(t *testing.T) {
	tests := map[string]struct {
		body       string
		status     int
		maxResults int
		wantPrices []string
		wantErr    error
	}{
		"prices": {
			body:       `{"prices": [100.5, "110", 120]}`,
			status:     http.StatusOK,
			maxResults: 15,
			wantPrices: []string{"100.5", "110", "120"},
		},
		"items": {
			body:       `{"items": [{"price": 45.99, "title": "x"}, {"price": 50}]}`,
			status:     http.StatusOK,
			maxResults: 15,
			wantPrices: []string{"45.99", "50"},
		},
		"limited": {
			body:       `{"prices": [1, 2, 3, 4]}`,
			status:     http.StatusOK,
			maxResults: 2,
			wantPrices: []string{"1", "2"},
		},
		"no sales": {
			body:       `{"prices": []}`,
			status:     http.StatusOK,
			maxResults: 15,
			wantPrices: []string{},
		},
		"bad status": {
			status:     http.StatusTooManyRequests,
			maxResults: 15,
			wantErr:    fetcher.ErrStatusNotOK,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, req *http.Request) {
				assert.Equal(t, "/api/sold", req.URL.Path, "should call sold listings endpoint")
				assert.Equal(t, "milwaukee 2801 20", req.URL.Query().Get("q"), "should send query")
				wrt.Header().Add(contentType, "application/json")
				wrt.WriteHeader(tt.status)
				wrt.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			source := fetcher.NewCompSource(fetcher.NewFetcher(srv.Client(), userAgent), srv.URL+"/")

			prices, err := source.FetchRecentSales(context.TODO(), "milwaukee 2801 20", tt.maxResults)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr, "should return correct error")
				return
			}
			require.NoError(t, err, "shouldn't return any error")
			assert.Equal(t, tt.wantPrices, lo.Map(prices, func(p decimal.Decimal, _ int) string {
				return p.String()
			}), "should return correct prices")
		})
	}
}

func TestUnitFetchRecentSalesNotConfigured(t *testing.T) {
	source := fetcher.NewCompSource(fetcher.NewFetcher(http.DefaultClient, userAgent), "")

	_, err := source.FetchRecentSales(context.TODO(), "milwaukee 2801 20", 15)

	require.ErrorIs(t, err, fetcher.ErrSourceNotConfigured, "should return not configured error")
}
