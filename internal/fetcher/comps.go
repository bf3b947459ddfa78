package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// soldResponse is sold listings search response. Sources return either bare prices or items.
type soldResponse struct {
	Prices []decimal.Decimal `json:"prices"`
	Items  []soldItem        `json:"items"`
}

type soldItem struct {
	Price decimal.Decimal `json:"price"`
}

// CompSource fetches recent sale prices from sold listings search API.
type CompSource struct {
	fetcher *Fetcher
	baseURL string
}

// NewCompSource returns new CompSource. Empty baseURL makes every fetch fail with ErrSourceNotConfigured.
func NewCompSource(fetcher *Fetcher, baseURL string) *CompSource {
	return &CompSource{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// FetchRecentSales returns up to maxResults recent sale prices for query.
func (s *CompSource) FetchRecentSales(ctx context.Context, query string, maxResults int) ([]decimal.Decimal, error) {
	if s.baseURL == "" {
		return nil, ErrSourceNotConfigured
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(maxResults))

	body, err := s.fetcher.FetchDocument(ctx, s.baseURL+"/api/sold?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("can't fetch sold listings: %w", err)
	}
	defer body.Close()

	var resp soldResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("can't decode sold listings: %w", err)
	}

	prices := resp.Prices
	if len(prices) == 0 {
		prices = lo.Map(resp.Items, func(item soldItem, _ int) decimal.Decimal {
			return item.Price
		})
	}

	if maxResults > 0 && len(prices) > maxResults {
		prices = prices[:maxResults]
	}

	return prices, nil
}
