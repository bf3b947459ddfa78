package decoder

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/MichalMitros/marketguard/internal/platform/models"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var priceCleanRegexp = regexp.MustCompile(`[^\d.\-]`)

// Listing is model for listing records in collector output files.
type Listing struct {
	ItemID        *string  `json:"item_id"`
	Title         string   `json:"title" validate:"required"`
	Price         Price    `json:"price"`
	URL           string   `json:"url" validate:"required,url"`
	BuyingOptions []string `json:"buying_options" validate:"dive,oneof=FIXED_PRICE BEST_OFFER AUCTION"`
	ShippingCost  *Price   `json:"shipping_cost"`
	Condition     *string  `json:"condition"`
	Category      *string  `json:"category"`
}

// Price is money amount given as JSON number or as formatted string like "$1,299.99".
type Price struct {
	Value decimal.Decimal
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Price) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*p = Price{}
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = priceCleanRegexp.ReplaceAllString(s, "")
	}

	value, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPrice, string(data))
	}

	*p = Price{Value: value, Valid: true}
	return nil
}

func toAppListing(listing *Listing) models.Listing {
	result := models.Listing{
		ItemID: listing.ItemID,
		Title:  listing.Title,
		Price:  listing.Price.Value,
		URL:    listing.URL,
		BuyingOptions: lo.Map(listing.BuyingOptions, func(option string, _ int) models.BuyingOption {
			return models.BuyingOption(option)
		}),
		Condition: listing.Condition,
		Category:  listing.Category,
	}

	if listing.ShippingCost != nil && listing.ShippingCost.Valid {
		result.ShippingCost = lo.ToPtr(listing.ShippingCost.Value)
	}

	return result
}
