package gate

import (
	"github.com/MichalMitros/marketguard/internal/platform/models"
	"github.com/shopspring/decimal"
)

// Screen reasons.
const (
	ScreenAuctionOnly   = "auction-only"
	ScreenBelowMinPrice = "below-min-price"
	ScreenAboveMaxPrice = "above-max-price"
	ScreenShipping      = "shipping-too-high"
)

// PriceWindow limits listings prices. Zero bound disables the check.
type PriceWindow struct {
	MinPrice    decimal.Decimal
	MaxPrice    decimal.Decimal
	MaxShipping decimal.Decimal
}

// Screen drops listings which can't be bought at fixed price or are outside of price window.
// It is shared by all listing sources so that they behave identically.
type Screen struct {
	window PriceWindow
}

// NewScreen returns new Screen.
func NewScreen(window PriceWindow) Screen {
	return Screen{window: window}
}

// Check returns false with reason when listing should be dropped.
func (s Screen) Check(listing *models.Listing) (bool, string) {
	if listing.IsAuctionOnly() {
		return false, ScreenAuctionOnly
	}

	if s.window.MinPrice.IsPositive() && listing.Price.LessThan(s.window.MinPrice) {
		return false, ScreenBelowMinPrice
	}

	if s.window.MaxPrice.IsPositive() && listing.Price.GreaterThan(s.window.MaxPrice) {
		return false, ScreenAboveMaxPrice
	}

	if s.window.MaxShipping.IsPositive() &&
		listing.ShippingCost != nil &&
		listing.ShippingCost.GreaterThan(s.window.MaxShipping) {
		return false, ScreenShipping
	}

	return true, ""
}
