package testdata

import (
	"github.com/MichalMitros/marketguard/internal/platform/models"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Listings are valid listings decoded from listings.json, in file order.
var Listings = []models.Listing{
	{
		ItemID:        lo.ToPtr("v1|123456|0"),
		Title:         "Milwaukee M18 Fuel Drill 2801-20 Tool Only",
		Price:         decimal.RequireFromString("79.99"),
		URL:           "https://www.ebay.com/itm/123456",
		BuyingOptions: []models.BuyingOption{models.FixedPrice, models.BestOffer},
		ShippingCost:  lo.ToPtr(decimal.RequireFromString("12.5")),
		Condition:     lo.ToPtr("Used"),
		Category:      lo.ToPtr("Power Drills"),
	},
	{
		Title:         "DeWalt DCF887B Impact Driver & Bit Set",
		Price:         decimal.RequireFromString("1299.99"),
		URL:           "https://www.ebay.com/itm/234567",
		BuyingOptions: []models.BuyingOption{models.Auction},
	},
}
