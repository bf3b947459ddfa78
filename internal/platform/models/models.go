package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnknownCategory is used when listing has no category.
const UnknownCategory = "Unknown"

// BuyingOption is listing's buying mode.
type BuyingOption string

// Supported buying options.
const (
	FixedPrice BuyingOption = "FIXED_PRICE"
	BestOffer  BuyingOption = "BEST_OFFER"
	Auction    BuyingOption = "AUCTION"
)

// ParsingResult contains listing with decoding error if there is any.
type ParsingResult struct {
	Listing Listing
	Error   error
}

// Listing is marketplace listing record produced by the upstream collector.
type Listing struct {
	ItemID        *string
	Title         string
	Price         decimal.Decimal
	URL           string
	BuyingOptions []BuyingOption
	ShippingCost  *decimal.Decimal
	Condition     *string
	Category      *string
}

// HasBuyingOption reports whether listing can be bought with provided option.
func (l *Listing) HasBuyingOption(option BuyingOption) bool {
	for _, o := range l.BuyingOptions {
		if o == option {
			return true
		}
	}
	return false
}

// IsAuctionOnly reports whether listing is an auction without fixed price option.
func (l *Listing) IsAuctionOnly() bool {
	return l.HasBuyingOption(Auction) && !l.HasBuyingOption(FixedPrice)
}

// CategoryOrUnknown returns listing category or UnknownCategory when it's missing.
func (l *Listing) CategoryOrUnknown() string {
	if l.Category == nil || *l.Category == "" {
		return UnknownCategory
	}
	return *l.Category
}

// ResaleComp is resale price signal for a normalized query.
// Zero AvgResalePrice means there is no signal.
type ResaleComp struct {
	AvgResalePrice decimal.Decimal
	Volume30d      int
	FetchedAt      time.Time
}

// HasSignal reports whether comp can be used for flip evaluation.
func (c ResaleComp) HasSignal() bool {
	return c.Volume30d > 0 && c.AvgResalePrice.IsPositive()
}

// FlipResult is flip evaluation of a single listing.
type FlipResult struct {
	Title           string
	Query           string
	BuyPrice        decimal.Decimal
	AvgResalePrice  decimal.Decimal
	Volume30d       int
	EstimatedProfit decimal.Decimal
	ROIPercent      decimal.Decimal
	Flip            bool
	NearMiss        bool
	NearMissReasons []string
	URL             string
	Category        string
}

// ScanStats holds counters of a single pipeline run.
type ScanStats struct {
	StartedAt  time.Time
	FinishedAt *time.Time
	Decoded    int32
	Malformed  int32
	Duplicates int32
	Screened   map[string]int32
	Rejected   map[string]int32
	Deferred   int32
	Evaluated  int32
	Flips      int32
	NearMisses int32
	StaleComps int32
}

// NewScanStats returns ScanStats with initialized counters.
func NewScanStats(startedAt time.Time) *ScanStats {
	return &ScanStats{
		StartedAt: startedAt,
		Screened:  map[string]int32{},
		Rejected:  map[string]int32{},
	}
}
