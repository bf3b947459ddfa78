package commander

import "encoding/json"

// ScanCommand asks worker to evaluate listings.
// Listings holds JSON array of listing records. When it's empty, listings are fetched from Source URL.
type ScanCommand struct {
	Source   string          `json:"source"`
	Listings json.RawMessage `json:"listings,omitempty"`
}

// FlipMessage is flip evaluation of a single listing as published to results routing key
// and written to flip reports.
type FlipMessage struct {
	Title           string   `json:"title"`
	Query           string   `json:"query"`
	BuyPrice        float64  `json:"buy_price"`
	AvgResale       float64  `json:"avg_resale"`
	Volume          int      `json:"volume"`
	EstimatedProfit float64  `json:"estimated_profit"`
	ROIPercent      float64  `json:"roi_percent"`
	Flip            bool     `json:"flip"`
	NearMiss        bool     `json:"near_miss"`
	NearMissReasons []string `json:"near_miss_reasons"`
	URL             string   `json:"url"`
	Category        string   `json:"category"`
}
