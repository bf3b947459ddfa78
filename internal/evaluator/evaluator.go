package evaluator

import (
	"fmt"

	"github.com/MichalMitros/marketguard/internal/platform/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Thresholds are flip decision limits.
type Thresholds struct {
	MinVolume            int
	MinProfit            decimal.Decimal
	MinROIPercent        decimal.Decimal
	FeesFraction         decimal.Decimal
	NearMissDollarMargin decimal.Decimal
	NearMissROIMargin    decimal.Decimal
}

// DefaultThresholds returns default flip decision limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinVolume:            10,
		MinProfit:            decimal.NewFromInt(20),
		MinROIPercent:        decimal.NewFromInt(20),
		FeesFraction:         decimal.RequireFromString("0.13"),
		NearMissDollarMargin: decimal.NewFromInt(5),
		NearMissROIMargin:    decimal.NewFromInt(5),
	}
}

// Evaluation is profitability of buying at buy price and reselling at comp average.
type Evaluation struct {
	EstimatedProfit decimal.Decimal
	ROIPercent      decimal.Decimal
	Flip            bool
	NearMiss        bool
	NearMissReasons []string
}

// Evaluator decides whether listing is worth buying for resale.
type Evaluator struct {
	thresholds Thresholds
}

// New returns Evaluator using provided thresholds.
func New(thresholds Thresholds) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Thresholds returns evaluator limits.
func (e *Evaluator) Thresholds() Thresholds {
	return e.thresholds
}

// Evaluate computes profit, ROI and flip decision. Comp without signal can't be evaluated
// and results in zero Evaluation.
func (e *Evaluator) Evaluate(buyPrice decimal.Decimal, comp models.ResaleComp) Evaluation {
	if !comp.HasSignal() {
		return Evaluation{
			EstimatedProfit: decimal.Zero,
			ROIPercent:      decimal.Zero,
		}
	}

	t := e.thresholds
	profit := comp.AvgResalePrice.
		Mul(decimal.NewFromInt(1).Sub(t.FeesFraction)).
		Sub(buyPrice).
		Round(2)

	roi := decimal.Zero
	if buyPrice.IsPositive() {
		roi = profit.Div(buyPrice).Mul(hundred).Round(1)
	}

	ev := Evaluation{
		EstimatedProfit: profit,
		ROIPercent:      roi,
		Flip: comp.Volume30d >= t.MinVolume &&
			profit.GreaterThanOrEqual(t.MinProfit) &&
			roi.GreaterThanOrEqual(t.MinROIPercent),
	}
	if ev.Flip || comp.Volume30d < t.MinVolume-1 {
		return ev
	}

	if profit.GreaterThanOrEqual(t.MinProfit.Sub(t.NearMissDollarMargin)) {
		ev.NearMiss = true
		ev.NearMissReasons = append(ev.NearMissReasons,
			fmt.Sprintf("profit within $%s of minimum", t.NearMissDollarMargin.String()),
		)
	}
	if roi.GreaterThanOrEqual(t.MinROIPercent.Sub(t.NearMissROIMargin)) {
		ev.NearMiss = true
		ev.NearMissReasons = append(ev.NearMissReasons,
			fmt.Sprintf("ROI within %s%% of minimum", t.NearMissROIMargin.String()),
		)
	}

	return ev
}

// Result evaluates listing against comp and builds FlipResult.
func (e *Evaluator) Result(listing *models.Listing, query string, buyPrice decimal.Decimal, comp models.ResaleComp) models.FlipResult {
	ev := e.Evaluate(buyPrice, comp)

	return models.FlipResult{
		Title:           listing.Title,
		Query:           query,
		BuyPrice:        buyPrice,
		AvgResalePrice:  comp.AvgResalePrice,
		Volume30d:       comp.Volume30d,
		EstimatedProfit: ev.EstimatedProfit,
		ROIPercent:      ev.ROIPercent,
		Flip:            ev.Flip,
		NearMiss:        ev.NearMiss,
		NearMissReasons: ev.NearMissReasons,
		URL:             listing.URL,
		Category:        listing.CategoryOrUnknown(),
	}
}
