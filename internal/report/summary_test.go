package report_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/MichalMitros/marketguard/internal/gate"
	"github.com/MichalMitros/marketguard/internal/platform/models"
	"github.com/MichalMitros/marketguard/internal/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitSummarize(t *testing.T) {
	flip := func(profit int64, category string) models.FlipResult {
		return models.FlipResult{
			Title:           category,
			EstimatedProfit: decimal.NewFromInt(profit),
			Flip:            true,
			Category:        category,
		}
	}

	results := []models.FlipResult{
		flip(30, "Drills"),
		flip(90, "Power Tools"),
		nearMissResult,
		flip(50, "Drills"),
		flip(20, "Multimeters"),
		flip(70, "Drills"),
		flip(40, "Multimeters"),
		{Title: "no signal", Category: models.UnknownCategory},
	}
	stats := models.NewScanStats(time.Time{})
	stats.Screened[gate.ScreenAuctionOnly] = 3

	summary := report.Summarize(results, stats, time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 8, summary.Analyzed, "should count analyzed results")
	assert.Equal(t, 3, summary.SkippedAuctions, "should count skipped auctions")
	assert.Equal(t, 6, summary.Flips, "should count flips")
	assert.Equal(t, 1, summary.NearMisses, "should count near-misses")

	profits := make([]float64, 0, len(summary.TopFlips))
	for _, f := range summary.TopFlips {
		profits = append(profits, f.EstimatedProfit)
	}
	assert.Equal(t, []float64{90, 70, 50, 40, 30}, profits, "should return top 5 flips by profit")

	assert.Equal(t, []report.CategoryCount{
		{Category: "Drills", Flips: 3},
		{Category: "Multimeters", Flips: 2},
		{Category: "Power Tools", Flips: 1},
	}, summary.Categories, "should count flips per category sorted by count")

	assert.Equal(t, report.Fall, summary.Season, "should return season of provided time")
	assert.Equal(t, "Power Tools", summary.SuggestedCategory, "should prefer category matching season")
	assert.Contains(t, summary.String(), "Analyzed: 8 | Skipped auctions: 3 | Flips: 6", "should format summary")
}

func TestUnitSummarizeSuggestion(t *testing.T) {
	tests := map[string]struct {
		categories []string
		month      time.Month
		want       string
	}{
		"season match": {
			categories: []string{"Tools", "Tools", "Snow Gear & Boots"},
			month:      time.January,
			want:       "Snow Gear & Boots",
		},
		"most flipped without season match": {
			categories: []string{"Tools", "Tools", "Cameras"},
			month:      time.July,
			want:       "Tools",
		},
		"unknown category only": {
			categories: []string{models.UnknownCategory},
			month:      time.July,
		},
		"no flips": {
			month: time.July,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			results := make([]models.FlipResult, 0, len(tt.categories))
			for _, category := range tt.categories {
				results = append(results, models.FlipResult{Flip: true, Category: category, EstimatedProfit: decimal.NewFromInt(25)})
			}

			summary := report.Summarize(results, nil, time.Date(2024, tt.month, 10, 0, 0, 0, 0, time.UTC))

			assert.Equal(t, tt.want, summary.SuggestedCategory, "should suggest correct category")
		})
	}
}

func TestUnitSeason(t *testing.T) {
	assert.Equal(t, report.Winter, report.Season(time.December), "should return winter for December")
	assert.Equal(t, report.Winter, report.Season(time.February), "should return winter for February")
	assert.Equal(t, report.Spring, report.Season(time.March), "should return spring for March")
	assert.Equal(t, report.Summer, report.Season(time.August), "should return summer for August")
	assert.Equal(t, report.Fall, report.Season(time.November), "should return fall for November")
}

func TestUnitWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	summary := report.Summarize([]models.FlipResult{flipResult, nearMissResult}, nil, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, report.WriteSummary(&buf, summary), "shouldn't return any error")

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got), "should write valid JSON")
	assert.Equal(t, 2.0, got["analyzed"], "should write analyzed count")
	assert.Equal(t, 1.0, got["flips"], "should write flips count")
	assert.Equal(t, report.Spring, got["season"], "should write season")
	assert.Equal(t, "Power Tools", got["suggested_category"], "should write suggested category")
}
