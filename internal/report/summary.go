package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/MichalMitros/marketguard/internal/gate"
	"github.com/MichalMitros/marketguard/internal/platform/models"
	"github.com/MichalMitros/marketguard/pkg/v1/commander"
	"github.com/samber/lo"
)

const topFlips = 5

// Seasons.
const (
	Winter = "Winter"
	Spring = "Spring"
	Summer = "Summer"
	Fall   = "Fall"
)

// SeasonalTags are category fragments preferred when suggesting category in a season.
var SeasonalTags = map[string][]string{
	Winter: {"heaters", "snow gear", "jackets"},
	Spring: {"garden tools", "home improvement", "cleaning supplies"},
	Summer: {"air conditioners", "pool equipment", "outdoor gear"},
	Fall:   {"power tools", "backpacks", "decorations"},
}

// CategoryCount is number of flips in category.
type CategoryCount struct {
	Category string `json:"category"`
	Flips    int    `json:"flips"`
}

// Summary sums up a single scan.
type Summary struct {
	Analyzed          int                     `json:"analyzed"`
	SkippedAuctions   int                     `json:"skipped_auctions"`
	Flips             int                     `json:"flips"`
	NearMisses        int                     `json:"near_misses"`
	TopFlips          []commander.FlipMessage `json:"top_flips"`
	Categories        []CategoryCount         `json:"categories"`
	Season            string                  `json:"season"`
	SuggestedCategory string                  `json:"suggested_category,omitempty"`
}

// Summarize builds summary of results. Stats may be nil.
func Summarize(results []models.FlipResult, stats *models.ScanStats, now time.Time) Summary {
	flips := lo.Filter(results, func(r models.FlipResult, _ int) bool { return r.Flip })

	top := make([]models.FlipResult, len(flips))
	copy(top, flips)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].EstimatedProfit.GreaterThan(top[j].EstimatedProfit)
	})
	if len(top) > topFlips {
		top = top[:topFlips]
	}

	categories := lo.MapToSlice(
		lo.GroupBy(flips, func(r models.FlipResult) string { return r.Category }),
		func(category string, group []models.FlipResult) CategoryCount {
			return CategoryCount{Category: category, Flips: len(group)}
		},
	)
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Flips != categories[j].Flips {
			return categories[i].Flips > categories[j].Flips
		}
		return categories[i].Category < categories[j].Category
	})

	season := Season(now.Month())

	summary := Summary{
		Analyzed:          len(results),
		Flips:             len(flips),
		NearMisses:        lo.CountBy(results, func(r models.FlipResult) bool { return r.NearMiss }),
		TopFlips:          Records(top),
		Categories:        categories,
		Season:            season,
		SuggestedCategory: suggestCategory(categories, season),
	}
	if stats != nil {
		summary.SkippedAuctions = int(stats.Screened[gate.ScreenAuctionOnly])
	}

	return summary
}

// Season returns season of month on the northern hemisphere.
func Season(month time.Month) string {
	switch month {
	case time.December, time.January, time.February:
		return Winter
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	default:
		return Fall
	}
}

// String returns human readable summary.
func (s Summary) String() string {
	lines := []string{
		fmt.Sprintf("Analyzed: %d | Skipped auctions: %d | Flips: %d | Near-misses: %d",
			s.Analyzed, s.SkippedAuctions, s.Flips, s.NearMisses),
	}

	if len(s.TopFlips) > 0 {
		lines = append(lines, "Top flips:")
		for ix, flip := range s.TopFlips {
			lines = append(lines, fmt.Sprintf("%d) $%.2f -> $%.2f (profit ~$%.2f) %s %s",
				ix+1, flip.BuyPrice, flip.AvgResale, flip.EstimatedProfit, flip.Title, flip.URL))
		}
	}

	if len(s.Categories) > 0 {
		lines = append(lines, "Top flipping categories:")
		for _, c := range s.Categories {
			lines = append(lines, fmt.Sprintf("- %s: %d flips", c.Category, c.Flips))
		}
	}

	if s.SuggestedCategory != "" {
		lines = append(lines, fmt.Sprintf("Suggested category: %s (%s)", s.SuggestedCategory, s.Season))
	}

	return strings.Join(lines, "\n")
}

// suggestCategory returns the most flipped category matching season tags,
// the most flipped category when none matches, or empty string when there are no real categories.
func suggestCategory(categories []CategoryCount, season string) string {
	known := lo.Filter(categories, func(c CategoryCount, _ int) bool {
		return c.Category != models.UnknownCategory
	})
	if len(known) == 0 {
		return ""
	}

	tags := SeasonalTags[season]
	if matched, ok := lo.Find(known, func(c CategoryCount) bool {
		category := strings.ToLower(c.Category)
		return lo.SomeBy(tags, func(tag string) bool { return strings.Contains(category, tag) })
	}); ok {
		return matched.Category
	}

	return known[0].Category
}

// WriteSummary writes summary as indented JSON.
func WriteSummary(w io.Writer, summary Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summary); err != nil {
		return fmt.Errorf("can't encode summary: %w", err)
	}
	return nil
}
