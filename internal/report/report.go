package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MichalMitros/marketguard/internal/platform/models"
	"github.com/MichalMitros/marketguard/pkg/v1/commander"
	"github.com/samber/lo"
)

var csvHeader = []string{
	"title", "query", "buy_price", "avg_resale", "volume", "estimated_profit",
	"roi_percent", "flip", "near_miss", "near_miss_reasons", "url", "category",
}

// NewRecord returns flip message of result.
func NewRecord(result models.FlipResult) commander.FlipMessage {
	reasons := result.NearMissReasons
	if reasons == nil {
		reasons = []string{}
	}

	return commander.FlipMessage{
		Title:           result.Title,
		Query:           result.Query,
		BuyPrice:        result.BuyPrice.InexactFloat64(),
		AvgResale:       result.AvgResalePrice.InexactFloat64(),
		Volume:          result.Volume30d,
		EstimatedProfit: result.EstimatedProfit.InexactFloat64(),
		ROIPercent:      result.ROIPercent.InexactFloat64(),
		Flip:            result.Flip,
		NearMiss:        result.NearMiss,
		NearMissReasons: reasons,
		URL:             result.URL,
		Category:        result.Category,
	}
}

// Records returns flip messages of results in the same order.
func Records(results []models.FlipResult) []commander.FlipMessage {
	return lo.Map(results, func(result models.FlipResult, _ int) commander.FlipMessage {
		return NewRecord(result)
	})
}

// WriteJSON writes results as indented JSON array.
func WriteJSON(w io.Writer, results []models.FlipResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(Records(results)); err != nil {
		return fmt.Errorf("can't encode report: %w", err)
	}
	return nil
}

// WriteCSV writes results as CSV with header row.
func WriteCSV(w io.Writer, results []models.FlipResult) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("can't write CSV header: %w", err)
	}

	for _, result := range results {
		row := []string{
			result.Title,
			result.Query,
			result.BuyPrice.StringFixed(2),
			result.AvgResalePrice.StringFixed(2),
			strconv.Itoa(result.Volume30d),
			result.EstimatedProfit.StringFixed(2),
			result.ROIPercent.StringFixed(1),
			strconv.FormatBool(result.Flip),
			strconv.FormatBool(result.NearMiss),
			strings.Join(result.NearMissReasons, "; "),
			result.URL,
			result.Category,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("can't write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("can't flush CSV: %w", err)
	}
	return nil
}

// WriteFile creates or truncates file at path and writes into it using write.
// Intermediate directories are created.
func WriteFile(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("can't create report directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("can't create report file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("can't close report file: %w", closeErr)
		}
	}()

	return write(f)
}
