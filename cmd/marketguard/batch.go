package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/MichalMitros/marketguard/cmd/marketguard/config"
	"github.com/MichalMitros/marketguard/internal/fetcher"
	"github.com/MichalMitros/marketguard/internal/pipeline"
	"github.com/MichalMitros/marketguard/internal/platform"
	"github.com/MichalMitros/marketguard/internal/platform/models"
	"github.com/MichalMitros/marketguard/internal/report"
	"github.com/rs/zerolog"
)

// runBatch evaluates listings file once and writes reports.
// Reports are written even when the scan was interrupted by a decoding error.
func runBatch(
	ctx context.Context,
	cfg config.Config,
	pipe *pipeline.Pipeline,
	httpFetcher *fetcher.Fetcher,
	logger *zerolog.Logger,
) error {
	listings, err := openListings(ctx, cfg.ListingsPath, httpFetcher)
	if err != nil {
		return err
	}
	defer listings.Close()

	logger.Info().
		Str("listings", cfg.ListingsPath).
		Msg("batch scan started")

	results, stats, scanErr := pipe.Run(ctx, listings)
	if scanErr != nil {
		logger.Error().
			Err(scanErr).
			Msg("scan interrupted, writing partial report")
	}

	if err := writeReports(cfg, results, stats, logger); err != nil {
		return err
	}

	return scanErr
}

func openListings(ctx context.Context, path string, httpFetcher *fetcher.Fetcher) (io.ReadCloser, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		file, err := httpFetcher.FetchDocument(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("%w: can't fetch listings file: %w", platform.ErrNoListings, err)
		}
		return file, nil
	}

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s not found", platform.ErrNoListings, path)
	}
	if err != nil {
		return nil, fmt.Errorf("can't open listings file: %w", err)
	}

	return file, nil
}

func writeReports(cfg config.Config, results []models.FlipResult, stats *models.ScanStats, logger *zerolog.Logger) error {
	err := report.WriteFile(cfg.ReportPath, func(w io.Writer) error {
		return report.WriteJSON(w, results)
	})
	if err != nil {
		return fmt.Errorf("can't write report: %w", err)
	}

	if cfg.ReportCSVPath != "" {
		err := report.WriteFile(cfg.ReportCSVPath, func(w io.Writer) error {
			return report.WriteCSV(w, results)
		})
		if err != nil {
			return fmt.Errorf("can't write CSV report: %w", err)
		}
	}

	summary := report.Summarize(results, stats, time.Now())
	logger.Info().Msg(summary.String())

	if cfg.SummaryPath != "" {
		err := report.WriteFile(cfg.SummaryPath, func(w io.Writer) error {
			return report.WriteSummary(w, summary)
		})
		if err != nil {
			return fmt.Errorf("can't write summary: %w", err)
		}
	}

	logger.Info().
		Str("report", cfg.ReportPath).
		Int("results", len(results)).
		Msg("batch scan finished")

	return nil
}
