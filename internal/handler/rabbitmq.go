package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/MichalMitros/marketguard/internal/platform"
	"github.com/MichalMitros/marketguard/internal/platform/models"
	"github.com/MichalMitros/marketguard/internal/platform/rabbitmq"
	"github.com/MichalMitros/marketguard/pkg/v1/commander"
	"github.com/rs/zerolog"
)

//go:generate mockery --name Consumer --filename consumer.go
//go:generate mockery --name Pipeline --filename pipeline.go
//go:generate mockery --name Fetcher --filename fetcher.go

// Consumer consumes messages from queue.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler rabbitmq.HandlerFunc) (<-chan error, error)
}

// Pipeline evaluates listings file.
type Pipeline interface {
	Run(ctx context.Context, file io.Reader) ([]models.FlipResult, *models.ScanStats, error)
}

// Fetcher fetches listings file.
type Fetcher interface {
	FetchDocument(context.Context, string) (io.ReadCloser, error)
}

// RMQHandler handles RMQ scan commands.
type RMQHandler struct {
	consumer Consumer
	pipeline Pipeline
	fetcher  Fetcher
	logger   *zerolog.Logger
}

// NewHandler returns new RMQHandler.
func NewHandler(consumer Consumer, pipeline Pipeline, fetcher Fetcher, logger *zerolog.Logger) *RMQHandler {
	return &RMQHandler{
		consumer: consumer,
		pipeline: pipeline,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// Start starts consuming and handling scan commands from RMQ.
func (h *RMQHandler) Start(ctx context.Context, queue string) error {
	errorsChan, err := h.consumer.Consume(ctx, queue, h.Handle)
	if err != nil {
		return err
	}

	go func() {
		for err := range errorsChan {
			h.logger.Error().
				Err(err).
				Msg("can't handle message")
		}
	}()

	return nil
}

// Handle runs pipeline for a single scan command.
func (h *RMQHandler) Handle(ctx context.Context, message []byte) error {
	cmd, err := decodeMessage(message)
	if err != nil {
		return err
	}

	h.logger.Debug().
		Str("source", cmd.Source).
		Msg("scan started")

	listings, err := h.openListings(ctx, cmd)
	if err != nil {
		return err
	}
	defer listings.Close()

	results, stats, err := h.pipeline.Run(ctx, listings)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	h.logger.Info().
		Str("source", cmd.Source).
		Int("results", len(results)).
		Int32("flips", stats.Flips).
		Int32("nearMisses", stats.NearMisses).
		Msg("scan finished")

	return nil
}

func (h *RMQHandler) openListings(ctx context.Context, cmd *commander.ScanCommand) (io.ReadCloser, error) {
	if len(cmd.Listings) > 0 {
		return io.NopCloser(bytes.NewReader(cmd.Listings)), nil
	}

	if cmd.Source == "" {
		return nil, platform.ErrNoListings
	}

	file, err := h.fetcher.FetchDocument(ctx, cmd.Source)
	if err != nil {
		return nil, fmt.Errorf("can't fetch listings file: %w", err)
	}

	return file, nil
}

func decodeMessage(msg []byte) (*commander.ScanCommand, error) {
	var cmd commander.ScanCommand
	err := json.Unmarshal(msg, &cmd)
	if err != nil {
		return nil, fmt.Errorf("can't decode scan command: %w", err)
	}

	return &cmd, err
}
