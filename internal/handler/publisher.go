package handler

import (
	"context"

	"github.com/MichalMitros/marketguard/internal/platform/models"
	"github.com/MichalMitros/marketguard/internal/report"
	"github.com/MichalMitros/marketguard/pkg/v1/commander"
)

//go:generate mockery --name FlipSender --filename flipsender.go

// FlipSender sends flip messages.
type FlipSender interface {
	SendFlip(ctx context.Context, flip commander.FlipMessage) error
}

// ResultPublisher publishes flip results as flip messages.
type ResultPublisher struct {
	sender FlipSender
}

// NewResultPublisher returns new ResultPublisher.
func NewResultPublisher(sender FlipSender) *ResultPublisher {
	return &ResultPublisher{sender: sender}
}

// PublishResult publishes single flip result.
func (p *ResultPublisher) PublishResult(ctx context.Context, result models.FlipResult) error {
	return p.sender.SendFlip(ctx, report.NewRecord(result))
}
