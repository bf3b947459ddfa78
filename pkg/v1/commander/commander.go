package commander

import (
	"context"
	"encoding/json"
	"fmt"
)

//go:generate mockery --name Sender --filename sender.go

// Sender sends messages.
type Sender interface {
	Send(context.Context, []byte) error
}

// ScanCommander sends scan commands.
type ScanCommander struct {
	sender Sender
}

// NewScanCommander returns new ScanCommander using provided sender for sending messages.
func NewScanCommander(sender Sender) ScanCommander {
	return ScanCommander{
		sender: sender,
	}
}

// SendScanCommand sends scan command with listings from source.
// Listings may be nil, then worker fetches them from source URL.
func (c ScanCommander) SendScanCommand(ctx context.Context, source string, listings json.RawMessage) error {
	cmd := ScanCommand{
		Source:   source,
		Listings: listings,
	}

	cmdMsg, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("can't marshal scan command: %w", err)
	}

	return c.sender.Send(ctx, cmdMsg)
}

// DecodeFlipMessage decodes flip message published by worker.
func DecodeFlipMessage(msg []byte) (*FlipMessage, error) {
	var flip FlipMessage
	if err := json.Unmarshal(msg, &flip); err != nil {
		return nil, fmt.Errorf("can't decode flip message: %w", err)
	}

	return &flip, nil
}

// FlipSender sends flip messages.
type FlipSender struct {
	sender Sender
}

// NewFlipSender returns new FlipSender using provided sender for sending messages.
func NewFlipSender(sender Sender) FlipSender {
	return FlipSender{
		sender: sender,
	}
}

// SendFlip sends single flip message.
func (s FlipSender) SendFlip(ctx context.Context, flip FlipMessage) error {
	msg, err := json.Marshal(flip)
	if err != nil {
		return fmt.Errorf("can't marshal flip message: %w", err)
	}

	return s.sender.Send(ctx, msg)
}
