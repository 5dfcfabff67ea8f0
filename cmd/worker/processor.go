package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-maintenance-tickets/internal/cleanup"
	"github.com/imrishuroy/go-maintenance-tickets/internal/metrics"
)

// BlobDeleter is the only blob-store capability the sweep needs.
type BlobDeleter interface {
	Delete(ctx context.Context, key string) error
}

// Processor re-attempts blob deletions that failed synchronously during
// a completion or ticket delete. Ticket metadata is already settled by
// the time a message lands here; this is pure storage reclamation.
type Processor struct {
	blobs    BlobDeleter
	recorder *metrics.Recorder
	log      *zap.Logger
}

// NewProcessor creates a cleanup processor. recorder may be nil.
func NewProcessor(blobs BlobDeleter, recorder *metrics.Recorder, log *zap.Logger) *Processor {
	return &Processor{
		blobs:    blobs,
		recorder: recorder,
		log:      log,
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Return error: Lambda will retry. If failed too many times, message goes to DLQ.
			p.log.Error("cleanup worker error", zap.Error(err))
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg cleanup.Message
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if msg.ImageKey == "" {
		// nothing to reclaim; swallow instead of redriving forever
		p.log.Warn("cleanup message without image key", zap.String("ticket_id", msg.TicketID))
		return nil
	}

	if err := p.blobs.Delete(ctx, msg.ImageKey); err != nil {
		return fmt.Errorf("delete blob %s: %w", msg.ImageKey, err)
	}

	p.recorder.Count(ctx, metrics.CleanupRetried)
	p.log.Info("orphaned blob reclaimed",
		zap.String("ticket_id", msg.TicketID),
		zap.String("image_key", msg.ImageKey),
		zap.String("reason", msg.Reason))
	return nil
}
