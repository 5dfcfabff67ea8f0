package tickets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-maintenance-tickets/internal/metrics"
	"github.com/imrishuroy/go-maintenance-tickets/internal/retry"
)

// MetadataStore is the durable owner of ticket record bytes.
type MetadataStore interface {
	Create(ctx context.Context, t *Ticket) error
	Get(ctx context.Context, ticketID string) (*Ticket, error)
	Scan(ctx context.Context, state string) ([]Ticket, error)
	Update(ctx context.Context, t *Ticket, expectedVersion int64) error
	Delete(ctx context.Context, ticketID string) error
}

// BlobStore issues time-bounded references to image objects and deletes
// them. It carries no business logic and no internal retries.
type BlobStore interface {
	AllocateWriteLocation(ctx context.Context, ticketID string) (key, url string, err error)
	AllocateReadLocation(ctx context.Context, key string) (url string, err error)
	Upload(ctx context.Context, ticketID string, data []byte) (key string, err error)
	Delete(ctx context.Context, key string) error
}

// Notifier publishes completion events. At-least-once, fire-and-forget.
type Notifier interface {
	PublishCompletion(ctx context.Context, ev CompletionEvent) error
}

// CleanupQueue accepts blob keys whose deletion must be re-attempted
// out of band.
type CleanupQueue interface {
	Enqueue(ctx context.Context, imageKey, ticketID, reason string) error
}

// CoordinatorConfig groups the knobs the Coordinator needs.
type CoordinatorConfig struct {
	MaxImageBytes  int64
	RetryAttempts  int
	RetryBaseDelay time.Duration
}

// Coordinator drives the ticket state machine and owns every
// cross-adapter invariant. Metadata writes are authoritative; blob and
// notification calls are best-effort side effects outside the
// consistency boundary.
type Coordinator struct {
	meta     MetadataStore
	blobs    BlobStore
	notifier Notifier
	cleanup  CleanupQueue
	recorder *metrics.Recorder
	log      *zap.Logger
	cfg      CoordinatorConfig
	nowFunc  func() time.Time
}

// NewCoordinator wires a Coordinator. recorder may be nil.
func NewCoordinator(meta MetadataStore, blobs BlobStore, notifier Notifier, cleanup CleanupQueue, recorder *metrics.Recorder, log *zap.Logger, cfg CoordinatorConfig) *Coordinator {
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 100 * time.Millisecond
	}
	return &Coordinator{
		meta:     meta,
		blobs:    blobs,
		notifier: notifier,
		cleanup:  cleanup,
		recorder: recorder,
		log:      log,
		cfg:      cfg,
		nowFunc:  time.Now,
	}
}

// CreateInput carries the operator submission for a new ticket.
type CreateInput struct {
	Description string
	Location    string
	Reporter    string
	Priority    string

	// ImageBytes holds a decoded inline upload. Mutually exclusive with
	// AttachImage.
	ImageBytes []byte

	// AttachImage requests a pre-signed write URL so the caller uploads
	// bytes directly to blob storage, off this service's compute path.
	AttachImage bool
}

// CreateResult is the outcome of CreateTicket. UploadURL is set only
// when an image upload is pending on the caller.
type CreateResult struct {
	Ticket    Ticket
	UploadURL string
}

// CreateTicket validates the submission, stores the optional image and
// persists a new OPEN ticket. The size guard runs before any adapter
// call.
func (c *Coordinator) CreateTicket(ctx context.Context, in CreateInput) (*CreateResult, error) {
	if in.Description == "" || in.Location == "" || in.Reporter == "" {
		return nil, &ValidationError{Reason: "description, location and reporter are required"}
	}
	if in.Priority == "" {
		in.Priority = PriorityLow
	}
	if !ValidPriority(in.Priority) {
		return nil, &ValidationError{Reason: "unknown priority " + in.Priority}
	}
	if len(in.ImageBytes) > 0 && in.AttachImage {
		return nil, &ValidationError{Reason: "inline image and deferred upload are mutually exclusive"}
	}
	if int64(len(in.ImageBytes)) > c.cfg.MaxImageBytes {
		return nil, &ValidationError{Reason: "image exceeds maximum allowed size"}
	}

	now := c.nowFunc().UTC()
	t := Ticket{
		TicketID:    uuid.NewString(),
		State:       StateOpen,
		Description: in.Description,
		Location:    in.Location,
		Reporter:    in.Reporter,
		Priority:    in.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}

	var uploadURL string
	switch {
	case len(in.ImageBytes) > 0:
		key, err := c.blobs.Upload(ctx, t.TicketID, in.ImageBytes)
		if err != nil {
			return nil, &StorageError{Op: "image upload", Err: err}
		}
		t.ImageKey = key
	case in.AttachImage:
		key, url, err := c.blobs.AllocateWriteLocation(ctx, t.TicketID)
		if err != nil {
			return nil, &StorageError{Op: "allocate upload url", Err: err}
		}
		t.ImageKey = key
		uploadURL = url
	}

	err := retry.Do(ctx, c.cfg.RetryAttempts, c.cfg.RetryBaseDelay, func(ctx context.Context) error {
		return c.meta.Create(ctx, &t)
	})
	if err != nil {
		// The record never existed; reclaim the blob so it does not
		// leak, falling back to the cleanup queue.
		if t.ImageKey != "" && len(in.ImageBytes) > 0 {
			c.reclaimBlob(ctx, t.ImageKey, t.TicketID, "create_failed")
		}
		return nil, &StorageError{Op: "create ticket", Err: err}
	}

	c.recorder.Count(ctx, metrics.TicketsCreated)
	c.log.Info("ticket created",
		zap.String("ticket_id", t.TicketID),
		zap.Bool("has_image", t.ImageKey != ""))

	return &CreateResult{Ticket: t, UploadURL: uploadURL}, nil
}

// ListTickets returns all tickets, oldest first, optionally filtered by
// state. Each listed ticket with an attached image carries a short-lived
// read URL. Re-querying always reflects current store state.
func (c *Coordinator) ListTickets(ctx context.Context, stateFilter string) ([]Ticket, error) {
	filter := ""
	switch stateFilter {
	case "", "ALL":
	case StateOpen, StateInProgress, StateComplete:
		filter = stateFilter
	default:
		return nil, &ValidationError{Reason: "unknown state filter " + stateFilter}
	}

	items, err := c.meta.Scan(ctx, filter)
	if err != nil {
		return nil, &StorageError{Op: "list tickets", Err: err}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].TicketID < items[j].TicketID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	for i := range items {
		if items[i].ImageKey == "" {
			continue
		}
		url, err := c.blobs.AllocateReadLocation(ctx, items[i].ImageKey)
		if err != nil {
			// Listing still succeeds; the caller just gets no preview.
			c.log.Warn("presign read url failed",
				zap.String("ticket_id", items[i].TicketID),
				zap.Error(err))
			continue
		}
		items[i].ImageURL = url
	}
	return items, nil
}

// GetTicket fetches one ticket by id.
func (c *Coordinator) GetTicket(ctx context.Context, ticketID string) (*Ticket, error) {
	t, err := c.meta.Get(ctx, ticketID)
	if err != nil {
		return nil, &StorageError{Op: "get ticket", Err: err}
	}
	if t == nil {
		return nil, ErrTicketNotFound
	}
	return t, nil
}

// UpdateTicketState applies a state transition. The conditional
// metadata write is the authoritative step and runs first so that
// exactly one of two racing updates performs the completion side
// effects; the loser gets ErrConcurrentModification. On transition to
// COMPLETE the image key is cleared in the same write, the blob delete
// and the completion notification follow best-effort.
func (c *Coordinator) UpdateTicketState(ctx context.Context, ticketID, newState, technician string) (*Ticket, error) {
	if !ValidState(newState) {
		return nil, &ValidationError{Reason: "unknown state " + newState}
	}

	cur, err := c.meta.Get(ctx, ticketID)
	if err != nil {
		return nil, &StorageError{Op: "get ticket", Err: err}
	}
	if cur == nil {
		return nil, ErrTicketNotFound
	}
	if !ValidTransition(cur.State, newState) {
		return nil, fmt.Errorf("cannot move %s -> %s: %w", cur.State, newState, ErrInvalidTransition)
	}

	next := *cur
	next.State = newState
	next.UpdatedAt = c.nowFunc().UTC()
	next.Version = cur.Version + 1
	if technician != "" {
		next.AssignedTechnician = technician
	}

	priorImageKey := ""
	if newState == StateComplete {
		priorImageKey = cur.ImageKey
		next.ImageKey = ""
	}

	err = retry.Do(ctx, c.cfg.RetryAttempts, c.cfg.RetryBaseDelay, func(ctx context.Context) error {
		err := c.meta.Update(ctx, &next, cur.Version)
		if errors.Is(err, ErrConcurrentModification) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, ErrConcurrentModification) {
			return nil, err
		}
		return nil, &StorageError{Op: "update ticket", Err: err}
	}

	if newState == StateComplete {
		if priorImageKey != "" {
			c.reclaimBlob(ctx, priorImageKey, ticketID, "ticket_complete")
		}
		ev := CompletionEvent{
			TicketID:    next.TicketID,
			Description: next.Description,
			Location:    next.Location,
			Reporter:    next.Reporter,
			Technician:  next.AssignedTechnician,
		}
		if err := c.notifier.PublishCompletion(ctx, ev); err != nil {
			// Never blocks or rolls back the state transition.
			c.recorder.Count(ctx, metrics.NotificationFailures)
			c.log.Warn("completion notification failed",
				zap.String("ticket_id", ticketID),
				zap.Error(err))
		}
		c.recorder.Count(ctx, metrics.TicketsCompleted)
	}

	c.log.Info("ticket state updated",
		zap.String("ticket_id", ticketID),
		zap.String("from", cur.State),
		zap.String("to", newState))

	return &next, nil
}

// RequestImageAccess returns a short-lived read URL for the attached
// image. No mutation.
func (c *Coordinator) RequestImageAccess(ctx context.Context, ticketID string) (string, error) {
	t, err := c.meta.Get(ctx, ticketID)
	if err != nil {
		return "", &StorageError{Op: "get ticket", Err: err}
	}
	if t == nil {
		return "", ErrTicketNotFound
	}
	if t.ImageKey == "" {
		return "", ErrNoImage
	}
	url, err := c.blobs.AllocateReadLocation(ctx, t.ImageKey)
	if err != nil {
		return "", &StorageError{Op: "allocate read url", Err: err}
	}
	return url, nil
}

// DeleteTicket removes the record and best-effort deletes any attached
// blob. Deleting a nonexistent ticket is a no-op success, so retried
// client calls stay safe.
func (c *Coordinator) DeleteTicket(ctx context.Context, ticketID string) error {
	t, err := c.meta.Get(ctx, ticketID)
	if err != nil {
		return &StorageError{Op: "get ticket", Err: err}
	}
	if t == nil {
		return nil
	}

	if t.ImageKey != "" {
		c.reclaimBlob(ctx, t.ImageKey, ticketID, "ticket_deleted")
	}

	err = retry.Do(ctx, c.cfg.RetryAttempts, c.cfg.RetryBaseDelay, func(ctx context.Context) error {
		return c.meta.Delete(ctx, ticketID)
	})
	if err != nil {
		return &StorageError{Op: "delete ticket", Err: err}
	}

	c.log.Info("ticket deleted", zap.String("ticket_id", ticketID))
	return nil
}

// reclaimBlob deletes a blob best-effort. A failed delete is handed to
// the cleanup queue for the reconciliation worker; a failed enqueue is
// logged and dropped, leaving the orphan for a later sweep.
func (c *Coordinator) reclaimBlob(ctx context.Context, imageKey, ticketID, reason string) {
	err := c.blobs.Delete(ctx, imageKey)
	if err == nil {
		return
	}
	c.log.Warn("blob delete failed, queueing cleanup",
		zap.String("ticket_id", ticketID),
		zap.String("image_key", imageKey),
		zap.Error(err))

	c.recorder.Count(ctx, metrics.CleanupEnqueued)
	if err := c.cleanup.Enqueue(ctx, imageKey, ticketID, reason); err != nil {
		c.log.Error("cleanup enqueue failed, blob orphaned",
			zap.String("ticket_id", ticketID),
			zap.String("image_key", imageKey),
			zap.Error(err))
	}
}
