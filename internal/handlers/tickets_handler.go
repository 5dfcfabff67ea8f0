package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-maintenance-tickets/internal/tickets"
	"github.com/imrishuroy/go-maintenance-tickets/internal/validation"
)

// TicketCoordinator is the coordinator surface the HTTP layer consumes.
type TicketCoordinator interface {
	CreateTicket(ctx context.Context, in tickets.CreateInput) (*tickets.CreateResult, error)
	ListTickets(ctx context.Context, stateFilter string) ([]tickets.Ticket, error)
	GetTicket(ctx context.Context, ticketID string) (*tickets.Ticket, error)
	UpdateTicketState(ctx context.Context, ticketID, newState, technician string) (*tickets.Ticket, error)
	RequestImageAccess(ctx context.Context, ticketID string) (string, error)
	DeleteTicket(ctx context.Context, ticketID string) error
}

// HandlerConfig groups dependencies for the ticket routes.
type HandlerConfig struct {
	Coordinator TicketCoordinator
	Log         *zap.Logger
}

// RegisterTicketRoutes registers the ticket API.
func RegisterTicketRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()

	r.POST("/tickets", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CreateTicketRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		imageBytes, err := decodeImage(req.ImageBase64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "msg": "imageBase64 is not valid base64"})
			return
		}

		res, err := cfg.Coordinator.CreateTicket(ctx, tickets.CreateInput{
			Description: req.Description,
			Location:    req.Location,
			Reporter:    req.Reporter,
			Priority:    req.Priority,
			ImageBytes:  imageBytes,
			AttachImage: req.AttachImage,
		})
		if err != nil {
			writeError(c, cfg.Log, err)
			return
		}

		resp := gin.H{"ticket": res.Ticket}
		if res.UploadURL != "" {
			// the caller uploads bytes directly to blob storage
			resp["uploadUrl"] = res.UploadURL
		}
		c.Header("Location", "/tickets/"+res.Ticket.TicketID)
		c.JSON(http.StatusCreated, resp)
	})

	r.GET("/tickets", func(c *gin.Context) {
		var q validation.ListTicketsQuery
		if err := validation.BindQueryAndValidate(c, &q, v); err != nil {
			return
		}

		items, err := cfg.Coordinator.ListTickets(c.Request.Context(), q.State)
		if err != nil {
			writeError(c, cfg.Log, err)
			return
		}
		if items == nil {
			items = []tickets.Ticket{}
		}
		c.JSON(http.StatusOK, items)
	})

	r.GET("/tickets/:id", func(c *gin.Context) {
		t, err := cfg.Coordinator.GetTicket(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, cfg.Log, err)
			return
		}
		c.JSON(http.StatusOK, t)
	})

	r.GET("/tickets/:id/image", func(c *gin.Context) {
		url, err := cfg.Coordinator.RequestImageAccess(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, cfg.Log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"imageUrl": url})
	})

	r.PUT("/tickets/:id", func(c *gin.Context) {
		var req validation.UpdateTicketRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		t, err := cfg.Coordinator.UpdateTicketState(c.Request.Context(), c.Param("id"), req.State, req.AssignedTechnician)
		if err != nil {
			writeError(c, cfg.Log, err)
			return
		}
		c.JSON(http.StatusOK, t)
	})

	r.DELETE("/tickets/:id", func(c *gin.Context) {
		if err := cfg.Coordinator.DeleteTicket(c.Request.Context(), c.Param("id")); err != nil {
			writeError(c, cfg.Log, err)
			return
		}
		// idempotent: deleting an unknown ticket is still a 200
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	})
}

// writeError maps coordinator errors onto stable error kinds the
// caller can branch on.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	var ve *tickets.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "msg": ve.Reason})
		return
	}

	switch {
	case errors.Is(err, tickets.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, tickets.ErrNoImage):
		c.JSON(http.StatusNotFound, gin.H{"error": "no_image"})
	case errors.Is(err, tickets.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid_transition", "msg": err.Error()})
	case errors.Is(err, tickets.ErrConcurrentModification):
		// safe for the caller to retry the whole operation
		c.JSON(http.StatusConflict, gin.H{"error": "concurrent_modification"})
	default:
		var se *tickets.StorageError
		if errors.As(err, &se) {
			log.Error("storage failure", zap.String("op", se.Op), zap.Error(se.Err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage_error"})
			return
		}
		log.Error("unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

// decodeImage strips the data-URL prefix browsers prepend and decodes
// the payload. An empty input is no image, not an error.
func decodeImage(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[i+1:]
	}
	return base64.StdEncoding.DecodeString(s)
}
