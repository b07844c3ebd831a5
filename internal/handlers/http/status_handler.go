package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"nowplaying/internal/core/domain"
	"nowplaying/internal/core/ports"
	apperrors "nowplaying/pkg/errors"
	"nowplaying/pkg/logger"
	"nowplaying/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StatusHandler struct {
	statusService ports.StatusService
}

func NewStatusHandler(statusService ports.StatusService) *StatusHandler {
	return &StatusHandler{
		statusService: statusService,
	}
}

func (h *StatusHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/status-requests", h.CreateStatusRequest)
		api.GET("/status", h.GetStatus)
	}
}

// capturedDelivery keeps the rendered text so the HTTP caller gets it in the response.
type capturedDelivery struct {
	mu   sync.Mutex
	text string
}

func (d *capturedDelivery) Deliver(ctx context.Context, recipient domain.RecipientID, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = text
	return nil
}

// CreateStatusRequest runs one status request synchronously.
func (h *StatusHandler) CreateStatusRequest(c *gin.Context) {
	var req struct {
		RecipientID string     `json:"recipient_id"`
		RequestedAt *time.Time `json:"requested_at"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidInputError("invalid request body"))
		return
	}
	if err := validation.ValidateRecipientID(req.RecipientID); err != nil {
		c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	statusReq := domain.StatusRequest{
		RecipientID: domain.RecipientID(req.RecipientID),
		RequestedAt: time.Now(),
	}
	if id, ok := logger.RequestID(c.Request.Context()); ok {
		statusReq.RequestID = id
	} else {
		statusReq.RequestID = uuid.NewString()
	}
	if req.RequestedAt != nil && !req.RequestedAt.IsZero() {
		statusReq.RequestedAt = *req.RequestedAt
	}

	out := &capturedDelivery{}
	outcome := h.statusService.Handle(c.Request.Context(), statusReq, out)

	resp := gin.H{
		"request_id": statusReq.RequestID,
		"outcome":    outcome.String(),
	}
	if outcome == domain.OutcomeDelivered {
		resp["text"] = out.text
		resp["parse_mode"] = "html"
	}
	c.JSON(http.StatusOK, resp)
}

// GetStatus previews the current status without touching any cooldown.
func (h *StatusHandler) GetStatus(c *gin.Context) {
	text, ok := h.statusService.Preview(c.Request.Context())
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"text":       text,
		"parse_mode": "html",
	})
}
