package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/fleetdesk_api/internal/middleware"
	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/service"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
)

// QuoteManager stores and reads submitted quotes.
type QuoteManager interface {
	Submit(ctx context.Context, userID string, products []models.QuoteProduct, services []models.QuoteService) (*models.QuoteRequest, error)
	List(ctx context.Context, userID string, page, size int) ([]models.QuoteRequest, int, error)
	Get(ctx context.Context, userID string, id int) (*models.QuoteRequest, error)
	Cancel(ctx context.Context, userID string, id int) (*models.QuoteRequest, error)
}

// StoreSubmitter submits the caller's committed quote store.
type StoreSubmitter interface {
	Submit(ctx context.Context, userID string) (*models.QuoteRequest, error)
}

// QuoteHandler handles quote submission and tracking.
type QuoteHandler struct {
	quotes QuoteManager
	store  StoreSubmitter
}

// NewQuoteHandler constructs a QuoteHandler.
func NewQuoteHandler(quotes QuoteManager, store StoreSubmitter) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, store: store}
}

type submitQuoteRequest struct {
	Products []models.QuoteProduct `json:"products"`
	Services []models.QuoteService `json:"services"`
}

// Submit handles POST /v1/quotes. Without a body the caller's committed
// store is submitted and cleared; with a body the given items are submitted
// and the store is left alone.
func (h *QuoteHandler) Submit(c *gin.Context) {
	userID := middleware.UserID(c)

	var (
		q   *models.QuoteRequest
		err error
	)
	if c.Request.ContentLength == 0 {
		q, err = h.store.Submit(c.Request.Context(), userID)
	} else {
		var req submitQuoteRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
			return
		}
		q, err = h.quotes.Submit(c.Request.Context(), userID, req.Products, req.Services)
	}
	if err != nil {
		respondError(c, err, "Failed to submit quote request")
		return
	}

	utils.Success(c, 201, service.QuoteSubmittedMessage, q)
}

// List handles GET /v1/quotes?page&size
func (h *QuoteHandler) List(c *gin.Context) {
	var q struct {
		Page int `form:"page"`
		Size int `form:"size"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid query parameters")
		return
	}

	page, size := service.PageBounds(q.Page, q.Size)
	quotes, total, err := h.quotes.List(c.Request.Context(), middleware.UserID(c), page, size)
	if err != nil {
		respondError(c, err, "Failed to retrieve quotes")
		return
	}
	utils.SuccessWithPagination(c, 200, "Quotes retrieved", quotes, page, size, total)
}

// Get handles GET /v1/quotes/:id
func (h *QuoteHandler) Get(c *gin.Context) {
	id, ok := intParam(c, "id", "Invalid quote ID")
	if !ok {
		return
	}
	q, err := h.quotes.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve quote")
		return
	}
	utils.Success(c, 200, "Quote retrieved", q)
}

// Cancel handles POST /v1/quotes/:id/cancel
func (h *QuoteHandler) Cancel(c *gin.Context) {
	id, ok := intParam(c, "id", "Invalid quote ID")
	if !ok {
		return
	}
	q, err := h.quotes.Cancel(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err, "Failed to cancel quote")
		return
	}
	utils.Success(c, 200, "Quote cancelled", q)
}
