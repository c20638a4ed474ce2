package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/fleetdesk_api/internal/history"
	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/service"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
)

// HistoryReader reads the activity log.
type HistoryReader interface {
	List(ctx context.Context, q service.HistoryQuery) (*models.HistoryPage, error)
	Latest(ctx context.Context) ([]models.ActivityRecord, error)
	Get(ctx context.Context, id string) (*models.ActivityRecord, error)
	Details(ctx context.Context, id string) (*history.SubTable, error)
}

// HistoryHandler serves the activity history endpoints.
type HistoryHandler struct {
	history HistoryReader
}

// NewHistoryHandler constructs a HistoryHandler.
func NewHistoryHandler(history HistoryReader) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List handles GET /v1/history?page&size&startDate&endDate
func (h *HistoryHandler) List(c *gin.Context) {
	var q service.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid query parameters")
		return
	}

	page, err := h.history.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err, "Failed to retrieve history")
		return
	}
	utils.Success(c, 200, "History retrieved", page)
}

// Latest handles GET /v1/history/latest
func (h *HistoryHandler) Latest(c *gin.Context) {
	records, err := h.history.Latest(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve latest history")
		return
	}
	utils.Success(c, 200, "Latest history retrieved", records)
}

// Get handles GET /v1/history/:id
func (h *HistoryHandler) Get(c *gin.Context) {
	rec, err := h.history.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve history record")
		return
	}
	utils.Success(c, 200, "History record retrieved", rec)
}

// Details handles GET /v1/history/:id/details
func (h *HistoryHandler) Details(c *gin.Context) {
	table, err := h.history.Details(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to render history record")
		return
	}
	utils.Success(c, 200, "History details retrieved", table)
}
