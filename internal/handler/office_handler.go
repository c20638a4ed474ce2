package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/fleetdesk_api/internal/middleware"
	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/service"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
)

// OfficeManager manages tenant offices.
type OfficeManager interface {
	ListOffices(ctx context.Context) ([]models.Office, error)
	GetOffice(ctx context.Context, id int) (*models.Office, error)
	CreateOffice(ctx context.Context, userID string, req *service.OfficeRequest) (*models.Office, error)
	UpdateOffice(ctx context.Context, userID string, id int, req *service.OfficeRequest) (*models.Office, error)
	DeleteOffice(ctx context.Context, userID string, id int) error
}

// OfficeHandler handles office HTTP endpoints.
type OfficeHandler struct {
	officeService OfficeManager
}

// NewOfficeHandler constructs an OfficeHandler.
func NewOfficeHandler(officeService OfficeManager) *OfficeHandler {
	return &OfficeHandler{officeService: officeService}
}

// ListOffices handles GET /v1/offices
func (h *OfficeHandler) ListOffices(c *gin.Context) {
	offices, err := h.officeService.ListOffices(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve offices")
		return
	}
	utils.Success(c, 200, "Offices retrieved", offices)
}

// GetOffice handles GET /v1/offices/:id
func (h *OfficeHandler) GetOffice(c *gin.Context) {
	id, ok := intParam(c, "id", "Invalid office ID")
	if !ok {
		return
	}
	office, err := h.officeService.GetOffice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve office")
		return
	}
	utils.Success(c, 200, "Office retrieved", office)
}

// CreateOffice handles POST /v1/offices
func (h *OfficeHandler) CreateOffice(c *gin.Context) {
	var req service.OfficeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	office, err := h.officeService.CreateOffice(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err, "Failed to create office")
		return
	}
	utils.Success(c, 201, "Office created successfully", office)
}

// UpdateOffice handles PATCH /v1/offices/:id
func (h *OfficeHandler) UpdateOffice(c *gin.Context) {
	id, ok := intParam(c, "id", "Invalid office ID")
	if !ok {
		return
	}
	var req service.OfficeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	office, err := h.officeService.UpdateOffice(c.Request.Context(), middleware.UserID(c), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update office")
		return
	}
	utils.Success(c, 200, "Office updated successfully", office)
}

// DeleteOffice handles DELETE /v1/offices/:id
func (h *OfficeHandler) DeleteOffice(c *gin.Context) {
	id, ok := intParam(c, "id", "Invalid office ID")
	if !ok {
		return
	}
	if err := h.officeService.DeleteOffice(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err, "Failed to delete office")
		return
	}
	utils.Success(c, 200, "Office deleted successfully", nil)
}
