package handler

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/fleetdesk_api/internal/middleware"
	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/service"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
	"github.com/GTDGit/fleetdesk_api/internal/wizard"
)

// Wizard drives the per-user quote store.
type Wizard interface {
	Store(ctx context.Context, userID string) (*service.StoreView, error)
	Fire(ctx context.Context, userID string, flow service.Flow, ev wizard.Event) (*service.StoreView, error)
	RemoveProduct(ctx context.Context, userID, id string) (*service.StoreView, error)
	RemoveService(ctx context.Context, userID, id string) (*service.StoreView, error)
}

// WizardHandler exposes the quote wizards over HTTP.
type WizardHandler struct {
	wizard Wizard
}

// NewWizardHandler constructs a WizardHandler.
func NewWizardHandler(w Wizard) *WizardHandler {
	return &WizardHandler{wizard: w}
}

// eventRequest is one wizard event. Draft holds a product or service patch
// depending on the flow.
type eventRequest struct {
	Type            wizard.EventType       `json:"type" binding:"required"`
	Category        models.ProductCategory `json:"category"`
	OperatingSystem string                 `json:"operatingSystem"`
	ServiceType     models.ServiceType     `json:"serviceType"`
	ID              string                 `json:"id"`
	Draft           json.RawMessage        `json:"draft"`
}

func (r *eventRequest) event(flow service.Flow) (wizard.Event, error) {
	ev := wizard.Event{
		Type:            r.Type,
		Category:        r.Category,
		OperatingSystem: r.OperatingSystem,
		ServiceType:     r.ServiceType,
		ID:              r.ID,
	}
	if len(r.Draft) == 0 || string(r.Draft) == "null" {
		return ev, nil
	}
	switch flow {
	case service.FlowProduct:
		var patch models.QuoteProductPatch
		if err := json.Unmarshal(r.Draft, &patch); err != nil {
			return ev, err
		}
		ev.ProductPatch = &patch
	case service.FlowService:
		var patch models.QuoteServicePatch
		if err := json.Unmarshal(r.Draft, &patch); err != nil {
			return ev, err
		}
		ev.ServicePatch = &patch
	}
	return ev, nil
}

// GetStore handles GET /v1/quote/store
func (h *WizardHandler) GetStore(c *gin.Context) {
	view, err := h.wizard.Store(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err, "Failed to load quote store")
		return
	}
	utils.Success(c, 200, "Quote store retrieved", view)
}

// FireEvent handles POST /v1/quote/wizard/:flow/events
func (h *WizardHandler) FireEvent(c *gin.Context) {
	flow := service.Flow(c.Param("flow"))

	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	ev, err := req.event(flow)
	if err != nil {
		utils.Error(c, 400, "INVALID_DRAFT", "Invalid draft")
		return
	}

	view, err := h.wizard.Fire(c.Request.Context(), middleware.UserID(c), flow, ev)
	if err != nil {
		respondError(c, err, "Failed to apply wizard event")
		return
	}
	utils.Success(c, 200, "Wizard updated", view)
}

// RemoveProduct handles DELETE /v1/quote/products/:id
func (h *WizardHandler) RemoveProduct(c *gin.Context) {
	view, err := h.wizard.RemoveProduct(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to remove product")
		return
	}
	utils.Success(c, 200, "Product removed", view)
}

// RemoveService handles DELETE /v1/quote/services/:id
func (h *WizardHandler) RemoveService(c *gin.Context) {
	view, err := h.wizard.RemoveService(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to remove service")
		return
	}
	utils.Success(c, 200, "Service removed", view)
}
