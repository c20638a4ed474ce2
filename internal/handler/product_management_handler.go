package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/fleetdesk_api/internal/middleware"
	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/repository"
	"github.com/GTDGit/fleetdesk_api/internal/service"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
)

// ProductManager is the product catalog the handler drives.
type ProductManager interface {
	ListProducts(ctx context.Context, f repository.ProductFilter) ([]models.Product, int, error)
	GetProduct(ctx context.Context, id int) (*models.Product, error)
	CreateProduct(ctx context.Context, userID string, req *service.CreateProductRequest) (*models.Product, error)
	BulkCreateProducts(ctx context.Context, userID string, reqs []service.CreateProductRequest) ([]models.Product, error)
	UpdateProduct(ctx context.Context, userID string, id int, req *service.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, userID string, id int) error
	BulkDeleteProducts(ctx context.Context, userID string, ids []int) error
}

// ProductManagementHandler handles product CRUD HTTP endpoints.
type ProductManagementHandler struct {
	productService ProductManager
}

// NewProductManagementHandler constructs a ProductManagementHandler.
func NewProductManagementHandler(productService ProductManager) *ProductManagementHandler {
	return &ProductManagementHandler{productService: productService}
}

// ListProducts handles GET /v1/products
func (h *ProductManagementHandler) ListProducts(c *gin.Context) {
	filter := repository.ProductFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     1,
		Limit:    50,
	}
	if page := c.Query("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil {
			filter.Page = p
		}
	}
	if limit := c.Query("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			filter.Limit = l
		}
	}

	products, total, err := h.productService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to retrieve products")
		return
	}

	utils.SuccessWithPagination(c, 200, "Products retrieved", products, filter.Page, filter.Limit, total)
}

// CreateProduct handles POST /v1/products
func (h *ProductManagementHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err, "Failed to create product")
		return
	}

	utils.Success(c, 201, "Product created successfully", product)
}

// BulkCreateProducts handles POST /v1/products/bulk
func (h *ProductManagementHandler) BulkCreateProducts(c *gin.Context) {
	var req struct {
		Products []service.CreateProductRequest `json:"products" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	products, err := h.productService.BulkCreateProducts(c.Request.Context(), middleware.UserID(c), req.Products)
	if err != nil {
		respondError(c, err, "Failed to create products")
		return
	}

	utils.Success(c, 201, "Products created successfully", products)
}

// GetProduct handles GET /v1/products/:id
func (h *ProductManagementHandler) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve product")
		return
	}

	utils.Success(c, 200, "Product retrieved", product)
}

// UpdateProduct handles PATCH /v1/products/:id
func (h *ProductManagementHandler) UpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), middleware.UserID(c), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update product")
		return
	}

	utils.Success(c, 200, "Product updated successfully", product)
}

// DeleteProduct handles DELETE /v1/products/:id
func (h *ProductManagementHandler) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err, "Failed to delete product")
		return
	}

	utils.Success(c, 200, "Product deleted successfully", nil)
}

// BulkDeleteProducts handles POST /v1/products/bulk-delete
func (h *ProductManagementHandler) BulkDeleteProducts(c *gin.Context) {
	var req struct {
		IDs []int `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if err := h.productService.BulkDeleteProducts(c.Request.Context(), middleware.UserID(c), req.IDs); err != nil {
		respondError(c, err, "Failed to delete products")
		return
	}

	utils.Success(c, 200, "Products deleted successfully", gin.H{"deleted": len(req.IDs)})
}

func productID(c *gin.Context) (int, bool) {
	return intParam(c, "id", "Invalid product ID")
}

// intParam parses a positive integer path parameter, writing 400 when it is not one.
func intParam(c *gin.Context, name, message string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		utils.Error(c, 400, "INVALID_ID", message)
		return 0, false
	}
	return id, true
}
