package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/fleetdesk_api/internal/database"
	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/repository"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
)

// maxBulkProducts caps bulk create and delete requests.
const maxBulkProducts = 200

// ProductService handles fleet product CRUD. Every write appends an assets
// activity record in the same transaction.
type ProductService struct {
	repo    *repository.ProductRepository
	history *HistoryService
}

// NewProductService constructs a ProductService.
func NewProductService(repo *repository.ProductRepository, history *HistoryService) *ProductService {
	return &ProductService{repo: repo, history: history}
}

// CreateProductRequest represents the request to create a new product.
type CreateProductRequest struct {
	Name           string  `json:"name" binding:"required"`
	Category       string  `json:"category" binding:"required"`
	Brand          string  `json:"brand"`
	Model          string  `json:"model"`
	SerialNumber   string  `json:"serialNumber" binding:"required"`
	Status         string  `json:"status"`
	AssignedMember *string `json:"assignedMember"`
	Location       *string `json:"location"`
}

// UpdateProductRequest represents a partial product update. An empty
// assignedMember or location clears it.
type UpdateProductRequest struct {
	Name           *string `json:"name"`
	Category       *string `json:"category"`
	Brand          *string `json:"brand"`
	Model          *string `json:"model"`
	SerialNumber   *string `json:"serialNumber"`
	Status         *string `json:"status"`
	AssignedMember *string `json:"assignedMember"`
	Location       *string `json:"location"`
}

// ListProducts returns a page of products and the total count.
func (s *ProductService) ListProducts(ctx context.Context, f repository.ProductFilter) ([]models.Product, int, error) {
	if f.Status != "" && !models.AssetStatus(f.Status).Valid() {
		return nil, 0, fmt.Errorf("%w: %q", utils.ErrInvalidStatus, f.Status)
	}
	return s.repo.List(ctx, f)
}

// GetProduct retrieves a product by ID.
func (s *ProductService) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct creates a product and records assets/create.
func (s *ProductService) CreateProduct(ctx context.Context, userID string, req *CreateProductRequest) (*models.Product, error) {
	p, err := newProduct(req)
	if err != nil {
		return nil, err
	}

	var rec *models.ActivityRecord
	err = database.WithTx(ctx, s.repo.DB(), func(tx *sqlx.Tx) error {
		if err := s.repo.CreateTx(ctx, tx, p); err != nil {
			return err
		}
		var err error
		rec, err = s.history.RecordTx(ctx, tx, Entry{
			Item: models.ItemAssets, Action: models.ActionCreate, UserID: userID, NewData: p,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.history.Publish(ctx, rec)
	log.Info().Int("product_id", p.ID).Str("serial_number", p.SerialNumber).Msg("Product created")
	return p, nil
}

// BulkCreateProducts creates all products or none and records a single
// assets/bulk-create entry.
func (s *ProductService) BulkCreateProducts(ctx context.Context, userID string, reqs []CreateProductRequest) ([]models.Product, error) {
	if len(reqs) == 0 || len(reqs) > maxBulkProducts {
		return nil, fmt.Errorf("%w: bulk create accepts 1 to %d products", utils.ErrValidation, maxBulkProducts)
	}
	products := make([]models.Product, 0, len(reqs))
	for i := range reqs {
		p, err := newProduct(&reqs[i])
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", i+1, err)
		}
		products = append(products, *p)
	}

	var rec *models.ActivityRecord
	err := database.WithTx(ctx, s.repo.DB(), func(tx *sqlx.Tx) error {
		for i := range products {
			if err := s.repo.CreateTx(ctx, tx, &products[i]); err != nil {
				return fmt.Errorf("product %d: %w", i+1, err)
			}
		}
		var err error
		rec, err = s.history.RecordTx(ctx, tx, Entry{
			Item: models.ItemAssets, Action: models.ActionBulkCreate, UserID: userID, NewData: products,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.history.Publish(ctx, rec)
	log.Info().Int("count", len(products)).Msg("Products bulk created")
	return products, nil
}

// UpdateProduct applies req. Changes that only move the assignment are
// recorded as reassign or return; anything else is an update.
func (s *ProductService) UpdateProduct(ctx context.Context, userID string, id int, req *UpdateProductRequest) (*models.Product, error) {
	var (
		after *models.Product
		rec   *models.ActivityRecord
	)
	err := database.WithTx(ctx, s.repo.DB(), func(tx *sqlx.Tx) error {
		before, err := s.repo.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		next := *before
		if err := req.apply(&next); err != nil {
			return err
		}
		if err := s.repo.UpdateTx(ctx, tx, &next); err != nil {
			return err
		}
		after = &next
		rec, err = s.history.RecordTx(ctx, tx, Entry{
			Item: models.ItemAssets, Action: classifyProductUpdate(before, after), UserID: userID,
			OldData: before, NewData: after,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.history.Publish(ctx, rec)
	return after, nil
}

// DeleteProduct removes a product and records assets/delete.
func (s *ProductService) DeleteProduct(ctx context.Context, userID string, id int) error {
	var rec *models.ActivityRecord
	err := database.WithTx(ctx, s.repo.DB(), func(tx *sqlx.Tx) error {
		deleted, err := s.repo.DeleteTx(ctx, tx, id)
		if err != nil {
			return err
		}
		rec, err = s.history.RecordTx(ctx, tx, Entry{
			Item: models.ItemAssets, Action: models.ActionDelete, UserID: userID, OldData: deleted,
		})
		return err
	})
	if err != nil {
		return err
	}
	s.history.Publish(ctx, rec)
	return nil
}

// BulkDeleteProducts removes every listed product or none.
func (s *ProductService) BulkDeleteProducts(ctx context.Context, userID string, ids []int) error {
	if len(ids) == 0 || len(ids) > maxBulkProducts {
		return fmt.Errorf("%w: bulk delete accepts 1 to %d products", utils.ErrValidation, maxBulkProducts)
	}
	var rec *models.ActivityRecord
	err := database.WithTx(ctx, s.repo.DB(), func(tx *sqlx.Tx) error {
		deleted := make([]models.Product, 0, len(ids))
		for _, id := range ids {
			p, err := s.repo.DeleteTx(ctx, tx, id)
			if err != nil {
				return err
			}
			deleted = append(deleted, *p)
		}
		var err error
		rec, err = s.history.RecordTx(ctx, tx, Entry{
			Item: models.ItemAssets, Action: models.ActionBulkDelete, UserID: userID, OldData: deleted,
		})
		return err
	})
	if err != nil {
		return err
	}
	s.history.Publish(ctx, rec)
	return nil
}

func newProduct(req *CreateProductRequest) (*models.Product, error) {
	status := models.AssetInStock
	if req.Status != "" {
		status = models.AssetStatus(req.Status)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", utils.ErrInvalidStatus, req.Status)
	}
	name := strings.TrimSpace(req.Name)
	serial := strings.TrimSpace(req.SerialNumber)
	if name == "" || serial == "" {
		return nil, fmt.Errorf("%w: name and serialNumber are required", utils.ErrValidation)
	}
	return &models.Product{
		Name:           name,
		Category:       strings.TrimSpace(req.Category),
		Brand:          strings.TrimSpace(req.Brand),
		Model:          strings.TrimSpace(req.Model),
		SerialNumber:   serial,
		Status:         status,
		AssignedMember: emptyToNil(req.AssignedMember),
		Location:       emptyToNil(req.Location),
	}, nil
}

func (req *UpdateProductRequest) apply(p *models.Product) error {
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return fmt.Errorf("%w: name cannot be empty", utils.ErrValidation)
		}
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
	}
	if req.Brand != nil {
		p.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.Model != nil {
		p.Model = strings.TrimSpace(*req.Model)
	}
	if req.SerialNumber != nil {
		if strings.TrimSpace(*req.SerialNumber) == "" {
			return fmt.Errorf("%w: serialNumber cannot be empty", utils.ErrValidation)
		}
		p.SerialNumber = strings.TrimSpace(*req.SerialNumber)
	}
	if req.Status != nil {
		status := models.AssetStatus(*req.Status)
		if !status.Valid() {
			return fmt.Errorf("%w: %q", utils.ErrInvalidStatus, *req.Status)
		}
		p.Status = status
	}
	if req.AssignedMember != nil {
		p.AssignedMember = emptyToNil(req.AssignedMember)
	}
	if req.Location != nil {
		p.Location = emptyToNil(req.Location)
	}
	return nil
}

func classifyProductUpdate(before, after *models.Product) models.ActionType {
	if equalPtr(before.AssignedMember, after.AssignedMember) {
		return models.ActionUpdate
	}
	descriptive := before.Name != after.Name || before.Category != after.Category ||
		before.Brand != after.Brand || before.Model != after.Model ||
		before.SerialNumber != after.SerialNumber
	if descriptive {
		return models.ActionUpdate
	}
	if after.AssignedMember == nil {
		return models.ActionReturn
	}
	return models.ActionReassign
}

func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
