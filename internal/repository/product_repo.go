package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
)

// ProductRepository handles data access for fleet products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// ProductFilter narrows product listings. Empty fields are ignored.
type ProductFilter struct {
	Status   string
	Category string
	Search   string
	Page     int
	Limit    int
}

const productColumns = `id, name, category, brand, model, serial_number, status, assigned_member, location, created_at, updated_at`

// List returns products matching filter with pagination and also returns total count.
// Search is a case-insensitive match on name or serial number.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, int, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	offset := (f.Page - 1) * f.Limit

	const baseWhere = `WHERE ($1 = '' OR status = $1)
        AND ($2 = '' OR category = $2)
        AND ($3 = '' OR name ILIKE '%' || $3 || '%' OR serial_number ILIKE '%' || $3 || '%')`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM products `+baseWhere, f.Status, f.Category, f.Search); err != nil {
		return nil, 0, err
	}

	listQuery := `SELECT ` + productColumns + ` FROM products ` + baseWhere + `
        ORDER BY name, id LIMIT $4 OFFSET $5`
	products := []models.Product{}
	if err := r.db.SelectContext(ctx, &products, listQuery, f.Status, f.Category, f.Search, f.Limit, offset); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetByID returns a single product by id.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	var p models.Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, utils.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DB exposes the handle so services can group product writes with their
// activity records in one transaction.
func (r *ProductRepository) DB() *sqlx.DB { return r.db }

// CreateTx inserts p inside tx and fills its generated fields.
func (r *ProductRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, p *models.Product) error {
	const q = `
        INSERT INTO products (name, category, brand, model, serial_number, status, assigned_member, location)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at`
	err := tx.QueryRowxContext(ctx, q,
		p.Name, p.Category, p.Brand, p.Model, p.SerialNumber, p.Status, p.AssignedMember, p.Location,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapProductErr(err)
}

// GetForUpdateTx locks and returns a product inside tx.
func (r *ProductRepository) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id int) (*models.Product, error) {
	var p models.Product
	err := tx.GetContext(ctx, &p, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, utils.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateTx writes every mutable column of p inside tx.
func (r *ProductRepository) UpdateTx(ctx context.Context, tx *sqlx.Tx, p *models.Product) error {
	const q = `
        UPDATE products SET
            name = $2, category = $3, brand = $4, model = $5, serial_number = $6,
            status = $7, assigned_member = $8, location = $9, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at`
	err := tx.QueryRowxContext(ctx, q,
		p.ID, p.Name, p.Category, p.Brand, p.Model, p.SerialNumber, p.Status, p.AssignedMember, p.Location,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("product %d: %w", p.ID, utils.ErrNotFound)
	}
	return mapProductErr(err)
}

// DeleteTx removes a product inside tx and returns the deleted row.
func (r *ProductRepository) DeleteTx(ctx context.Context, tx *sqlx.Tx, id int) (*models.Product, error) {
	var p models.Product
	err := tx.GetContext(ctx, &p, `DELETE FROM products WHERE id = $1 RETURNING `+productColumns, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, utils.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func mapProductErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", utils.ErrDuplicateSerial, pqErr.Detail)
	}
	return err
}
