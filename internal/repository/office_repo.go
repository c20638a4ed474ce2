package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/fleetdesk_api/internal/database"
	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
)

// OfficeRepository handles data access for offices. Exactly one office is the
// default whenever any office exists; every write that can move the default
// runs in a transaction.
type OfficeRepository struct {
	db *sqlx.DB
}

// NewOfficeRepository creates a new OfficeRepository.
func NewOfficeRepository(db *sqlx.DB) *OfficeRepository {
	return &OfficeRepository{db: db}
}

const officeColumns = `id, name, country, city, address, phone, is_default, created_at, updated_at`

// List returns all offices, default first.
func (r *OfficeRepository) List(ctx context.Context) ([]models.Office, error) {
	offices := []models.Office{}
	q := `SELECT ` + officeColumns + ` FROM offices ORDER BY is_default DESC, name, id`
	if err := r.db.SelectContext(ctx, &offices, q); err != nil {
		return nil, err
	}
	return offices, nil
}

// GetByID returns a single office by id.
func (r *OfficeRepository) GetByID(ctx context.Context, id int) (*models.Office, error) {
	var o models.Office
	err := r.db.GetContext(ctx, &o, `SELECT `+officeColumns+` FROM offices WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("office %d: %w", id, utils.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserts o. The first office always becomes the default; a new
// default office demotes the previous one. after runs inside the same
// transaction once the row exists.
func (r *OfficeRepository) Create(ctx context.Context, o *models.Office, after func(tx *sqlx.Tx) error) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var count int
		if err := tx.GetContext(ctx, &count, `SELECT COUNT(1) FROM offices`); err != nil {
			return err
		}
		if count == 0 {
			o.IsDefault = true
		}
		if o.IsDefault {
			if err := clearDefault(ctx, tx); err != nil {
				return err
			}
		}

		const q = `
            INSERT INTO offices (name, country, city, address, phone, is_default)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id, created_at, updated_at`
		if err := tx.QueryRowxContext(ctx, q, o.Name, o.Country, o.City, o.Address, o.Phone, o.IsDefault).
			Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return err
		}
		return runAfter(tx, after)
	})
}

// Update writes o. Promoting o to default demotes the current default;
// demoting the current default directly is rejected.
func (r *OfficeRepository) Update(ctx context.Context, o *models.Office, after func(tx *sqlx.Tx) error) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var wasDefault bool
		err := tx.GetContext(ctx, &wasDefault, `SELECT is_default FROM offices WHERE id = $1 FOR UPDATE`, o.ID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("office %d: %w", o.ID, utils.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if wasDefault && !o.IsDefault {
			return utils.ErrDefaultOffice
		}
		if o.IsDefault && !wasDefault {
			if err := clearDefault(ctx, tx); err != nil {
				return err
			}
		}

		const q = `
            UPDATE offices SET name = $2, country = $3, city = $4, address = $5, phone = $6,
                is_default = $7, updated_at = NOW()
            WHERE id = $1
            RETURNING updated_at`
		if err := tx.QueryRowxContext(ctx, q, o.ID, o.Name, o.Country, o.City, o.Address, o.Phone, o.IsDefault).
			Scan(&o.UpdatedAt); err != nil {
			return err
		}
		return runAfter(tx, after)
	})
}

// Delete removes an office. Deleting the default promotes the oldest
// remaining office.
func (r *OfficeRepository) Delete(ctx context.Context, id int, after func(tx *sqlx.Tx) error) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var wasDefault bool
		err := tx.QueryRowxContext(ctx, `DELETE FROM offices WHERE id = $1 RETURNING is_default`, id).Scan(&wasDefault)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("office %d: %w", id, utils.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if wasDefault {
			const promote = `
                UPDATE offices SET is_default = true, updated_at = NOW()
                WHERE id = (SELECT id FROM offices ORDER BY created_at, id LIMIT 1)`
			if _, err := tx.ExecContext(ctx, promote); err != nil {
				return err
			}
		}
		return runAfter(tx, after)
	})
}

func clearDefault(ctx context.Context, tx *sqlx.Tx) error {
	_, err := tx.ExecContext(ctx, `UPDATE offices SET is_default = false, updated_at = NOW() WHERE is_default`)
	return err
}

func runAfter(tx *sqlx.Tx, after func(tx *sqlx.Tx) error) error {
	if after == nil {
		return nil
	}
	return after(tx)
}
