package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
)

// QuoteRepository handles data access for submitted quote requests.
type QuoteRepository struct {
	db *sqlx.DB
}

// NewQuoteRepository creates a new QuoteRepository.
func NewQuoteRepository(db *sqlx.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// DB exposes the handle for callers that need a transaction spanning repositories.
func (r *QuoteRepository) DB() *sqlx.DB { return r.db }

const quoteColumns = `id, request_id, user_id, payload, product_count, service_count, status,
        dispatch_attempts, next_dispatch_at, dispatched_at, last_error, created_at, updated_at`

// CreateTx inserts q inside tx as pending and due immediately.
func (r *QuoteRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, q *models.QuoteRequest) error {
	const query = `
        INSERT INTO quote_requests (request_id, user_id, payload, product_count, service_count, status, next_dispatch_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        RETURNING id, status, next_dispatch_at, created_at, updated_at`
	return tx.QueryRowxContext(ctx, query,
		q.RequestID, q.UserID, []byte(q.Payload), q.ProductCount, q.ServiceCount, models.QuoteStatusPending,
	).Scan(&q.ID, &q.Status, &q.NextDispatchAt, &q.CreatedAt, &q.UpdatedAt)
}

// ListByUser returns one page of a user's quotes, newest first, and the total.
func (r *QuoteRepository) ListByUser(ctx context.Context, userID string, page, size int) ([]models.QuoteRequest, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM quote_requests WHERE user_id = $1`, userID); err != nil {
		return nil, 0, err
	}
	quotes := []models.QuoteRequest{}
	q := `SELECT ` + quoteColumns + ` FROM quote_requests WHERE user_id = $1
        ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &quotes, q, userID, size, (page-1)*size); err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

// GetByID returns one quote owned by userID.
func (r *QuoteRepository) GetByID(ctx context.Context, userID string, id int) (*models.QuoteRequest, error) {
	var q models.QuoteRequest
	err := r.db.GetContext(ctx, &q, `SELECT `+quoteColumns+` FROM quote_requests WHERE id = $1 AND user_id = $2`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quote %d: %w", id, utils.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// CancelTx cancels a pending or failed quote inside tx and returns it as it
// was before the change.
func (r *QuoteRepository) CancelTx(ctx context.Context, tx *sqlx.Tx, userID string, id int) (*models.QuoteRequest, error) {
	var before models.QuoteRequest
	err := tx.GetContext(ctx, &before,
		`SELECT `+quoteColumns+` FROM quote_requests WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quote %d: %w", id, utils.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if before.Status != models.QuoteStatusPending && before.Status != models.QuoteStatusFailed {
		return nil, fmt.Errorf("%w: quote is %s", utils.ErrQuoteNotCancelable, before.Status)
	}
	_, err = tx.ExecContext(ctx, `
        UPDATE quote_requests SET status = $2, next_dispatch_at = NULL, updated_at = NOW()
        WHERE id = $1`, id, models.QuoteStatusCancelled)
	if err != nil {
		return nil, err
	}
	return &before, nil
}

// ListDue returns pending quotes whose next dispatch time has passed.
func (r *QuoteRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]models.QuoteRequest, error) {
	quotes := []models.QuoteRequest{}
	q := `SELECT ` + quoteColumns + ` FROM quote_requests
        WHERE status = $1 AND next_dispatch_at <= $2
        ORDER BY next_dispatch_at, id LIMIT $3`
	if err := r.db.SelectContext(ctx, &quotes, q, models.QuoteStatusPending, now, limit); err != nil {
		return nil, err
	}
	return quotes, nil
}

// MarkDispatched records a successful delivery.
func (r *QuoteRepository) MarkDispatched(ctx context.Context, id, attempts int) error {
	_, err := r.db.ExecContext(ctx, `
        UPDATE quote_requests SET status = $2, dispatch_attempts = $3, dispatched_at = NOW(),
            next_dispatch_at = NULL, last_error = NULL, updated_at = NOW()
        WHERE id = $1 AND status = $4`,
		id, models.QuoteStatusDispatched, attempts, models.QuoteStatusPending)
	return err
}

// ScheduleRetry records a failed attempt and the next attempt time.
func (r *QuoteRepository) ScheduleRetry(ctx context.Context, id, attempts int, next time.Time, lastErr string) error {
	_, err := r.db.ExecContext(ctx, `
        UPDATE quote_requests SET dispatch_attempts = $2, next_dispatch_at = $3, last_error = $4, updated_at = NOW()
        WHERE id = $1 AND status = $5`,
		id, attempts, next, lastErr, models.QuoteStatusPending)
	return err
}

// MarkFailed gives up on a quote after its last attempt.
func (r *QuoteRepository) MarkFailed(ctx context.Context, id, attempts int, lastErr string) error {
	_, err := r.db.ExecContext(ctx, `
        UPDATE quote_requests SET status = $2, dispatch_attempts = $3, next_dispatch_at = NULL,
            last_error = $4, updated_at = NOW()
        WHERE id = $1 AND status = $5`,
		id, models.QuoteStatusFailed, attempts, lastErr, models.QuoteStatusPending)
	return err
}
