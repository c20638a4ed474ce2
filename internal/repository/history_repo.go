package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
)

// HistoryRepository handles data access for the activity log.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// HistoryFilter selects a page of records created in [From, Until).
// Nil bounds are open.
type HistoryFilter struct {
	From  *time.Time
	Until *time.Time
	Page  int
	Size  int
}

type activityRow struct {
	ID         string    `db:"id"`
	ActionType string    `db:"action_type"`
	ItemType   string    `db:"item_type"`
	UserID     string    `db:"user_id"`
	OldData    []byte    `db:"old_data"`
	NewData    []byte    `db:"new_data"`
	Context    []byte    `db:"context"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r activityRow) toRecord() models.ActivityRecord {
	return models.ActivityRecord{
		ID:         r.ID,
		ActionType: models.ActionType(r.ActionType),
		ItemType:   models.ItemType(r.ItemType),
		UserID:     r.UserID,
		Changes: models.ActivityChanges{
			OldData: rawOrNull(r.OldData),
			NewData: rawOrNull(r.NewData),
			Context: json.RawMessage(r.Context),
		},
		CreatedAt: r.CreatedAt,
	}
}

func rawOrNull(b []byte) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage("null")
	}
	return json.RawMessage(b)
}

func nullableRaw(b json.RawMessage) interface{} {
	if len(b) == 0 {
		return nil
	}
	return []byte(b)
}

const activityColumns = `id, action_type, item_type, user_id, old_data, new_data, context, created_at`

// List returns one page of records, newest first, and the total match count.
func (r *HistoryRepository) List(ctx context.Context, f HistoryFilter) ([]models.ActivityRecord, int, error) {
	const where = `WHERE ($1::timestamptz IS NULL OR created_at >= $1)
        AND ($2::timestamptz IS NULL OR created_at < $2)`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM activity_records `+where, f.From, f.Until); err != nil {
		return nil, 0, err
	}

	var rows []activityRow
	listQuery := `SELECT ` + activityColumns + ` FROM activity_records ` + where + `
        ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`
	if err := r.db.SelectContext(ctx, &rows, listQuery, f.From, f.Until, f.Size, (f.Page-1)*f.Size); err != nil {
		return nil, 0, err
	}
	return toRecords(rows), total, nil
}

// Latest returns the newest limit records.
func (r *HistoryRepository) Latest(ctx context.Context, limit int) ([]models.ActivityRecord, error) {
	var rows []activityRow
	q := `SELECT ` + activityColumns + ` FROM activity_records ORDER BY created_at DESC, id DESC LIMIT $1`
	if err := r.db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, err
	}
	return toRecords(rows), nil
}

// GetByID returns a single record.
func (r *HistoryRepository) GetByID(ctx context.Context, id string) (*models.ActivityRecord, error) {
	var row activityRow
	err := r.db.GetContext(ctx, &row, `SELECT `+activityColumns+` FROM activity_records WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("activity %s: %w", id, utils.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	rec := row.toRecord()
	return &rec, nil
}

// Create appends rec. ID and CreatedAt must already be set.
func (r *HistoryRepository) Create(ctx context.Context, rec *models.ActivityRecord) error {
	return insertActivity(ctx, r.db, rec)
}

// CreateTx appends rec inside tx.
func (r *HistoryRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, rec *models.ActivityRecord) error {
	return insertActivity(ctx, tx, rec)
}

func insertActivity(ctx context.Context, exec sqlx.ExecerContext, rec *models.ActivityRecord) error {
	const q = `
        INSERT INTO activity_records (id, action_type, item_type, user_id, old_data, new_data, context, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := exec.ExecContext(ctx, q,
		rec.ID,
		string(rec.ActionType),
		string(rec.ItemType),
		rec.UserID,
		nullableRaw(rec.Changes.OldData),
		nullableRaw(rec.Changes.NewData),
		nullableRaw(rec.Changes.Context),
		rec.CreatedAt,
	)
	return err
}

func toRecords(rows []activityRow) []models.ActivityRecord {
	out := make([]models.ActivityRecord, len(rows))
	for i, row := range rows {
		out[i] = row.toRecord()
	}
	return out
}
