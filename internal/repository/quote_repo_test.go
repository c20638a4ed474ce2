package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/fleetdesk_api/internal/database"
	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
)

var quoteCols = []string{"id", "request_id", "user_id", "payload", "product_count", "service_count", "status",
	"dispatch_attempts", "next_dispatch_at", "dispatched_at", "last_error", "created_at", "updated_at"}

func TestQuoteRepository_CreateTx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQuoteRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO quote_requests`).
		WithArgs("qr_1", "7", []byte(`{"products":[]}`), 1, 0, models.QuoteStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "next_dispatch_at", "created_at", "updated_at"}).
			AddRow(5, "pending", now, now, now))
	mock.ExpectCommit()

	q := &models.QuoteRequest{RequestID: "qr_1", UserID: "7", Payload: json.RawMessage(`{"products":[]}`), ProductCount: 1}
	err := database.WithTx(context.Background(), repo.DB(), func(tx *sqlx.Tx) error {
		return repo.CreateTx(context.Background(), tx, q)
	})
	require.NoError(t, err)
	assert.Equal(t, 5, q.ID)
	assert.Equal(t, models.QuoteStatusPending, q.Status)
	require.NotNil(t, q.NextDispatchAt)
}

func TestQuoteRepository_CancelRejectsDispatched(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQuoteRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM quote_requests WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
		WithArgs(5, "7").
		WillReturnRows(sqlmock.NewRows(quoteCols).
			AddRow(5, "qr_1", "7", []byte(`{}`), 1, 0, "dispatched", 1, nil, now, nil, now, now))
	mock.ExpectRollback()

	err := database.WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		_, err := repo.CancelTx(context.Background(), tx, "7", 5)
		return err
	})
	assert.ErrorIs(t, err, utils.ErrQuoteNotCancelable)
}

func TestQuoteRepository_CancelPending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQuoteRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(5, "7").
		WillReturnRows(sqlmock.NewRows(quoteCols).
			AddRow(5, "qr_1", "7", []byte(`{}`), 1, 0, "pending", 0, now, nil, nil, now, now))
	mock.ExpectExec(`UPDATE quote_requests SET status = \$2`).
		WithArgs(5, models.QuoteStatusCancelled).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var before *models.QuoteRequest
	err := database.WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		var err error
		before, err = repo.CancelTx(context.Background(), tx, "7", 5)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusPending, before.Status)
}

func TestQuoteRepository_ListDueAndMarks(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQuoteRepository(db)
	now := time.Now()
	ctx := context.Background()

	mock.ExpectQuery(`WHERE status = \$1 AND next_dispatch_at <= \$2`).
		WithArgs(models.QuoteStatusPending, now, 20).
		WillReturnRows(sqlmock.NewRows(quoteCols).
			AddRow(5, "qr_1", "7", []byte(`{"products":[]}`), 1, 0, "pending", 0, now, nil, nil, now, now))
	mock.ExpectExec(`UPDATE quote_requests SET status = \$2, dispatch_attempts = \$3, dispatched_at`).
		WithArgs(5, models.QuoteStatusDispatched, 1, models.QuoteStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE quote_requests SET dispatch_attempts = \$2, next_dispatch_at = \$3`).
		WithArgs(6, 2, now, "timeout", models.QuoteStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE quote_requests SET status = \$2, dispatch_attempts = \$3, next_dispatch_at = NULL`).
		WithArgs(7, models.QuoteStatusFailed, 6, "HTTP 500", models.QuoteStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	due, err := repo.ListDue(ctx, now, 20)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.JSONEq(t, `{"products":[]}`, string(due[0].Payload))

	require.NoError(t, repo.MarkDispatched(ctx, 5, 1))
	require.NoError(t, repo.ScheduleRetry(ctx, 6, 2, now, "timeout"))
	require.NoError(t, repo.MarkFailed(ctx, 7, 6, "HTTP 500"))
}
