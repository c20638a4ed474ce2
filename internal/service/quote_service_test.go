package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/quote"
	"github.com/GTDGit/fleetdesk_api/internal/repository"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
)

var quoteCols = []string{"id", "request_id", "user_id", "payload", "product_count", "service_count", "status",
	"dispatch_attempts", "next_dispatch_at", "dispatched_at", "last_error", "created_at", "updated_at"}

func newQuoteService(t *testing.T) (*QuoteService, sqlmock.Sqlmock, *recordingNotifier) {
	db, mock := newMockDB(t)
	history, notifier := newDBHistory(db)
	return NewQuoteService(repository.NewQuoteRepository(db), history), mock, notifier
}

func validProduct() models.QuoteProduct {
	os := models.OSWindows
	return models.QuoteProduct{
		ID:              "p1",
		Category:        models.CategoryComputer,
		OperatingSystem: &os,
		Quantity:        2,
		Brands:          []string{"Lenovo"},
		Country:         "Argentina",
	}
}

func TestQuoteService_SubmitEmpty(t *testing.T) {
	svc, _, _ := newQuoteService(t)

	_, err := svc.Submit(context.Background(), "7", nil, nil)
	assert.ErrorIs(t, err, quote.ErrEmptyQuote)
}

func TestQuoteService_SubmitInvalidDraftNamesIt(t *testing.T) {
	svc, _, _ := newQuoteService(t)
	p := validProduct()
	p.Country = "Atlantis"

	_, err := svc.Submit(context.Background(), "7", []models.QuoteProduct{p}, nil)
	require.ErrorIs(t, err, quote.ErrUnknownCountry)
	assert.Contains(t, err.Error(), "product 1 (computer)")
}

func TestQuoteService_SubmitStoresPendingQuote(t *testing.T) {
	svc, mock, notifier := newQuoteService(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO quote_requests`).
		WithArgs(sqlmock.AnyArg(), "7", sqlmock.AnyArg(), 1, 0, models.QuoteStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "next_dispatch_at", "created_at", "updated_at"}).
			AddRow(11, "pending", now, now, now))
	expectActivityInsert(mock, models.ActionCreate, models.ItemQuotes)
	mock.ExpectCommit()

	q, err := svc.Submit(context.Background(), "7", []models.QuoteProduct{validProduct()}, nil)
	require.NoError(t, err)
	assert.Equal(t, 11, q.ID)
	assert.Regexp(t, `^qr_[0-9a-f]{16}$`, q.RequestID)
	assert.Equal(t, 1, notifier.count())

	var payload quote.QuoteRequestPayload
	require.NoError(t, json.Unmarshal(q.Payload, &payload))
	require.Len(t, payload.Products, 1)
	assert.Equal(t, "AR", payload.Products[0].Country)
}

func TestQuoteService_CancelDispatchedIsRejected(t *testing.T) {
	svc, mock, notifier := newQuoteService(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM quote_requests WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
		WithArgs(5, "7").
		WillReturnRows(sqlmock.NewRows(quoteCols).
			AddRow(5, "qr_1", "7", []byte(`{}`), 1, 0, "dispatched", 1, nil, now, nil, now, now))
	mock.ExpectRollback()

	_, err := svc.Cancel(context.Background(), "7", 5)
	assert.ErrorIs(t, err, utils.ErrQuoteNotCancelable)
	assert.Zero(t, notifier.count())
}

func TestQuoteService_CancelPending(t *testing.T) {
	svc, mock, notifier := newQuoteService(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM quote_requests WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
		WithArgs(5, "7").
		WillReturnRows(sqlmock.NewRows(quoteCols).
			AddRow(5, "qr_1", "7", []byte(`{}`), 1, 0, "pending", 0, now, nil, nil, now, now))
	mock.ExpectExec(`UPDATE quote_requests SET status = \$2`).
		WithArgs(5, models.QuoteStatusCancelled).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectActivityInsert(mock, models.ActionCancel, models.ItemQuotes)
	mock.ExpectCommit()

	q, err := svc.Cancel(context.Background(), "7", 5)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusCancelled, q.Status)
	assert.Nil(t, q.NextDispatchAt)
	assert.Equal(t, 1, notifier.count())
}
