package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/fleetdesk_api/internal/database"
	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/quote"
	"github.com/GTDGit/fleetdesk_api/internal/repository"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
)

// QuoteSubmittedMessage is returned to the dashboard after a submission.
const QuoteSubmittedMessage = "Quote request submitted successfully"

// QuoteService stores submitted quotes for dispatch to the sales desk.
type QuoteService struct {
	repo    *repository.QuoteRepository
	history *HistoryService
}

// NewQuoteService constructs a QuoteService.
func NewQuoteService(repo *repository.QuoteRepository, history *HistoryService) *QuoteService {
	return &QuoteService{repo: repo, history: history}
}

// Submit transforms the committed drafts and stores the result as a pending
// quote request together with its quotes/create record.
func (s *QuoteService) Submit(ctx context.Context, userID string, products []models.QuoteProduct, services []models.QuoteService) (*models.QuoteRequest, error) {
	payload, err := quote.BuildQuoteRequestPayload(products, services)
	if err != nil {
		return nil, err
	}
	return s.SubmitPayload(ctx, userID, payload)
}

// SubmitPayload stores an already transformed payload.
func (s *QuoteService) SubmitPayload(ctx context.Context, userID string, payload quote.QuoteRequestPayload) (*models.QuoteRequest, error) {
	if len(payload.Products) == 0 && len(payload.Services) == 0 {
		return nil, quote.ErrEmptyQuote
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode quote payload: %w", err)
	}
	requestID, err := utils.GenerateQuoteRequestID()
	if err != nil {
		return nil, err
	}

	q := &models.QuoteRequest{
		RequestID:    requestID,
		UserID:       userID,
		Payload:      body,
		ProductCount: len(payload.Products),
		ServiceCount: len(payload.Services),
	}
	var rec *models.ActivityRecord
	err = database.WithTx(ctx, s.repo.DB(), func(tx *sqlx.Tx) error {
		if err := s.repo.CreateTx(ctx, tx, q); err != nil {
			return err
		}
		var err error
		rec, err = s.history.RecordTx(ctx, tx, Entry{
			Item:    models.ItemQuotes,
			Action:  models.ActionCreate,
			UserID:  userID,
			NewData: payload,
			Context: map[string]any{"requestId": q.RequestID},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.history.Publish(ctx, rec)

	log.Info().
		Str("request_id", q.RequestID).
		Str("user_id", userID).
		Int("products", q.ProductCount).
		Int("services", q.ServiceCount).
		Msg("Quote request submitted")
	return q, nil
}

// List returns one page of the caller's quotes.
func (s *QuoteService) List(ctx context.Context, userID string, page, size int) ([]models.QuoteRequest, int, error) {
	page, size = PageBounds(page, size)
	return s.repo.ListByUser(ctx, userID, page, size)
}

// Get returns one of the caller's quotes.
func (s *QuoteService) Get(ctx context.Context, userID string, id int) (*models.QuoteRequest, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// Cancel stops a quote that has not been dispatched yet.
func (s *QuoteService) Cancel(ctx context.Context, userID string, id int) (*models.QuoteRequest, error) {
	var (
		before *models.QuoteRequest
		rec    *models.ActivityRecord
	)
	err := database.WithTx(ctx, s.repo.DB(), func(tx *sqlx.Tx) error {
		var err error
		if before, err = s.repo.CancelTx(ctx, tx, userID, id); err != nil {
			return err
		}
		rec, err = s.history.RecordTx(ctx, tx, Entry{
			Item:    models.ItemQuotes,
			Action:  models.ActionCancel,
			UserID:  userID,
			OldData: map[string]any{"requestId": before.RequestID, "status": before.Status},
			NewData: map[string]any{"requestId": before.RequestID, "status": models.QuoteStatusCancelled},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.history.Publish(ctx, rec)

	after := *before
	after.Status = models.QuoteStatusCancelled
	after.NextDispatchAt = nil
	return &after, nil
}
