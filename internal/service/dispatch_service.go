package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
)

// dispatchBatch is the number of due quotes handled per run.
const dispatchBatch = 20

// Retry intervals after the 1st..5th failed attempt. A failure after the
// last one marks the quote failed.
var dispatchRetryIntervals = []time.Duration{
	30 * time.Second,
	1 * time.Minute,
	5 * time.Minute,
	30 * time.Minute,
	2 * time.Hour,
}

// DispatchStore is the quote persistence the dispatcher needs.
type DispatchStore interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]models.QuoteRequest, error)
	MarkDispatched(ctx context.Context, id, attempts int) error
	ScheduleRetry(ctx context.Context, id, attempts int, next time.Time, lastErr string) error
	MarkFailed(ctx context.Context, id, attempts int, lastErr string) error
}

// DispatchService forwards pending quote requests to the sales-desk webhook.
type DispatchService struct {
	repo       DispatchStore
	httpClient *http.Client
	url        string
	secret     string
	now        func() time.Time
}

// NewDispatchService constructs a DispatchService with a default HTTP client.
func NewDispatchService(repo DispatchStore, url, secret string) *DispatchService {
	return &DispatchService{
		repo:       repo,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		url:        url,
		secret:     secret,
		now:        time.Now,
	}
}

// Enabled reports whether a webhook is configured.
func (s *DispatchService) Enabled() bool { return s.url != "" }

// DispatchDue delivers every due quote once and returns how many were delivered.
func (s *DispatchService) DispatchDue(ctx context.Context) (int, error) {
	if !s.Enabled() {
		return 0, nil
	}
	quotes, err := s.repo.ListDue(ctx, s.now(), dispatchBatch)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for i := range quotes {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		ok, err := s.dispatch(ctx, &quotes[i])
		if err != nil {
			return delivered, err
		}
		if ok {
			delivered++
		}
	}
	return delivered, nil
}

// dispatch sends q and records the outcome. The returned error is a
// bookkeeping failure, not a delivery failure.
func (s *DispatchService) dispatch(ctx context.Context, q *models.QuoteRequest) (bool, error) {
	attempt := q.DispatchAttempts + 1
	sendErr := s.send(ctx, q)
	if sendErr == nil {
		log.Info().Str("request_id", q.RequestID).Int("attempt", attempt).Msg("Quote dispatched")
		return true, s.repo.MarkDispatched(ctx, q.ID, attempt)
	}

	if attempt > len(dispatchRetryIntervals) {
		log.Error().Err(sendErr).Str("request_id", q.RequestID).Int("attempt", attempt).Msg("Quote dispatch failed permanently")
		return false, s.repo.MarkFailed(ctx, q.ID, attempt, sendErr.Error())
	}
	next := s.now().Add(dispatchRetryIntervals[attempt-1])
	log.Warn().Err(sendErr).
		Str("request_id", q.RequestID).
		Int("attempt", attempt).
		Time("next_attempt", next).
		Msg("Quote dispatch failed, retry scheduled")
	return false, s.repo.ScheduleRetry(ctx, q.ID, attempt, next, sendErr.Error())
}

func (s *DispatchService) send(ctx context.Context, q *models.QuoteRequest) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(q.Payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Fleetdesk-Request-Id", q.RequestID)
	req.Header.Set("X-Fleetdesk-Timestamp", s.now().UTC().Format(time.RFC3339))
	if s.secret != "" {
		req.Header.Set("X-Fleetdesk-Signature", utils.SignWebhook(q.Payload, s.secret))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
