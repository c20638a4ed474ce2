package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/fleetdesk_api/internal/history"
	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/repository"
	"github.com/GTDGit/fleetdesk_api/internal/sse"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
)

const (
	defaultHistoryPageSize = 10
	maxHistoryPageSize     = 100
)

// HistoryStore is the persistence the history service needs.
type HistoryStore interface {
	List(ctx context.Context, f repository.HistoryFilter) ([]models.ActivityRecord, int, error)
	Latest(ctx context.Context, limit int) ([]models.ActivityRecord, error)
	GetByID(ctx context.Context, id string) (*models.ActivityRecord, error)
	Create(ctx context.Context, rec *models.ActivityRecord) error
	CreateTx(ctx context.Context, tx *sqlx.Tx, rec *models.ActivityRecord) error
}

// LatestCache caches the newest records.
type LatestCache interface {
	Get(ctx context.Context) ([]models.ActivityRecord, bool, error)
	Set(ctx context.Context, records []models.ActivityRecord) error
	Invalidate(ctx context.Context) error
}

// HistoryService reads and appends activity records.
type HistoryService struct {
	repo        HistoryStore
	cache       LatestCache
	notifier    sse.ActivityNotifier
	latestLimit int
	now         func() time.Time
}

// NewHistoryService constructs a HistoryService. cache may be nil.
func NewHistoryService(repo HistoryStore, cache LatestCache, notifier sse.ActivityNotifier, latestLimit int) *HistoryService {
	if notifier == nil {
		notifier = &sse.NopNotifier{}
	}
	return &HistoryService{
		repo:        repo,
		cache:       cache,
		notifier:    notifier,
		latestLimit: latestLimit,
		now:         time.Now,
	}
}

// HistoryQuery is a page request. Dates are yyyy-MM-dd; EndDate is inclusive.
type HistoryQuery struct {
	Page      int    `form:"page"`
	Size      int    `form:"size"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// List returns one page of records in the requested date range.
func (s *HistoryService) List(ctx context.Context, q HistoryQuery) (*models.HistoryPage, error) {
	f, err := q.filter()
	if err != nil {
		return nil, err
	}

	records, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &models.HistoryPage{
		Data:       records,
		TotalCount: total,
		TotalPages: utils.TotalPages(total, f.Size),
	}, nil
}

// PageBounds defaults page to 1 and size to 10, and caps size at 100.
func PageBounds(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultHistoryPageSize
	}
	if size > maxHistoryPageSize {
		size = maxHistoryPageSize
	}
	return page, size
}

func (q HistoryQuery) filter() (repository.HistoryFilter, error) {
	f := repository.HistoryFilter{}
	f.Page, f.Size = PageBounds(q.Page, q.Size)

	start, err := parseDay(q.StartDate)
	if err != nil {
		return f, fmt.Errorf("%w: startDate %q", utils.ErrInvalidDate, q.StartDate)
	}
	end, err := parseDay(q.EndDate)
	if err != nil {
		return f, fmt.Errorf("%w: endDate %q", utils.ErrInvalidDate, q.EndDate)
	}
	if start != nil && end != nil && start.After(*end) {
		return f, fmt.Errorf("%w: startDate is after endDate", utils.ErrInvalidDateRange)
	}

	f.From = start
	if end != nil {
		until := end.AddDate(0, 0, 1)
		f.Until = &until
	}
	return f, nil
}

func parseDay(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(time.DateOnly, raw, time.UTC)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Latest returns the newest records, served from cache when possible.
func (s *HistoryService) Latest(ctx context.Context) ([]models.ActivityRecord, error) {
	if s.cache != nil {
		records, ok, err := s.cache.Get(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Latest activity cache read failed")
		} else if ok {
			return records, nil
		}
	}

	records, err := s.repo.Latest(ctx, s.latestLimit)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, records); err != nil {
			log.Warn().Err(err).Msg("Latest activity cache write failed")
		}
	}
	return records, nil
}

// Get returns one record.
func (s *HistoryService) Get(ctx context.Context, id string) (*models.ActivityRecord, error) {
	return s.repo.GetByID(ctx, id)
}

// Details returns the sub-table of one record.
func (s *HistoryService) Details(ctx context.Context, id string) (*history.SubTable, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	table, err := history.Render(*rec)
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// Entry describes a change to record.
type Entry struct {
	Item    models.ItemType
	Action  models.ActionType
	UserID  string
	OldData any
	NewData any
	Context any
}

// NewRecord builds the record for e with a fresh id and timestamp.
func (s *HistoryService) NewRecord(e Entry) (*models.ActivityRecord, error) {
	oldData, err := marshalOptional(e.OldData)
	if err != nil {
		return nil, fmt.Errorf("encode oldData: %w", err)
	}
	newData, err := marshalOptional(e.NewData)
	if err != nil {
		return nil, fmt.Errorf("encode newData: %w", err)
	}
	ctxData, err := marshalOptional(e.Context)
	if err != nil {
		return nil, fmt.Errorf("encode context: %w", err)
	}
	return &models.ActivityRecord{
		ID:         uuid.NewString(),
		ActionType: e.Action,
		ItemType:   e.Item,
		UserID:     e.UserID,
		Changes: models.ActivityChanges{
			OldData: oldData,
			NewData: newData,
			Context: ctxData,
		},
		CreatedAt: s.now().UTC(),
	}, nil
}

// Record writes e and publishes it.
func (s *HistoryService) Record(ctx context.Context, e Entry) (*models.ActivityRecord, error) {
	rec, err := s.NewRecord(e)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.Publish(ctx, rec)
	return rec, nil
}

// RecordTx writes e inside tx. Callers Publish the record after commit.
func (s *HistoryService) RecordTx(ctx context.Context, tx *sqlx.Tx, e Entry) (*models.ActivityRecord, error) {
	rec, err := s.NewRecord(e)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateTx(ctx, tx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Publish invalidates the latest cache and notifies stream subscribers.
func (s *HistoryService) Publish(ctx context.Context, rec *models.ActivityRecord) {
	if rec == nil {
		return
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("Latest activity cache invalidation failed")
		}
	}
	s.notifier.NotifyActivity(rec)
	log.Debug().
		Str("record_id", rec.ID).
		Str("item_type", string(rec.ItemType)).
		Str("action_type", string(rec.ActionType)).
		Msg("Activity recorded")
}

func marshalOptional(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}
