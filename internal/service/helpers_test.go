package service

import (
	"context"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/fleetdesk_api/internal/models"
	"github.com/GTDGit/fleetdesk_api/internal/repository"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "sqlmock")
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

type recordingNotifier struct {
	mu      sync.Mutex
	records []models.ActivityRecord
}

func (n *recordingNotifier) NotifyActivity(rec *models.ActivityRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.records = append(n.records, *rec)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.records)
}

type memLatestCache struct {
	records     []models.ActivityRecord
	cached      bool
	invalidated int
}

func (c *memLatestCache) Get(context.Context) ([]models.ActivityRecord, bool, error) {
	return c.records, c.cached, nil
}

func (c *memLatestCache) Set(_ context.Context, records []models.ActivityRecord) error {
	c.records, c.cached = records, true
	return nil
}

func (c *memLatestCache) Invalidate(context.Context) error {
	c.records, c.cached = nil, false
	c.invalidated++
	return nil
}

// newDBHistory wires a HistoryService to the real repository on db.
func newDBHistory(db *sqlx.DB) (*HistoryService, *recordingNotifier) {
	n := &recordingNotifier{}
	return NewHistoryService(repository.NewHistoryRepository(db), nil, n, 5), n
}

func expectActivityInsert(mock sqlmock.Sqlmock, action models.ActionType, item models.ItemType) {
	mock.ExpectExec(`INSERT INTO activity_records`).
		WithArgs(sqlmock.AnyArg(), string(action), string(item), "7",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
}
