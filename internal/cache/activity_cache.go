package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GTDGit/fleetdesk_api/internal/models"
)

const latestActivityKey = "history:latest"

// LatestActivityCache caches the newest activity records. It is invalidated
// whenever a record is written.
type LatestActivityCache struct {
	kv  KV
	ttl time.Duration
}

// NewLatestActivityCache creates a LatestActivityCache.
func NewLatestActivityCache(kv KV, ttl time.Duration) *LatestActivityCache {
	return &LatestActivityCache{kv: kv, ttl: ttl}
}

// Get returns the cached records. ok is false on a miss.
func (c *LatestActivityCache) Get(ctx context.Context) (records []models.ActivityRecord, ok bool, err error) {
	raw, err := c.kv.Get(ctx, latestActivityKey)
	if errors.Is(err, ErrMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal latest activity: %w", err)
	}
	return records, true, nil
}

// Set replaces the cached records.
func (c *LatestActivityCache) Set(ctx context.Context, records []models.ActivityRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal latest activity: %w", err)
	}
	return c.kv.Set(ctx, latestActivityKey, string(data), c.ttl)
}

// Invalidate drops the cached records.
func (c *LatestActivityCache) Invalidate(ctx context.Context) error {
	return c.kv.Delete(ctx, latestActivityKey)
}
