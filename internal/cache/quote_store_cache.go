package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GTDGit/fleetdesk_api/internal/quote"
)

// QuoteStoreCache persists the committed lists of each user's quote store.
// Key: quote-store:{userID}, value: JSON {products, services}.
type QuoteStoreCache struct {
	kv  KV
	ttl time.Duration
}

// NewQuoteStoreCache creates a QuoteStoreCache. A zero ttl keeps entries forever.
func NewQuoteStoreCache(kv KV, ttl time.Duration) *QuoteStoreCache {
	return &QuoteStoreCache{kv: kv, ttl: ttl}
}

func (c *QuoteStoreCache) key(userID string) string {
	return fmt.Sprintf("quote-store:%s", userID)
}

// Load returns the persisted snapshot of userID, or an empty one.
func (c *QuoteStoreCache) Load(ctx context.Context, userID string) (quote.Snapshot, error) {
	raw, err := c.kv.Get(ctx, c.key(userID))
	if errors.Is(err, ErrMiss) {
		return quote.Snapshot{}, nil
	}
	if err != nil {
		return quote.Snapshot{}, fmt.Errorf("failed to load quote store: %w", err)
	}

	var snap quote.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return quote.Snapshot{}, fmt.Errorf("failed to unmarshal quote store: %w", err)
	}
	return snap, nil
}

// Save writes snap for userID.
func (c *QuoteStoreCache) Save(ctx context.Context, userID string, snap quote.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal quote store: %w", err)
	}
	if err := c.kv.Set(ctx, c.key(userID), string(data), c.ttl); err != nil {
		return fmt.Errorf("failed to save quote store: %w", err)
	}
	return nil
}

// Persister binds Save to one user, for use as a quote.Store persister.
func (c *QuoteStoreCache) Persister(userID string) quote.Persister {
	return quote.PersisterFunc(func(ctx context.Context, snap quote.Snapshot) error {
		return c.Save(ctx, userID, snap)
	})
}
