// Package session is the short-lived per-conversation key/value memory.
// Keys carry independent expiries; expired reads behave as absent.
package session

import (
	"context"
	"time"

	"storeassist/internal/models"
)

// Well-known session keys. The snapshot loader reads exactly these.
const (
	KeyPostcode        = "postcode"
	KeyNearestBranchID = "nearest_branch_id"
	KeyLastCategory    = "last_category"
	KeyLastSKU         = "last_sku"
	KeyLastIntent      = "last_intent"
)

// Store is the session memory contract. Implementations must be safe for
// concurrent use across sessions; same-session writes are last-write-wins.
type Store interface {
	Get(ctx context.Context, sessionID, key string) (string, error)
	Set(ctx context.Context, sessionID, key, value string, ttl time.Duration) error
	Clear(ctx context.Context, sessionID string) error
}

// Snapshot reads the well-known keys into a turn snapshot. A read error
// on any key degrades to an empty value rather than failing the turn.
func Snapshot(ctx context.Context, s Store, sessionID string) models.SessionSnapshot {
	get := func(key string) string {
		v, err := s.Get(ctx, sessionID, key)
		if err != nil {
			return ""
		}
		return v
	}
	return models.SessionSnapshot{
		Postcode:        get(KeyPostcode),
		NearestBranchID: get(KeyNearestBranchID),
		LastCategory:    get(KeyLastCategory),
		LastSKU:         get(KeyLastSKU),
		LastIntent:      get(KeyLastIntent),
	}
}
