package session

import (
	"context"
	"time"
)

// Store is the narrow key-value contract the session layer runs on. It is
// the only storage primitive this package uses: single-key get/set, no
// multi-key transactions.
//
// Get returns ("", nil) when the key is unset. Absence is a normal outcome
// (not yet logged in, not yet refreshed), never an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
