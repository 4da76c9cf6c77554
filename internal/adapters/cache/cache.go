// Package cache holds short-lived copies of aggregate reports so repeated
// dashboard refreshes do not hit the backend every time.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// StatsCache stores opaque report bodies with a TTL.
type StatsCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Key builds the cache key for report as seen by userID.
func Key(prefix, report, userID string) string {
	return fmt.Sprintf("%s:%s:%s", prefix, report, userID)
}
