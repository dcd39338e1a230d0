package domain

import (
	"context"
	"time"
)

// CatalogSource loads the raw product catalog
type CatalogSource interface {
	Load(ctx context.Context) ([]RawProduct, error)
}

// SessionStore persists per-session state as opaque bytes
type SessionStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
