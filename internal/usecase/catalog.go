package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cartwise/backend/internal/domain"
	"github.com/cartwise/backend/internal/observability"
)

// Snapshot is an immutable pairing of a product list and the index built from it.
// Readers always see both halves from the same load.
type Snapshot struct {
	Products []domain.Product
	Index    *SearchIndex
	LoadedAt time.Time
	Skipped  int
}

func newSnapshot(products []domain.Product, skipped int) *Snapshot {
	return &Snapshot{
		Products: products,
		Index:    BuildIndex(products),
		LoadedAt: time.Now(),
		Skipped:  skipped,
	}
}

// Catalog owns the current product snapshot and replaces it atomically on reload.
type Catalog struct {
	source     domain.CatalogSource
	normalizer *Normalizer
	logger     *observability.Logger

	current  atomic.Pointer[Snapshot]
	reloadMu sync.Mutex
}

// NewCatalog creates a catalog in the empty state. Call Reload to populate it.
func NewCatalog(source domain.CatalogSource, normalizer *Normalizer, logger *observability.Logger) *Catalog {
	if logger == nil {
		logger = observability.Nop()
	}
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}
	c := &Catalog{
		source:     source,
		normalizer: normalizer,
		logger:     logger.WithComponent("catalog"),
	}
	c.current.Store(newSnapshot(nil, 0))
	return c
}

// Snapshot returns the current snapshot. It is never nil.
func (c *Catalog) Snapshot() *Snapshot {
	return c.current.Load()
}

// Reload reads the source, normalizes the records and swaps in a freshly built
// snapshot. On failure the previous snapshot stays in place, which is the empty
// snapshot if no load has succeeded yet.
func (c *Catalog) Reload(ctx context.Context) error {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	if c.source == nil {
		return fmt.Errorf("%w: no catalog source configured", domain.ErrCatalogUnavailable)
	}

	start := time.Now()
	raws, err := c.source.Load(ctx)
	if err != nil {
		c.logger.Error().Err(err).Int("serving", len(c.Snapshot().Products)).Msg("catalog load failed")
		return fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	products, skipped := c.normalizer.NormalizeAll(raws)
	c.current.Store(newSnapshot(products, skipped))

	c.logger.Info().
		Int("products", len(products)).
		Int("skipped", skipped).
		Dur("took", time.Since(start)).
		Msg("catalog loaded")
	return nil
}

// StartRefresh reloads the catalog every interval until ctx is cancelled.
// A non-positive interval disables refreshing.
func (c *Catalog) StartRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.Reload(ctx); err != nil {
					c.logger.Warn().Err(err).Msg("scheduled catalog refresh failed; keeping previous snapshot")
				}
			}
		}
	}()
}
