// Package app assembles the search backend from configuration. Both the HTTP
// server and catalogctl build their dependencies here.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/cartwise/backend/config"
	"github.com/cartwise/backend/internal/domain"
	"github.com/cartwise/backend/internal/infrastructure/cache"
	"github.com/cartwise/backend/internal/infrastructure/catalog"
	"github.com/cartwise/backend/internal/observability"
	"github.com/cartwise/backend/internal/usecase"
)

// App is a fully wired search backend
type App struct {
	Catalog *usecase.Catalog
	Search  *usecase.SearchService
	Logger  *observability.Logger

	closers []io.Closer
}

// NewLogger builds the service logger from configuration
func NewLogger(cfg config.LogConfig) *observability.Logger {
	return observability.NewLogger(observability.LogConfig{
		Level:       cfg.Level,
		Format:      cfg.Format,
		ServiceName: "cartwise-backend",
	})
}

// New wires the catalog source, session store and search service, then loads
// the catalog once. A failed initial load is logged and the app starts with an
// empty catalog.
func New(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*App, error) {
	if logger == nil {
		logger = observability.Nop()
	}
	a := &App{Logger: logger}

	synonyms := usecase.DefaultSynonyms()
	if cfg.Search.SynonymsPath != "" {
		loaded, err := usecase.LoadSynonymsYAML(cfg.Search.SynonymsPath)
		if err != nil {
			return nil, err
		}
		synonyms = loaded
	}

	source, err := a.newSource(ctx, cfg.Catalog)
	if err != nil {
		a.Close()
		return nil, err
	}

	sessions, err := a.newSessionStore(ctx, cfg.Session)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Catalog = usecase.NewCatalog(source, usecase.NewNormalizer(synonyms), logger)
	if err := a.Catalog.Reload(ctx); err != nil {
		logger.Error().Err(err).Msg("initial catalog load failed; serving empty catalog")
	}

	a.Search = usecase.NewSearchService(a.Catalog, sessions, usecase.SearchServiceConfig{
		DisplayLimit: cfg.Search.DisplayLimit,
		SessionTTL:   cfg.Session.TTL,
		AroundSpread: cfg.Search.AroundSpread,
		Leniency:     leniencyFrom(cfg.Search),
		Synonyms:     synonyms,
	}, logger)

	return a, nil
}

func (a *App) newSource(ctx context.Context, cfg config.CatalogConfig) (domain.CatalogSource, error) {
	switch cfg.Source {
	case "sql":
		store, err := catalog.OpenSQLStore(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store)
		return store, nil
	case "http":
		return catalog.NewFeedClient(catalog.FeedConfig{StoreURL: cfg.URL}, a.Logger), nil
	case "file", "":
		return catalog.NewFileSource(cfg.Path), nil
	}
	return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
}

func (a *App) newSessionStore(ctx context.Context, cfg config.SessionConfig) (domain.SessionStore, error) {
	if cfg.Store == "redis" {
		store, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.KeyPrefix)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store)
		return store, nil
	}

	store := cache.NewMemoryCache(0)
	a.closers = append(a.closers, store)
	return store, nil
}

func leniencyFrom(cfg config.SearchConfig) usecase.LeniencyConfig {
	l := usecase.DefaultLeniency()
	l.RelaxCategory = cfg.RelaxCategory
	l.RelaxColor = cfg.RelaxColor
	l.RelaxGender = cfg.RelaxGender
	l.RelaxPrice = cfg.RelaxPrice
	if cfg.GenderMinResults > 0 {
		l.GenderMinResults = cfg.GenderMinResults
	}
	return l
}

// Close releases the session store and database connections
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
