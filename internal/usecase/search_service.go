package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cartwise/backend/internal/domain"
	"github.com/cartwise/backend/internal/observability"
)

const (
	sessionLockStripes = 64
	filterKeyPrefix    = "filters:"

	defaultRecommendationLimit = 5
	defaultTrendingLimit       = 5
)

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	DisplayLimit int
	SessionTTL   time.Duration
	AroundSpread float64
	Leniency     LeniencyConfig
	Synonyms     *Synonyms
}

// SearchService is the entry point chat collaborators use: it keeps one filter
// context per session and runs parse, merge, search and format.
type SearchService struct {
	catalog    *Catalog
	sessions   domain.SessionStore
	parser     *QueryParser
	engine     *SearchEngine
	formatter  *Formatter
	vocab      *vocabulary
	sessionTTL time.Duration
	logger     *observability.Logger

	// Striped locks serialize merge-and-read per session without one global lock.
	locks [sessionLockStripes]sync.Mutex
}

// RecommendationRequest narrows recommendations by category and gender only.
type RecommendationRequest struct {
	Category string
	Gender   domain.Gender
	Limit    int
}

// CatalogStats summarizes the loaded catalog.
type CatalogStats struct {
	Total        int                   `json:"total"`
	Categories   map[string]int        `json:"categories"`
	Genders      map[domain.Gender]int `json:"genders"`
	PriceBuckets map[string]int        `json:"price_buckets"`
	OnSale       int                   `json:"on_sale"`
	InStock      int                   `json:"in_stock"`
	Skipped      int                   `json:"skipped"`
	LoadedAt     time.Time             `json:"loaded_at"`
}

// NewSearchService creates a new search service with dependencies
func NewSearchService(
	catalog *Catalog,
	sessions domain.SessionStore,
	config SearchServiceConfig,
	logger *observability.Logger,
) *SearchService {
	if logger == nil {
		logger = observability.Nop()
	}

	synonyms := config.Synonyms
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}

	sessionTTL := config.SessionTTL
	if sessionTTL == 0 {
		sessionTTL = 24 * time.Hour
	}

	return &SearchService{
		catalog:    catalog,
		sessions:   sessions,
		parser:     NewQueryParser(synonyms, QueryParserConfig{AroundSpread: config.AroundSpread}),
		engine:     NewSearchEngine(config.Leniency, logger),
		formatter:  NewFormatter(config.DisplayLimit),
		vocab:      compileVocabulary(synonyms),
		sessionTTL: sessionTTL,
		logger:     logger.WithComponent("search_service"),
	}
}

// Parser exposes the query parser for collaborators such as the intent classifier.
func (s *SearchService) Parser() *QueryParser {
	return s.parser
}

// DisplayLimit is the most products a formatted response lists.
func (s *SearchService) DisplayLimit() int {
	return s.formatter.displayLimit
}

// Search parses query, merges its filters into the session's filter context,
// and returns the ranked result. An empty sessionID runs a one-off search whose
// filters are not remembered.
func (s *SearchService) Search(ctx context.Context, sessionID, query string) (*domain.SearchResult, error) {
	parsed := s.parser.Parse(query)

	if sessionID == "" {
		var filters domain.FilterContext
		filters.Merge(parsed.Filters)
		return s.run(ctx, parsed, filters)
	}

	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	filters := s.loadFilters(ctx, sessionID)
	filters.Merge(parsed.Filters)

	result, err := s.run(ctx, parsed, filters)
	if err != nil {
		return nil, err
	}

	s.saveFilters(ctx, sessionID, filters)
	return result, nil
}

func (s *SearchService) run(ctx context.Context, parsed domain.ParsedQuery, filters domain.FilterContext) (*domain.SearchResult, error) {
	result, err := s.engine.Search(ctx, s.catalog.Snapshot(), parsed, filters)
	if err != nil {
		return nil, fmt.Errorf("search cancelled: %w", err)
	}
	return &result, nil
}

// FilterSummary returns the session's active filters as display strings.
func (s *SearchService) FilterSummary(ctx context.Context, sessionID string) ([]string, error) {
	if sessionID == "" {
		return nil, domain.ErrInvalidRequest
	}

	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	return FilterSummary(s.loadFilters(ctx, sessionID)), nil
}

// Filters returns the session's raw filter context.
func (s *SearchService) Filters(ctx context.Context, sessionID string) (domain.FilterContext, error) {
	if sessionID == "" {
		return domain.FilterContext{}, domain.ErrInvalidRequest
	}

	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	return s.loadFilters(ctx, sessionID), nil
}

// ClearFilters resets the session's filter context to unconstrained.
func (s *SearchService) ClearFilters(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrInvalidRequest
	}

	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.sessions.Delete(ctx, filterKeyPrefix+sessionID); err != nil {
		return fmt.Errorf("failed to clear filters: %w", err)
	}
	return nil
}

// FormatResponse renders a result for direct display in chat.
func (s *SearchService) FormatResponse(result *domain.SearchResult) string {
	return s.formatter.Format(result)
}

// Recommendations returns in-stock products for a category and gender, sale
// items first, then by price.
func (s *SearchService) Recommendations(ctx context.Context, req RecommendationRequest) []domain.Product {
	snap := s.catalog.Snapshot()

	limit := req.Limit
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}

	candidates := snap.Products
	if req.Category != "" {
		category := strings.ToLower(strings.TrimSpace(req.Category))
		if resolved, ok := s.vocab.categoryFor(category); ok {
			category = resolved
		}
		ids := idSet(snap.Index.LookupCategory(category))
		candidates = filterProducts(candidates, func(p domain.Product) bool { return ids[p.ID] && p.Category == category })
	}

	out := filterProducts(candidates, func(p domain.Product) bool {
		if !p.InStock {
			return false
		}
		if req.Gender != "" && req.Gender != domain.GenderUnisex {
			return p.Gender == req.Gender || p.Gender == domain.GenderUnisex
		}
		return true
	})

	out = dedupeProducts(out)
	sortBySaleThenPrice(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Trending returns in-stock sale items with the deepest discounts first.
func (s *SearchService) Trending(ctx context.Context, limit int) []domain.Product {
	if limit <= 0 {
		limit = defaultTrendingLimit
	}

	out := filterProducts(s.catalog.Snapshot().Products, func(p domain.Product) bool {
		return p.OnSale && p.InStock
	})
	out = dedupeProducts(out)
	sortByDiscount(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Stats summarizes the current catalog snapshot.
func (s *SearchService) Stats(ctx context.Context) CatalogStats {
	snap := s.catalog.Snapshot()
	stats := CatalogStats{
		Total:        len(snap.Products),
		Categories:   make(map[string]int, len(snap.Index.ByCategory)),
		Genders:      make(map[domain.Gender]int, len(snap.Index.ByGender)),
		PriceBuckets: make(map[string]int, len(PriceBuckets)),
		Skipped:      snap.Skipped,
		LoadedAt:     snap.LoadedAt,
	}

	for category, ids := range snap.Index.ByCategory {
		stats.Categories[category] = len(ids)
	}
	for gender, ids := range snap.Index.ByGender {
		stats.Genders[gender] = len(ids)
	}
	for _, bucket := range PriceBuckets {
		stats.PriceBuckets[bucket] = len(snap.Index.ByPriceBucket[bucket])
	}
	for _, p := range snap.Products {
		if p.OnSale {
			stats.OnSale++
		}
		if p.InStock {
			stats.InStock++
		}
	}
	return stats
}

// Categories lists the categories present in the catalog, sorted by name.
func (s *SearchService) Categories(ctx context.Context) []string {
	snap := s.catalog.Snapshot()
	categories := make([]string, 0, len(snap.Index.ByCategory))
	for category := range snap.Index.ByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// ProductCount returns the number of products currently served.
func (s *SearchService) ProductCount() int {
	return len(s.catalog.Snapshot().Products)
}

// loadFilters reads the session's context. A missing or unreadable entry
// yields an empty context: stale session state never fails a search.
func (s *SearchService) loadFilters(ctx context.Context, sessionID string) domain.FilterContext {
	var filters domain.FilterContext

	data, err := s.sessions.Get(ctx, filterKeyPrefix+sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to read session filters")
		}
		return filters
	}

	if err := json.Unmarshal(data, &filters); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("discarding corrupt session filters")
		return domain.FilterContext{}
	}
	return filters
}

func (s *SearchService) saveFilters(ctx context.Context, sessionID string, filters domain.FilterContext) {
	data, err := json.Marshal(filters)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode session filters")
		return
	}
	if err := s.sessions.Set(ctx, filterKeyPrefix+sessionID, data, s.sessionTTL); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to persist session filters")
	}
}

func (s *SearchService) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%sessionLockStripes]
}
