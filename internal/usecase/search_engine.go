package usecase

import (
	"context"
	"sort"
	"strings"

	snowballeng "github.com/kljensen/snowball/english"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/cartwise/backend/internal/domain"
	"github.com/cartwise/backend/internal/observability"
)

// Strategy scores. A product takes the score of the best strategy it matched.
const (
	ScoreAllWords = 3
	ScoreAnyWord  = 2
	ScoreFuzzy    = 1

	// Tokens shorter than this never take part in fuzzy matching.
	minFuzzyTokenLength = 3
	// Tokens at least this long also tolerate a single-character typo.
	minTypoTokenLength = 5
)

// Filter dimension names, in the order filters are applied.
const (
	FilterCategory = "category"
	FilterColor    = "color"
	FilterPrice    = "price"
	FilterGender   = "gender"
	FilterSale     = "sale"
	FilterInStock  = "in_stock"
)

// LeniencyConfig decides which filters may be skipped when they would empty the
// result set. Relaxed filters favor recall; hard filters favor precision.
type LeniencyConfig struct {
	RelaxCategory bool
	RelaxColor    bool
	RelaxPrice    bool
	RelaxGender   bool
	RelaxSale     bool
	RelaxInStock  bool

	// GenderMinResults is the smallest result set the gender filter may leave
	// behind before it is skipped.
	GenderMinResults int
}

// DefaultLeniency relaxes category, color and gender. Price, sale and stock stay hard.
func DefaultLeniency() LeniencyConfig {
	return LeniencyConfig{
		RelaxCategory:    true,
		RelaxColor:       true,
		RelaxGender:      true,
		GenderMinResults: 5,
	}
}

// SearchEngine matches, filters, deduplicates and ranks products for one query.
type SearchEngine struct {
	leniency LeniencyConfig
	logger   *observability.Logger
}

// NewSearchEngine creates a search engine
func NewSearchEngine(leniency LeniencyConfig, logger *observability.Logger) *SearchEngine {
	if logger == nil {
		logger = observability.Nop()
	}
	if leniency.GenderMinResults < 0 {
		leniency.GenderMinResults = 0
	}
	return &SearchEngine{
		leniency: leniency,
		logger:   logger.WithComponent("search_engine"),
	}
}

type filterStep struct {
	name       string
	relaxed    bool
	minResults int
	keep       func(p domain.Product) bool
}

// Search runs candidate generation over the parsed residual term, applies the
// filters in filters with the lenient fallback, removes duplicates and ranks.
// It only fails if ctx is cancelled.
func (e *SearchEngine) Search(
	ctx context.Context,
	snap *Snapshot,
	parsed domain.ParsedQuery,
	filters domain.FilterContext,
) (domain.SearchResult, error) {
	result := domain.SearchResult{
		Products:   []domain.Product{},
		Filters:    filters,
		SearchTerm: parsed.SearchTerm,
		Query:      parsed.Original,
	}
	if snap == nil || len(snap.Products) == 0 {
		return result, nil
	}

	tokens := parsed.Tokens()

	// Step 1: Candidate generation
	working, err := e.candidates(ctx, snap.Products, tokens)
	if err != nil {
		return result, err
	}

	// Step 2: Filters with lenient fallback
	for _, step := range e.filterSteps(snap, filters) {
		narrowed := filterProducts(working, step.keep)
		if skip, reason := e.shouldSkip(step, len(working), len(narrowed)); skip {
			result.RelaxedFilters = append(result.RelaxedFilters, step.name)
			e.logger.Debug().
				Str("filter", step.name).
				Str("reason", reason).
				Int("before", len(working)).
				Int("after", len(narrowed)).
				Msg("filter relaxed")
			continue
		}
		working = narrowed
	}

	// Step 3: Dedup and rank
	working = dedupeProducts(working)
	result.Products = Rank(working, parsed.SearchTerm)
	result.Total = len(result.Products)

	e.logger.Debug().
		Str("query", parsed.Original).
		Str("search_term", parsed.SearchTerm).
		Int("total", result.Total).
		Strs("relaxed", result.RelaxedFilters).
		Msg("search complete")

	return result, nil
}

func (e *SearchEngine) shouldSkip(step filterStep, before, after int) (bool, string) {
	if !step.relaxed {
		return false, ""
	}
	if after == 0 && before > 0 {
		return true, "no results"
	}
	if step.minResults > 0 && after < step.minResults && before >= step.minResults {
		return true, "below minimum results"
	}
	return false, ""
}

// filterSteps builds the active filters in application order: category, color,
// price, gender, sale, in-stock.
func (e *SearchEngine) filterSteps(snap *Snapshot, filters domain.FilterContext) []filterStep {
	var steps []filterStep

	if filters.Category != "" {
		ids := idSet(snap.Index.LookupCategory(filters.Category))
		steps = append(steps, filterStep{
			name:    FilterCategory,
			relaxed: e.leniency.RelaxCategory,
			keep:    func(p domain.Product) bool { return ids[p.ID] && p.Category == filters.Category },
		})
	}

	if len(filters.Colors) > 0 {
		ids := make(map[string]bool)
		for _, c := range filters.Colors {
			for _, id := range snap.Index.ByColor[strings.ToLower(c)] {
				ids[id] = true
			}
		}
		steps = append(steps, filterStep{
			name:    FilterColor,
			relaxed: e.leniency.RelaxColor,
			keep: func(p domain.Product) bool {
				// A product without color data is not evidence of a mismatch.
				return len(p.Colors) == 0 || (ids[p.ID] && hasAnyColor(p, filters.Colors))
			},
		})
	}

	if filters.Price != nil {
		price := *filters.Price
		steps = append(steps, filterStep{
			name:    FilterPrice,
			relaxed: e.leniency.RelaxPrice,
			keep:    func(p domain.Product) bool { return !p.HasPrice || price.Contains(p.Price) },
		})
	}

	if filters.Gender != "" && filters.Gender != domain.GenderUnisex {
		gender := filters.Gender
		steps = append(steps, filterStep{
			name:       FilterGender,
			relaxed:    e.leniency.RelaxGender,
			minResults: e.leniency.GenderMinResults,
			keep: func(p domain.Product) bool {
				return p.Gender == gender || p.Gender == domain.GenderUnisex
			},
		})
	}

	if filters.SaleOnly() {
		steps = append(steps, filterStep{
			name:    FilterSale,
			relaxed: e.leniency.RelaxSale,
			keep:    func(p domain.Product) bool { return p.OnSale },
		})
	}

	if filters.InStockOnly() {
		steps = append(steps, filterStep{
			name:    FilterInStock,
			relaxed: e.leniency.RelaxInStock,
			keep:    func(p domain.Product) bool { return p.InStock },
		})
	}

	return steps
}

type scoredProduct struct {
	product domain.Product
	score   int
}

// candidates scores every product against tokens. An empty token list selects
// the whole catalog in catalog order.
func (e *SearchEngine) candidates(ctx context.Context, products []domain.Product, tokens []string) ([]domain.Product, error) {
	if len(tokens) == 0 {
		return append([]domain.Product(nil), products...), nil
	}

	scored := make([]scoredProduct, 0, len(products))
	for i, p := range products {
		if i%256 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		if score := matchScore(p.SearchText, tokens); score > 0 {
			scored = append(scored, scoredProduct{product: p, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	out := make([]domain.Product, len(scored))
	for i, s := range scored {
		out[i] = s.product
	}
	return out, nil
}

// matchScore returns the best strategy score for text, or 0 for no match.
func matchScore(text string, tokens []string) int {
	matched := 0
	for _, tok := range tokens {
		if strings.Contains(text, tok) {
			matched++
		}
	}
	switch {
	case matched == len(tokens):
		return ScoreAllWords
	case matched > 0:
		return ScoreAnyWord
	case fuzzyMatch(strings.Fields(text), tokens):
		return ScoreFuzzy
	default:
		return 0
	}
}

// fuzzyMatch reports whether any token and any word of the product text contain
// one another, share an English stem, or differ by a single edit for longer tokens.
func fuzzyMatch(words, tokens []string) bool {
	for _, tok := range tokens {
		if len(tok) < minFuzzyTokenLength {
			continue
		}
		stem := snowballeng.Stem(tok, false)
		for _, word := range words {
			if len(word) < minFuzzyTokenLength {
				continue
			}
			if strings.Contains(word, tok) || strings.Contains(tok, word) {
				return true
			}
			if stem == snowballeng.Stem(word, false) {
				return true
			}
			if len(tok) >= minTypoTokenLength && abs(len(tok)-len(word)) <= 1 &&
				fuzzy.LevenshteinDistance(tok, word) <= 1 {
				return true
			}
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func filterProducts(products []domain.Product, keep func(domain.Product) bool) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// dedupeProducts keeps the first product for each (name, url) pair.
func dedupeProducts(products []domain.Product) []domain.Product {
	seen := make(map[string]bool, len(products))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		key := strings.ToLower(strings.TrimSpace(p.Name)) + "\x00" + strings.TrimSpace(p.URL)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

func hasAnyColor(p domain.Product, colors []string) bool {
	for _, want := range colors {
		want = strings.ToLower(want)
		for _, have := range p.CanonicalColors {
			if have == want {
				return true
			}
		}
		for _, have := range p.Colors {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
