package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cartwise/backend/internal/domain"
)

// QueryParserConfig holds tunables for filter extraction
type QueryParserConfig struct {
	// AroundSpread is the +/- window applied to "around $N" queries.
	AroundSpread float64
}

// QueryParser turns free-text shopping queries into structured filters plus a
// residual search term.
type QueryParser struct {
	vocab        *vocabulary
	aroundSpread float64
}

// Compiled regex patterns for filter extraction
var (
	amountExpr = `\$?\s*(\d[\d,]*(?:\.\d+)?)`

	// Price patterns in priority order. The first one that matches wins.
	underPricePattern   = regexp.MustCompile(`\b(?:under|below|less than|cheaper than|up to)\s*` + amountExpr)
	overPricePattern    = regexp.MustCompile(`\b(?:over|above|more than)\s*` + amountExpr)
	betweenPricePattern = regexp.MustCompile(`\bbetween\s*` + amountExpr + `\s*(?:and|to|-)\s*` + amountExpr)
	dashPricePattern    = regexp.MustCompile(amountExpr + `\s*-\s*` + amountExpr)
	aroundPricePattern  = regexp.MustCompile(`\b(?:around|about|approximately|roughly)\s*` + amountExpr)

	// "size 8" and "size 8-10" name a fit, not a price.
	sizePattern = regexp.MustCompile(`\bsizes?\s*\d+(?:\.\d+)?(?:\s*(?:-|to)\s*\d+(?:\.\d+)?)?\b`)

	// Any word containing "women" or "woman" counts, so "sportswomen" is
	// Women. Men alternatives run longest first: RE2 alternation is
	// leftmost-first.
	queryWomenPattern = regexp.MustCompile(`\w*wom[ae]n[\w']*|\blad(?:ies|y)\b(?:'s|')?`)
	queryMenPattern   = regexp.MustCompile(`\b(?:men's|mens|men|man's|man)\b`)

	salePattern    = regexp.MustCompile(`\b(?:on sale|sales|sale|discounted|discounts|discount|reduced|clearance)\b`)
	inStockPattern = regexp.MustCompile(`\b(?:in stock|in-stock|available)\b`)

	// Multiple spaces cleanup
	querySpacePattern = regexp.MustCompile(`\s+`)
)

// queryFillerWords are conversational words that never identify a product.
var queryFillerWords = map[string]bool{
	"a": true, "an": true, "the": true, "for": true, "me": true, "my": true,
	"show": true, "find": true, "get": true, "give": true, "see": true,
	"i": true, "i'm": true, "im": true, "want": true, "need": true, "like": true, "would": true,
	"looking": true, "look": true, "search": true, "searching": true,
	"some": true, "any": true, "please": true, "with": true, "in": true,
	"of": true, "and": true, "or": true, "to": true, "do": true, "you": true,
	"have": true, "has": true, "what": true, "are": true, "is": true, "there": true,
	"can": true, "could": true, "something": true, "anything": true,
	"products": true, "product": true, "items": true, "item": true,
	"that": true, "which": true, "on": true, "at": true, "price": true, "priced": true,
	"cost": true, "costs": true, "dollars": true, "than": true, "under": true, "over": true,
	"between": true, "around": true, "color": true, "colour": true, "colored": true,
}

// NewQueryParser creates a parser over the given vocabulary
func NewQueryParser(synonyms *Synonyms, config QueryParserConfig) *QueryParser {
	spread := config.AroundSpread
	if spread <= 0 {
		spread = 50
	}
	return &QueryParser{
		vocab:        compileVocabulary(synonyms),
		aroundSpread: spread,
	}
}

// ExtractFilters returns only the structured filters found in query.
func (p *QueryParser) ExtractFilters(query string) domain.FilterIntent {
	return p.Parse(query).Filters
}

// Parse extracts filters from query and computes the residual search term.
// Substrings consumed by a filter are removed from the residual so they do not
// count again as keyword matches. Parse never fails: unrecognized fragments
// simply stay in the residual.
func (p *QueryParser) Parse(query string) domain.ParsedQuery {
	normalized := strings.TrimSpace(querySpacePattern.ReplaceAllString(strings.ToLower(query), " "))
	parsed := domain.ParsedQuery{
		Original:   query,
		Normalized: normalized,
	}
	if normalized == "" {
		return parsed
	}

	consumed := newSpanMask(len(normalized))
	filters := &parsed.Filters

	// Step 1: Price
	filters.Price = p.extractPrice(normalized, consumed)

	// Step 2: Gender, women before men
	if spans := queryWomenPattern.FindAllStringIndex(normalized, -1); len(spans) > 0 {
		filters.Gender = domain.GenderWomen
		consumed.add(spans)
	} else if spans := queryMenPattern.FindAllStringIndex(normalized, -1); len(spans) > 0 {
		filters.Gender = domain.GenderMen
		consumed.add(spans)
	}

	// Step 3: Category
	if category, spans, specific := p.matchCategory(normalized); category != "" {
		// Generic words like "bags" only narrow the category when the shopper
		// also named a gender; otherwise they stay as free text.
		if specific || filters.Gender != "" {
			filters.Category = category
			consumed.add(spans)
		}
	}

	// Step 4: Colors
	for _, c := range p.vocab.colors {
		if c.variants.re == nil {
			continue
		}
		if spans := c.variants.re.FindAllStringIndex(normalized, -1); len(spans) > 0 {
			filters.Colors = append(filters.Colors, c.name)
			consumed.add(spans)
		}
	}

	// Step 5: Sale and stock flags
	if spans := salePattern.FindAllStringIndex(normalized, -1); len(spans) > 0 {
		onSale := true
		filters.OnSale = &onSale
		consumed.add(spans)
	}
	if spans := inStockPattern.FindAllStringIndex(normalized, -1); len(spans) > 0 {
		inStock := true
		filters.InStock = &inStock
		consumed.add(spans)
	}

	parsed.SearchTerm = residualTerm(consumed.strip(normalized))
	return parsed
}

// matchCategory returns the first category with a specific keyword hit, falling
// back to the first category with a generic keyword hit.
func (p *QueryParser) matchCategory(query string) (string, [][]int, bool) {
	for _, c := range p.vocab.categories {
		if c.specific.re == nil {
			continue
		}
		if spans := c.specific.re.FindAllStringIndex(query, -1); len(spans) > 0 {
			return c.name, spans, true
		}
	}
	for _, c := range p.vocab.categories {
		if c.generic.re == nil {
			continue
		}
		if spans := c.generic.re.FindAllStringIndex(query, -1); len(spans) > 0 {
			return c.name, spans, false
		}
	}
	return "", nil, false
}

func (p *QueryParser) extractPrice(query string, consumed *spanMask) *domain.PriceFilter {
	sizeSpans := sizePattern.FindAllStringIndex(query, -1)
	sizes := newSpanMask(len(query))
	sizes.add(sizeSpans)
	consumed.add(sizeSpans)

	if m := underPricePattern.FindStringSubmatchIndex(query); m != nil {
		if v, ok := parseAmount(query[m[2]:m[3]]); ok {
			consumed.add([][]int{{m[0], m[1]}})
			return &domain.PriceFilter{Type: domain.PriceUnder, Value: v}
		}
	}
	if m := overPricePattern.FindStringSubmatchIndex(query); m != nil {
		if v, ok := parseAmount(query[m[2]:m[3]]); ok {
			consumed.add([][]int{{m[0], m[1]}})
			return &domain.PriceFilter{Type: domain.PriceOver, Value: v}
		}
	}
	for _, pattern := range []*regexp.Regexp{betweenPricePattern, dashPricePattern} {
		for _, m := range pattern.FindAllStringSubmatchIndex(query, -1) {
			if sizes.covers(m[2]) {
				continue
			}
			lo, okLo := parseAmount(query[m[2]:m[3]])
			hi, okHi := parseAmount(query[m[4]:m[5]])
			if okLo && okHi {
				consumed.add([][]int{{m[0], m[1]}})
				return newRange(lo, hi)
			}
		}
	}
	if m := aroundPricePattern.FindStringSubmatchIndex(query); m != nil {
		if v, ok := parseAmount(query[m[2]:m[3]]); ok {
			consumed.add([][]int{{m[0], m[1]}})
			return newRange(v-p.aroundSpread, v+p.aroundSpread)
		}
	}
	return nil
}

// newRange builds a closed interval with min clamped at zero and bounds ordered.
func newRange(lo, hi float64) *domain.PriceFilter {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 0 {
		lo = 0
	}
	return &domain.PriceFilter{Type: domain.PriceRange, Min: lo, Max: hi}
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// residualTerm drops filler words and stray punctuation from what remains of the query.
func residualTerm(remaining string) string {
	words := make([]string, 0, 8)
	for _, tok := range strings.Fields(remaining) {
		tok = strings.Trim(tok, `.,!?;:"()$-'`)
		if tok == "" || queryFillerWords[tok] {
			continue
		}
		words = append(words, tok)
	}
	return strings.Join(words, " ")
}

// spanMask records which byte ranges of a string were consumed by filters.
type spanMask struct {
	mask []bool
}

func newSpanMask(n int) *spanMask {
	return &spanMask{mask: make([]bool, n)}
}

func (s *spanMask) add(spans [][]int) {
	for _, span := range spans {
		for i := span[0]; i < span[1] && i < len(s.mask); i++ {
			s.mask[i] = true
		}
	}
}

func (s *spanMask) covers(i int) bool {
	return i >= 0 && i < len(s.mask) && s.mask[i]
}

// strip replaces consumed bytes with spaces.
func (s *spanMask) strip(text string) string {
	b := []byte(text)
	for i := range b {
		if s.mask[i] {
			b[i] = ' '
		}
	}
	return string(b)
}
