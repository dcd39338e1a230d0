package domain

import (
	"math"
	"strconv"
	"strings"
)

// PriceRangeType identifies the shape of a price constraint.
type PriceRangeType string

const (
	PriceUnder PriceRangeType = "under"
	PriceOver  PriceRangeType = "over"
	PriceRange PriceRangeType = "range"
)

// PriceFilter is either a one-sided bound (Type under/over with Value) or a closed
// interval (Type range with Min and Max).
type PriceFilter struct {
	Type  PriceRangeType `json:"type"`
	Value float64        `json:"value,omitempty"`
	Min   float64        `json:"min,omitempty"`
	Max   float64        `json:"max,omitempty"`
}

// Contains reports whether price satisfies the constraint.
// Bounds are exclusive for under/over and inclusive for ranges.
func (f PriceFilter) Contains(price float64) bool {
	switch f.Type {
	case PriceUnder:
		return price < f.Value
	case PriceOver:
		return price > f.Value
	case PriceRange:
		return price >= f.Min && price <= f.Max
	default:
		return true
	}
}

// String renders the constraint for display, e.g. "Under $100" or "$50 - $150".
func (f PriceFilter) String() string {
	switch f.Type {
	case PriceUnder:
		return "Under $" + FormatAmount(f.Value)
	case PriceOver:
		return "Over $" + FormatAmount(f.Value)
	default:
		return "$" + FormatAmount(f.Min) + " - $" + FormatAmount(f.Max)
	}
}

// FormatAmount formats a dollar amount rounded to cents, without trailing zeros:
// 100, 99.5, 1299.99.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// FilterIntent is the set of filters extracted from a single query.
// Zero values mean "not mentioned".
type FilterIntent struct {
	Category string       `json:"category,omitempty"`
	Colors   []string     `json:"colors,omitempty"`
	Price    *PriceFilter `json:"price,omitempty"`
	Gender   Gender       `json:"gender,omitempty"`
	OnSale   *bool        `json:"on_sale,omitempty"`
	InStock  *bool        `json:"in_stock,omitempty"`
}

// IsEmpty reports whether no filter was extracted.
func (f FilterIntent) IsEmpty() bool {
	return f.Category == "" && len(f.Colors) == 0 && f.Price == nil &&
		f.Gender == "" && f.OnSale == nil && f.InStock == nil
}

// FilterContext holds the filters accepted so far in a conversation.
// Absent values are unconstrained, never "exclude all".
type FilterContext struct {
	Category string       `json:"category,omitempty"`
	Colors   []string     `json:"colors,omitempty"`
	Price    *PriceFilter `json:"price,omitempty"`
	Gender   Gender       `json:"gender,omitempty"`
	OnSale   *bool        `json:"on_sale,omitempty"`
	InStock  *bool        `json:"in_stock,omitempty"`
}

// Merge folds newly extracted filters into the context. Mentioned dimensions
// override, unmentioned ones keep their previous value.
func (c *FilterContext) Merge(intent FilterIntent) {
	if intent.Category != "" {
		c.Category = intent.Category
	}
	if len(intent.Colors) > 0 {
		c.Colors = append([]string(nil), intent.Colors...)
	}
	if intent.Price != nil {
		p := *intent.Price
		c.Price = &p
	}
	if intent.Gender != "" {
		c.Gender = intent.Gender
	}
	if intent.OnSale != nil {
		v := *intent.OnSale
		c.OnSale = &v
	}
	if intent.InStock != nil {
		v := *intent.InStock
		c.InStock = &v
	}
}

// Clear resets every dimension to unconstrained.
func (c *FilterContext) Clear() {
	*c = FilterContext{}
}

// IsEmpty reports whether no dimension is constrained.
func (c FilterContext) IsEmpty() bool {
	return c.Category == "" && len(c.Colors) == 0 && c.Price == nil &&
		c.Gender == "" && !c.SaleOnly() && !c.InStockOnly()
}

// SaleOnly reports whether only discounted products are wanted.
func (c FilterContext) SaleOnly() bool {
	return c.OnSale != nil && *c.OnSale
}

// InStockOnly reports whether only available products are wanted.
func (c FilterContext) InStockOnly() bool {
	return c.InStock != nil && *c.InStock
}

// ParsedQuery is the per-call result of parsing a raw query.
type ParsedQuery struct {
	Original   string       `json:"original"`
	Normalized string       `json:"normalized"`
	SearchTerm string       `json:"search_term"`
	Filters    FilterIntent `json:"filters"`
}

// Tokens splits the residual search term into words.
func (q ParsedQuery) Tokens() []string {
	return strings.Fields(q.SearchTerm)
}

// SearchResult is the ranked output of a search. Total counts every match,
// independent of how many products a caller chooses to display.
type SearchResult struct {
	Products   []Product     `json:"products"`
	Total      int           `json:"total"`
	Filters    FilterContext `json:"filters"`
	SearchTerm string        `json:"search_term"`
	Query      string        `json:"query"`

	// RelaxedFilters names the filter dimensions skipped by the lenient fallback.
	RelaxedFilters []string `json:"relaxed_filters,omitempty"`
}
