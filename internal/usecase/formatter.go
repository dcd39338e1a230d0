package usecase

import (
	"fmt"
	"strings"

	"github.com/cartwise/backend/internal/domain"
)

// DefaultDisplayLimit is how many products a chat reply lists before truncating.
const DefaultDisplayLimit = 20

const maxSuggestions = 3

// genericSuggestions are offered when nothing matched and no filter was active.
var genericSuggestions = []string{
	`"black handbags"`,
	`"leather jackets under $500"`,
	`"crossbody bags"`,
}

// Formatter renders search results as chat-ready markdown.
type Formatter struct {
	displayLimit int
}

// NewFormatter creates a formatter that lists at most displayLimit products.
func NewFormatter(displayLimit int) *Formatter {
	if displayLimit <= 0 {
		displayLimit = DefaultDisplayLimit
	}
	return &Formatter{displayLimit: displayLimit}
}

// FilterSummary lists the active filters in display order: category, colors,
// gender, price, sale, stock.
func FilterSummary(filters domain.FilterContext) []string {
	var lines []string
	if filters.Category != "" {
		lines = append(lines, "Category: "+displayCategory(filters.Category))
	}
	if len(filters.Colors) > 0 {
		lines = append(lines, "Colors: "+strings.Join(filters.Colors, ", "))
	}
	if filters.Gender != "" {
		lines = append(lines, "Gender: "+string(filters.Gender))
	}
	if filters.Price != nil {
		lines = append(lines, "Price: "+filters.Price.String())
	}
	if filters.SaleOnly() {
		lines = append(lines, "On Sale: Yes")
	}
	if filters.InStockOnly() {
		lines = append(lines, "In Stock: Yes")
	}
	return lines
}

// Format renders result. An empty result yields the no-match message with suggestions.
func (f *Formatter) Format(result *domain.SearchResult) string {
	if result == nil || len(result.Products) == 0 {
		var filters domain.FilterContext
		if result != nil {
			filters = result.Filters
		}
		return f.formatNoResults(filters)
	}

	var b strings.Builder

	noun := "products"
	if result.Total == 1 {
		noun = "product"
	}
	if q := strings.TrimSpace(result.Query); q != "" {
		fmt.Fprintf(&b, "I found %d %s matching \"%s\":\n\n", result.Total, noun, q)
	} else {
		fmt.Fprintf(&b, "I found %d %s matching your search:\n\n", result.Total, noun)
	}

	if summary := FilterSummary(result.Filters); len(summary) > 0 {
		b.WriteString("**Applied Filters:**\n")
		for _, line := range summary {
			b.WriteString("• " + line + "\n")
		}
		b.WriteString("\n")
	}

	shown := result.Products
	if len(shown) > f.displayLimit {
		shown = shown[:f.displayLimit]
	}
	for _, p := range shown {
		b.WriteString(formatProductLine(p))
		b.WriteString("\n")
	}

	if len(shown) < result.Total {
		fmt.Fprintf(&b, "\n*Showing %d of %d products. Refine your search for more specific results.*", len(shown), result.Total)
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatProductLine(p domain.Product) string {
	parts := []string{"• **" + p.Name + "**"}

	if p.HasPrice {
		if p.OnSale {
			parts = append(parts, fmt.Sprintf("~~$%s~~ **$%s** *(Save $%s!)*",
				domain.FormatAmount(p.OriginalPrice),
				domain.FormatAmount(p.Price),
				domain.FormatAmount(p.Savings())))
		} else {
			parts = append(parts, "$"+domain.FormatAmount(p.Price))
		}
	}
	if len(p.Colors) > 0 {
		parts = append(parts, "Available in: "+strings.Join(p.Colors, ", "))
	}
	parts = append(parts, displayCategory(p.Category))

	line := strings.Join(parts, " - ")
	if p.URL != "" {
		line += " [View Product](" + p.URL + ")"
	}
	return line
}

func (f *Formatter) formatNoResults(filters domain.FilterContext) string {
	var suggestions []string
	if filters.Category != "" {
		suggestions = append(suggestions, "Try browsing all "+displayCategory(filters.Category))
	}
	if len(filters.Colors) > 0 {
		suggestions = append(suggestions, "Try searching without specific colors")
	}
	if filters.Gender != "" {
		suggestions = append(suggestions, "Try searching across all genders")
	}
	if filters.Price != nil {
		suggestions = append(suggestions, "Try expanding your price range")
	}
	if filters.SaleOnly() {
		suggestions = append(suggestions, "Try including items that are not on sale")
	}
	if filters.InStockOnly() {
		suggestions = append(suggestions, "Try including items that are out of stock")
	}
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	var b strings.Builder
	b.WriteString("I couldn't find any products matching your exact criteria. ")
	if len(suggestions) > 0 {
		b.WriteString("Here are some suggestions:\n\n")
		for i, s := range suggestions {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("• " + s)
		}
	} else {
		b.WriteString("You might want to try:\n\n")
		for i, s := range genericSuggestions {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("• " + s)
		}
	}
	return b.String()
}

func displayCategory(category string) string {
	return strings.ReplaceAll(category, "_", " ")
}
