package usecase

import (
	"math"
	"sort"
	"strings"

	"github.com/cartwise/backend/internal/domain"
)

type rankedProduct struct {
	product      domain.Product
	allInName    bool
	countInName  int
	sortingPrice float64
}

// Rank orders products by a fixed cascade, each tier only breaking ties of the one before:
//  1. every search token appears in the name
//  2. number of search tokens in the name, descending
//  3. on sale first
//  4. in stock first
//  5. price ascending, missing prices last
//
// The sort is stable, so fully tied products keep their input order.
func Rank(products []domain.Product, searchTerm string) []domain.Product {
	tokens := strings.Fields(strings.ToLower(searchTerm))

	items := make([]rankedProduct, len(products))
	for i, p := range products {
		name := strings.ToLower(p.Name)
		count := 0
		for _, tok := range tokens {
			if strings.Contains(name, tok) {
				count++
			}
		}
		items[i] = rankedProduct{
			product:      p,
			allInName:    count == len(tokens),
			countInName:  count,
			sortingPrice: sortingPrice(p),
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.allInName != b.allInName {
			return a.allInName
		}
		if a.countInName != b.countInName {
			return a.countInName > b.countInName
		}
		if a.product.OnSale != b.product.OnSale {
			return a.product.OnSale
		}
		if a.product.InStock != b.product.InStock {
			return a.product.InStock
		}
		return a.sortingPrice < b.sortingPrice
	})

	out := make([]domain.Product, len(items))
	for i, item := range items {
		out[i] = item.product
	}
	return out
}

// sortBySaleThenPrice orders recommendations: discounted first, then cheapest.
func sortBySaleThenPrice(products []domain.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if a.OnSale != b.OnSale {
			return a.OnSale
		}
		return sortingPrice(a) < sortingPrice(b)
	})
}

// sortByDiscount orders products by discount percentage, largest first.
func sortByDiscount(products []domain.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].DiscountPercent() > products[j].DiscountPercent()
	})
}

func sortingPrice(p domain.Product) float64 {
	if !p.HasPrice {
		return math.Inf(1)
	}
	return p.Price
}
