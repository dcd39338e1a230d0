package usecase

import (
	"strings"

	"github.com/cartwise/backend/internal/domain"
)

// Price bucket names. Each bucket's upper bound is inclusive.
const (
	BucketUnder100  = "under_100"
	Bucket100To200  = "100_200"
	Bucket200To300  = "200_300"
	Bucket300To500  = "300_500"
	Bucket500To1000 = "500_1000"
	BucketOver1000  = "over_1000"
)

// PriceBuckets lists bucket names in ascending price order.
var PriceBuckets = []string{BucketUnder100, Bucket100To200, Bucket200To300, Bucket300To500, Bucket500To1000, BucketOver1000}

// SearchIndex maps product attributes to product ids. It is derived from one
// product list and must be rebuilt, never patched, when that list changes.
type SearchIndex struct {
	ByKeyword     map[string][]string
	ByCategory    map[string][]string
	ByColor       map[string][]string
	ByGender      map[domain.Gender][]string
	ByPriceBucket map[string][]string
}

// BuildIndex derives a SearchIndex from products. It is a pure function of its input.
func BuildIndex(products []domain.Product) *SearchIndex {
	idx := &SearchIndex{
		ByKeyword:     make(map[string][]string),
		ByCategory:    make(map[string][]string),
		ByColor:       make(map[string][]string),
		ByGender:      make(map[domain.Gender][]string),
		ByPriceBucket: make(map[string][]string),
	}
	seen := make(postingSet)

	for _, p := range products {
		for _, key := range indexKeywords(p) {
			idx.ByKeyword[key] = seen.add(idx.ByKeyword[key], "k:"+key, p.ID)
		}

		if p.Category != "" {
			idx.ByCategory[p.Category] = seen.add(idx.ByCategory[p.Category], "c:"+p.Category, p.ID)
		}

		colorKeys := make([]string, 0, len(p.Colors)+len(p.CanonicalColors))
		for _, c := range p.Colors {
			colorKeys = append(colorKeys, strings.ToLower(strings.TrimSpace(c)))
		}
		colorKeys = append(colorKeys, p.CanonicalColors...)
		for _, c := range colorKeys {
			if c != "" {
				idx.ByColor[c] = seen.add(idx.ByColor[c], "o:"+c, p.ID)
			}
		}

		idx.ByGender[p.Gender] = seen.add(idx.ByGender[p.Gender], "g:"+string(p.Gender), p.ID)

		if p.HasPrice {
			bucket := PriceBucket(p.Price)
			idx.ByPriceBucket[bucket] = seen.add(idx.ByPriceBucket[bucket], "p:"+bucket, p.ID)
		}
	}

	return idx
}

// PriceBucket returns the fixed band a price falls in.
func PriceBucket(price float64) string {
	switch {
	case price <= 100:
		return BucketUnder100
	case price <= 200:
		return Bucket100To200
	case price <= 300:
		return Bucket200To300
	case price <= 500:
		return Bucket300To500
	case price <= 1000:
		return Bucket500To1000
	default:
		return BucketOver1000
	}
}

// indexKeywords returns the whole phrases and single words a product is findable by.
func indexKeywords(p domain.Product) []string {
	phrases := make([]string, 0, 2+len(p.Colors)+len(p.Keywords))
	phrases = append(phrases, p.Name, p.Category)
	phrases = append(phrases, p.Colors...)
	phrases = append(phrases, p.Keywords...)

	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, phrase := range phrases {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		add(phrase)
		for _, word := range strings.Fields(phrase) {
			add(strings.Trim(word, `.,!?;:"()'`))
		}
	}
	return out
}

// LookupKeyword returns ids whose indexed words or phrases include key.
func (idx *SearchIndex) LookupKeyword(key string) []string {
	return idx.ByKeyword[strings.ToLower(key)]
}

// LookupCategory returns ids in a category.
func (idx *SearchIndex) LookupCategory(category string) []string {
	return idx.ByCategory[category]
}

// LookupGender returns ids for a gender value.
func (idx *SearchIndex) LookupGender(g domain.Gender) []string {
	return idx.ByGender[g]
}

// postingSet records which (posting list, id) pairs a build has written, so a
// product id repeated anywhere in the input is listed once per key.
type postingSet map[string]struct{}

func (s postingSet) add(ids []string, list, id string) []string {
	k := list + "\x00" + id
	if _, ok := s[k]; ok {
		return ids
	}
	s[k] = struct{}{}
	return append(ids, id)
}
