package usecase

import (
	"fmt"
	"strings"

	"github.com/cartwise/backend/internal/domain"
)

// Normalizer converts raw catalog records into Products. All defaulting of
// optional fields happens here, once, at load time.
type Normalizer struct {
	vocab *vocabulary
}

// NewNormalizer creates a normalizer over the given vocabulary
func NewNormalizer(synonyms *Synonyms) *Normalizer {
	return &Normalizer{vocab: compileVocabulary(synonyms)}
}

// Normalize validates and defaults one raw record.
func (n *Normalizer) Normalize(raw domain.RawProduct) (domain.Product, error) {
	id := strings.TrimSpace(string(raw.ID))
	name := raw.DisplayName()
	if id == "" || name == "" {
		return domain.Product{}, fmt.Errorf("%w: id and name are required", domain.ErrInvalidProduct)
	}

	category := n.resolveCategory(raw)
	if category == "" {
		return domain.Product{}, fmt.Errorf("%w: product %s has no category", domain.ErrInvalidProduct, id)
	}

	p := domain.Product{
		ID:       id,
		Name:     name,
		Category: category,
		Gender:   InferGender(raw),
		TypeCode: strings.ToUpper(strings.TrimSpace(raw.Type)),
		InStock:  true,
		URL:      strings.TrimSpace(raw.URL),
		Image:    strings.TrimSpace(raw.Image),
	}

	if price, ok := raw.CurrentPrice(); ok && price >= 0 {
		p.Price = price
		p.HasPrice = true
		if original, ok := raw.OriginalPrice.Value(); ok && original > price {
			p.OriginalPrice = original
			p.OnSale = true
		}
	}

	if raw.InStock != nil {
		p.InStock = *raw.InStock
	}

	for _, c := range raw.Colors {
		if c = strings.TrimSpace(c); c != "" {
			p.Colors = append(p.Colors, c)
		}
	}
	p.CanonicalColors = n.vocab.canonicalColors(p.Colors)

	p.Keywords = buildKeywords(name, category, raw.Tags, raw.SearchKeywords)
	p.SearchText = strings.ToLower(strings.Join(
		append(append([]string{name, category}, p.Colors...), p.Keywords...), " "))

	return p, nil
}

// NormalizeAll normalizes every record, returning the valid products and the
// number of records that were rejected.
func (n *Normalizer) NormalizeAll(raws []domain.RawProduct) ([]domain.Product, int) {
	products := make([]domain.Product, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		p, err := n.Normalize(raw)
		if err != nil {
			skipped++
			continue
		}
		products = append(products, p)
	}
	return products, skipped
}

// resolveCategory prefers the type code table, then the category text, then the name.
func (n *Normalizer) resolveCategory(raw domain.RawProduct) string {
	if category, ok := n.vocab.synonyms.CategoryForTypeCode(raw.Type); ok {
		return category
	}
	text := strings.ToLower(strings.TrimSpace(raw.Category))
	if category, ok := n.vocab.categoryFor(text); ok {
		return category
	}
	if text != "" {
		return text
	}
	category, _ := n.vocab.categoryFor(raw.DisplayName())
	return category
}

func buildKeywords(name, category string, lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, word := range strings.Fields(name) {
		add(strings.Trim(word, `.,!?;:"()`))
	}
	add(category)
	for _, list := range lists {
		for _, s := range list {
			add(s)
		}
	}
	return out
}
