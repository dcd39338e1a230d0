package usecase

import (
	"reflect"
	"testing"

	"github.com/cartwise/backend/internal/domain"
)

func TestQueryParser_Price(t *testing.T) {
	parser := NewQueryParser(nil, QueryParserConfig{})

	tests := []struct {
		query string
		want  *domain.PriceFilter
	}{
		{"under $100", &domain.PriceFilter{Type: domain.PriceUnder, Value: 100}},
		{"wallets below 80", &domain.PriceFilter{Type: domain.PriceUnder, Value: 80}},
		{"jackets less than $1,299.99", &domain.PriceFilter{Type: domain.PriceUnder, Value: 1299.99}},
		{"over $500", &domain.PriceFilter{Type: domain.PriceOver, Value: 500}},
		{"between $50 and $150", &domain.PriceFilter{Type: domain.PriceRange, Min: 50, Max: 150}},
		{"between 150 to 50", &domain.PriceFilter{Type: domain.PriceRange, Min: 50, Max: 150}},
		{"$50-$150 gloves", &domain.PriceFilter{Type: domain.PriceRange, Min: 50, Max: 150}},
		{"around $200", &domain.PriceFilter{Type: domain.PriceRange, Min: 150, Max: 250}},
		{"about $20", &domain.PriceFilter{Type: domain.PriceRange, Min: 0, Max: 70}},
		{"100-200 wallets", &domain.PriceFilter{Type: domain.PriceRange, Min: 100, Max: 200}},
		{"size 8-10 gloves", nil},
		{"sizes 7 to 9 gloves", nil},
		{"size 8 gloves under $100", &domain.PriceFilter{Type: domain.PriceUnder, Value: 100}},
		{"size 8-10 gloves $50-$150", &domain.PriceFilter{Type: domain.PriceRange, Min: 50, Max: 150}},
		{"black jacket", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := parser.ExtractFilters(tt.query).Price
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Price = %+v, want %+v", got, tt.want)
			}
		})
	}

	t.Run("custom around spread", func(t *testing.T) {
		p := NewQueryParser(nil, QueryParserConfig{AroundSpread: 25})
		got := p.ExtractFilters("around $100").Price
		want := &domain.PriceFilter{Type: domain.PriceRange, Min: 75, Max: 125}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Price = %+v, want %+v", got, want)
		}
	})
}

func TestQueryParser_Gender(t *testing.T) {
	parser := NewQueryParser(nil, QueryParserConfig{})

	tests := []struct {
		query string
		want  domain.Gender
	}{
		{"women's jackets", domain.GenderWomen},
		{"jackets for women", domain.GenderWomen},
		{"womens wallets", domain.GenderWomen},
		{"ladies gloves", domain.GenderWomen},
		{"bags for women and men", domain.GenderWomen},
		{"men's wallets", domain.GenderMen},
		{"mens belt", domain.GenderMen},
		{"jacket for a man", domain.GenderMen},
		{"menswear", ""},
		{"sportswomen jackets", domain.GenderWomen},
		{"womenswear coats", domain.GenderWomen},
		{"businesswomen wallet", domain.GenderWomen},
		{"lady's gloves", domain.GenderWomen},
		{"wallet for a businessman", ""},
		{"leather gloves", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := parser.ExtractFilters(tt.query).Gender
			if got != tt.want {
				t.Errorf("Gender = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueryParser_Parse(t *testing.T) {
	parser := NewQueryParser(nil, QueryParserConfig{})

	tests := []struct {
		name       string
		query      string
		category   string
		colors     []string
		gender     domain.Gender
		onSale     bool
		inStock    bool
		searchTerm string
	}{
		{
			name:       "generic category word without gender stays free text",
			query:      "red bags",
			colors:     []string{"red"},
			searchTerm: "bags",
		},
		{
			name:     "generic category word with gender sets category",
			query:    "women's bags",
			category: "handbags",
			gender:   domain.GenderWomen,
		},
		{
			name:       "specific category, color and sale",
			query:      "Show me black leather jackets on sale",
			category:   "jackets",
			colors:     []string{"black"},
			onSale:     true,
			searchTerm: "leather",
		},
		{
			name:     "multi word color wins over its shorter variant",
			query:    "dark brown wallet",
			category: "wallets",
			colors:   []string{"brown"},
		},
		{
			name:     "in stock flag",
			query:    "gloves in stock",
			category: "gloves",
			inStock:  true,
		},
		{
			name:       "specific keyword beats generic one",
			query:      "crossbody bag for men",
			category:   "handbags",
			gender:     domain.GenderMen,
			searchTerm: "bag",
		},
		{
			name:     "size range is not a price and leaves no residue",
			query:    "size 8-10 gloves",
			category: "gloves",
		},
		{
			name:       "only filler words",
			query:      "can you show me something",
			searchTerm: "",
		},
		{
			name:       "unknown words stay in residual",
			query:      "vintage shearling",
			searchTerm: "vintage shearling",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parser.Parse(tt.query)
			f := got.Filters

			if f.Category != tt.category {
				t.Errorf("Category = %q, want %q", f.Category, tt.category)
			}
			if !reflect.DeepEqual(f.Colors, tt.colors) {
				t.Errorf("Colors = %v, want %v", f.Colors, tt.colors)
			}
			if f.Gender != tt.gender {
				t.Errorf("Gender = %q, want %q", f.Gender, tt.gender)
			}
			if gotSale := f.OnSale != nil && *f.OnSale; gotSale != tt.onSale {
				t.Errorf("OnSale = %v, want %v", gotSale, tt.onSale)
			}
			if gotStock := f.InStock != nil && *f.InStock; gotStock != tt.inStock {
				t.Errorf("InStock = %v, want %v", gotStock, tt.inStock)
			}
			if got.SearchTerm != tt.searchTerm {
				t.Errorf("SearchTerm = %q, want %q", got.SearchTerm, tt.searchTerm)
			}
		})
	}
}

func TestQueryParser_EmptyQuery(t *testing.T) {
	parser := NewQueryParser(nil, QueryParserConfig{})

	for _, query := range []string{"", "   ", "\t\n"} {
		got := parser.Parse(query)
		if !got.Filters.IsEmpty() {
			t.Errorf("Parse(%q).Filters = %+v, want empty", query, got.Filters)
		}
		if got.SearchTerm != "" {
			t.Errorf("Parse(%q).SearchTerm = %q, want empty", query, got.SearchTerm)
		}
		if got.Original != query {
			t.Errorf("Parse(%q).Original = %q", query, got.Original)
		}
	}
}

func TestQueryParser_CustomVocabulary(t *testing.T) {
	synonyms := &Synonyms{
		Colors:     []ColorSynonym{{Name: "teal", Variants: []string{"peacock"}}},
		Categories: []CategorySynonym{{Name: "boots", Keywords: []string{"boot", "boots", "chelsea"}}},
	}
	parser := NewQueryParser(synonyms, QueryParserConfig{})

	got := parser.Parse("peacock chelsea")
	if got.Filters.Category != "boots" {
		t.Errorf("Category = %q, want boots", got.Filters.Category)
	}
	if !reflect.DeepEqual(got.Filters.Colors, []string{"teal"}) {
		t.Errorf("Colors = %v, want [teal]", got.Filters.Colors)
	}
	if got.SearchTerm != "" {
		t.Errorf("SearchTerm = %q, want empty", got.SearchTerm)
	}
}
