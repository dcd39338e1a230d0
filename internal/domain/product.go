package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Gender is the audience axis of a product. Every catalog product carries exactly one value.
type Gender string

const (
	GenderMen    Gender = "Men"
	GenderWomen  Gender = "Women"
	GenderUnisex Gender = "Unisex"
)

// Product is a normalized catalog entry. Products are built once at load time and never mutated.
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Price         float64  `json:"price"`
	HasPrice      bool     `json:"has_price"`
	OriginalPrice float64  `json:"original_price,omitempty"`
	Colors        []string `json:"colors,omitempty"`
	Gender        Gender   `json:"gender"`
	TypeCode      string   `json:"type_code,omitempty"`
	OnSale        bool     `json:"on_sale"`
	InStock       bool     `json:"in_stock"`
	Keywords      []string `json:"keywords,omitempty"`
	URL           string   `json:"url,omitempty"`
	Image         string   `json:"image,omitempty"`

	// CanonicalColors holds the color table names matched by Colors.
	CanonicalColors []string `json:"-"`
	// SearchText is the lower-cased join of name, category, colors and keywords.
	SearchText string `json:"-"`
}

// Savings returns the amount saved for an on-sale product.
func (p Product) Savings() float64 {
	if !p.OnSale {
		return 0
	}
	return p.OriginalPrice - p.Price
}

// DiscountPercent returns the sale discount as a percentage of the original price.
func (p Product) DiscountPercent() float64 {
	if !p.OnSale || p.OriginalPrice <= 0 {
		return 0
	}
	return (p.OriginalPrice - p.Price) / p.OriginalPrice * 100
}

// RawProduct is a catalog record as delivered by a catalog source, before normalization.
// Only ID, Name (or Title) and Category are required.
type RawProduct struct {
	ID             FlexString `json:"id"`
	Name           string     `json:"name"`
	Title          string     `json:"title"`
	Category       string     `json:"category"`
	Price          *FlexFloat `json:"price"`
	SalePrice      *FlexFloat `json:"salePrice"`
	OriginalPrice  *FlexFloat `json:"originalPrice"`
	Colors         []string   `json:"colors"`
	Type           string     `json:"type"`
	Gender         string     `json:"gender"`
	InStock        *bool      `json:"in_stock"`
	Tags           []string   `json:"tags"`
	SearchKeywords []string   `json:"search_keywords"`
	URL            string     `json:"url"`
	Image          string     `json:"image"`
}

// DisplayName returns Name, falling back to Title.
func (r RawProduct) DisplayName() string {
	if strings.TrimSpace(r.Name) != "" {
		return strings.TrimSpace(r.Name)
	}
	return strings.TrimSpace(r.Title)
}

// CurrentPrice returns the selling price, preferring Price over SalePrice.
func (r RawProduct) CurrentPrice() (float64, bool) {
	if v, ok := r.Price.Value(); ok {
		return v, true
	}
	return r.SalePrice.Value()
}

// FlexString decodes a JSON string or number into a string.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*s = FlexString(n.String())
	return nil
}

// FlexFloat decodes a JSON number or a price string such as "$1,299.00".
// A string that is not a price decodes to NaN, which normalization treats as absent.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		parsed, err := ParsePrice(v)
		if err != nil {
			*f = FlexFloat(math.NaN())
			return nil
		}
		*f = FlexFloat(parsed)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// Value returns the amount and whether it is present and numeric.
func (f *FlexFloat) Value() (float64, bool) {
	if f == nil || math.IsNaN(float64(*f)) {
		return 0, false
	}
	return float64(*f), true
}

// ParsePrice parses a price string, ignoring currency symbols and thousands separators.
func ParsePrice(s string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, fmt.Errorf("%w: empty price", ErrInvalidProduct)
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: price %q", ErrInvalidProduct, s)
	}
	return v, nil
}
