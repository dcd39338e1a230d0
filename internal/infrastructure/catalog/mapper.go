package catalog

import (
	"database/sql"
	"strings"

	"github.com/cartwise/backend/internal/domain"
)

// listSeparator joins colors and tags in SQL text columns.
const listSeparator = ","

// productRow is the SQL representation of a catalog product
type productRow struct {
	ID            string          `db:"id"`
	Name          string          `db:"name"`
	Category      string          `db:"category"`
	Price         sql.NullFloat64 `db:"price"`
	OriginalPrice sql.NullFloat64 `db:"original_price"`
	Colors        string          `db:"colors"`
	TypeCode      string          `db:"type_code"`
	Gender        string          `db:"gender"`
	InStock       sql.NullBool    `db:"in_stock"`
	Tags          string          `db:"tags"`
	URL           string          `db:"url"`
	Image         string          `db:"image"`
}

// MapRowToRaw converts a database row to a raw catalog record
func MapRowToRaw(row productRow) domain.RawProduct {
	raw := domain.RawProduct{
		ID:       domain.FlexString(row.ID),
		Name:     row.Name,
		Category: row.Category,
		Colors:   splitList(row.Colors),
		Type:     row.TypeCode,
		Gender:   row.Gender,
		Tags:     splitList(row.Tags),
		URL:      row.URL,
		Image:    row.Image,
	}
	if row.Price.Valid {
		v := domain.FlexFloat(row.Price.Float64)
		raw.Price = &v
	}
	if row.OriginalPrice.Valid {
		v := domain.FlexFloat(row.OriginalPrice.Float64)
		raw.OriginalPrice = &v
	}
	if row.InStock.Valid {
		v := row.InStock.Bool
		raw.InStock = &v
	}
	return raw
}

// MapRawToRow converts a raw catalog record to a database row
func MapRawToRow(raw domain.RawProduct) productRow {
	row := productRow{
		ID:       strings.TrimSpace(string(raw.ID)),
		Name:     raw.DisplayName(),
		Category: raw.Category,
		Colors:   joinList(raw.Colors),
		TypeCode: raw.Type,
		Gender:   raw.Gender,
		Tags:     joinList(append(append([]string(nil), raw.Tags...), raw.SearchKeywords...)),
		URL:      raw.URL,
		Image:    raw.Image,
	}
	if price, ok := raw.CurrentPrice(); ok {
		row.Price = sql.NullFloat64{Float64: price, Valid: true}
	}
	if original, ok := raw.OriginalPrice.Value(); ok {
		row.OriginalPrice = sql.NullFloat64{Float64: original, Valid: true}
	}
	if raw.InStock != nil {
		row.InStock = sql.NullBool{Bool: *raw.InStock, Valid: true}
	}
	return row
}

// MapFeedProduct converts a storefront feed product to a raw catalog record.
// The cheapest variant supplies the price; any available variant makes the
// product in stock.
func MapFeedProduct(p feedProduct, storeURL string) domain.RawProduct {
	raw := domain.RawProduct{
		ID:       p.ID,
		Name:     p.Title,
		Category: p.ProductType,
		Type:     p.ProductType,
		Tags:     []string(p.Tags),
		Colors:   feedColors(p),
	}

	if p.Handle != "" && storeURL != "" {
		raw.URL = strings.TrimRight(storeURL, "/") + "/products/" + p.Handle
	}
	if len(p.Images) > 0 {
		raw.Image = p.Images[0].Src
	}

	var cheapest *feedVariant
	anyAvailable, availabilityKnown := false, false
	for i := range p.Variants {
		v := &p.Variants[i]
		if price, ok := v.Price.Value(); ok {
			if cheapest == nil {
				cheapest = v
			} else if current, _ := cheapest.Price.Value(); price < current {
				cheapest = v
			}
		}
		if v.Available != nil {
			availabilityKnown = true
			anyAvailable = anyAvailable || *v.Available
		}
	}

	if cheapest != nil {
		raw.Price = cheapest.Price
		raw.OriginalPrice = cheapest.CompareAtPrice
	}
	if availabilityKnown {
		raw.InStock = &anyAvailable
	}
	return raw
}

// feedColors collects the values of a product's color option.
func feedColors(p feedProduct) []string {
	for i, opt := range p.Options {
		name := strings.ToLower(strings.TrimSpace(opt.Name))
		if name != "color" && name != "colour" {
			continue
		}
		if len(opt.Values) > 0 {
			return opt.Values
		}

		// Some feeds omit option values; fall back to the matching variant field.
		seen := make(map[string]bool)
		var colors []string
		for _, v := range p.Variants {
			value := v.option(i)
			if value != "" && !seen[value] {
				seen[value] = true
				colors = append(colors, value)
			}
		}
		return colors
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, listSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func joinList(items []string) string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(strings.ReplaceAll(item, listSeparator, " "))
		if item != "" {
			cleaned = append(cleaned, item)
		}
	}
	return strings.Join(cleaned, listSeparator)
}
