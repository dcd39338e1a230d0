package usecase

import (
	"regexp"
	"strings"

	"github.com/cartwise/backend/internal/domain"
)

var (
	// Women patterns are always tested first: "women" contains "men". The
	// women family also matches inside compounds like "womenswear" or
	// "sportswomen"; men stays anchored so those never read as Men.
	womenWordPattern = regexp.MustCompile(`\w*wom[ae]n[\w']*|\b(?:ladies|lady|female)\b`)
	menWordPattern   = regexp.MustCompile(`\b(?:men|man|mens|men's|male)\b`)
)

// InferGender derives a product's audience. Precedence:
//  1. explicit gender field, unless blank, "unisex" or "unknown"
//  2. first letter of the type code (M, W, U)
//  3. word scan of title, category and tags
//  4. Unisex
func InferGender(raw domain.RawProduct) domain.Gender {
	if g, ok := parseGenderField(raw.Gender); ok {
		return g
	}

	code := strings.ToUpper(strings.TrimSpace(raw.Type))
	if code != "" {
		switch code[0] {
		case 'M':
			return domain.GenderMen
		case 'W':
			return domain.GenderWomen
		case 'U':
			return domain.GenderUnisex
		}
	}

	fields := make([]string, 0, 2+len(raw.Tags))
	fields = append(fields, raw.DisplayName(), raw.Category)
	fields = append(fields, raw.Tags...)
	for _, field := range fields {
		if g, ok := genderFromText(field); ok {
			return g
		}
	}

	return domain.GenderUnisex
}

func parseGenderField(value string) (domain.Gender, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "", "unisex", "unknown", "u":
		return "", false
	case "w":
		return domain.GenderWomen, true
	case "m":
		return domain.GenderMen, true
	}
	return genderFromText(v)
}

// genderFromText reports the gender named in text, women before men.
func genderFromText(text string) (domain.Gender, bool) {
	if text == "" {
		return "", false
	}
	lower := strings.ToLower(text)
	if womenWordPattern.MatchString(lower) {
		return domain.GenderWomen, true
	}
	if menWordPattern.MatchString(lower) {
		return domain.GenderMen, true
	}
	return "", false
}
