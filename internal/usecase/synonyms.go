package usecase

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ColorSynonym maps a canonical color to the words shoppers and catalogs use for it.
type ColorSynonym struct {
	Name     string   `yaml:"name"`
	Variants []string `yaml:"variants"`
}

// CategorySynonym maps a canonical category to its keywords. Generic keywords
// ("bag") identify the category only when paired with a gender word.
type CategorySynonym struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Generic  []string `yaml:"generic"`
}

// Synonyms is the vocabulary the parser and the catalog normalizer share.
// Categories are checked in slice order, so more specific ones come first.
type Synonyms struct {
	Colors     []ColorSynonym    `yaml:"colors"`
	Categories []CategorySynonym `yaml:"categories"`
	TypeCodes  map[string]string `yaml:"type_codes"`
}

// DefaultSynonyms returns the built-in vocabulary for the leather goods catalog.
func DefaultSynonyms() *Synonyms {
	return &Synonyms{
		Colors: []ColorSynonym{
			{Name: "black", Variants: []string{"black", "jet", "onyx", "ebony"}},
			{Name: "brown", Variants: []string{"brown", "tan", "chocolate", "mocha", "camel", "coffee", "walnut", "cognac", "hazel", "taupe", "bourbon", "dark brown", "medium brown", "british tan"}},
			{Name: "blue", Variants: []string{"blue", "navy", "denim", "indigo", "azure", "mist", "steel", "sky", "aqua", "teal", "light blue", "steel blue"}},
			{Name: "red", Variants: []string{"red", "burgundy", "crimson", "maroon", "wine", "scarlet", "rose", "magenta", "deep red", "dark red"}},
			{Name: "white", Variants: []string{"white", "cream", "ivory", "off-white", "pearl", "ecru"}},
			{Name: "green", Variants: []string{"green", "olive", "sage", "mint", "forest", "emerald"}},
			{Name: "grey", Variants: []string{"grey", "gray", "charcoal", "ash", "slate", "graphite", "pewter", "light grey", "medium grey"}},
			{Name: "yellow", Variants: []string{"yellow", "mustard", "gold", "lemon"}},
			{Name: "pink", Variants: []string{"pink", "blush", "rose", "fuchsia"}},
			{Name: "purple", Variants: []string{"purple", "lavender", "violet", "plum"}},
			{Name: "orange", Variants: []string{"orange", "coral", "apricot", "peach"}},
			{Name: "beige", Variants: []string{"beige", "sand", "stone", "latte"}},
			{Name: "saddle", Variants: []string{"saddle"}},
			{Name: "khaki", Variants: []string{"khaki"}},
		},
		Categories: []CategorySynonym{
			{
				Name:     "wallets",
				Keywords: []string{"wallet", "wallets", "cardholder", "cardholders", "card holder", "card holders", "card case", "coin purse", "wristlet", "wristlets", "billfold"},
			},
			{
				Name:     "gloves",
				Keywords: []string{"glove", "gloves", "mittens"},
			},
			{
				Name:     "jackets",
				Keywords: []string{"jacket", "jackets", "coat", "coats", "bomber", "bombers", "blazer", "blazers", "outerwear", "moto", "biker", "trench", "parka", "vest", "vests"},
			},
			{
				Name:     "handbags",
				Keywords: []string{"handbag", "handbags", "purse", "purses", "satchel", "satchels", "crossbody", "shoulder bag", "camera bag", "laptop bag", "sling bag", "messenger bag", "belt bag", "duffel bag", "backpack", "backpacks", "tote", "totes", "clutch", "clutches"},
				Generic:  []string{"bag", "bags"},
			},
			{
				Name:     "accessories",
				Keywords: []string{"headband", "poncho", "scarf", "scarves", "belt", "belts", "hat", "hats", "knitwear"},
				Generic:  []string{"accessory", "accessories"},
			},
		},
		TypeCodes: defaultTypeCodes(),
	}
}

func defaultTypeCodes() map[string]string {
	codes := make(map[string]string)
	add := func(category string, list ...string) {
		for _, code := range list {
			codes[code] = category
		}
	}

	add("jackets",
		"WOWJA", "MOWJA", "WOWCO", "MOWCO", "WOWBO", "MOWBO", "WOWTO", "MOWTO",
		"WFWBL", "MFWBL", "WFWPA", "MFWPA", "WFWSK", "MFWSK", "WFWTO", "MFWTO",
		"WFWDR", "MFWDR", "WFWVE", "MFWVE", "WFWDE", "MFWDE", "WFWSF", "MFWSF",
		"MTRJC", "MTRCC", "WTRJC", "WTRCC", "ALL SEASON")
	add("accessories",
		"WFWKN", "MFWKN", "WACHA", "MACHA", "WACSC", "MACSC", "WACPO", "MACPO",
		"WACBE", "MACBE", "UCPWI", "UACWH", "CARE PRODUCT")
	add("handbags",
		"WACHB", "MACMB", "WACSA", "MACSA", "WACCB", "MACCB", "WACSH", "MACSH",
		"WACCA", "MACCA", "WACBA", "MACBA", "WACTO", "MACTO", "WACME", "MACME",
		"WACDU", "MACDU", "UTRHL", "UTRTB", "MTRWC", "MTRTB", "WTRTB")
	add("wallets", "WACWA", "MACWA", "WACWR", "MACWR", "WACCL", "MACCL")
	add("gloves", "WACGL", "MACGL")

	return codes
}

// LoadSynonymsYAML reads a vocabulary file. Sections missing from the file keep
// their built-in defaults.
func LoadSynonymsYAML(path string) (*Synonyms, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read synonyms file: %w", err)
	}

	var loaded Synonyms
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse synonyms file: %w", err)
	}

	syn := DefaultSynonyms()
	if len(loaded.Colors) > 0 {
		syn.Colors = loaded.Colors
	}
	if len(loaded.Categories) > 0 {
		syn.Categories = loaded.Categories
	}
	if len(loaded.TypeCodes) > 0 {
		syn.TypeCodes = make(map[string]string, len(loaded.TypeCodes))
		for code, category := range loaded.TypeCodes {
			syn.TypeCodes[strings.ToUpper(strings.TrimSpace(code))] = category
		}
	}
	return syn, nil
}

// CategoryForTypeCode resolves a source type code to a canonical category.
func (s *Synonyms) CategoryForTypeCode(code string) (string, bool) {
	category, ok := s.TypeCodes[strings.ToUpper(strings.TrimSpace(code))]
	return category, ok
}

// phraseMatcher finds whole-word occurrences of any phrase in a set.
type phraseMatcher struct {
	re *regexp.Regexp
}

// newPhraseMatcher compiles phrases into one alternation, longest first so that
// "dark brown" wins over "brown" when both could match.
func newPhraseMatcher(phrases []string) *phraseMatcher {
	cleaned := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		return &phraseMatcher{}
	}

	sort.SliceStable(cleaned, func(i, j int) bool { return len(cleaned[i]) > len(cleaned[j]) })
	quoted := make([]string, len(cleaned))
	for i, p := range cleaned {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return &phraseMatcher{re: regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)}
}

// find returns every matched phrase in text.
func (m *phraseMatcher) find(text string) []string {
	if m.re == nil {
		return nil
	}
	return m.re.FindAllString(text, -1)
}

func (m *phraseMatcher) match(text string) bool {
	return m.re != nil && m.re.MatchString(text)
}

type compiledCategory struct {
	name     string
	specific *phraseMatcher
	generic  *phraseMatcher
}

type compiledColor struct {
	name     string
	variants *phraseMatcher
}

// vocabulary is the compiled, read-only form of Synonyms.
type vocabulary struct {
	synonyms   *Synonyms
	colors     []compiledColor
	categories []compiledCategory
}

func compileVocabulary(s *Synonyms) *vocabulary {
	if s == nil {
		s = DefaultSynonyms()
	}

	v := &vocabulary{synonyms: s}
	for _, c := range s.Colors {
		v.colors = append(v.colors, compiledColor{
			name:     strings.ToLower(c.Name),
			variants: newPhraseMatcher(append([]string{c.Name}, c.Variants...)),
		})
	}
	for _, c := range s.Categories {
		v.categories = append(v.categories, compiledCategory{
			name:     c.Name,
			specific: newPhraseMatcher(c.Keywords),
			generic:  newPhraseMatcher(c.Generic),
		})
	}
	return v
}

// canonicalColors maps free-form color labels to canonical color names, in table order.
func (v *vocabulary) canonicalColors(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	joined := strings.ToLower(strings.Join(labels, " | "))

	var out []string
	for _, c := range v.colors {
		if c.variants.match(joined) {
			out = append(out, c.name)
		}
	}
	return out
}

// categoryFor resolves free text to a canonical category, specific keywords first.
func (v *vocabulary) categoryFor(text string) (string, bool) {
	text = strings.ToLower(text)
	for _, c := range v.categories {
		if c.name == text {
			return c.name, true
		}
	}
	for _, c := range v.categories {
		if c.specific.match(text) {
			return c.name, true
		}
	}
	for _, c := range v.categories {
		if c.generic.match(text) {
			return c.name, true
		}
	}
	return "", false
}
