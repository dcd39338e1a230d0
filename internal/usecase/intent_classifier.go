package usecase

import (
	"regexp"
	"strings"
)

// Intent is the route a chat message should take.
type Intent string

const (
	IntentFAQ           Intent = "faq"
	IntentProductSearch Intent = "product_search"
	IntentGeneral       Intent = "general"
)

// IntentResult is the outcome of classifying one message.
type IntentResult struct {
	Intent     Intent  `json:"intent"`
	Topic      string  `json:"topic,omitempty"`
	Confidence float64 `json:"confidence"`
}

type faqPattern struct {
	pattern *regexp.Regexp
	topic   string
}

// FAQ topics in priority order. Narrower phrases sit before the broad ones they
// overlap with ("exchange rate" before "exchange", "belt size" before sizing).
var faqPatterns = []faqPattern{
	{regexp.MustCompile(`\b(?:return policy|returns?|refunds?)\b`), "return policy"},
	{regexp.MustCompile(`\b(?:currency|usd|cad|exchange rates?|conversion|converter|charged)\b`), "currency"},
	{regexp.MustCompile(`\b(?:exchanges?|swap|size change)\b`), "exchange"},
	{regexp.MustCompile(`\b(?:damaged|damage|defect|defective|broken)\b`), "damages"},
	{regexp.MustCompile(`\b(?:shipping|delivery|tracking|track my order)\b`), "shipping"},
	{regexp.MustCompile(`\b(?:gift cards?|store credit)\b`), "gift cards"},
	{regexp.MustCompile(`\b(?:in store availability|check store|available in store|inventory)\b`), "store availability"},
	{regexp.MustCompile(`\b(?:store locations?|store hours|locations?|address|opening hours|phone|contact|manager|mall|directory)\b`), "store locations"},
	{regexp.MustCompile(`\bbelt\s*(?:size|sizes|measurement|fitting)\b`), "belt size"},
	{regexp.MustCompile(`\b(?:size guide|size chart|sizing|measurements?|what size)\b`), "size guide"},
	{regexp.MustCompile(`\b(?:care instructions|care for|clean|cleaning|maintain|conditioner|storage)\b`), "care instructions"},
	{regexp.MustCompile(`\b(?:coupons?|promo codes?|promotion codes?|discount codes?)\b`), "discount coupon"},
	{regexp.MustCompile(`\b(?:alterations?|alter|tailor|tailoring|repairs?|hem)\b`), "alterations"},
	{regexp.MustCompile(`\b(?:pickup|pick up|curbside)\b`), "pickup locations"},
}

var shoppingPattern = regexp.MustCompile(`\b(?:shop|shopping|buy|looking for|show me|find me|recommend|suggest|browse|do you (?:have|sell))\b`)

// IntentClassifier routes chat messages to the FAQ path, product search, or
// general conversation.
type IntentClassifier struct {
	parser *QueryParser
}

// NewIntentClassifier creates a classifier that uses parser to spot product filters.
func NewIntentClassifier(parser *QueryParser) *IntentClassifier {
	if parser == nil {
		parser = NewQueryParser(nil, QueryParserConfig{})
	}
	return &IntentClassifier{parser: parser}
}

// Classify decides the route for message. FAQ topics are checked first.
func (c *IntentClassifier) Classify(message string) IntentResult {
	lower := strings.ToLower(strings.TrimSpace(message))
	if lower == "" {
		return IntentResult{Intent: IntentGeneral, Confidence: 0}
	}

	for _, faq := range faqPatterns {
		if faq.pattern.MatchString(lower) {
			return IntentResult{Intent: IntentFAQ, Topic: faq.topic, Confidence: 0.9}
		}
	}

	parsed := c.parser.Parse(lower)
	if category, _, _ := c.parser.matchCategory(parsed.Normalized); category != "" {
		return IntentResult{Intent: IntentProductSearch, Topic: category, Confidence: 0.85}
	}
	if !parsed.Filters.IsEmpty() {
		return IntentResult{Intent: IntentProductSearch, Confidence: 0.75}
	}
	if shoppingPattern.MatchString(lower) {
		return IntentResult{Intent: IntentProductSearch, Confidence: 0.6}
	}

	return IntentResult{Intent: IntentGeneral, Confidence: 0.5}
}
