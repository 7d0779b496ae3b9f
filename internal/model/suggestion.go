package model

// SuggestionSource records which signal produced a suggestion.
type SuggestionSource string

// Suggestion sources, strongest first.
const (
	SourceVendorMemory SuggestionSource = "VENDOR_MEMORY"
	SourceKeywordModel SuggestionSource = "KEYWORD_MODEL"
	SourceRuleSet      SuggestionSource = "RULE_SET"
)

// Suggestion is the engine's proposed categorization for a single draft row.
// Confidence is a 0-100 integer across the whole system.
type Suggestion struct {
	Category   string
	Vendor     string
	Reason     string
	Source     SuggestionSource
	Confidence int
}
