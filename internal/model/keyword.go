package model

import "time"

// KeywordEntry is one (client, token, category) weight in the fallback
// keyword model. Weights only ever grow; a correction reinforces the new
// category without punishing the old one.
type KeywordEntry struct {
	UpdatedAt time.Time
	Token     string
	Category  string
	ClientID  int64
	Weight    float64
	TimesUsed int
}

// CategoryScore is the aggregate keyword evidence for one category over a
// token set: the summed weights of matching tokens and how many distinct
// tokens matched.
type CategoryScore struct {
	Category       string
	Weight         float64
	DistinctTokens int
}
