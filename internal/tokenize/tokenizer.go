// Package tokenize turns raw bank-statement descriptions into a canonical
// vendor key and a set of keyword tokens. All functions are pure and
// deterministic; the same description always yields the same output.
package tokenize

import (
	"regexp"
	"strings"
)

const (
	// minTokenLen filters out short connective fragments.
	minTokenLen = 3
	// maxTokens caps the token set for pathological descriptions.
	maxTokens = 30
	// maxVendorWords keeps the vendor key to the leading merchant name.
	maxVendorWords = 5
)

var (
	// Leading transaction-type noise banks prepend to the merchant name.
	noisePrefixRe = regexp.MustCompile(`^(?i)(pos\s+purchase|pos|purchase|payment|paid|to|from|eft|transfer)\s+`)
	// Trailing reference numbers and everything after them.
	trailingRefRe = regexp.MustCompile(`\s+\d{4,}.*$`)
	nonAlnumRe    = regexp.MustCompile(`[^a-z0-9\s]+`)
	digitsOnlyRe  = regexp.MustCompile(`^[0-9]+$`)
	spaceRunRe    = regexp.MustCompile(`\s{2,}`)
)

// stopWords are tokens that carry no categorization signal.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "ltd": {}, "inc": {}, "llc": {},
	"ref": {}, "reference": {}, "pos": {}, "purchase": {}, "payment": {},
	"card": {}, "debit": {}, "credit": {}, "txn": {}, "transaction": {},
	"online": {}, "banking": {}, "internet": {},
}

// Normalize derives the canonical vendor key and keyword token set from a
// raw description. An empty or whitespace-only description yields an empty
// key and nil tokens; callers fall back to rule heuristics in that case.
func Normalize(description string) (vendorKey string, tokens []string) {
	return VendorKey(description), Tokens(description)
}

// VendorKey returns the normalized counterparty identifier for a
// description: noise prefixes and trailing reference numbers stripped,
// lower-cased, punctuation removed, first few words kept.
func VendorKey(description string) string {
	d := strings.TrimSpace(description)
	if d == "" {
		return ""
	}

	d = noisePrefixRe.ReplaceAllString(d, "")
	d = trailingRefRe.ReplaceAllString(d, "")
	d = strings.ToLower(d)
	d = nonAlnumRe.ReplaceAllString(d, " ")
	d = strings.TrimSpace(spaceRunRe.ReplaceAllString(d, " "))

	words := make([]string, 0, maxVendorWords)
	for _, w := range strings.Fields(d) {
		if digitsOnlyRe.MatchString(w) {
			continue
		}
		words = append(words, w)
		if len(words) == maxVendorWords {
			break
		}
	}

	return strings.Join(words, " ")
}

// Tokens returns the normalized keyword tokens for a description:
// lower-cased, punctuation split, stop-words and digit runs removed,
// de-duplicated in first-seen order.
func Tokens(description string) []string {
	d := strings.ToLower(strings.TrimSpace(description))
	if d == "" {
		return nil
	}

	d = nonAlnumRe.ReplaceAllString(d, " ")

	seen := make(map[string]struct{})
	var tokens []string
	for _, t := range strings.Fields(d) {
		if len(t) < minTokenLen || digitsOnlyRe.MatchString(t) {
			continue
		}
		if _, stop := stopWords[t]; stop {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tokens = append(tokens, t)
		if len(tokens) == maxTokens {
			break
		}
	}

	return tokens
}

// TokenCounts returns each token of the description with its occurrence
// count, capped per token. The commit coordinator scales keyword weight
// updates by these counts.
func TokenCounts(description string, capPerToken int) map[string]int {
	d := strings.ToLower(strings.TrimSpace(description))
	if d == "" {
		return nil
	}

	d = nonAlnumRe.ReplaceAllString(d, " ")

	counts := make(map[string]int)
	total := 0
	for _, t := range strings.Fields(d) {
		if len(t) < minTokenLen || digitsOnlyRe.MatchString(t) {
			continue
		}
		if _, stop := stopWords[t]; stop {
			continue
		}
		if _, ok := counts[t]; !ok {
			if total == maxTokens {
				continue
			}
			total++
		}
		if counts[t] < capPerToken {
			counts[t]++
		}
	}

	if len(counts) == 0 {
		return nil
	}
	return counts
}
