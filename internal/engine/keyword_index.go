package engine

import (
	"sort"

	"github.com/bankcat/bankcat/internal/model"
)

// KeywordIndex is an in-memory snapshot of a client's keyword model. A
// suggestion run builds one index up front so every row scores against the
// same state even if a concurrent commit is mutating the store.
type KeywordIndex struct {
	// token -> category -> weight
	weights map[string]map[string]float64
}

// NewKeywordIndex builds an index from stored keyword entries.
func NewKeywordIndex(entries []model.KeywordEntry) *KeywordIndex {
	idx := &KeywordIndex{weights: make(map[string]map[string]float64)}
	for _, e := range entries {
		byCategory, ok := idx.weights[e.Token]
		if !ok {
			byCategory = make(map[string]float64)
			idx.weights[e.Token] = byCategory
		}
		byCategory[e.Category] += e.Weight
	}
	return idx
}

// Len returns the number of distinct tokens in the index.
func (idx *KeywordIndex) Len() int {
	return len(idx.weights)
}

// Score aggregates the evidence for every category matched by the given
// tokens, best first. Ordering is deterministic: higher weight sum, then
// more distinct matching tokens, then lexicographically smallest category
// name. Accountants expect reproducible suggestions.
func (idx *KeywordIndex) Score(tokens []string) []model.CategoryScore {
	weightByCategory := make(map[string]float64)
	distinctByCategory := make(map[string]int)

	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}

		for category, weight := range idx.weights[token] {
			weightByCategory[category] += weight
			distinctByCategory[category]++
		}
	}

	if len(weightByCategory) == 0 {
		return nil
	}

	scores := make([]model.CategoryScore, 0, len(weightByCategory))
	for category, weight := range weightByCategory {
		scores = append(scores, model.CategoryScore{
			Category:       category,
			Weight:         weight,
			DistinctTokens: distinctByCategory[category],
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Weight != scores[j].Weight {
			return scores[i].Weight > scores[j].Weight
		}
		if scores[i].DistinctTokens != scores[j].DistinctTokens {
			return scores[i].DistinctTokens > scores[j].DistinctTokens
		}
		return scores[i].Category < scores[j].Category
	})

	return scores
}

// Best returns the top-scoring category for the tokens along with the tokens
// that matched it, or nil when nothing matched.
func (idx *KeywordIndex) Best(tokens []string) (*model.CategoryScore, []string) {
	scores := idx.Score(tokens)
	if len(scores) == 0 {
		return nil, nil
	}

	best := scores[0]
	var matched []string
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		if _, ok := idx.weights[token][best.Category]; ok {
			matched = append(matched, token)
		}
	}

	return &best, matched
}
