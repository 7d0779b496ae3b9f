package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"

	"github.com/bankcat/bankcat/internal/model"
)

var dupeSpaceRe = regexp.MustCompile(`\s+`)

// flagDuplicates annotates rows that look like the same transaction imported
// twice: equal amount on the same side, dates within a day, and
// near-identical descriptions. It only extends the reason string; the user
// decides whether to delete.
func flagDuplicates(transactions []model.DraftTransaction, minSimilarity float64) {
	for i := range transactions {
		for j := range transactions[:i] {
			a, b := &transactions[i], &transactions[j]

			if !sameAmount(a.Debit, b.Debit) || !sameAmount(a.Credit, b.Credit) {
				continue
			}
			if a.Debit == nil && a.Credit == nil {
				continue // balance-only rows repeat legitimately
			}
			if dayDelta(a, b) > 1 {
				continue
			}
			if descriptionSimilarity(a.Description, b.Description) < minSimilarity {
				continue
			}

			a.Reason += fmt.Sprintf("; possible duplicate of row dated %s (%q)",
				b.Date.Format("2006-01-02"), b.Description)
			break
		}
	}
}

func sameAmount(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func dayDelta(a, b *model.DraftTransaction) int {
	delta := int(a.Date.Sub(b.Date).Hours() / 24)
	if delta < 0 {
		return -delta
	}
	return delta
}

// descriptionSimilarity is 1 minus the normalized levenshtein distance over
// the whitespace-collapsed, lower-cased descriptions.
func descriptionSimilarity(a, b string) float64 {
	na := dupeSpaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(a)), " ")
	nb := dupeSpaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(b)), " ")
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	longest := len(na)
	if len(nb) > longest {
		longest = len(nb)
	}

	dist := levenshtein.ComputeDistance(na, nb)
	return 1 - float64(dist)/float64(longest)
}
