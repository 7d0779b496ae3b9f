package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankcat/bankcat/internal/model"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func testCategories() []model.Category {
	return []model.Category{
		{Name: "Bank Charges", Type: model.CategoryTypeExpense, Nature: model.NatureDebit, IsActive: true},
		{Name: "Sales", Type: model.CategoryTypeIncome, Nature: model.NatureCredit, IsActive: true},
		{Name: "General Expense", Type: model.CategoryTypeExpense, Nature: model.NatureAny, IsActive: true},
		{Name: "Old Category", Type: model.CategoryTypeExpense, Nature: model.NatureAny, IsActive: false},
	}
}

func categoryMap(cats []model.Category) map[string]model.Category {
	m := make(map[string]model.Category, len(cats))
	for _, c := range cats {
		m[c.Name] = c
	}
	return m
}

func TestDefaultRulesLoad(t *testing.T) {
	rs := Default()
	assert.Equal(t, 90, rs.HighConfidence())
	assert.Equal(t, 40, rs.FallbackMaxConfidence())
}

func TestLoadRejectsBadConfig(t *testing.T) {
	_, err := fromConfig(Config{HighConfidence: 0, FallbackMaxConfidence: 40})
	assert.Error(t, err)

	_, err = fromConfig(Config{HighConfidence: 90, FallbackMaxConfidence: 95})
	assert.Error(t, err)
}

func TestFallbackKeywordPattern(t *testing.T) {
	rs := Default()
	txn := &model.DraftTransaction{
		Description: "MONTHLY FEE CHEQUE ACCOUNT",
		Debit:       dec("35.00"),
	}

	s := rs.Fallback(txn, "Current", testCategories())

	assert.Equal(t, "Bank Charges", s.Category)
	assert.Equal(t, 40, s.Confidence)
	assert.Equal(t, model.SourceRuleSet, s.Source)
	assert.Contains(t, s.Reason, "rule-based default")
}

func TestFallbackNatureHeuristic(t *testing.T) {
	rs := Default()

	// A credit row must never be suggested a strictly-Dr category.
	credit := &model.DraftTransaction{
		Description: "UNKNOWN DEPOSIT XYZKJQ",
		Credit:      dec("250.50"),
	}
	s := rs.Fallback(credit, "Current", testCategories())
	require.NotEqual(t, "Bank Charges", s.Category)
	assert.LessOrEqual(t, s.Confidence, rs.FallbackMaxConfidence())

	// Large round credits bias toward income categories.
	roundCredit := &model.DraftTransaction{
		Description: "UNKNOWN DEPOSIT XYZKJQ",
		Credit:      dec("5000"),
	}
	s = rs.Fallback(roundCredit, "Current", testCategories())
	assert.Equal(t, "Sales", s.Category)
}

func TestFallbackDeterministicTieBreak(t *testing.T) {
	rs := Default()
	cats := []model.Category{
		{Name: "Zeta", Nature: model.NatureAny, IsActive: true},
		{Name: "Alpha", Nature: model.NatureAny, IsActive: true},
	}
	txn := &model.DraftTransaction{Description: "qqqq wwww", Debit: dec("10")}

	for i := 0; i < 5; i++ {
		s := rs.Fallback(txn, "Current", cats)
		assert.Equal(t, "Alpha", s.Category, "equal scores break to lexicographically smallest name")
	}
}

func TestFallbackNoCategories(t *testing.T) {
	rs := Default()
	txn := &model.DraftTransaction{Description: "zzzz", Debit: dec("10")}

	s := rs.Fallback(txn, "Current", nil)

	assert.Empty(t, s.Category)
	assert.Zero(t, s.Confidence)
}

func TestAdjustNatureConflict(t *testing.T) {
	rs := Default()
	cats := categoryMap(testCategories())

	s := &model.Suggestion{
		Category:   "Bank Charges",
		Confidence: 95,
		Reason:     "vendor match: acme, seen 4 times",
		Source:     model.SourceVendorMemory,
	}
	txn := &model.DraftTransaction{Description: "ACME REFUND", Credit: dec("50")}

	rs.Adjust(s, txn, cats)

	// Category is preserved even for a high-confidence hit; only confidence
	// and reason change.
	assert.Equal(t, "Bank Charges", s.Category)
	assert.Equal(t, 70, s.Confidence)
	assert.Contains(t, s.Reason, "nature conflict")
}

func TestAdjustConfidenceFloor(t *testing.T) {
	rs := Default()
	cats := categoryMap(testCategories())

	s := &model.Suggestion{Category: "Sales", Confidence: 12, Source: model.SourceKeywordModel}
	txn := &model.DraftTransaction{Description: "misc", Debit: dec("9")}

	rs.Adjust(s, txn, cats)

	assert.Equal(t, 5, s.Confidence)
}

func TestAdjustAnnotatesFeePattern(t *testing.T) {
	rs := Default()
	cats := categoryMap(testCategories())

	s := &model.Suggestion{
		Category:   "General Expense",
		Confidence: 60,
		Reason:     "keyword match: commission",
		Source:     model.SourceKeywordModel,
	}
	txn := &model.DraftTransaction{Description: "COMMISSION PAID", Debit: dec("100")}

	rs.Adjust(s, txn, cats)

	assert.Equal(t, "General Expense", s.Category, "rules never swap the category")
	assert.Contains(t, s.Reason, "Bank Charges")
}

func TestAdjustEmptySuggestionNoop(t *testing.T) {
	rs := Default()
	s := &model.Suggestion{}
	rs.Adjust(s, &model.DraftTransaction{Description: "fee"}, categoryMap(testCategories()))
	assert.Empty(t, s.Category)
	assert.Zero(t, s.Confidence)
}
