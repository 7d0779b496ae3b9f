package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankcat/bankcat/internal/model"
	"github.com/bankcat/bankcat/internal/rules"
	"github.com/bankcat/bankcat/internal/testutil"
)

func TestSuggesterVendorHit(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.BasicCategories()...)
	scope := db.Scope("2026-01")

	require.NoError(t, db.Storage.SaveVendorMemory(ctx, &model.VendorMemory{
		ClientID:       db.ClientID,
		VendorKey:      "woolworths",
		Category:       "Shopping",
		Confidence:     80,
		TimesConfirmed: 3,
	}))

	require.NoError(t, db.Storage.SaveDraftTransactions(ctx, []model.DraftTransaction{
		{ClientID: db.ClientID, BankID: db.BankID, Period: "2026-01",
			Date: day(5), Description: "POS PURCHASE WOOLWORTHS 123456", Debit: amt("120.50")},
	}))

	rows, err := NewSuggester(db.Storage, rules.Default()).Run(ctx, scope)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Shopping", rows[0].SuggestedCategory)
	assert.Equal(t, "woolworths", rows[0].SuggestedVendor)
	assert.Equal(t, 80, rows[0].Confidence)
	assert.Contains(t, rows[0].Reason, "vendor match: woolworths, seen 3 times")
	assert.Equal(t, model.StatusSystemSuggested, rows[0].Status)

	// Suggestions must also be persisted.
	stored, err := db.Storage.GetDraftTransactions(ctx, scope)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Shopping", stored[0].SuggestedCategory)
	assert.Equal(t, model.StatusSystemSuggested, stored[0].Status)
}

func TestSuggesterVendorConfidenceCapped(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.BasicCategories()...)
	scope := db.Scope("2026-01")

	require.NoError(t, db.Storage.SaveVendorMemory(ctx, &model.VendorMemory{
		ClientID:       db.ClientID,
		VendorKey:      "woolworths",
		Category:       "Shopping",
		Confidence:     100,
		TimesConfirmed: 50,
	}))

	require.NoError(t, db.Storage.SaveDraftTransactions(ctx, []model.DraftTransaction{
		{ClientID: db.ClientID, BankID: db.BankID, Period: "2026-01",
			Date: day(5), Description: "WOOLWORTHS 123456", Debit: amt("42.00")},
	}))

	rows, err := NewSuggester(db.Storage, rules.Default()).Run(ctx, scope)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 99, rows[0].Confidence)
}

func TestSuggesterKeywordTie(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.BasicCategories()...)
	scope := db.Scope("2026-01")

	// "Shopping" has the higher weight sum (12 over two tokens) and must win
	// over "Office Supplies" (7 over one token).
	require.NoError(t, db.Storage.BumpKeyword(ctx, db.ClientID, "stationery", "Shopping", 8))
	require.NoError(t, db.Storage.BumpKeyword(ctx, db.ClientID, "warehouse", "Shopping", 4))
	require.NoError(t, db.Storage.BumpKeyword(ctx, db.ClientID, "stationery", "Office Supplies", 7))

	require.NoError(t, db.Storage.SaveDraftTransactions(ctx, []model.DraftTransaction{
		{ClientID: db.ClientID, BankID: db.BankID, Period: "2026-01",
			Date: day(10), Description: "STATIONERY WAREHOUSE RESTOCK", Debit: amt("310.00")},
	}))

	rows, err := NewSuggester(db.Storage, rules.Default()).Run(ctx, scope)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Shopping", rows[0].SuggestedCategory)
	assert.Equal(t, 76, rows[0].Confidence) // 40 + 6*2 distinct + 2*12 weight
	assert.Contains(t, rows[0].Reason, "keyword match: stationery, warehouse")
}

func TestSuggesterRuleFallback(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.BasicCategories()...)
	scope := db.Scope("2026-01")

	require.NoError(t, db.Storage.SaveDraftTransactions(ctx, []model.DraftTransaction{
		{ClientID: db.ClientID, BankID: db.BankID, Period: "2026-01",
			Date: day(3), Description: "MONTHLY SERVICE FEE", Debit: amt("5.50")},
	}))

	rows, err := NewSuggester(db.Storage, rules.Default()).Run(ctx, scope)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Bank Charges", rows[0].SuggestedCategory)
	assert.Equal(t, 40, rows[0].Confidence)
	assert.Contains(t, rows[0].Reason, "rule-based default")
}

func TestSuggesterFallbackRespectsNature(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.BasicCategories()...)
	scope := db.Scope("2026-01")

	// A credit row with no history must never be suggested a Dr-only category.
	require.NoError(t, db.Storage.SaveDraftTransactions(ctx, []model.DraftTransaction{
		{ClientID: db.ClientID, BankID: db.BankID, Period: "2026-01",
			Date: day(7), Description: "UNKNOWN REMITTER ZZTOP", Credit: amt("500.00")},
	}))

	rows, err := NewSuggester(db.Storage, rules.Default()).Run(ctx, scope)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Sales", rows[0].SuggestedCategory)
	assert.LessOrEqual(t, rows[0].Confidence, 40)
}

func TestSuggesterNatureConflictDowngradesVendorHit(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.BasicCategories()...)
	scope := db.Scope("2026-01")

	// Vendor memory says Shopping (Dr-only), but the row is a credit. The
	// category is kept with the conflict explained, not silently swapped.
	require.NoError(t, db.Storage.SaveVendorMemory(ctx, &model.VendorMemory{
		ClientID:       db.ClientID,
		VendorKey:      "woolworths",
		Category:       "Shopping",
		Confidence:     95,
		TimesConfirmed: 7,
	}))

	require.NoError(t, db.Storage.SaveDraftTransactions(ctx, []model.DraftTransaction{
		{ClientID: db.ClientID, BankID: db.BankID, Period: "2026-01",
			Date: day(12), Description: "WOOLWORTHS 998877", Credit: amt("63.00")},
	}))

	rows, err := NewSuggester(db.Storage, rules.Default()).Run(ctx, scope)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Shopping", rows[0].SuggestedCategory)
	assert.Equal(t, 70, rows[0].Confidence) // 95 - 25 nature penalty
	assert.Contains(t, rows[0].Reason, "nature conflict")
}

func TestSuggesterIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.BasicCategories()...)
	scope := db.Scope("2026-01")

	require.NoError(t, db.Storage.BumpKeyword(ctx, db.ClientID, "hosting", "Office Supplies", 3))
	require.NoError(t, db.Storage.SaveDraftTransactions(ctx, []model.DraftTransaction{
		{ClientID: db.ClientID, BankID: db.BankID, Period: "2026-01",
			Date: day(4), Description: "GODADDY HOSTING RENEWAL", Debit: amt("34.20")},
		{ClientID: db.ClientID, BankID: db.BankID, Period: "2026-01",
			Date: day(9), Description: "MONTHLY SERVICE FEE", Debit: amt("5.50")},
	}))

	suggester := NewSuggester(db.Storage, rules.Default())

	first, err := suggester.Run(ctx, scope)
	require.NoError(t, err)
	second, err := suggester.Run(ctx, scope)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].SuggestedCategory, second[i].SuggestedCategory)
		assert.Equal(t, first[i].SuggestedVendor, second[i].SuggestedVendor)
		assert.Equal(t, first[i].Confidence, second[i].Confidence)
		assert.Equal(t, first[i].Reason, second[i].Reason)
	}
}

func TestSuggesterNeverTouchesFinalFields(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.BasicCategories()...)
	scope := db.Scope("2026-01")

	require.NoError(t, db.Storage.SaveDraftTransactions(ctx, []model.DraftTransaction{
		{ClientID: db.ClientID, BankID: db.BankID, Period: "2026-01",
			Date: day(5), Description: "WOOLWORTHS 123456", Debit: amt("12.00")},
	}))

	stored, err := db.Storage.GetDraftTransactions(ctx, scope)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.NoError(t, db.Storage.SetFinalCategory(ctx, stored[0].ID, "General Expense", "Woolies"))

	_, err = NewSuggester(db.Storage, rules.Default()).Run(ctx, scope)
	require.NoError(t, err)

	after, err := db.Storage.GetDraftTransactions(ctx, scope)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "General Expense", after[0].FinalCategory)
	assert.Equal(t, "Woolies", after[0].FinalVendor)
}

func TestSuggesterEmptyScope(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.BasicCategories()...)

	rows, err := NewSuggester(db.Storage, rules.Default()).Run(ctx, db.Scope("2026-01"))
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestSuggesterFlagsDuplicates(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.BasicCategories()...)
	scope := db.Scope("2026-01")

	require.NoError(t, db.Storage.SaveDraftTransactions(ctx, []model.DraftTransaction{
		{ClientID: db.ClientID, BankID: db.BankID, Period: "2026-01",
			Date: day(2), Description: "WOOLWORTHS GROCERIES 451289", Debit: amt("129.99")},
		{ClientID: db.ClientID, BankID: db.BankID, Period: "2026-01",
			Date: day(3), Description: "WOOLWORTHS GROCERIES 451289", Debit: amt("129.99")},
	}))

	rows, err := NewSuggester(db.Storage, rules.Default()).Run(ctx, scope)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.NotContains(t, rows[0].Reason, "possible duplicate")
	assert.Contains(t, rows[1].Reason, "possible duplicate")
}

func TestSuggesterStaleLearnedCategoryNotedPerRow(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.BasicCategories()...)
	scope := db.Scope("2026-01")

	// Vendor memory still names a category the master no longer has. The row
	// is noted and left unsuggested; the rest of the batch is unaffected.
	require.NoError(t, db.Storage.SaveVendorMemory(ctx, &model.VendorMemory{
		ClientID:       db.ClientID,
		VendorKey:      "blockbuster",
		Category:       "Entertainment",
		Confidence:     80,
		TimesConfirmed: 2,
	}))

	require.NoError(t, db.Storage.SaveDraftTransactions(ctx, []model.DraftTransaction{
		{ClientID: db.ClientID, BankID: db.BankID, Period: "2026-01",
			Date: day(5), Description: "BLOCKBUSTER 445120", Debit: amt("19.99")},
		{ClientID: db.ClientID, BankID: db.BankID, Period: "2026-01",
			Date: day(9), Description: "MONTHLY SERVICE FEE", Debit: amt("5.50")},
	}))

	rows, err := NewSuggester(db.Storage, rules.Default()).Run(ctx, scope)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Empty(t, rows[0].SuggestedCategory)
	assert.Zero(t, rows[0].Confidence)
	assert.Contains(t, rows[0].Reason, "suggestion failed")
	assert.Contains(t, rows[0].Reason, "Entertainment")
	assert.Equal(t, model.StatusSystemSuggested, rows[0].Status)

	assert.Equal(t, "Bank Charges", rows[1].SuggestedCategory)
	assert.Equal(t, 40, rows[1].Confidence)
}

func TestSuggesterBlankVendorKeyNoted(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t, testutil.BasicCategories()...)
	scope := db.Scope("2026-01")

	// All-digit description normalizes to nothing.
	require.NoError(t, db.Storage.SaveDraftTransactions(ctx, []model.DraftTransaction{
		{ClientID: db.ClientID, BankID: db.BankID, Period: "2026-01",
			Date: day(6), Description: "00441822", Debit: amt("10.00")},
	}))

	rows, err := NewSuggester(db.Storage, rules.Default()).Run(ctx, scope)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Empty(t, rows[0].SuggestedVendor)
	assert.Contains(t, rows[0].Reason, "no vendor key derivable")
}
