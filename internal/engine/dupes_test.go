package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bankcat/bankcat/internal/model"
)

func amt(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func day(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestFlagDuplicates(t *testing.T) {
	rows := []model.DraftTransaction{
		{Date: day(2), Description: "POS PURCHASE AMAZON MKTP 451289", Debit: amt("129.99")},
		{Date: day(3), Description: "POS AMAZON MKTP 451289", Debit: amt("129.99")},
	}

	flagDuplicates(rows, 0.85)

	assert.Empty(t, rows[0].Reason)
	assert.Contains(t, rows[1].Reason, "possible duplicate")
	assert.Contains(t, rows[1].Reason, "2026-01-02")
}

func TestFlagDuplicatesDifferentAmounts(t *testing.T) {
	rows := []model.DraftTransaction{
		{Date: day(2), Description: "POS AMAZON MKTP 451289", Debit: amt("129.99")},
		{Date: day(2), Description: "POS AMAZON MKTP 451289", Debit: amt("59.99")},
	}

	flagDuplicates(rows, 0.85)

	assert.Empty(t, rows[0].Reason)
	assert.Empty(t, rows[1].Reason)
}

func TestFlagDuplicatesDatesTooFarApart(t *testing.T) {
	rows := []model.DraftTransaction{
		{Date: day(2), Description: "POS AMAZON MKTP 451289", Debit: amt("129.99")},
		{Date: day(6), Description: "POS AMAZON MKTP 451289", Debit: amt("129.99")},
	}

	flagDuplicates(rows, 0.85)

	assert.Empty(t, rows[1].Reason)
}

func TestFlagDuplicatesDissimilarDescriptions(t *testing.T) {
	rows := []model.DraftTransaction{
		{Date: day(2), Description: "POS AMAZON MKTP 451289", Debit: amt("129.99")},
		{Date: day(2), Description: "WOOLWORTHS GROCERIES 8812", Debit: amt("129.99")},
	}

	flagDuplicates(rows, 0.85)

	assert.Empty(t, rows[1].Reason)
}

func TestFlagDuplicatesIgnoresBalanceRows(t *testing.T) {
	rows := []model.DraftTransaction{
		{Date: day(2), Description: "CLOSING BALANCE", Balance: amt("4100.00")},
		{Date: day(3), Description: "CLOSING BALANCE", Balance: amt("4100.00")},
	}

	flagDuplicates(rows, 0.85)

	assert.Empty(t, rows[0].Reason)
	assert.Empty(t, rows[1].Reason)
}

func TestDescriptionSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, descriptionSimilarity("abc def", "ABC   def "), 0.001)
	assert.Equal(t, 0.0, descriptionSimilarity("", "abc"))
	assert.Less(t, descriptionSimilarity("woolworths", "netflix"), 0.5)
}
