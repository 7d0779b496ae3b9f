package model

import "time"

// CategoryType indicates whether a category is for income, expense, or other use.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "Income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "Expense"
	// CategoryTypeOther represents categories outside income/expense (e.g. transfers).
	CategoryTypeOther CategoryType = "Other"
)

// CategoryNature declares which side of the ledger a category may appear on.
type CategoryNature string

const (
	// NatureDebit restricts a category to debit rows.
	NatureDebit CategoryNature = "Dr"
	// NatureCredit restricts a category to credit rows.
	NatureCredit CategoryNature = "Cr"
	// NatureAny allows either side.
	NatureAny CategoryNature = "Any"
)

// Category is one entry in a client's category master.
type Category struct {
	CreatedAt time.Time
	Name      string
	Type      CategoryType
	Nature    CategoryNature
	ID        int64
	ClientID  int64
	IsActive  bool
}

// AllowsDebit reports whether a debit row may carry this category.
func (c *Category) AllowsDebit() bool {
	return c.Nature != NatureCredit
}

// AllowsCredit reports whether a credit row may carry this category.
func (c *Category) AllowsCredit() bool {
	return c.Nature != NatureDebit
}
