// Package model defines the core domain models used throughout the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DraftStatus tracks where a draft row sits in the review lifecycle.
type DraftStatus string

// Draft status constants.
const (
	StatusNotCategorised  DraftStatus = "NOT_CATEGORISED"
	StatusSystemSuggested DraftStatus = "SYSTEM_SUGGESTED"
	StatusUserFinalised   DraftStatus = "USER_FINALISED"
)

// Scope identifies one reviewable batch of transactions: a client's bank
// statement for a single period (YYYY-MM).
type Scope struct {
	Period   string
	ClientID int64
	BankID   int64
}

// DraftTransaction is an editable transaction row awaiting user review.
// Exactly one of Debit/Credit is set for a money movement; both may be nil
// for a balance-only row. Suggested fields belong to the engine, final
// fields belong to the user; an empty final category means "not reviewed".
type DraftTransaction struct {
	Date              time.Time
	CreatedAt         time.Time
	Debit             *decimal.Decimal
	Credit            *decimal.Decimal
	Balance           *decimal.Decimal
	ID                string
	Period            string
	Description       string
	SuggestedCategory string
	SuggestedVendor   string
	Reason            string
	FinalCategory     string
	FinalVendor       string
	Status            DraftStatus
	ClientID          int64
	BankID            int64
	Confidence        int
}

// IsDebit reports whether the row moves money out of the account.
func (t *DraftTransaction) IsDebit() bool {
	return t.Debit != nil && t.Debit.IsPositive() && (t.Credit == nil || t.Credit.IsZero())
}

// IsCredit reports whether the row moves money into the account.
func (t *DraftTransaction) IsCredit() bool {
	return t.Credit != nil && t.Credit.IsPositive() && (t.Debit == nil || t.Debit.IsZero())
}

// Reviewed reports whether the user has assigned a final category.
func (t *DraftTransaction) Reviewed() bool {
	return t.FinalCategory != ""
}

// CommittedTransaction is an immutable copy of a draft row frozen at commit
// time. Category and Vendor hold the user's final choice; the suggestion
// fields are retained for the audit trail.
type CommittedTransaction struct {
	Date              time.Time
	CreatedAt         time.Time
	Debit             *decimal.Decimal
	Credit            *decimal.Decimal
	Balance           *decimal.Decimal
	Period            string
	Description       string
	Category          string
	Vendor            string
	SuggestedCategory string
	SuggestedVendor   string
	Reason            string
	ID                int64
	CommitID          int64
	ClientID          int64
	BankID            int64
	Confidence        int
}
