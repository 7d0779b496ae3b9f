// Package storage provides the data persistence layer for the bankcat engine.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bankcat/bankcat/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidScope       = errors.New("invalid scope")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidVendor      = errors.New("invalid vendor memory entry")
	ErrInvalidCommit      = errors.New("invalid commit")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateScope ensures a scope identifies a real (client, bank, period).
func validateScope(scope model.Scope) error {
	if scope.ClientID <= 0 {
		return fmt.Errorf("%w: client ID must be positive", ErrInvalidScope)
	}
	if scope.BankID <= 0 {
		return fmt.Errorf("%w: bank ID must be positive", ErrInvalidScope)
	}
	if strings.TrimSpace(scope.Period) == "" {
		return fmt.Errorf("%w: missing period", ErrInvalidScope)
	}
	return nil
}

// validateDraftTransactions validates a slice of draft transactions.
func validateDraftTransactions(transactions []model.DraftTransaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i := range transactions {
		if err := validateDraftTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateDraftTransaction validates a single draft transaction.
func validateDraftTransaction(txn *model.DraftTransaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Description == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidTransaction)
	}
	if err := validateScope(model.Scope{ClientID: txn.ClientID, BankID: txn.BankID, Period: txn.Period}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	// At most one side of the ledger may carry an amount; both nil is a
	// balance-only row and is allowed.
	if txn.Debit != nil && txn.Credit != nil && txn.Debit.IsPositive() && txn.Credit.IsPositive() {
		return fmt.Errorf("%w: both debit and credit set", ErrInvalidTransaction)
	}
	return nil
}

// validateVendorMemory validates a vendor memory entry.
func validateVendorMemory(entry *model.VendorMemory) error {
	if entry == nil {
		return fmt.Errorf("%w: vendor memory", ErrNilParameter)
	}
	if entry.ClientID <= 0 {
		return fmt.Errorf("%w: missing client ID", ErrInvalidVendor)
	}
	if strings.TrimSpace(entry.VendorKey) == "" {
		return fmt.Errorf("%w: missing vendor key", ErrInvalidVendor)
	}
	if strings.TrimSpace(entry.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidVendor)
	}
	if entry.Confidence < 0 || entry.Confidence > 100 {
		return fmt.Errorf("%w: confidence must be between 0 and 100", ErrInvalidVendor)
	}
	return nil
}

// validateCommit validates a commit header before insertion.
func validateCommit(commit *model.Commit) error {
	if commit == nil {
		return fmt.Errorf("%w: commit", ErrNilParameter)
	}
	if err := validateScope(model.Scope{ClientID: commit.ClientID, BankID: commit.BankID, Period: commit.Period}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCommit, err)
	}
	if commit.RowsCommitted <= 0 {
		return fmt.Errorf("%w: rows committed must be positive", ErrInvalidCommit)
	}
	switch commit.Status {
	case model.CommitActive, model.CommitSuperseded:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidCommit, commit.Status)
	}
	return nil
}
