package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bankcat/bankcat/internal/common"
	"github.com/bankcat/bankcat/internal/model"
	"github.com/bankcat/bankcat/internal/service"
	"github.com/bankcat/bankcat/internal/tokenize"
)

// Coordinator locks reviewed draft rows into the immutable ledger and feeds
// the user's final categorizations back into vendor memory and the keyword
// model. The whole operation is one storage transaction: the supersede of
// the previous commit, the ledger copy, and the learning updates either all
// land or none do.
type Coordinator struct {
	storage service.Storage
	config  Config
}

// NewCoordinator creates a commit coordinator with default configuration.
func NewCoordinator(storage service.Storage) *Coordinator {
	return NewCoordinatorWithConfig(storage, DefaultConfig())
}

// NewCoordinatorWithConfig creates a commit coordinator with custom configuration.
func NewCoordinatorWithConfig(storage service.Storage, config Config) *Coordinator {
	return &Coordinator{
		storage: storage,
		config:  config,
	}
}

// Commit validates and commits every draft row in scope. It fails with a
// ValidationError, leaving no side effects, when the scope is empty or any
// row lacks a final category. A previously active commit for the scope is
// superseded atomically with the new one becoming active.
func (c *Coordinator) Commit(ctx context.Context, scope model.Scope, committedBy string) (*model.CommitResult, error) {
	tx, err := c.storage.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin commit transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	transactions, err := tx.GetDraftTransactions(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft transactions: %w", err)
	}
	if len(transactions) == 0 {
		return nil, common.NewValidationError(
			fmt.Sprintf("nothing to commit for client=%d bank=%d period=%s",
				scope.ClientID, scope.BankID, scope.Period),
			common.ErrNoRowsInScope)
	}

	unreviewed := 0
	for i := range transactions {
		if !transactions[i].Reviewed() {
			unreviewed++
		}
	}
	if unreviewed > 0 {
		return nil, common.NewValidationError(
			fmt.Sprintf("commit blocked: %d of %d rows missing final category", unreviewed, len(transactions)),
			common.ErrUnreviewed)
	}

	// Surfaces pre-existing corruption (two active commits) before writing.
	if _, err := tx.GetActiveCommit(ctx, scope); err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	if err := tx.SupersedeActiveCommit(ctx, scope); err != nil {
		return nil, err
	}

	accuracy := suggestionAccuracy(transactions)
	commitID, err := tx.InsertCommit(ctx, &model.Commit{
		ClientID:      scope.ClientID,
		BankID:        scope.BankID,
		Period:        scope.Period,
		CommittedBy:   committedBy,
		RowsCommitted: len(transactions),
		Accuracy:      accuracy,
		Status:        model.CommitActive,
	})
	if err != nil {
		return nil, err
	}

	frozen := make([]model.CommittedTransaction, 0, len(transactions))
	for i := range transactions {
		frozen = append(frozen, freezeRow(&transactions[i], commitID))
	}
	if err := tx.InsertCommittedTransactions(ctx, frozen); err != nil {
		return nil, err
	}

	for i := range transactions {
		if err := c.learnFromRow(ctx, tx, &transactions[i]); err != nil {
			return nil, fmt.Errorf("learning update failed: %w", err)
		}
	}

	if err := tx.MarkDraftsFinalised(ctx, scope); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true

	slog.Info("Committed scope",
		"commit_id", commitID,
		"rows", len(transactions),
		"accuracy", accuracy)

	return &model.CommitResult{
		CommitID:      commitID,
		RowsCommitted: len(transactions),
		Accuracy:      accuracy,
	}, nil
}

// learnFromRow applies one committed row to vendor memory and the keyword
// model. The user's explicit choice always wins over history.
func (c *Coordinator) learnFromRow(ctx context.Context, tx service.Transaction, txn *model.DraftTransaction) error {
	category := strings.TrimSpace(txn.FinalCategory)

	vendorKey := tokenize.VendorKey(txn.FinalVendor)
	if vendorKey == "" {
		vendorKey = txn.SuggestedVendor
	}

	if vendorKey != "" {
		if err := c.learnVendor(ctx, tx, txn.ClientID, vendorKey, category); err != nil {
			return err
		}
	}

	counts := tokenize.TokenCounts(txn.Description, c.config.TokenCapPerRow)
	for token, n := range counts {
		delta := c.config.KeywordWeightStep * float64(n)
		if err := tx.BumpKeyword(ctx, txn.ClientID, token, category, delta); err != nil {
			return err
		}
	}

	return nil
}

func (c *Coordinator) learnVendor(ctx context.Context, tx service.Transaction, clientID int64, vendorKey, category string) error {
	existing, err := tx.GetVendorMemory(ctx, clientID, vendorKey)
	switch {
	case errors.Is(err, common.ErrNotFound):
		// First confirmed observation of this vendor.
		return tx.SaveVendorMemory(ctx, &model.VendorMemory{
			ClientID:       clientID,
			VendorKey:      vendorKey,
			Category:       category,
			Confidence:     c.config.VendorBaselineConfidence,
			TimesConfirmed: 1,
		})
	case err != nil:
		return err
	}

	if strings.EqualFold(existing.Category, category) {
		existing.TimesConfirmed++
		existing.Confidence += c.config.VendorConfidenceStep
		if existing.Confidence > c.config.VendorConfidenceCap {
			existing.Confidence = c.config.VendorConfidenceCap
		}
	} else {
		// Conflicting correction: overwrite and restart from the baseline.
		existing.Category = category
		existing.Confidence = c.config.VendorBaselineConfidence
		existing.TimesConfirmed = 1
	}
	existing.LastSeen = time.Now()

	return tx.SaveVendorMemory(ctx, existing)
}

// freezeRow copies a reviewed draft row into its immutable committed form.
func freezeRow(txn *model.DraftTransaction, commitID int64) model.CommittedTransaction {
	vendor := strings.TrimSpace(txn.FinalVendor)
	if vendor == "" {
		vendor = txn.SuggestedVendor
	}

	return model.CommittedTransaction{
		CommitID:          commitID,
		ClientID:          txn.ClientID,
		BankID:            txn.BankID,
		Period:            txn.Period,
		Date:              txn.Date,
		Description:       txn.Description,
		Debit:             txn.Debit,
		Credit:            txn.Credit,
		Balance:           txn.Balance,
		Category:          strings.TrimSpace(txn.FinalCategory),
		Vendor:            vendor,
		SuggestedCategory: txn.SuggestedCategory,
		SuggestedVendor:   txn.SuggestedVendor,
		Confidence:        txn.Confidence,
		Reason:            txn.Reason,
	}
}

// suggestionAccuracy is the fraction of rows where the engine's suggestion
// matched the user's final choice, recorded on the commit header.
func suggestionAccuracy(transactions []model.DraftTransaction) float64 {
	if len(transactions) == 0 {
		return 0
	}

	matched := 0
	for i := range transactions {
		suggested := strings.TrimSpace(transactions[i].SuggestedCategory)
		final := strings.TrimSpace(transactions[i].FinalCategory)
		if suggested != "" && strings.EqualFold(suggested, final) {
			matched++
		}
	}

	return float64(matched) / float64(len(transactions))
}
