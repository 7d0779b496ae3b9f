package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bankcat/bankcat/internal/model"
)

// decimalArg converts an optional decimal amount to a SQL argument. Amounts
// are stored as TEXT to avoid float drift.
func decimalArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func scanDecimal(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored amount %q: %w", ns.String, err)
	}
	return &d, nil
}

// SaveDraftTransactions persists imported draft rows. Rows without an ID are
// assigned one; status defaults to NOT_CATEGORISED.
func (s *SQLiteStorage) SaveDraftTransactions(ctx context.Context, transactions []model.DraftTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDraftTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveDraftTransactionsTx(ctx, tx, transactions); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) saveDraftTransactionsTx(ctx context.Context, q queryable, transactions []model.DraftTransaction) error {
	for i := range transactions {
		txn := &transactions[i]
		if txn.ID == "" {
			txn.ID = uuid.NewString()
		}
		if txn.Status == "" {
			txn.Status = model.StatusNotCategorised
		}

		_, err := q.ExecContext(ctx, `
			INSERT INTO transactions_draft (
				id, client_id, bank_id, period, tx_date, description,
				debit, credit, balance,
				suggested_category, suggested_vendor, confidence, reason,
				final_category, final_vendor, status
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			txn.ID, txn.ClientID, txn.BankID, txn.Period, txn.Date, txn.Description,
			decimalArg(txn.Debit), decimalArg(txn.Credit), decimalArg(txn.Balance),
			txn.SuggestedCategory, txn.SuggestedVendor, txn.Confidence, txn.Reason,
			txn.FinalCategory, txn.FinalVendor, txn.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to save draft transaction: %w", err)
		}
	}
	return nil
}

// GetDraftTransactions returns all draft rows for a scope ordered by date
// then ID, so suggestion runs and commits always see the same order.
func (s *SQLiteStorage) GetDraftTransactions(ctx context.Context, scope model.Scope) ([]model.DraftTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	return s.getDraftTransactionsTx(ctx, s.db, scope)
}

func (s *SQLiteStorage) getDraftTransactionsTx(ctx context.Context, q queryable, scope model.Scope) ([]model.DraftTransaction, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, client_id, bank_id, period, tx_date, description,
			   debit, credit, balance,
			   suggested_category, suggested_vendor, confidence, reason,
			   final_category, final_vendor, status, created_at
		FROM transactions_draft
		WHERE client_id = ? AND bank_id = ? AND period = ?
		ORDER BY tx_date, id
	`, scope.ClientID, scope.BankID, scope.Period)
	if err != nil {
		return nil, fmt.Errorf("failed to query draft transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.DraftTransaction
	for rows.Next() {
		var txn model.DraftTransaction
		var debit, credit, balance sql.NullString
		if err := rows.Scan(
			&txn.ID, &txn.ClientID, &txn.BankID, &txn.Period, &txn.Date, &txn.Description,
			&debit, &credit, &balance,
			&txn.SuggestedCategory, &txn.SuggestedVendor, &txn.Confidence, &txn.Reason,
			&txn.FinalCategory, &txn.FinalVendor, &txn.Status, &txn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan draft transaction: %w", err)
		}

		if txn.Debit, err = scanDecimal(debit); err != nil {
			return nil, err
		}
		if txn.Credit, err = scanDecimal(credit); err != nil {
			return nil, err
		}
		if txn.Balance, err = scanDecimal(balance); err != nil {
			return nil, err
		}

		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}

// UpdateSuggestions writes the engine's suggested fields back onto draft
// rows. Final fields are never touched here; they belong to the user.
func (s *SQLiteStorage) UpdateSuggestions(ctx context.Context, transactions []model.DraftTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.updateSuggestionsTx(ctx, tx, transactions); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) updateSuggestionsTx(ctx context.Context, q queryable, transactions []model.DraftTransaction) error {
	for i := range transactions {
		txn := &transactions[i]
		_, err := q.ExecContext(ctx, `
			UPDATE transactions_draft
			SET suggested_category = ?, suggested_vendor = ?, confidence = ?, reason = ?, status = ?
			WHERE id = ?
		`, txn.SuggestedCategory, txn.SuggestedVendor, txn.Confidence, txn.Reason, txn.Status, txn.ID)
		if err != nil {
			return fmt.Errorf("failed to update suggestion for %s: %w", txn.ID, err)
		}
	}
	return nil
}

// SetFinalCategory records the user's decision for one draft row.
func (s *SQLiteStorage) SetFinalCategory(ctx context.Context, id, category, vendor string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.setFinalCategoryTx(ctx, s.db, id, category, vendor)
}

func (s *SQLiteStorage) setFinalCategoryTx(ctx context.Context, q queryable, id, category, vendor string) error {
	result, err := q.ExecContext(ctx, `
		UPDATE transactions_draft
		SET final_category = ?, final_vendor = ?
		WHERE id = ?
	`, category, vendor, id)
	if err != nil {
		return fmt.Errorf("failed to set final category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("draft transaction %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

// MarkDraftsFinalised flips every row in scope to USER_FINALISED. Called as
// part of the commit transaction.
func (s *SQLiteStorage) MarkDraftsFinalised(ctx context.Context, scope model.Scope) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateScope(scope); err != nil {
		return err
	}
	return s.markDraftsFinalisedTx(ctx, s.db, scope)
}

func (s *SQLiteStorage) markDraftsFinalisedTx(ctx context.Context, q queryable, scope model.Scope) error {
	_, err := q.ExecContext(ctx, `
		UPDATE transactions_draft
		SET status = ?
		WHERE client_id = ? AND bank_id = ? AND period = ?
	`, model.StatusUserFinalised, scope.ClientID, scope.BankID, scope.Period)
	if err != nil {
		return fmt.Errorf("failed to mark drafts finalised: %w", err)
	}
	return nil
}
