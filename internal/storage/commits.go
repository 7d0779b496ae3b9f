package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bankcat/bankcat/internal/common"
	"github.com/bankcat/bankcat/internal/model"
)

// GetActiveCommit returns the single active commit for a scope, or
// common.ErrNotFound when the scope has never been committed. Finding more
// than one active commit means the store invariant is broken and surfaces as
// a DataIntegrityError for manual repair.
func (s *SQLiteStorage) GetActiveCommit(ctx context.Context, scope model.Scope) (*model.Commit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	return s.getActiveCommitTx(ctx, s.db, scope)
}

func (s *SQLiteStorage) getActiveCommitTx(ctx context.Context, q queryable, scope model.Scope) (*model.Commit, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, client_id, bank_id, period, committed_by, rows_committed, accuracy, status, created_at
		FROM commits
		WHERE client_id = ? AND bank_id = ? AND period = ? AND status = ?
		ORDER BY id
	`, scope.ClientID, scope.BankID, scope.Period, model.CommitActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active commit: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var commits []model.Commit
	for rows.Next() {
		commit, scanErr := scanCommit(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		commits = append(commits, commit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read active commits: %w", err)
	}

	switch len(commits) {
	case 0:
		return nil, common.ErrNotFound
	case 1:
		return &commits[0], nil
	default:
		return nil, common.NewDataIntegrityError(
			fmt.Sprintf("found %d active commits for client=%d bank=%d period=%s",
				len(commits), scope.ClientID, scope.BankID, scope.Period), nil)
	}
}

// SupersedeActiveCommit transitions the current active commit for a scope to
// superseded. A scope with no active commit is a no-op.
func (s *SQLiteStorage) SupersedeActiveCommit(ctx context.Context, scope model.Scope) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateScope(scope); err != nil {
		return err
	}
	return s.supersedeActiveCommitTx(ctx, s.db, scope)
}

func (s *SQLiteStorage) supersedeActiveCommitTx(ctx context.Context, q queryable, scope model.Scope) error {
	_, err := q.ExecContext(ctx, `
		UPDATE commits
		SET status = ?
		WHERE client_id = ? AND bank_id = ? AND period = ? AND status = ?
	`, model.CommitSuperseded, scope.ClientID, scope.BankID, scope.Period, model.CommitActive)
	if err != nil {
		return fmt.Errorf("failed to supersede active commit: %w", err)
	}
	return nil
}

// InsertCommit inserts a new commit header and returns its ID. The partial
// unique index on (client, bank, period, status='active') rejects a second
// active commit even if two writers race past the supersede step.
func (s *SQLiteStorage) InsertCommit(ctx context.Context, commit *model.Commit) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateCommit(commit); err != nil {
		return 0, err
	}
	return s.insertCommitTx(ctx, s.db, commit)
}

func (s *SQLiteStorage) insertCommitTx(ctx context.Context, q queryable, commit *model.Commit) (int64, error) {
	if commit.CreatedAt.IsZero() {
		commit.CreatedAt = time.Now()
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO commits (client_id, bank_id, period, committed_by, rows_committed, accuracy, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, commit.ClientID, commit.BankID, commit.Period, commit.CommittedBy,
		commit.RowsCommitted, commit.Accuracy, commit.Status, commit.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert commit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get commit ID: %w", err)
	}

	commit.ID = id
	return id, nil
}

// ListCommits returns the full commit history for a scope, newest first.
func (s *SQLiteStorage) ListCommits(ctx context.Context, scope model.Scope) ([]model.Commit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	return s.listCommitsTx(ctx, s.db, scope)
}

func (s *SQLiteStorage) listCommitsTx(ctx context.Context, q queryable, scope model.Scope) ([]model.Commit, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, client_id, bank_id, period, committed_by, rows_committed, accuracy, status, created_at
		FROM commits
		WHERE client_id = ? AND bank_id = ? AND period = ?
		ORDER BY id DESC
	`, scope.ClientID, scope.BankID, scope.Period)
	if err != nil {
		return nil, fmt.Errorf("failed to query commits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var commits []model.Commit
	for rows.Next() {
		commit, scanErr := scanCommit(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		commits = append(commits, commit)
	}

	return commits, rows.Err()
}

func scanCommit(rows *sql.Rows) (model.Commit, error) {
	var commit model.Commit
	var accuracy sql.NullFloat64
	if err := rows.Scan(
		&commit.ID,
		&commit.ClientID,
		&commit.BankID,
		&commit.Period,
		&commit.CommittedBy,
		&commit.RowsCommitted,
		&accuracy,
		&commit.Status,
		&commit.CreatedAt,
	); err != nil {
		return model.Commit{}, fmt.Errorf("failed to scan commit: %w", err)
	}
	if accuracy.Valid {
		commit.Accuracy = accuracy.Float64
	}
	return commit, nil
}

// InsertCommittedTransactions copies frozen rows into the immutable ledger
// table. Committed rows are never updated or deleted.
func (s *SQLiteStorage) InsertCommittedTransactions(ctx context.Context, transactions []model.CommittedTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.insertCommittedTransactionsTx(ctx, s.db, transactions)
}

func (s *SQLiteStorage) insertCommittedTransactionsTx(ctx context.Context, q queryable, transactions []model.CommittedTransaction) error {
	for i := range transactions {
		txn := &transactions[i]
		_, err := q.ExecContext(ctx, `
			INSERT INTO transactions_committed (
				commit_id, client_id, bank_id, period, tx_date, description,
				debit, credit, balance,
				category, vendor,
				suggested_category, suggested_vendor, confidence, reason
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			txn.CommitID, txn.ClientID, txn.BankID, txn.Period, txn.Date, txn.Description,
			decimalArg(txn.Debit), decimalArg(txn.Credit), decimalArg(txn.Balance),
			txn.Category, txn.Vendor,
			txn.SuggestedCategory, txn.SuggestedVendor, txn.Confidence, txn.Reason,
		)
		if err != nil {
			return fmt.Errorf("failed to insert committed transaction: %w", err)
		}
	}
	return nil
}

// GetCommittedTransactions returns the immutable rows for a scope across all
// commits, ordered by date then ID.
func (s *SQLiteStorage) GetCommittedTransactions(ctx context.Context, scope model.Scope) ([]model.CommittedTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	return s.getCommittedTransactionsTx(ctx, s.db, scope)
}

func (s *SQLiteStorage) getCommittedTransactionsTx(ctx context.Context, q queryable, scope model.Scope) ([]model.CommittedTransaction, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, commit_id, client_id, bank_id, period, tx_date, description,
			   debit, credit, balance,
			   category, vendor,
			   suggested_category, suggested_vendor, confidence, reason, created_at
		FROM transactions_committed
		WHERE client_id = ? AND bank_id = ? AND period = ?
		ORDER BY tx_date, id
	`, scope.ClientID, scope.BankID, scope.Period)
	if err != nil {
		return nil, fmt.Errorf("failed to query committed transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.CommittedTransaction
	for rows.Next() {
		var txn model.CommittedTransaction
		var debit, credit, balance sql.NullString
		if err := rows.Scan(
			&txn.ID, &txn.CommitID, &txn.ClientID, &txn.BankID, &txn.Period, &txn.Date, &txn.Description,
			&debit, &credit, &balance,
			&txn.Category, &txn.Vendor,
			&txn.SuggestedCategory, &txn.SuggestedVendor, &txn.Confidence, &txn.Reason, &txn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan committed transaction: %w", err)
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
