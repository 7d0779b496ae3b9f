package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bankcat/bankcat/internal/common"
)

// CreateClient registers a client and returns its ID.
func (s *SQLiteStorage) CreateClient(ctx context.Context, name string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(name, "name"); err != nil {
		return 0, err
	}
	return s.createClientTx(ctx, s.db, name)
}

func (s *SQLiteStorage) createClientTx(ctx context.Context, q queryable, name string) (int64, error) {
	result, err := q.ExecContext(ctx, `INSERT INTO clients (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to create client: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get client ID: %w", err)
	}
	return id, nil
}

// CreateBank registers a bank account for a client and returns its ID.
func (s *SQLiteStorage) CreateBank(ctx context.Context, clientID int64, name, accountType string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(name, "name"); err != nil {
		return 0, err
	}
	return s.createBankTx(ctx, s.db, clientID, name, accountType)
}

func (s *SQLiteStorage) createBankTx(ctx context.Context, q queryable, clientID int64, name, accountType string) (int64, error) {
	if accountType == "" {
		accountType = "Current"
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO banks (client_id, name, account_type) VALUES (?, ?, ?)
	`, clientID, name, accountType)
	if err != nil {
		return 0, fmt.Errorf("failed to create bank: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get bank ID: %w", err)
	}
	return id, nil
}

// GetBankAccountType returns the declared account type for a bank; the rule
// heuristics use it as a hint.
func (s *SQLiteStorage) GetBankAccountType(ctx context.Context, bankID int64) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	return s.getBankAccountTypeTx(ctx, s.db, bankID)
}

func (s *SQLiteStorage) getBankAccountTypeTx(ctx context.Context, q queryable, bankID int64) (string, error) {
	var accountType string
	err := q.QueryRowContext(ctx, `SELECT account_type FROM banks WHERE id = ?`, bankID).Scan(&accountType)
	if errors.Is(err, sql.ErrNoRows) {
		return "", common.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get bank account type: %w", err)
	}
	return accountType, nil
}
