package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bankcat/bankcat/internal/model"
	"github.com/bankcat/bankcat/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// queryable abstracts over *sql.DB and *sql.Tx so every entity accessor can
// run standalone or inside a transaction.
type queryable interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Storage methods delegate to the main storage with the transaction handle.

func (t *sqliteTransaction) SaveDraftTransactions(ctx context.Context, transactions []model.DraftTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDraftTransactions(transactions); err != nil {
		return err
	}
	return t.storage.saveDraftTransactionsTx(ctx, t.tx, transactions)
}

func (t *sqliteTransaction) GetDraftTransactions(ctx context.Context, scope model.Scope) ([]model.DraftTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	return t.storage.getDraftTransactionsTx(ctx, t.tx, scope)
}

func (t *sqliteTransaction) UpdateSuggestions(ctx context.Context, transactions []model.DraftTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.updateSuggestionsTx(ctx, t.tx, transactions)
}

func (t *sqliteTransaction) SetFinalCategory(ctx context.Context, id, category, vendor string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return t.storage.setFinalCategoryTx(ctx, t.tx, id, category, vendor)
}

func (t *sqliteTransaction) MarkDraftsFinalised(ctx context.Context, scope model.Scope) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateScope(scope); err != nil {
		return err
	}
	return t.storage.markDraftsFinalisedTx(ctx, t.tx, scope)
}

func (t *sqliteTransaction) GetVendorMemory(ctx context.Context, clientID int64, vendorKey string) (*model.VendorMemory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(vendorKey, "vendorKey"); err != nil {
		return nil, err
	}
	return t.storage.getVendorMemoryTx(ctx, t.tx, clientID, vendorKey)
}

func (t *sqliteTransaction) SaveVendorMemory(ctx context.Context, entry *model.VendorMemory) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateVendorMemory(entry); err != nil {
		return err
	}
	return t.storage.saveVendorMemoryTx(ctx, t.tx, entry)
}

func (t *sqliteTransaction) ListVendorMemory(ctx context.Context, clientID int64) ([]model.VendorMemory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listVendorMemoryTx(ctx, t.tx, clientID)
}

func (t *sqliteTransaction) ListKeywordEntries(ctx context.Context, clientID int64) ([]model.KeywordEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listKeywordEntriesTx(ctx, t.tx, clientID)
}

func (t *sqliteTransaction) BumpKeyword(ctx context.Context, clientID int64, token, category string, delta float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(token, "token"); err != nil {
		return err
	}
	if err := validateString(category, "category"); err != nil {
		return err
	}
	return t.storage.bumpKeywordTx(ctx, t.tx, clientID, token, category, delta)
}

func (t *sqliteTransaction) GetActiveCommit(ctx context.Context, scope model.Scope) (*model.Commit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	return t.storage.getActiveCommitTx(ctx, t.tx, scope)
}

func (t *sqliteTransaction) SupersedeActiveCommit(ctx context.Context, scope model.Scope) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateScope(scope); err != nil {
		return err
	}
	return t.storage.supersedeActiveCommitTx(ctx, t.tx, scope)
}

func (t *sqliteTransaction) InsertCommit(ctx context.Context, commit *model.Commit) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateCommit(commit); err != nil {
		return 0, err
	}
	return t.storage.insertCommitTx(ctx, t.tx, commit)
}

func (t *sqliteTransaction) ListCommits(ctx context.Context, scope model.Scope) ([]model.Commit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	return t.storage.listCommitsTx(ctx, t.tx, scope)
}

func (t *sqliteTransaction) InsertCommittedTransactions(ctx context.Context, transactions []model.CommittedTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.insertCommittedTransactionsTx(ctx, t.tx, transactions)
}

func (t *sqliteTransaction) GetCommittedTransactions(ctx context.Context, scope model.Scope) ([]model.CommittedTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	return t.storage.getCommittedTransactionsTx(ctx, t.tx, scope)
}

func (t *sqliteTransaction) GetCategories(ctx context.Context, clientID int64) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCategoriesTx(ctx, t.tx, clientID)
}

func (t *sqliteTransaction) CreateCategory(ctx context.Context, clientID int64, name string, categoryType model.CategoryType, nature model.CategoryNature) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return t.storage.createCategoryTx(ctx, t.tx, clientID, name, categoryType, nature)
}

func (t *sqliteTransaction) CreateClient(ctx context.Context, name string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(name, "name"); err != nil {
		return 0, err
	}
	return t.storage.createClientTx(ctx, t.tx, name)
}

func (t *sqliteTransaction) CreateBank(ctx context.Context, clientID int64, name, accountType string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(name, "name"); err != nil {
		return 0, err
	}
	return t.storage.createBankTx(ctx, t.tx, clientID, name, accountType)
}

func (t *sqliteTransaction) GetBankAccountType(ctx context.Context, bankID int64) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	return t.storage.getBankAccountTypeTx(ctx, t.tx, bankID)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	// Transactions should be committed or rolled back, not closed
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
