// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/bankcat/bankcat/internal/model"
)

// Storage defines the contract for our persistence layer. All learning
// entities are scoped by client; no method ever reads or writes across
// client boundaries.
type Storage interface {
	// Draft transaction operations
	SaveDraftTransactions(ctx context.Context, transactions []model.DraftTransaction) error
	GetDraftTransactions(ctx context.Context, scope model.Scope) ([]model.DraftTransaction, error)
	UpdateSuggestions(ctx context.Context, transactions []model.DraftTransaction) error
	SetFinalCategory(ctx context.Context, id, category, vendor string) error
	MarkDraftsFinalised(ctx context.Context, scope model.Scope) error

	// Vendor memory operations
	GetVendorMemory(ctx context.Context, clientID int64, vendorKey string) (*model.VendorMemory, error)
	SaveVendorMemory(ctx context.Context, entry *model.VendorMemory) error
	ListVendorMemory(ctx context.Context, clientID int64) ([]model.VendorMemory, error)

	// Keyword model operations
	ListKeywordEntries(ctx context.Context, clientID int64) ([]model.KeywordEntry, error)
	BumpKeyword(ctx context.Context, clientID int64, token, category string, delta float64) error

	// Commit operations
	GetActiveCommit(ctx context.Context, scope model.Scope) (*model.Commit, error)
	SupersedeActiveCommit(ctx context.Context, scope model.Scope) error
	InsertCommit(ctx context.Context, commit *model.Commit) (int64, error)
	ListCommits(ctx context.Context, scope model.Scope) ([]model.Commit, error)
	InsertCommittedTransactions(ctx context.Context, transactions []model.CommittedTransaction) error
	GetCommittedTransactions(ctx context.Context, scope model.Scope) ([]model.CommittedTransaction, error)

	// Category operations
	GetCategories(ctx context.Context, clientID int64) ([]model.Category, error)
	CreateCategory(ctx context.Context, clientID int64, name string, categoryType model.CategoryType, nature model.CategoryNature) (*model.Category, error)

	// Client and bank bootstrap (ingestion glue)
	CreateClient(ctx context.Context, name string) (int64, error)
	CreateBank(ctx context.Context, clientID int64, name, accountType string) (int64, error)
	GetBankAccountType(ctx context.Context, bankID int64) (string, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction. All Storage methods called
// through it execute atomically; either Commit persists every write or
// Rollback discards them all.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}
