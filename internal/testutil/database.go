// Package testutil provides test helpers for setting up isolated in-memory
// databases seeded with a client, bank, and category master.
package testutil

import (
	"context"
	"testing"

	"github.com/bankcat/bankcat/internal/model"
	"github.com/bankcat/bankcat/internal/service"
	"github.com/bankcat/bankcat/internal/storage"
)

// TestDB is a migrated in-memory database with one seeded client and bank.
type TestDB struct {
	Storage  service.Storage
	t        *testing.T
	ClientID int64
	BankID   int64
}

// Scope returns the seeded client/bank scope for the given period.
func (db *TestDB) Scope(period string) model.Scope {
	return model.Scope{ClientID: db.ClientID, BankID: db.BankID, Period: period}
}

// SetupTestDB creates an in-memory database, runs migrations, and seeds one
// client, one Current-account bank, and the given categories. Cleanup is
// registered automatically.
func SetupTestDB(t *testing.T, categories ...model.Category) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	clientID, err := store.CreateClient(ctx, "Test Client")
	if err != nil {
		t.Fatalf("failed to seed client: %v", err)
	}

	bankID, err := store.CreateBank(ctx, clientID, "Test Bank", "Current")
	if err != nil {
		t.Fatalf("failed to seed bank: %v", err)
	}

	for _, cat := range categories {
		if _, err := store.CreateCategory(ctx, clientID, cat.Name, cat.Type, cat.Nature); err != nil {
			t.Fatalf("failed to seed category %q: %v", cat.Name, err)
		}
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage:  store,
		ClientID: clientID,
		BankID:   bankID,
		t:        t,
	}
}

// BasicCategories returns a small category master covering both ledger sides.
func BasicCategories() []model.Category {
	return []model.Category{
		{Name: "Bank Charges", Type: model.CategoryTypeExpense, Nature: model.NatureDebit},
		{Name: "Sales", Type: model.CategoryTypeIncome, Nature: model.NatureCredit},
		{Name: "Shopping", Type: model.CategoryTypeExpense, Nature: model.NatureDebit},
		{Name: "Office Supplies", Type: model.CategoryTypeExpense, Nature: model.NatureDebit},
		{Name: "General Expense", Type: model.CategoryTypeExpense, Nature: model.NatureAny},
	}
}
