package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankcat/bankcat/internal/common"
	"github.com/bankcat/bankcat/internal/model"
	"github.com/bankcat/bankcat/internal/testutil"
)

func TestCreateCategoryDefaults(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	cat, err := db.Storage.CreateCategory(ctx, db.ClientID, "Sundries", "", "")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryTypeExpense, cat.Type)
	assert.Equal(t, model.NatureAny, cat.Nature)
	assert.True(t, cat.IsActive)
	assert.Positive(t, cat.ID)
}

func TestGetCategoriesOrderedByName(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	_, err := db.Storage.CreateCategory(ctx, db.ClientID, "Sales", model.CategoryTypeIncome, model.NatureCredit)
	require.NoError(t, err)
	_, err = db.Storage.CreateCategory(ctx, db.ClientID, "Bank Charges", model.CategoryTypeExpense, model.NatureDebit)
	require.NoError(t, err)

	categories, err := db.Storage.GetCategories(ctx, db.ClientID)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Bank Charges", categories[0].Name)
	assert.Equal(t, "Sales", categories[1].Name)
	assert.Equal(t, model.NatureDebit, categories[0].Nature)
}

func TestGetCategoriesScopedByClient(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	_, err := db.Storage.CreateCategory(ctx, db.ClientID, "Sales", model.CategoryTypeIncome, model.NatureCredit)
	require.NoError(t, err)

	otherClient, err := db.Storage.CreateClient(ctx, "Other Client")
	require.NoError(t, err)

	categories, err := db.Storage.GetCategories(ctx, otherClient)
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestGetBankAccountType(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	accountType, err := db.Storage.GetBankAccountType(ctx, db.BankID)
	require.NoError(t, err)
	assert.Equal(t, "Current", accountType)

	_, err = db.Storage.GetBankAccountType(ctx, 99999)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
