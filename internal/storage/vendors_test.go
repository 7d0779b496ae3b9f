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

func TestVendorMemoryMiss(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	_, err := db.Storage.GetVendorMemory(ctx, db.ClientID, "never seen")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestVendorMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	require.NoError(t, db.Storage.SaveVendorMemory(ctx, &model.VendorMemory{
		ClientID:       db.ClientID,
		VendorKey:      "woolworths",
		Category:       "Shopping",
		Confidence:     60,
		TimesConfirmed: 1,
	}))

	entry, err := db.Storage.GetVendorMemory(ctx, db.ClientID, "woolworths")
	require.NoError(t, err)
	assert.Equal(t, "Shopping", entry.Category)
	assert.Equal(t, 60, entry.Confidence)
	assert.Equal(t, 1, entry.TimesConfirmed)
	assert.False(t, entry.LastSeen.IsZero())
}

func TestVendorMemoryUpsert(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	require.NoError(t, db.Storage.SaveVendorMemory(ctx, &model.VendorMemory{
		ClientID: db.ClientID, VendorKey: "woolworths", Category: "Shopping",
		Confidence: 60, TimesConfirmed: 1,
	}))
	require.NoError(t, db.Storage.SaveVendorMemory(ctx, &model.VendorMemory{
		ClientID: db.ClientID, VendorKey: "woolworths", Category: "General Expense",
		Confidence: 65, TimesConfirmed: 2,
	}))

	entry, err := db.Storage.GetVendorMemory(ctx, db.ClientID, "woolworths")
	require.NoError(t, err)
	assert.Equal(t, "General Expense", entry.Category)
	assert.Equal(t, 65, entry.Confidence)
	assert.Equal(t, 2, entry.TimesConfirmed)

	// Still a single row.
	entries, err := db.Storage.ListVendorMemory(ctx, db.ClientID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestVendorMemoryValidation(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	tests := []struct {
		entry *model.VendorMemory
		name  string
	}{
		{name: "nil entry", entry: nil},
		{name: "missing vendor key", entry: &model.VendorMemory{ClientID: db.ClientID, Category: "Shopping"}},
		{name: "missing category", entry: &model.VendorMemory{ClientID: db.ClientID, VendorKey: "x y z"}},
		{name: "confidence above 100", entry: &model.VendorMemory{
			ClientID: db.ClientID, VendorKey: "x y z", Category: "Shopping", Confidence: 101,
		}},
		{name: "negative confidence", entry: &model.VendorMemory{
			ClientID: db.ClientID, VendorKey: "x y z", Category: "Shopping", Confidence: -1,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, db.Storage.SaveVendorMemory(ctx, tt.entry))
		})
	}
}

func TestListVendorMemoryOrderedAndScoped(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	for _, key := range []string{"zebra stationers", "acme hosting", "woolworths"} {
		require.NoError(t, db.Storage.SaveVendorMemory(ctx, &model.VendorMemory{
			ClientID: db.ClientID, VendorKey: key, Category: "General Expense",
			Confidence: 60, TimesConfirmed: 1,
		}))
	}

	// Another client's learning must stay invisible.
	otherClient, err := db.Storage.CreateClient(ctx, "Other Client")
	require.NoError(t, err)
	require.NoError(t, db.Storage.SaveVendorMemory(ctx, &model.VendorMemory{
		ClientID: otherClient, VendorKey: "woolworths", Category: "Shopping",
		Confidence: 90, TimesConfirmed: 9,
	}))

	entries, err := db.Storage.ListVendorMemory(ctx, db.ClientID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "acme hosting", entries[0].VendorKey)
	assert.Equal(t, "woolworths", entries[1].VendorKey)
	assert.Equal(t, "zebra stationers", entries[2].VendorKey)
	assert.Equal(t, 60, entries[1].Confidence)
}
