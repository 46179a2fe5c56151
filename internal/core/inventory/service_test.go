package inventory

import (
	"context"
	"testing"

	"pantry-chef/internal/infrastructure/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *storage.Store) {
	t.Helper()
	db, err := storage.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	filter := newTestFilter(&fakeCompleter{available: false})
	return NewService(db.DB(), filter), db
}

func seedInventory(t *testing.T, db *storage.Store, name string, amount float64) {
	t.Helper()
	_, err := db.DB().Exec(
		`INSERT INTO inventory (product_id, name, amount, best_before_date) VALUES ((SELECT COALESCE(MAX(product_id), 0) + 1 FROM inventory), ?, ?, '')`,
		name, amount)
	require.NoError(t, err)
}

func TestIngredientNamesLowercaseAndPositiveAmount(t *testing.T) {
	svc, db := newTestService(t)
	seedInventory(t, db, "Chicken Breast", 2)
	seedInventory(t, db, "Rice", 1)
	seedInventory(t, db, "Expired Milk", 0)

	names := svc.IngredientNames(context.Background(), false, 20)
	assert.ElementsMatch(t, []string{"chicken breast", "rice"}, names)
}

func TestIngredientNamesTruncates(t *testing.T) {
	svc, db := newTestService(t)
	seedInventory(t, db, "a", 1)
	seedInventory(t, db, "b", 1)
	seedInventory(t, db, "c", 1)

	names := svc.IngredientNames(context.Background(), false, 2)
	assert.Len(t, names, 2)
}

func TestIngredientNamesEmptyInventory(t *testing.T) {
	svc, _ := newTestService(t)
	assert.Empty(t, svc.IngredientNames(context.Background(), false, 20))
}

func TestGetInventoryExcludesZeroAmount(t *testing.T) {
	svc, db := newTestService(t)
	seedInventory(t, db, "Rice", 1)
	seedInventory(t, db, "Gone", 0)

	items, err := svc.GetInventory(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Rice", items[0].Name)
}
