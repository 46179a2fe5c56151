package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanIngredientName(t *testing.T) {
	assert.Equal(t, "Beef Stew", CleanIngredientName("Beef Stew - 20oz"))
	assert.Equal(t, "Ready-to-eat Soup", CleanIngredientName("Ready-to-eat Soup - 12oz"))
	assert.Equal(t, "", CleanIngredientName(""))
	assert.Equal(t, "", CleanIngredientName(" - 10oz"))
}

func TestCleanIngredientNameUnits(t *testing.T) {
	assert.Equal(t, "Rice", CleanIngredientName("Rice - 500g"))
	assert.Equal(t, "Milk", CleanIngredientName("Milk - 250ml"))
	assert.Equal(t, "Tortillas", CleanIngredientName("Tortillas - 8 pack"))
	assert.Equal(t, "Flour", CleanIngredientName("Flour - 2lb"))
	// 無單位的純數字也會被剝掉
	assert.Equal(t, "Eggs", CleanIngredientName("Eggs - 12"))
}

func TestCleanIngredientNameCaseInsensitive(t *testing.T) {
	assert.Equal(t, "Beef Stew", CleanIngredientName("Beef Stew - 20OZ"))
}

func TestCleanIngredientNameNoSuffix(t *testing.T) {
	// 內部連字號不是尺寸後綴，必須保留
	assert.Equal(t, "Ready-to-eat Soup", CleanIngredientName("Ready-to-eat Soup"))
	assert.Equal(t, "Olive Oil", CleanIngredientName("Olive Oil"))
}
