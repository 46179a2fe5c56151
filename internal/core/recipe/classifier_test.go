package recipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecipe(id string, ingredients ...string) *CandidateRecipe {
	r := &CandidateRecipe{
		ID:           id,
		Title:        "Test Dish",
		Instructions: "Cook everything.",
	}
	for _, name := range ingredients {
		r.Ingredients = append(r.Ingredients, Ingredient{Name: name})
	}
	return r
}

func TestHeuristicClassifyCompleteness(t *testing.T) {
	names := []string{"chicken", "rice", "garlic", "onion", "soy sauce", "sugar"}
	result := heuristicClassify(names, []string{"chicken"})
	assert.Len(t, result, len(names))
}

func TestHeuristicClassifyBanding(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f"}
	result := heuristicClassify(names, nil)
	require.Len(t, result, 6)

	assert.Equal(t, CategoryEssential, result[0].Category)
	assert.Equal(t, 0.8, result[0].Confidence)
	assert.Equal(t, CategoryEssential, result[1].Category)
	assert.Equal(t, CategoryImportant, result[2].Category)
	assert.Equal(t, 0.7, result[2].Confidence)
	assert.Equal(t, CategoryImportant, result[3].Category)
	assert.Equal(t, CategoryOptional, result[4].Category)
	assert.Equal(t, 0.6, result[4].Confidence)
	assert.Equal(t, CategoryOptional, result[5].Category)
}

func TestHeuristicClassifySingleIngredient(t *testing.T) {
	result := heuristicClassify([]string{"rice"}, nil)
	require.Len(t, result, 1)
	assert.Equal(t, CategoryEssential, result[0].Category)
}

func TestInInventoryExactMatch(t *testing.T) {
	assert.True(t, InInventory("rice", []string{"rice", "beans"}))
	assert.False(t, InInventory("rice", []string{"beans"}))
}

func TestInInventorySubstringBothDirections(t *testing.T) {
	assert.True(t, InInventory("chicken", []string{"chicken breast"}))
	assert.True(t, InInventory("chicken breast fillet", []string{"chicken breast"}))
}

func TestInInventorySimplifiedMatch(t *testing.T) {
	// 剝掉品牌包裝詞之後才比對得上
	assert.True(t, InInventory("tomatoes", []string{"Organic Canned Tomatoes - 16oz"}))
}

func TestInInventoryCoreKeywordTable(t *testing.T) {
	// 罐頭鮪魚的各種品名靠關鍵字表補抓
	assert.True(t, InInventory("tuna", []string{"chunk light in water"}))
	assert.True(t, InInventory("pasta", []string{"spaghetti"}))
	assert.False(t, InInventory("tuna", []string{"beans", "corn"}))
}

func TestClassifyAIPath(t *testing.T) {
	completer := &fakeCompleter{
		available: true,
		response: `[
			{"ingredient": "chicken", "category": "Essential", "in_inventory": true, "confidence": 0.95},
			{"ingredient": "salt", "category": "Optional", "in_inventory": false, "confidence": 0.6}
		]`,
	}
	classifier := NewClassifier(completer, newTestCache(), testTTL)

	r := testRecipe("1", "chicken", "salt")
	result := classifier.Classify(context.Background(), r, []string{"chicken"}, r.IngredientNames())

	require.Len(t, result, 2)
	assert.Equal(t, "chicken", result[0].Ingredient)
	assert.Equal(t, CategoryEssential, result[0].Category)
	assert.True(t, result[0].InInventory)
	assert.InDelta(t, 0.95, result[0].Confidence, 0.0001)
}

func TestClassifyCoercesMalformedFields(t *testing.T) {
	completer := &fakeCompleter{
		available: true,
		response: `[
			{"ingredient": "chicken", "category": "Essential", "in_inventory": "true", "confidence": "0.9"},
			{"ingredient": "rice", "category": null, "in_inventory": null},
			{"category": "Optional"}
		]`,
	}
	classifier := NewClassifier(completer, newTestCache(), testTTL)

	r := testRecipe("2", "chicken", "rice")
	result := classifier.Classify(context.Background(), r, nil, r.IngredientNames())

	require.Len(t, result, 2, "沒有 ingredient 名稱的項目應被丟棄")
	assert.True(t, result[0].InInventory)
	assert.InDelta(t, 0.9, result[0].Confidence, 0.0001)
	assert.Equal(t, CategoryOptional, result[1].Category)
	assert.False(t, result[1].InInventory)
	assert.InDelta(t, 0.5, result[1].Confidence, 0.0001)
}

func TestClassifyMalformedSignatureShortCircuits(t *testing.T) {
	completer := &fakeCompleter{
		available: true,
		response:  `"ingredient": "chicken", "category": "Essential"`,
	}
	classifier := NewClassifier(completer, newTestCache(), testTTL)

	r := testRecipe("3", "chicken", "rice", "salt")
	result := classifier.Classify(context.Background(), r, []string{"chicken"}, r.IngredientNames())

	// 已知壞格式直接走啟發式，所以每項食材都有結果
	require.Len(t, result, 3)
	assert.True(t, result[0].InInventory)
}

func TestClassifyAIUnavailableUsesHeuristic(t *testing.T) {
	classifier := NewClassifier(&fakeCompleter{available: false}, newTestCache(), testTTL)

	r := testRecipe("4", "chicken", "rice")
	result := classifier.Classify(context.Background(), r, []string{"rice"}, r.IngredientNames())

	require.Len(t, result, 2)
	assert.False(t, result[0].InInventory)
	assert.True(t, result[1].InInventory)
}

func TestClassifyCacheInvalidatesOnInventoryChange(t *testing.T) {
	completer := &fakeCompleter{
		available: true,
		response:  `[{"ingredient": "chicken", "category": "Essential", "in_inventory": true, "confidence": 0.9}]`,
	}
	classifier := NewClassifier(completer, newTestCache(), testTTL)

	r := testRecipe("5", "chicken")
	classifier.Classify(context.Background(), r, []string{"chicken"}, r.IngredientNames())
	classifier.Classify(context.Background(), r, []string{"chicken"}, r.IngredientNames())
	assert.Equal(t, 1, completer.calls, "相同庫存應命中快取")

	classifier.Classify(context.Background(), r, []string{"chicken", "rice"}, r.IngredientNames())
	assert.Equal(t, 2, completer.calls, "庫存變動後快取必須失效")
}

func TestClassifyEmptyIngredients(t *testing.T) {
	classifier := NewClassifier(&fakeCompleter{available: false}, newTestCache(), testTTL)
	assert.Nil(t, classifier.Classify(context.Background(), testRecipe("6"), nil, nil))
}
