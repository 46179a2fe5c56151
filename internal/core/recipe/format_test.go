package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitScoreFor(t *testing.T) {
	r := &CandidateRecipe{UsedIngredientCount: 3, MissedIngredientCount: 1}
	fit := FitScoreFor(r)

	assert.Equal(t, 75.0, fit.Percentage)
	assert.Equal(t, 3, fit.Have)
	assert.Equal(t, 1, fit.NeedToBuy)
	assert.Equal(t, 4, fit.Total)
}

func TestFitScoreForRoundsToOneDecimal(t *testing.T) {
	r := &CandidateRecipe{UsedIngredientCount: 2, MissedIngredientCount: 1}
	assert.Equal(t, 66.7, FitScoreFor(r).Percentage)
}

func TestFitScoreForNoIngredients(t *testing.T) {
	fit := FitScoreFor(&CandidateRecipe{})
	assert.Equal(t, 0.0, fit.Percentage)
	assert.Equal(t, 0, fit.Total)
}

func TestApplyClassificationsRebuildsLists(t *testing.T) {
	r := &CandidateRecipe{
		UsedIngredients:       []string{"stale"},
		MissedIngredients:     []string{"also stale"},
		UsedIngredientCount:   1,
		MissedIngredientCount: 1,
	}
	ApplyClassifications(r, []IngredientClassification{
		{Ingredient: "Chicken", Category: CategoryEssential, InInventory: true},
		{Ingredient: "Rice", Category: CategoryImportant, InInventory: true},
		{Ingredient: "Saffron", Category: CategoryOptional, InInventory: false},
	})

	assert.Equal(t, []string{"chicken", "rice"}, r.UsedIngredients)
	assert.Equal(t, []string{"saffron"}, r.MissedIngredients)
	assert.Equal(t, 2, r.UsedIngredientCount)
	assert.Equal(t, 1, r.MissedIngredientCount)
	assert.Len(t, r.Classifications, 3)
}

func TestApplyClassificationsEmptyKeepsOriginal(t *testing.T) {
	r := &CandidateRecipe{
		UsedIngredients:     []string{"chicken"},
		UsedIngredientCount: 1,
	}
	ApplyClassifications(r, nil)

	assert.Equal(t, []string{"chicken"}, r.UsedIngredients)
	assert.Equal(t, 1, r.UsedIngredientCount)
}

func TestFormatRecipe(t *testing.T) {
	r := &CandidateRecipe{
		ID:             "42",
		Title:          "Chicken Rice",
		ReadyInMinutes: 35,
		Servings:       2,
		Ingredients: []Ingredient{
			{Name: "Chicken", Amount: 200, Unit: "g"},
			{Name: "Rice", Amount: 1.5, Unit: "cup"},
			{Name: "Saffron"},
		},
		UsedIngredients:       []string{"chicken", "rice"},
		MissedIngredients:     []string{"saffron"},
		UsedIngredientCount:   2,
		MissedIngredientCount: 1,
	}

	out := FormatRecipe(r, 0.72)

	assert.Equal(t, "42", out.ID)
	assert.InDelta(t, 66.7, out.FitScore.Percentage, 0.01)
	assert.InDelta(t, 0.72, out.Score, 0.0001)

	require.Len(t, out.Ingredients.Have, 2)
	assert.Equal(t, "200 g", out.Ingredients.Have[0].Amount)
	assert.Equal(t, "1.5 cup", out.Ingredients.Have[1].Amount)

	require.Len(t, out.Ingredients.NeedToBuy, 1)
	// 沒有分量資訊的食材用問號佔位
	assert.Equal(t, "?", out.Ingredients.NeedToBuy[0].Amount)
}
