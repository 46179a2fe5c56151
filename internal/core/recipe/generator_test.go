package recipe

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const generatorFullResponse = `{
	"id": "ai-recipe",
	"title": "Garlic Chicken Rice",
	"readyInMinutes": 40,
	"servings": 3,
	"extendedIngredients": [
		{"name": "chicken", "amount": 300, "unit": "g", "original": "300g chicken"},
		{"name": "rice", "amount": 1, "unit": "cup", "original": "1 cup rice"}
	],
	"instructions": "Cook the rice. Pan fry the chicken. Combine.",
	"ai_generated": true
}`

func TestGenerateFullJSONResponse(t *testing.T) {
	completer := &fakeCompleter{available: true, response: generatorFullResponse}
	generator := NewGenerator(completer, newTestCache(), testTTL)

	r := generator.Generate(context.Background(), []string{"chicken", "rice", "garlic"}, nil, 0)
	require.NotNil(t, r)

	assert.Equal(t, "Garlic Chicken Rice", r.Title)
	assert.Equal(t, 40, r.ReadyInMinutes)
	assert.Equal(t, 3, r.Servings)
	assert.True(t, r.AIGenerated)
	assert.True(t, strings.HasPrefix(r.ID, "ai-recipe-"))
	require.NotNil(t, r.TasteProfile)
	assert.Equal(t, 50.0, r.TasteProfile.Sweetness)

	// AI 食譜按定義只用現有食材
	assert.Equal(t, 2, r.UsedIngredientCount)
	assert.Equal(t, 0, r.MissedIngredientCount)
	assert.Equal(t, []string{"chicken", "rice"}, r.UsedIngredients)
}

func TestGenerateWrappedInProse(t *testing.T) {
	completer := &fakeCompleter{
		available: true,
		response:  "Here is your recipe:\n```json\n" + generatorFullResponse + "\n```\nEnjoy!",
	}
	generator := NewGenerator(completer, newTestCache(), testTTL)

	r := generator.Generate(context.Background(), []string{"chicken", "rice"}, nil, 0)
	require.NotNil(t, r)
	assert.Equal(t, "Garlic Chicken Rice", r.Title)
}

func TestGenerateRegexSalvage(t *testing.T) {
	// 連修復都救不回的結構，只剩 title 和 instructions 能撈
	completer := &fakeCompleter{
		available: true,
		response:  `"title": "Rescue Stew" garbage garbage "instructions": "Boil everything together." trailing`,
	}
	generator := NewGenerator(completer, newTestCache(), testTTL)

	inventory := []string{"a", "b", "c", "d", "e", "f", "g"}
	r := generator.Generate(context.Background(), inventory, nil, 0)
	require.NotNil(t, r)

	assert.Equal(t, "Rescue Stew", r.Title)
	assert.Equal(t, "Boil everything together.", r.Instructions)
	assert.Len(t, r.Ingredients, 5, "搶救模式只取前五項庫存食材")
	assert.True(t, r.AIGenerated)
	assert.Equal(t, 5, r.UsedIngredientCount)
	assert.Equal(t, 0, r.MissedIngredientCount)
	assert.Equal(t, 2, r.Servings)
}

func TestGenerateUnavailable(t *testing.T) {
	generator := NewGenerator(&fakeCompleter{available: false}, newTestCache(), testTTL)
	assert.Nil(t, generator.Generate(context.Background(), []string{"rice"}, nil, 0))
}

func TestGenerateEmptyIngredients(t *testing.T) {
	generator := NewGenerator(&fakeCompleter{available: true}, newTestCache(), testTTL)
	assert.Nil(t, generator.Generate(context.Background(), nil, nil, 0))
}

func TestGenerateUnparseable(t *testing.T) {
	completer := &fakeCompleter{available: true, response: "I cannot create a recipe right now."}
	generator := NewGenerator(completer, newTestCache(), testTTL)
	assert.Nil(t, generator.Generate(context.Background(), []string{"rice"}, nil, 0))
}

func TestGenerateCachesResult(t *testing.T) {
	completer := &fakeCompleter{available: true, response: generatorFullResponse}
	generator := NewGenerator(completer, newTestCache(), testTTL)

	first := generator.Generate(context.Background(), []string{"chicken", "rice"}, nil, 0)
	second := generator.Generate(context.Background(), []string{"rice", "chicken"}, nil, 0)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, 1, completer.calls, "同一組食材應命中快取，順序無關")
	assert.Equal(t, first.ID, second.ID)
}

func TestGenerateConstraintsInPrompt(t *testing.T) {
	completer := &fakeCompleter{available: true, response: generatorFullResponse}
	generator := NewGenerator(completer, newTestCache(), testTTL)

	prefs := &UserPreferences{
		DietaryRestrictions: DietaryRestrictions{
			Diet:         "vegetarian",
			Intolerances: []string{"peanut", "shellfish"},
		},
	}
	generator.Generate(context.Background(), []string{"rice", "tofu"}, prefs, 25)

	require.Len(t, completer.prompts, 1)
	prompt := completer.prompts[0]
	assert.Contains(t, prompt, "vegetarian")
	assert.Contains(t, prompt, "peanut, shellfish")
	assert.Contains(t, prompt, "25 minutes")
}
