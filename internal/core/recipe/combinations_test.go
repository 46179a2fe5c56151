package recipe

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupsSmallInventorySingleGroup(t *testing.T) {
	combiner := NewCombiner(&fakeCompleter{available: false}, newTestCache(), testTTL)

	ingredients := []string{"chicken", "rice", "garlic", "onion"}
	groups := combiner.Groups(context.Background(), ingredients)

	require.Len(t, groups, 1)
	assert.Equal(t, ingredients, groups[0])
}

func TestGroupsHeuristicCoversEveryIngredient(t *testing.T) {
	combiner := NewCombiner(&fakeCompleter{available: false}, newTestCache(), testTTL)

	ingredients := []string{
		"chicken breast", "rice", "tomato", "onion",
		"pasta", "cream", "mystery sauce jar", "dragonfruit",
	}
	groups := combiner.Groups(context.Background(), ingredients)
	require.NotEmpty(t, groups)

	covered := make(map[string]bool)
	for _, group := range groups {
		for _, name := range group {
			covered[name] = true
		}
	}
	for _, ing := range ingredients {
		assert.True(t, covered[ing], "食材 %q 必須至少出現在一個組合", ing)
	}
}

func TestGroupsHeuristicCap(t *testing.T) {
	combiner := NewCombiner(&fakeCompleter{available: false}, newTestCache(), testTTL)

	// 大量蛋白質會觸發很多蛋白質組合，驗證上限 min(8, max(4, n/2))
	ingredients := []string{
		"chicken", "beef", "pork", "salmon", "tuna", "shrimp", "eggs", "tofu",
		"rice", "pasta", "tomato", "onion", "carrot", "broccoli", "cheese", "butter",
		"bread", "lettuce", "spinach", "pepper",
	}
	groups := combiner.Groups(context.Background(), ingredients)
	assert.LessOrEqual(t, len(groups), 8)
	assert.NotEmpty(t, groups)
}

func TestGroupsHeuristicNoDuplicates(t *testing.T) {
	combiner := NewCombiner(&fakeCompleter{available: false}, newTestCache(), testTTL)

	ingredients := []string{"chicken", "rice", "tomato", "onion", "garlic", "soy sauce"}
	groups := combiner.Groups(context.Background(), ingredients)

	seen := make(map[string]bool)
	for _, group := range groups {
		sorted := append([]string(nil), group...)
		sort.Strings(sorted)
		key := strings.Join(sorted, "|")
		assert.False(t, seen[key], "組合 %v 重複出現", group)
		seen[key] = true
	}
}

func TestGroupsAIDiscardsHallucinatedNames(t *testing.T) {
	completer := &fakeCompleter{
		available: true,
		response:  `[["chicken", "rice", "truffle oil"], ["tomato", "onion"]]`,
	}
	combiner := NewCombiner(completer, newTestCache(), testTTL)

	ingredients := []string{"chicken", "rice", "tomato", "onion", "garlic"}
	groups := combiner.Groups(context.Background(), ingredients)

	for _, group := range groups {
		for _, name := range group {
			assert.Contains(t, ingredients, name, "組合中不允許出現幻想食材")
		}
	}
}

func TestGroupsAIAppendsFullSetWhenSmall(t *testing.T) {
	completer := &fakeCompleter{
		available: true,
		response:  `[["chicken", "rice"], ["tomato", "onion"]]`,
	}
	combiner := NewCombiner(completer, newTestCache(), testTTL)

	ingredients := []string{"chicken", "rice", "tomato", "onion", "garlic"}
	groups := combiner.Groups(context.Background(), ingredients)

	found := false
	for _, group := range groups {
		if len(group) == len(ingredients) {
			found = true
		}
	}
	assert.True(t, found, "小庫存應包含全庫存組合")
}

func TestGroupsCachesResult(t *testing.T) {
	completer := &fakeCompleter{
		available: true,
		response:  `[["chicken", "rice"], ["tomato", "onion"]]`,
	}
	combiner := NewCombiner(completer, newTestCache(), testTTL)

	ingredients := []string{"chicken", "rice", "tomato", "onion", "garlic"}
	first := combiner.Groups(context.Background(), ingredients)
	second := combiner.Groups(context.Background(), ingredients)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, completer.calls)
}

func TestGroupsAIUnparseableFallsBackToHeuristic(t *testing.T) {
	completer := &fakeCompleter{available: true, response: "no groups today"}
	combiner := NewCombiner(completer, newTestCache(), testTTL)

	groups := combiner.Groups(context.Background(), []string{"chicken", "rice", "tomato", "onion", "garlic"})
	assert.NotEmpty(t, groups)
}
