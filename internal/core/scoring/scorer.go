// Package scoring 依庫存覆蓋率、做工難度、味覺相似度的加權組合為食譜排序。
package scoring

import (
	"math"
	"sort"
	"strings"

	"pantry-chef/internal/core/recipe"
)

// 三個子分數的權重
const (
	inventoryWeight = 0.4
	effortWeight    = 0.3
	flavorWeight    = 0.3
)

// 做工難度分級
const (
	EffortEasy     = "easy"
	EffortModerate = "moderate"
	EffortHard     = "hard"
)

var effortLevels = []string{EffortEasy, EffortModerate, EffortHard}

// MapMinutesToEffort 把備餐時間換算成難度分級。未知時間視為 moderate。
func MapMinutesToEffort(minutes int) string {
	switch {
	case minutes <= 0:
		return EffortModerate
	case minutes <= 30:
		return EffortEasy
	case minutes <= 60:
		return EffortModerate
	default:
		return EffortHard
	}
}

// EffortScore 比較食譜難度與使用者偏好：
// 完全相同 1.0、相鄰分級 0.6、其餘 0.1；沒有偏好給中性 0.5。
func EffortScore(recipeEffort, userPreference string) float64 {
	if userPreference == "" {
		return 0.5
	}
	if recipeEffort == userPreference {
		return 1.0
	}
	recipeIdx := effortIndex(recipeEffort)
	prefIdx := effortIndex(userPreference)
	if recipeIdx >= 0 && prefIdx >= 0 && abs(recipeIdx-prefIdx) == 1 {
		return 0.6
	}
	return 0.1
}

// FlavorScore 味覺相似度。逐維度累積差值再正規化；
// 沒有任何可比較的維度時給中性 0.5。
func FlavorScore(recipeTaste *recipe.TasteProfile, userTaste map[string]float64) float64 {
	if recipeTaste == nil || len(userTaste) == 0 {
		return 0.5
	}

	totalDifference := 0.0
	dimensionsCounted := 0
	for dim, recipeVal := range recipeTaste.Dimensions() {
		userVal, ok := userTaste[dim]
		if !ok {
			continue
		}
		totalDifference += math.Abs(recipeVal - userVal)
		dimensionsCounted++
	}
	if dimensionsCounted == 0 {
		return 0.5
	}

	normalized := totalDifference / (float64(dimensionsCounted) * 100)
	return 1.0 - normalized
}

// InventoryScore 食譜食材在庫存裡的比例（以小寫去重後計算）
func InventoryScore(r *recipe.CandidateRecipe, availableIngredients []string) float64 {
	names := make(map[string]bool)
	for _, ing := range r.Ingredients {
		if name := strings.ToLower(strings.TrimSpace(ing.Name)); name != "" {
			names[name] = true
		}
	}
	if len(names) == 0 {
		return 0
	}

	available := make(map[string]bool, len(availableIngredients))
	for _, ing := range availableIngredients {
		available[strings.ToLower(strings.TrimSpace(ing))] = true
	}

	count := 0
	for name := range names {
		if available[name] {
			count++
		}
	}
	return float64(count) / float64(len(names))
}

// Score 計算單一食譜的加權總分
func Score(r *recipe.CandidateRecipe, availableIngredients []string, prefs *recipe.UserPreferences) float64 {
	inventoryScore := InventoryScore(r, availableIngredients)

	effortPref := ""
	var userTaste map[string]float64
	if prefs != nil {
		effortPref = prefs.EffortTolerance
		userTaste = prefs.TasteProfile
	}
	effortScore := EffortScore(MapMinutesToEffort(r.ReadyInMinutes), effortPref)
	flavorScore := FlavorScore(r.TasteProfile, userTaste)

	return inventoryScore*inventoryWeight + effortScore*effortWeight + flavorScore*flavorWeight
}

// ScoredRecipe 帶分數的候選食譜
type ScoredRecipe struct {
	recipe.CandidateRecipe
	Score float64 `json:"score"`
}

// ScoreAndSort 對整批食譜評分並依總分降冪排序。
// 穩定排序，同分的保留原本相對順序。
func ScoreAndSort(recipes []recipe.CandidateRecipe, availableIngredients []string, prefs *recipe.UserPreferences) []ScoredRecipe {
	scored := make([]ScoredRecipe, 0, len(recipes))
	for i := range recipes {
		scored = append(scored, ScoredRecipe{
			CandidateRecipe: recipes[i],
			Score:           Score(&recipes[i], availableIngredients, prefs),
		})
	}
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})
	return scored
}

func effortIndex(level string) int {
	for i, l := range effortLevels {
		if l == level {
			return i
		}
	}
	return -1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
