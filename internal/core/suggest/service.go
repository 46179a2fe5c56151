// Package suggest 把過濾、分組、搜尋、分類、評分串成完整的食譜推薦管線。
package suggest

import (
	"context"

	"pantry-chef/internal/core/recipe"
	"pantry-chef/internal/core/scoring"
	"pantry-chef/internal/pkg/common"

	"go.uber.org/zap"
)

// 最佳結果契合度低於這個百分比時，補生成一筆 AI 替代食譜
const lowFitThreshold = 10.0

// InventoryProvider 庫存食材來源
type InventoryProvider interface {
	IngredientNames(ctx context.Context, useAIFiltering bool, maxIngredients int) []string
}

// Options 單次推薦請求的參數
type Options struct {
	InventoryOverride []string
	UseAIFiltering    bool
	MaxIngredients    int
	MaxReadyTime      int
}

// Service 食譜推薦服務
type Service struct {
	inventory   InventoryProvider
	fetcher     *recipe.Fetcher
	classifier  *recipe.Classifier
	generator   *recipe.Generator
	searchCount int
}

// NewService 創建食譜推薦服務
func NewService(inv InventoryProvider, fetcher *recipe.Fetcher, classifier *recipe.Classifier, generator *recipe.Generator, searchCount int) *Service {
	return &Service{
		inventory:   inv,
		fetcher:     fetcher,
		classifier:  classifier,
		generator:   generator,
		searchCount: searchCount,
	}
}

// Suggest 執行完整推薦管線，回傳已排序、已整理的食譜清單。
// 完全沒有食材時回傳空清單，不是錯誤。
func (s *Service) Suggest(ctx context.Context, prefs *recipe.UserPreferences, opts Options) []recipe.FormattedRecipe {
	ingredients := opts.InventoryOverride
	if len(ingredients) == 0 {
		ingredients = s.inventory.IngredientNames(ctx, opts.UseAIFiltering, opts.MaxIngredients)
	} else {
		common.LogInfo("使用呼叫端指定的食材清單", zap.Int("ingredient_count", len(ingredients)))
	}
	if len(ingredients) == 0 {
		common.LogWarn("庫存沒有任何食材，回傳空結果")
		return []recipe.FormattedRecipe{}
	}

	var restrictions *recipe.DietaryRestrictions
	if prefs != nil {
		restrictions = &prefs.DietaryRestrictions
	}

	candidates := s.fetcher.Fetch(ctx, ingredients, s.searchCount, opts.MaxReadyTime, restrictions, prefs)
	if len(candidates) == 0 {
		common.LogWarn("沒有任何候選食譜")
		return []recipe.FormattedRecipe{}
	}

	for i := range candidates {
		s.enrich(ctx, &candidates[i])
		s.classify(ctx, &candidates[i], ingredients)
	}

	scored := scoring.ScoreAndSort(candidates, ingredients, prefs)
	scored = s.topUpIfPoorFit(ctx, scored, ingredients, prefs, opts.MaxReadyTime)

	out := make([]recipe.FormattedRecipe, 0, len(scored))
	for i := range scored {
		out = append(out, recipe.FormatRecipe(&scored[i].CandidateRecipe, scored[i].Score))
	}
	common.LogInfo("食譜推薦完成", zap.Int("recipe_count", len(out)))
	return out
}

// enrich 補齊步驟與味覺輪廓。AI 生成的食譜已經自帶，不需要外部補充。
func (s *Service) enrich(ctx context.Context, r *recipe.CandidateRecipe) {
	if r.AIGenerated {
		return
	}
	if r.Instructions == "" || len(r.Ingredients) == 0 {
		if details := s.fetcher.RecipeDetails(ctx, r.ID); details != nil {
			if r.Instructions == "" {
				r.Instructions = details.Instructions
			}
			if len(r.Ingredients) == 0 {
				r.Ingredients = details.Ingredients
			}
			if r.Servings == 0 {
				r.Servings = details.Servings
			}
			if r.ReadyInMinutes == 0 {
				r.ReadyInMinutes = details.ReadyInMinutes
			}
		}
	}
	if r.TasteProfile == nil {
		r.TasteProfile = s.fetcher.RecipeTaste(ctx, r.ID)
	}
}

func (s *Service) classify(ctx context.Context, r *recipe.CandidateRecipe, ingredients []string) {
	names := r.IngredientNames()
	classifications := s.classifier.Classify(ctx, r, ingredients, names)
	recipe.ApplyClassifications(r, classifications)
}

// topUpIfPoorFit 最佳結果契合度太低、而且整批都不是 AI 食譜時，
// 補生成一筆量身訂做的替代方案放在清單最前面，
// 讓使用者不會只看到一整排不合用的結果。
func (s *Service) topUpIfPoorFit(ctx context.Context, scored []scoring.ScoredRecipe, ingredients []string, prefs *recipe.UserPreferences, maxReadyTime int) []scoring.ScoredRecipe {
	if len(scored) == 0 {
		return scored
	}
	if recipe.FitScoreFor(&scored[0].CandidateRecipe).Percentage > lowFitThreshold {
		return scored
	}
	for i := range scored {
		if scored[i].AIGenerated {
			return scored
		}
	}

	generated := s.generator.Generate(ctx, ingredients, prefs, maxReadyTime)
	if generated == nil {
		return scored
	}
	s.classify(ctx, generated, ingredients)

	alternative := scoring.ScoredRecipe{
		CandidateRecipe: *generated,
		Score:           scoring.Score(generated, ingredients, prefs),
	}
	common.LogInfo("契合度過低，插入 AI 替代食譜", zap.String("title", generated.Title))
	// 固定放第一位，不重新併入排序
	return append([]scoring.ScoredRecipe{alternative}, scored...)
}
