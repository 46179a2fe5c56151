package recipe

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"pantry-chef/internal/core/ai"
	"pantry-chef/internal/core/cache"
	"pantry-chef/internal/pkg/common"

	"go.uber.org/zap"
)

const generatorPromptTemplate = `You are a professional chef. Create ONE realistic recipe using ONLY the ingredients listed below (plus salt, pepper, and water which are always assumed available).

Available ingredients: %s
%s
Respond with a single JSON object in exactly this schema:
{
  "id": "ai-recipe",
  "title": "Recipe title",
  "readyInMinutes": 30,
  "servings": 2,
  "extendedIngredients": [{"name": "ingredient", "amount": 1, "unit": "cup", "original": "1 cup ingredient"}],
  "instructions": "Step by step instructions.",
  "ai_generated": true
}

Do not include any ingredient that is not in the available list. Respond with the JSON object only, no extra text.`

var (
	titleFieldPattern        = regexp.MustCompile(`"title"\s*:\s*"([^"]+)"`)
	instructionsFieldPattern = regexp.MustCompile(`"instructions"\s*:\s*"([^"]+)"`)
)

// Generator AI 食譜生成器。外部搜尋落空、或最佳結果契合度太低時的替代來源。
type Generator struct {
	ai    ai.Completer
	cache cache.Store
	ttl   time.Duration
}

// NewGenerator 創建 AI 食譜生成器
func NewGenerator(completer ai.Completer, store cache.Store, ttl time.Duration) *Generator {
	return &Generator{
		ai:    completer,
		cache: store,
		ttl:   ttl,
	}
}

// generatedRecipe 模型回應的食譜形狀
type generatedRecipe struct {
	Title               string           `json:"title"`
	ReadyInMinutes      int              `json:"readyInMinutes"`
	Servings            int              `json:"servings"`
	ExtendedIngredients []wireIngredient `json:"extendedIngredients"`
	Instructions        string           `json:"instructions"`
}

// Generate 生成一筆只用現有食材的食譜。
// 任何無法復原的失敗（含 AI 不可用）都回傳 nil，不回傳錯誤。
func (g *Generator) Generate(ctx context.Context, ingredients []string, prefs *UserPreferences, maxReadyTime int) *CandidateRecipe {
	if len(ingredients) == 0 {
		return nil
	}
	if !g.ai.Available() {
		common.LogWarn("AI 不可用，無法生成食譜")
		return nil
	}

	var restrictions *DietaryRestrictions
	if prefs != nil {
		restrictions = &prefs.DietaryRestrictions
	}
	key := cache.KeyForSet(cache.StageGenerate, ingredients, restrictionQualifiers(maxReadyTime, restrictions)...)
	var cached CandidateRecipe
	if cache.GetJSON(ctx, g.cache, key, &cached) {
		common.LogCacheHit(key)
		return &cached
	}

	prompt := fmt.Sprintf(generatorPromptTemplate,
		strings.Join(ingredients, ", "),
		constraintLines(restrictions, maxReadyTime),
	)
	response, err := g.ai.Complete(ctx, prompt, 0.7)
	if err != nil {
		common.LogError("AI 食譜生成失敗", zap.Error(err))
		return nil
	}

	recipe := g.parseResponse(response, ingredients)
	if recipe == nil {
		common.LogWarn("AI 食譜回應無法解析")
		return nil
	}

	cache.SetJSON(ctx, g.cache, key, recipe, g.ttl)
	common.LogInfo("AI 食譜生成成功", zap.String("title", recipe.Title))
	return recipe
}

// constraintLines 組出飲食限制與時間上限的提示詞片段
func constraintLines(restrictions *DietaryRestrictions, maxReadyTime int) string {
	var lines []string
	if restrictions != nil {
		if restrictions.Diet != "" {
			lines = append(lines, "The recipe must be "+restrictions.Diet+".")
		}
		if len(restrictions.Intolerances) > 0 {
			lines = append(lines, "The recipe must avoid: "+strings.Join(restrictions.Intolerances, ", ")+".")
		}
	}
	if maxReadyTime > 0 {
		lines = append(lines, fmt.Sprintf("The recipe must be ready in at most %d minutes.", maxReadyTime))
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// parseResponse 防禦式解析：寬鬆 JSON 解析 → 正則搶救標題與步驟。
func (g *Generator) parseResponse(response string, ingredients []string) *CandidateRecipe {
	var parsed generatedRecipe
	if err := ai.DecodeLenientObject(response, &parsed); err == nil &&
		parsed.Title != "" && parsed.Instructions != "" && len(parsed.ExtendedIngredients) > 0 {
		return g.finalize(&parsed)
	}

	// 最後手段：連修復過的 JSON 都解不開，就只撈標題和步驟，
	// 食材用庫存的前五項湊一筆最小可用的食譜。
	titleMatch := titleFieldPattern.FindStringSubmatch(response)
	instructionsMatch := instructionsFieldPattern.FindStringSubmatch(response)
	if titleMatch == nil || instructionsMatch == nil {
		return nil
	}

	salvaged := generatedRecipe{
		Title:        titleMatch[1],
		Instructions: instructionsMatch[1],
	}
	limit := len(ingredients)
	if limit > 5 {
		limit = 5
	}
	for _, name := range ingredients[:limit] {
		salvaged.ExtendedIngredients = append(salvaged.ExtendedIngredients, wireIngredient{
			Name:     name,
			Original: name,
		})
	}
	common.LogWarn("AI 食譜以正則搶救重建", zap.String("title", salvaged.Title))
	return g.finalize(&salvaged)
}

// finalize 收斂成候選食譜。AI 食譜只用現有食材組成，
// 依定義完全契合庫存，味覺輪廓則給中性值。
func (g *Generator) finalize(parsed *generatedRecipe) *CandidateRecipe {
	candidate := CandidateRecipe{
		ID:             generatedRecipeID(parsed.Title),
		Title:          parsed.Title,
		ReadyInMinutes: parsed.ReadyInMinutes,
		Servings:       parsed.Servings,
		Instructions:   parsed.Instructions,
		TasteProfile:   NeutralTasteProfile(),
		AIGenerated:    true,
	}
	if candidate.Servings == 0 {
		candidate.Servings = 2
	}
	for _, ing := range parsed.ExtendedIngredients {
		candidate.Ingredients = append(candidate.Ingredients, Ingredient{
			Name:     ing.Name,
			Amount:   ing.Amount,
			Unit:     ing.Unit,
			Original: ing.Original,
		})
		candidate.UsedIngredients = append(candidate.UsedIngredients, ing.Name)
	}
	candidate.UsedIngredientCount = len(candidate.Ingredients)
	candidate.MissedIngredientCount = 0
	return &candidate
}

func generatedRecipeID(title string) string {
	return fmt.Sprintf("ai-recipe-%d-%s", time.Now().Unix(), common.HashString(title)[:8])
}
