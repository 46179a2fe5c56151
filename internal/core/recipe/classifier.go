package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pantry-chef/internal/core/ai"
	"pantry-chef/internal/core/cache"
	"pantry-chef/internal/core/inventory"
	"pantry-chef/internal/pkg/common"

	"go.uber.org/zap"
)

const classificationPromptTemplate = `You are a culinary assistant.
Given a recipe, classify each ingredient as:
- Essential: Defines the dish; cannot omit.
- Important: Strongly affects flavor or texture.
- Optional: Can be omitted with little impact.
Also mark whether the user has this ingredient.
Output strictly as JSON array:
[
  {
    "ingredient": "ingredient name",
    "category": "Essential | Important | Optional",
    "in_inventory": true | false,
    "confidence": 0.0 to 1.0
  }
]
Recipe: %s
Instructions: %s
Ingredients: %s
User Inventory: %s`

// 品牌與包裝用語，比對庫存前先剝掉
var packagingTerms = []string{
	"organic", "fresh", "frozen", "canned", "dried", "raw", "whole",
	"sliced", "diced", "chopped", "ground", "boneless", "skinless",
	"brand", "premium", "value", "pack", "bag", "box", "jar", "bottle",
}

// 核心食材關鍵字表，補抓近義詞（例如鮪魚罐頭的各種品名）
var coreIngredientKeywords = map[string][]string{
	"tuna":    {"tuna", "chunk light", "albacore"},
	"chicken": {"chicken", "poultry"},
	"beef":    {"beef", "ground chuck", "sirloin", "steak"},
	"pork":    {"pork", "bacon", "ham"},
	"cheese":  {"cheese", "cheddar", "mozzarella", "parmesan"},
	"milk":    {"milk", "dairy"},
	"tomato":  {"tomato", "marinara", "passata"},
	"pasta":   {"pasta", "spaghetti", "penne", "macaroni", "noodle"},
	"rice":    {"rice", "jasmine", "basmati"},
	"onion":   {"onion", "shallot", "scallion"},
	"pepper":  {"pepper", "bell pepper", "capsicum"},
	"oil":     {"oil", "olive oil", "vegetable oil", "canola"},
}

// Classifier 食材分類器。判定每項食材對食譜的重要程度，
// 以及使用者庫存裡有沒有。AI 優先，位置分段啟發式墊底。
type Classifier struct {
	ai    ai.Completer
	cache cache.Store
	ttl   time.Duration
}

// NewClassifier 創建食材分類器
func NewClassifier(completer ai.Completer, store cache.Store, ttl time.Duration) *Classifier {
	return &Classifier{
		ai:    completer,
		cache: store,
		ttl:   ttl,
	}
}

// Classify 分類食譜的全部食材。結果跟著庫存快照一起快取，
// 庫存一變動快取就失效，因為 in_inventory 取決於庫存。
func (c *Classifier) Classify(ctx context.Context, r *CandidateRecipe, userInventory []string, ingredientNames []string) []IngredientClassification {
	if len(ingredientNames) == 0 {
		return nil
	}

	key := cache.Key(cache.StageClassify, r.ID, cache.InventoryHash(userInventory))
	var cached []IngredientClassification
	if cache.GetJSON(ctx, c.cache, key, &cached) && len(cached) > 0 {
		common.LogCacheHit(key)
		return cached
	}

	result := c.aiClassify(ctx, r, userInventory, ingredientNames)
	if result == nil {
		result = heuristicClassify(ingredientNames, userInventory)
	}

	cache.SetJSON(ctx, c.cache, key, result, c.ttl)
	return result
}

// aiClassify AI 分類路徑。失敗回傳 nil，由呼叫端退回啟發式。
func (c *Classifier) aiClassify(ctx context.Context, r *CandidateRecipe, userInventory []string, ingredientNames []string) []IngredientClassification {
	if !c.ai.Available() {
		common.LogWarn("AI 不可用，改用啟發式食材分類", zap.String("recipe_id", r.ID))
		return nil
	}

	instructions := r.Instructions
	if instructions == "" {
		instructions = "Not available"
	}
	prompt := fmt.Sprintf(classificationPromptTemplate,
		r.Title,
		instructions,
		strings.Join(ingredientNames, ", "),
		strings.Join(userInventory, ", "),
	)
	response, err := c.ai.Complete(ctx, prompt, 0.2)
	if err != nil {
		common.LogError("AI 食材分類失敗", zap.String("recipe_id", r.ID), zap.Error(err))
		return nil
	}

	// 已知的壞回應特徵：開頭就是裸的 "ingredient" 鍵，
	// 模型把物件拆散了，直接放棄走啟發式。
	trimmed := strings.TrimSpace(ai.StripFences(response))
	if strings.HasPrefix(trimmed, `"ingredient"`) {
		common.LogWarn("AI 分類回應為已知壞格式，改用啟發式", zap.String("recipe_id", r.ID))
		return nil
	}

	var raw []map[string]interface{}
	if err := ai.DecodeLenientArray(response, &raw); err != nil {
		common.LogWarn("AI 分類回應無法解析", zap.String("recipe_id", r.ID), zap.Error(err))
		return nil
	}

	// 逐項收斂成安全型別，壞的項目丟掉、不拖垮整批
	var result []IngredientClassification
	for _, item := range raw {
		name, ok := item["ingredient"].(string)
		if !ok || name == "" {
			continue
		}
		if _, hasCategory := item["category"]; !hasCategory {
			continue
		}
		result = append(result, IngredientClassification{
			Ingredient:  name,
			Category:    coerceString(item["category"], CategoryOptional),
			InInventory: coerceBool(item["in_inventory"]),
			Confidence:  coerceFloat(item["confidence"], 0.5),
		})
	}
	if len(result) == 0 {
		return nil
	}

	common.LogInfo("AI 食材分類完成",
		zap.String("recipe_id", r.ID),
		zap.Int("ingredient_count", len(result)),
	)
	return result
}

// heuristicClassify 位置分段：前三分之一 Essential，中段 Important，其餘 Optional
func heuristicClassify(ingredientNames []string, userInventory []string) []IngredientClassification {
	total := len(ingredientNames)
	essentialCount := total / 3
	if essentialCount < 1 {
		essentialCount = 1
	}
	importantCount := total / 3
	if importantCount < 1 {
		importantCount = 1
	}

	result := make([]IngredientClassification, 0, total)
	for i, name := range ingredientNames {
		var category string
		var confidence float64
		switch {
		case i < essentialCount:
			category = CategoryEssential
			confidence = 0.8
		case i < essentialCount+importantCount:
			category = CategoryImportant
			confidence = 0.7
		default:
			category = CategoryOptional
			confidence = 0.6
		}
		result = append(result, IngredientClassification{
			Ingredient:  name,
			Category:    category,
			InInventory: InInventory(name, userInventory),
			Confidence:  confidence,
		})
	}
	return result
}

// InInventory 分層比對食材是否在庫存裡：
// 完全相等 → 雙向子字串（原始與簡化後各比一次）→ 核心食材關鍵字表。
func InInventory(ingredient string, userInventory []string) bool {
	target := strings.ToLower(strings.TrimSpace(ingredient))
	if target == "" {
		return false
	}
	simplifiedTarget := simplifyName(target)

	for _, item := range userInventory {
		raw := strings.ToLower(strings.TrimSpace(item))
		if raw == target {
			return true
		}
		if strings.Contains(raw, target) || strings.Contains(target, raw) {
			return true
		}
		simplified := simplifyName(raw)
		if simplified != "" && simplifiedTarget != "" &&
			(strings.Contains(simplified, simplifiedTarget) || strings.Contains(simplifiedTarget, simplified)) {
			return true
		}
	}

	// 關鍵字表補抓近義詞
	for core, keywords := range coreIngredientKeywords {
		if !strings.Contains(target, core) && !containsAnyKeyword(target, keywords) {
			continue
		}
		for _, item := range userInventory {
			lower := strings.ToLower(item)
			if strings.Contains(lower, core) || containsAnyKeyword(lower, keywords) {
				return true
			}
		}
	}
	return false
}

// simplifyName 去掉品牌包裝詞與尺寸後綴，留下核心名稱
func simplifyName(name string) string {
	name = inventory.CleanIngredientName(name)
	words := strings.Fields(strings.ToLower(name))
	var kept []string
	for _, word := range words {
		if containsString(packagingTerms, word) {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

func containsAnyKeyword(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func coerceString(v interface{}, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func coerceBool(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(val, "true")
	default:
		return false
	}
}

func coerceFloat(v interface{}, fallback float64) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}
