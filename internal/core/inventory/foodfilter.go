package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pantry-chef/internal/core/ai"
	"pantry-chef/internal/core/cache"
	"pantry-chef/internal/pkg/common"

	"go.uber.org/zap"
)

// 常見非食品關鍵字，啟發式過濾用
var nonFoodKeywords = []string{
	"detergent", "soap", "cleaner", "toilet", "paper", "towel", "napkin",
	"plate", "cup", "fork", "spoon", "knife", "dish", "sponge", "trash",
	"bag", "container", "battery", "bulb", "light", "pen", "pencil",
	"marker", "tape", "glue", "scissors", "tool", "wrench", "screwdriver",
}

const foodFilterPrompt = `You are a food ingredient specialist assisting with recipe searches.
Analyze this inventory list and return ONLY a JSON array containing the original names of valid food items.

Guidelines:
- Return the EXACT original names of food items without generalizing them
- Only filter out non-food items (paper products, cleaning supplies, etc.)
- INCLUDE prepared food items like "taco dinner kit" or "pasta sauce mix"
- INCLUDE all original ingredients even if they contain brand names or packaging details
- Do not combine or group similar items

Inventory items: %s`

// FoodFilter 食品過濾器：把庫存品項分成食品與非食品，AI 優先、啟發式保底
type FoodFilter struct {
	ai    ai.Completer
	cache cache.Store
	ttl   time.Duration
}

// NewFoodFilter 創建食品過濾器
func NewFoodFilter(completer ai.Completer, store cache.Store, ttl time.Duration) *FoodFilter {
	return &FoodFilter{
		ai:    completer,
		cache: store,
		ttl:   ttl,
	}
}

// Filter 過濾出有效的食材名稱，保留原始名稱、截斷到 maxItems。
// 任何 AI 或解析失敗都退回啟發式，不會回傳錯誤。
func (f *FoodFilter) Filter(ctx context.Context, names []string, maxItems int) []string {
	if len(names) == 0 {
		return []string{}
	}

	// 檢查快取（排序後的名稱集合當鍵，順序不影響命中）
	key := cache.KeyForSet(cache.StageFoodFilter, names)
	var cached []string
	if cache.GetJSON(ctx, f.cache, key, &cached) {
		common.LogCacheHit(key)
		return truncate(cached, maxItems)
	}

	// 沒有 AI 憑證就直接走啟發式
	if !f.ai.Available() {
		common.LogWarn("未設定 AI 憑證，改用啟發式食品過濾")
		return f.heuristicFilter(names, maxItems)
	}

	prompt := fmt.Sprintf(foodFilterPrompt, strings.Join(names, ", "))

	resp, err := f.ai.Complete(ctx, prompt, 0.1)
	if err != nil {
		common.LogError("AI 食品過濾失敗，改用啟發式", zap.Error(err))
		return f.heuristicFilter(names, maxItems)
	}

	var result []string
	if err := ai.DecodeLenientArray(resp, &result); err != nil {
		common.LogError("AI 食品過濾回應無法解析",
			zap.Error(err),
			zap.Int("response_length", len(resp)),
		)
		return f.heuristicFilter(names, maxItems)
	}

	if len(result) == 0 {
		return f.heuristicFilter(names, maxItems)
	}

	filtered := truncate(result, maxItems)
	common.LogInfo("AI 食品過濾完成",
		zap.Int("input_count", len(names)),
		zap.Int("output_count", len(filtered)),
	)

	cache.SetJSON(ctx, f.cache, key, filtered, f.ttl)
	return filtered
}

// heuristicFilter 啟發式過濾：依關鍵字剔除非食品、剝包裝尺寸、去重
func (f *FoodFilter) heuristicFilter(names []string, maxItems int) []string {
	cleaned := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))

	for _, name := range names {
		lower := strings.ToLower(name)

		// 跳過明顯的非食品
		isNonFood := false
		for _, keyword := range nonFoodKeywords {
			if strings.Contains(lower, keyword) {
				isNonFood = true
				break
			}
		}
		if isNonFood {
			continue
		}

		// 剝掉包裝尺寸資訊
		cleanName := strings.ToLower(CleanIngredientName(name))
		cleanName = strings.TrimSpace(cleanName)
		if cleanName == "" {
			continue
		}

		if _, dup := seen[cleanName]; dup {
			continue
		}
		seen[cleanName] = struct{}{}
		cleaned = append(cleaned, cleanName)
	}

	common.LogInfo("啟發式食品過濾完成",
		zap.Int("input_count", len(names)),
		zap.Int("output_count", len(cleaned)),
	)
	return truncate(cleaned, maxItems)
}

func truncate(items []string, max int) []string {
	if max > 0 && len(items) > max {
		return items[:max]
	}
	return items
}
