package recipe

import (
	"context"
	"strings"
	"time"

	"pantry-chef/internal/core/cache"
	"pantry-chef/internal/pkg/common"

	"go.uber.org/zap"
)

// 單一查詢就夠用的食材數量上限
const directSearchLimit = 4

// Fetcher 食譜抓取器。把食材分組後逐組查外部搜尋，合併去重。
// 搜尋全數落空時退回 AI 生成，讓管線不會單純因為搜尋沒命中而空手而回。
type Fetcher struct {
	search    *SearchClient
	combiner  *Combiner
	generator *Generator
	cache     cache.Store
	searchTTL time.Duration
	enrichTTL time.Duration
}

// NewFetcher 創建食譜抓取器
func NewFetcher(search *SearchClient, combiner *Combiner, generator *Generator, store cache.Store, searchTTL, enrichTTL time.Duration) *Fetcher {
	return &Fetcher{
		search:    search,
		combiner:  combiner,
		generator: generator,
		cache:     store,
		searchTTL: searchTTL,
		enrichTTL: enrichTTL,
	}
}

// restrictionQualifiers 把時間與飲食限制轉成穩定的快取限定條件
func restrictionQualifiers(maxReadyTime int, restrictions *DietaryRestrictions) []string {
	qualifiers := []string{cache.IntQualifier("max_ready_time", maxReadyTime)}
	if restrictions != nil {
		qualifiers = append(qualifiers, "diet="+restrictions.Diet)
		qualifiers = append(qualifiers, "intolerances="+strings.Join(common.SortedLower(restrictions.Intolerances), ","))
	}
	return qualifiers
}

// Fetch 依庫存食材抓取最多 count 筆候選食譜。
// 各組查詢失敗只影響該組，不會中斷其他組。
func (f *Fetcher) Fetch(ctx context.Context, ingredients []string, count int, maxReadyTime int, restrictions *DietaryRestrictions, prefs *UserPreferences) []CandidateRecipe {
	if len(ingredients) == 0 {
		return nil
	}

	var groups [][]string
	if len(ingredients) <= directSearchLimit {
		groups = [][]string{ingredients}
	} else {
		groups = f.combiner.Groups(ctx, ingredients)
	}

	// 每組的結果上限，避免單一組吃光整個配額
	perGroup := count / len(groups)
	if perGroup < 3 {
		perGroup = 3
	}

	seen := make(map[string]bool)
	var merged []CandidateRecipe
	for _, group := range groups {
		if len(merged) >= count {
			break
		}
		results := f.searchGroup(ctx, group, perGroup, maxReadyTime, restrictions)
		for i := range results {
			if seen[results[i].ID] {
				continue
			}
			seen[results[i].ID] = true
			merged = append(merged, results[i])
		}
	}

	if len(merged) > count {
		merged = merged[:count]
	}

	if len(merged) == 0 {
		common.LogWarn("外部搜尋沒有任何結果，嘗試 AI 生成食譜")
		if generated := f.generator.Generate(ctx, ingredients, prefs, maxReadyTime); generated != nil {
			merged = append(merged, *generated)
		}
	}

	common.LogInfo("食譜抓取完成",
		zap.Int("group_count", len(groups)),
		zap.Int("recipe_count", len(merged)),
	)
	return merged
}

// searchGroup 查詢單一食材組，結果獨立快取。失敗回傳空集合。
func (f *Fetcher) searchGroup(ctx context.Context, group []string, number int, maxReadyTime int, restrictions *DietaryRestrictions) []CandidateRecipe {
	qualifiers := append(restrictionQualifiers(maxReadyTime, restrictions), cache.IntQualifier("number", number))
	key := cache.KeyForSet(cache.StageSearch, group, qualifiers...)

	var cached []CandidateRecipe
	if cache.GetJSON(ctx, f.cache, key, &cached) {
		common.LogCacheHit(key)
		return cached
	}

	results, err := f.search.Search(ctx, group, number, maxReadyTime, restrictions)
	if err != nil {
		common.LogError("食材組搜尋失敗，略過該組",
			zap.Strings("group", group),
			zap.Error(err),
		)
		return nil
	}

	cache.SetJSON(ctx, f.cache, key, results, f.searchTTL)
	return results
}

// RecipeDetails 取得食譜完整資訊（快取一天）。失敗回傳 nil。
func (f *Fetcher) RecipeDetails(ctx context.Context, id string) *CandidateRecipe {
	key := cache.Key(cache.StageDetails, id)
	var cached CandidateRecipe
	if cache.GetJSON(ctx, f.cache, key, &cached) {
		return &cached
	}

	details, err := f.search.Details(ctx, id)
	if err != nil {
		common.LogWarn("食譜詳情取得失敗", zap.String("recipe_id", id), zap.Error(err))
		return nil
	}

	cache.SetJSON(ctx, f.cache, key, details, f.enrichTTL)
	return details
}

// RecipeTaste 取得食譜味覺輪廓（快取一天）。
// 沒有味覺資料不是錯誤，評分會以中性值處理。
func (f *Fetcher) RecipeTaste(ctx context.Context, id string) *TasteProfile {
	key := cache.Key(cache.StageTaste, id)
	var cached TasteProfile
	if cache.GetJSON(ctx, f.cache, key, &cached) {
		return &cached
	}

	profile, err := f.search.Taste(ctx, id)
	if err != nil {
		common.LogWarn("食譜味覺輪廓取得失敗", zap.String("recipe_id", id), zap.Error(err))
		return nil
	}

	cache.SetJSON(ctx, f.cache, key, profile, f.enrichTTL)
	return profile
}
