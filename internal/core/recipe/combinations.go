package recipe

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"pantry-chef/internal/core/ai"
	"pantry-chef/internal/core/cache"
	"pantry-chef/internal/pkg/common"

	"go.uber.org/zap"
)

// 食材分組的規模邊界：
// 少量食材（≤4）直接整包查詢；大量食材切成 4-8 組、每組 2-6 項。
const (
	groupSkipThreshold   = 4
	fullSetAppendLimit   = 8
	heuristicFullSetSize = 6
)

const combinationPrompt = `You are a culinary expert. Given a list of ingredients, identify 5-8 meaningful combinations that would work well together in actual recipes.

Don't just group ingredients arbitrarily. Consider:
1. Which ingredients naturally complement each other in cooking
2. Common recipe patterns (protein + starch + vegetable, etc.)
3. Cuisine-specific combinations
4. The main ingredient plus supporting ingredients

For each combination, include 3-5 ingredients. Use ONLY the exact ingredient names supplied - never rename or invent ingredients. Don't try to use every ingredient - focus on combinations that would make sense in real recipes.

Available ingredients: %s

Response format: A JSON array of arrays, where each sub-array is a logical ingredient combination.
Example: [["pasta", "tomato sauce", "cheese"], ["tuna", "mayonnaise", "bread"]]`

// 啟發式分組的類別關鍵字
var (
	proteinKeywords = []string{"chicken", "beef", "pork", "fish", "tofu", "beans", "lentils",
		"turkey", "salmon", "tuna", "shrimp", "eggs", "sausage", "ham"}
	starchKeywords = []string{"rice", "pasta", "potato", "bread", "quinoa", "couscous", "noodle", "tortilla"}
	vegetableKeywords = []string{"tomato", "onion", "carrot", "spinach", "lettuce", "broccoli",
		"pepper", "cucumber", "zucchini", "celery", "mushroom", "corn", "peas", "cabbage"}
	condimentKeywords = []string{"sauce", "oil", "vinegar", "soy", "mayo", "mustard", "ketchup",
		"salsa", "dressing", "butter", "garlic"}
	sauceKeywords    = []string{"sauce", "tomato", "cream", "cheese"}
	soupKeywords     = []string{"broth", "stock", "soup", "bouillon"}
	mealKitKeywords  = []string{"kit", "helper", "mix", "dinner"}
)

// 調理包名稱關鍵字對應的補充食材類別
var mealKitComplements = map[string][]string{
	"taco":   {"beef", "chicken", "cheese", "lettuce", "tomato", "salsa"},
	"pasta":  {"chicken", "beef", "tomato", "cheese", "mushroom"},
	"rice":   {"chicken", "beef", "shrimp", "peas", "carrot", "eggs"},
	"potato": {"cheese", "butter", "bacon", "ham", "broccoli"},
}

// Combiner 食材分組器。把大庫存切成幾組料理上合理的子集，
// 讓外部搜尋的查詢維持小而準。AI 優先，啟發式墊底。
type Combiner struct {
	ai    ai.Completer
	cache cache.Store
	ttl   time.Duration
}

// NewCombiner 創建食材分組器
func NewCombiner(completer ai.Completer, store cache.Store, ttl time.Duration) *Combiner {
	return &Combiner{
		ai:    completer,
		cache: store,
		ttl:   ttl,
	}
}

// Groups 產生食材分組。永遠回傳至少一組，不回傳錯誤。
func (c *Combiner) Groups(ctx context.Context, ingredients []string) [][]string {
	if len(ingredients) == 0 {
		return nil
	}
	// 少量食材不分組，整包就是一組
	if len(ingredients) <= groupSkipThreshold {
		return [][]string{ingredients}
	}

	key := cache.KeyForSet(cache.StageCombos, ingredients)
	var cached [][]string
	if cache.GetJSON(ctx, c.cache, key, &cached) && len(cached) > 0 {
		return cached
	}

	groups := c.aiGroups(ctx, ingredients)
	if groups == nil {
		groups = heuristicGroups(ingredients)
	}

	groups = dedupeGroups(groups)
	groups = capGroups(groups, len(ingredients))
	cache.SetJSON(ctx, c.cache, key, groups, c.ttl)
	return groups
}

// aiGroups AI 分組路徑。任何失敗都回傳 nil，由呼叫端退回啟發式。
func (c *Combiner) aiGroups(ctx context.Context, ingredients []string) [][]string {
	if !c.ai.Available() {
		common.LogWarn("AI 不可用，改用啟發式食材分組")
		return nil
	}

	prompt := fmt.Sprintf(combinationPrompt, strings.Join(ingredients, ", "))
	response, err := c.ai.Complete(ctx, prompt, 0.3)
	if err != nil {
		common.LogError("AI 食材分組失敗", zap.Error(err))
		return nil
	}

	var raw [][]string
	if err := ai.DecodeLenientArray(response, &raw); err != nil {
		common.LogWarn("AI 食材分組回應無法解析", zap.Error(err))
		return nil
	}

	// 只留下輸入集合裡逐字存在的名稱，丟掉模型幻想出來的食材
	valid := make(map[string]bool, len(ingredients))
	for _, ing := range ingredients {
		valid[ing] = true
	}
	var groups [][]string
	for _, group := range raw {
		var members []string
		for _, name := range group {
			if valid[name] {
				members = append(members, name)
			}
		}
		if len(members) >= 2 {
			groups = append(groups, members)
		}
	}
	if len(groups) == 0 {
		common.LogWarn("AI 分組清理後沒有有效組合，改用啟發式")
		return nil
	}

	// 小庫存同時保證做一次全庫存搜尋
	if len(ingredients) <= fullSetAppendLimit {
		groups = append(groups, ingredients)
	}
	return groups
}

// heuristicGroups 規則式分組：基本料理常識的確定性版本
func heuristicGroups(ingredients []string) [][]string {
	var groups [][]string

	// (a) 小庫存整包一組，大庫存先取前六項
	if len(ingredients) <= heuristicFullSetSize {
		groups = append(groups, ingredients)
	} else {
		groups = append(groups, ingredients[:heuristicFullSetSize])
	}

	starchMatches := matchAny(ingredients, starchKeywords)
	vegMatches := matchAny(ingredients, vegetableKeywords)
	condimentMatches := matchAny(ingredients, condimentKeywords)

	// (b) 每種蛋白質配一組蛋白質+澱粉+蔬菜(+調味)
	for _, protein := range proteinKeywords {
		proteinMatches := matchKeyword(ingredients, protein)
		if len(proteinMatches) == 0 {
			continue
		}
		combo := proteinMatches[:1]
		combo = appendFirst(combo, starchMatches, 1)
		combo = appendFirst(combo, vegMatches, 2)
		combo = appendFirst(combo, condimentMatches, 1)
		if len(combo) >= 2 {
			groups = append(groups, combo)
		}
	}

	// (c) 義大利麵/麵條組合
	pastaMatches := matchAny(ingredients, []string{"pasta", "noodle"})
	if len(pastaMatches) > 0 {
		combo := pastaMatches[:1]
		combo = appendFirst(combo, matchAny(ingredients, sauceKeywords), 2)
		if len(combo) >= 2 {
			groups = append(groups, combo)
		}
	}

	// (d) 湯品組合：湯底加蔬菜加一種蛋白質
	soupMatches := matchAny(ingredients, soupKeywords)
	if len(soupMatches) > 0 {
		combo := soupMatches[:1]
		combo = appendFirst(combo, vegMatches, 2)
		combo = appendFirst(combo, matchAny(ingredients, proteinKeywords), 1)
		if len(combo) >= 2 {
			groups = append(groups, combo)
		}
	}

	// (e) 調理包組合：依包裝名稱關鍵字補上對應菜系的配料
	for _, kit := range matchAny(ingredients, mealKitKeywords) {
		combo := []string{kit}
		kitLower := strings.ToLower(kit)
		for cuisine, complements := range mealKitComplements {
			if strings.Contains(kitLower, cuisine) {
				combo = appendFirst(combo, matchAny(ingredients, complements), 3)
				break
			}
		}
		if len(combo) >= 2 {
			groups = append(groups, combo)
		}
	}

	// (f) 保證每個食材至少出現在一個組合裡
	covered := make(map[string]bool)
	for _, group := range groups {
		for _, name := range group {
			covered[name] = true
		}
	}
	var leftovers []string
	for _, ing := range ingredients {
		if !covered[ing] {
			leftovers = append(leftovers, ing)
		}
	}
	if len(leftovers) > 0 {
		groups = append(groups, leftovers)
	}

	return groups
}

// capGroups 套用 min(8, max(4, n/2)) 的組數上限
func capGroups(groups [][]string, ingredientCount int) [][]string {
	maxGroups := ingredientCount / 2
	if maxGroups < 4 {
		maxGroups = 4
	}
	if maxGroups > 8 {
		maxGroups = 8
	}
	if len(groups) > maxGroups {
		return groups[:maxGroups]
	}
	return groups
}

// dedupeGroups 依成員集合去重，保留先出現的組
func dedupeGroups(groups [][]string) [][]string {
	seen := make(map[string]bool, len(groups))
	var out [][]string
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		sorted := append([]string(nil), group...)
		sort.Strings(sorted)
		key := strings.Join(sorted, "-")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, group)
	}
	return out
}

// matchKeyword 找出名稱包含 keyword 的食材
func matchKeyword(ingredients []string, keyword string) []string {
	var out []string
	for _, ing := range ingredients {
		if strings.Contains(strings.ToLower(ing), keyword) {
			out = append(out, ing)
		}
	}
	return out
}

// matchAny 找出名稱包含任一關鍵字的食材
func matchAny(ingredients []string, keywords []string) []string {
	var out []string
	for _, ing := range ingredients {
		lower := strings.ToLower(ing)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				out = append(out, ing)
				break
			}
		}
	}
	return out
}

// appendFirst 從 candidates 取最多 n 個尚未在 combo 裡的項目補進去
func appendFirst(combo []string, candidates []string, n int) []string {
	added := 0
	for _, c := range candidates {
		if added >= n {
			break
		}
		if containsString(combo, c) {
			continue
		}
		combo = append(combo, c)
		added++
	}
	return combo
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
