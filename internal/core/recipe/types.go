package recipe

// TasteProfile 六個味覺維度，數值 0-100
type TasteProfile struct {
	Sweetness  float64 `json:"sweetness"`
	Saltiness  float64 `json:"saltiness"`
	Sourness   float64 `json:"sourness"`
	Bitterness float64 `json:"bitterness"`
	Savoriness float64 `json:"savoriness"`
	Fattiness  float64 `json:"fattiness"`
}

// NeutralTasteProfile 中性味覺輪廓，AI 生成食譜沒有味覺資料時使用
func NeutralTasteProfile() *TasteProfile {
	return &TasteProfile{
		Sweetness:  50,
		Saltiness:  50,
		Sourness:   50,
		Bitterness: 50,
		Savoriness: 50,
		Fattiness:  50,
	}
}

// Dimensions 依固定順序列出六個維度，供加權比對使用
func (t *TasteProfile) Dimensions() map[string]float64 {
	return map[string]float64{
		"sweetness":  t.Sweetness,
		"saltiness":  t.Saltiness,
		"sourness":   t.Sourness,
		"bitterness": t.Bitterness,
		"savoriness": t.Savoriness,
		"fattiness":  t.Fattiness,
	}
}

// Ingredient 食譜中的單項食材
type Ingredient struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	Original string  `json:"original,omitempty"`
}

// IngredientClassification 食材分類結果
type IngredientClassification struct {
	Ingredient  string  `json:"ingredient"`
	Category    string  `json:"category"`
	InInventory bool    `json:"in_inventory"`
	Confidence  float64 `json:"confidence"`
}

// 食材重要性分類
const (
	CategoryEssential = "Essential"
	CategoryImportant = "Important"
	CategoryOptional  = "Optional"
)

// CandidateRecipe 管線中流動的候選食譜。
// 外部搜尋與 AI 生成的食譜都收斂成這個形狀。
type CandidateRecipe struct {
	ID                    string                     `json:"id"`
	Title                 string                     `json:"title"`
	ReadyInMinutes        int                        `json:"ready_in_minutes"`
	Servings              int                        `json:"servings"`
	Instructions          string                     `json:"instructions"`
	SourceURL             string                     `json:"source_url,omitempty"`
	ImageURL              string                     `json:"image_url,omitempty"`
	Ingredients           []Ingredient               `json:"ingredients"`
	UsedIngredients       []string                   `json:"used_ingredients"`
	MissedIngredients     []string                   `json:"missed_ingredients"`
	UsedIngredientCount   int                        `json:"used_ingredient_count"`
	MissedIngredientCount int                        `json:"missed_ingredient_count"`
	TasteProfile          *TasteProfile              `json:"taste_profile,omitempty"`
	Classifications       []IngredientClassification `json:"classifications,omitempty"`
	AIGenerated           bool                       `json:"ai_generated"`
}

// IngredientNames 回傳食譜食材名稱清單
func (r *CandidateRecipe) IngredientNames() []string {
	names := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		names = append(names, ing.Name)
	}
	return names
}

// DietaryRestrictions 飲食限制，轉成外部搜尋參數
type DietaryRestrictions struct {
	Diet         string   `json:"diet,omitempty"`
	Intolerances []string `json:"intolerances,omitempty"`
}

// UserPreferences 評分與搜尋用的使用者偏好
type UserPreferences struct {
	TasteProfile         map[string]float64  `json:"taste_profile,omitempty"`
	EffortTolerance      string              `json:"effort_tolerance,omitempty"`
	LikedIngredients     []string            `json:"liked_ingredients,omitempty"`
	DislikedIngredients  []string            `json:"disliked_ingredients,omitempty"`
	PreferredDishTypes   []string            `json:"preferred_dish_types,omitempty"`
	DietaryRestrictions  DietaryRestrictions `json:"dietary_restrictions,omitempty"`
}

// FitScore 食譜與庫存的契合度
type FitScore struct {
	Percentage float64 `json:"percentage"`
	Have       int     `json:"have"`
	NeedToBuy  int     `json:"need_to_buy"`
	Total      int     `json:"total"`
}
