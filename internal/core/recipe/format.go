package recipe

import (
	"fmt"
	"math"
	"strings"
)

// FitScoreFor 計算食譜與庫存的契合度。
// 契合度＝已有食材數除以食譜食材總數。
func FitScoreFor(r *CandidateRecipe) FitScore {
	total := r.UsedIngredientCount + r.MissedIngredientCount
	percentage := 0.0
	if total > 0 {
		percentage = float64(r.UsedIngredientCount) / float64(total) * 100
		percentage = math.Round(percentage*10) / 10
	}
	return FitScore{
		Percentage: percentage,
		Have:       r.UsedIngredientCount,
		NeedToBuy:  r.MissedIngredientCount,
		Total:      total,
	}
}

// FormattedIngredient 輸出用的食材資訊
type FormattedIngredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// FormattedIngredients 已有與待購兩個清單
type FormattedIngredients struct {
	Have      []FormattedIngredient `json:"have"`
	NeedToBuy []FormattedIngredient `json:"need_to_buy"`
}

// FormattedRecipe 對外輸出的食譜形狀
type FormattedRecipe struct {
	ID             string               `json:"id"`
	Title          string               `json:"title"`
	Image          string               `json:"image,omitempty"`
	ReadyInMinutes int                  `json:"readyInMinutes"`
	Servings       int                  `json:"servings"`
	SourceURL      string               `json:"sourceUrl,omitempty"`
	FitScore       FitScore             `json:"fit_score"`
	Ingredients    FormattedIngredients `json:"ingredients"`
	Instructions   string               `json:"instructions,omitempty"`
	AIGenerated    bool                 `json:"ai_generated,omitempty"`
	Score          float64              `json:"score"`
}

// FormatRecipe 整理單筆食譜的輸出
func FormatRecipe(r *CandidateRecipe, score float64) FormattedRecipe {
	details := make(map[string]Ingredient, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		details[strings.ToLower(ing.Name)] = ing
	}

	formatted := FormattedRecipe{
		ID:             r.ID,
		Title:          r.Title,
		Image:          r.ImageURL,
		ReadyInMinutes: r.ReadyInMinutes,
		Servings:       r.Servings,
		SourceURL:      r.SourceURL,
		FitScore:       FitScoreFor(r),
		Instructions:   r.Instructions,
		AIGenerated:    r.AIGenerated,
		Score:          score,
	}
	formatted.Ingredients.Have = formatIngredientList(r.UsedIngredients, details)
	formatted.Ingredients.NeedToBuy = formatIngredientList(r.MissedIngredients, details)
	return formatted
}

func formatIngredientList(names []string, details map[string]Ingredient) []FormattedIngredient {
	out := make([]FormattedIngredient, 0, len(names))
	for _, name := range names {
		amount := "?"
		if ing, ok := details[strings.ToLower(name)]; ok && ing.Amount > 0 {
			amount = strings.TrimSpace(fmt.Sprintf("%g %s", ing.Amount, ing.Unit))
		}
		out = append(out, FormattedIngredient{Name: name, Amount: amount})
	}
	return out
}

// ApplyClassifications 把分類結果轉回已有/待購清單。
// in_inventory 取決於庫存快照，所以數量欄位也一併重算。
func ApplyClassifications(r *CandidateRecipe, classifications []IngredientClassification) {
	if len(classifications) == 0 {
		return
	}
	r.Classifications = classifications
	r.UsedIngredients = r.UsedIngredients[:0]
	r.MissedIngredients = r.MissedIngredients[:0]
	for _, c := range classifications {
		name := strings.ToLower(c.Ingredient)
		if c.InInventory {
			r.UsedIngredients = append(r.UsedIngredients, name)
		} else {
			r.MissedIngredients = append(r.MissedIngredients, name)
		}
	}
	r.UsedIngredientCount = len(r.UsedIngredients)
	r.MissedIngredientCount = len(r.MissedIngredients)
}
