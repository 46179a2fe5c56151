package recipe

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// SearchClient 外部食譜搜尋 API（Spoonacular 相容）客戶端
type SearchClient struct {
	config *config.SpoonacularConfig
	client *resty.Client
}

// NewSearchClient 創建食譜搜尋客戶端
func NewSearchClient(cfg *config.SpoonacularConfig) *SearchClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)

	return &SearchClient{
		config: cfg,
		client: client,
	}
}

// wireIngredient 外部 API 的食材形狀
type wireIngredient struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Original string  `json:"original"`
}

// wireRecipe 外部 API 的食譜形狀，進管線前收斂成 CandidateRecipe
type wireRecipe struct {
	ID                    int64            `json:"id"`
	Title                 string           `json:"title"`
	ReadyInMinutes        int              `json:"readyInMinutes"`
	Servings              int              `json:"servings"`
	Image                 string           `json:"image"`
	SourceURL             string           `json:"sourceUrl"`
	Instructions          string           `json:"instructions"`
	ExtendedIngredients   []wireIngredient `json:"extendedIngredients"`
	UsedIngredients       []wireIngredient `json:"usedIngredients"`
	MissedIngredients     []wireIngredient `json:"missedIngredients"`
	UsedIngredientCount   int              `json:"usedIngredientCount"`
	MissedIngredientCount int              `json:"missedIngredientCount"`
}

func (w *wireRecipe) toCandidate() CandidateRecipe {
	candidate := CandidateRecipe{
		ID:                    strconv.FormatInt(w.ID, 10),
		Title:                 w.Title,
		ReadyInMinutes:        w.ReadyInMinutes,
		Servings:              w.Servings,
		ImageURL:              w.Image,
		SourceURL:             w.SourceURL,
		Instructions:          w.Instructions,
		UsedIngredientCount:   w.UsedIngredientCount,
		MissedIngredientCount: w.MissedIngredientCount,
	}
	for _, ing := range w.ExtendedIngredients {
		candidate.Ingredients = append(candidate.Ingredients, Ingredient{
			Name:     ing.Name,
			Amount:   ing.Amount,
			Unit:     ing.Unit,
			Original: ing.Original,
		})
	}
	for _, ing := range w.UsedIngredients {
		candidate.UsedIngredients = append(candidate.UsedIngredients, ing.Name)
	}
	for _, ing := range w.MissedIngredients {
		candidate.MissedIngredients = append(candidate.MissedIngredients, ing.Name)
	}
	return candidate
}

// Search 依食材清單查詢食譜
func (c *SearchClient) Search(ctx context.Context, ingredients []string, number int, maxReadyTime int, restrictions *DietaryRestrictions) ([]CandidateRecipe, error) {
	params := map[string]string{
		"apiKey":               c.config.APIKey,
		"ingredients":          strings.Join(ingredients, ","),
		"number":               strconv.Itoa(number),
		"ranking":              "2",
		"ignorePantry":         "false",
		"fillIngredients":      "true",
		"addRecipeInformation": "true",
	}
	if maxReadyTime > 0 {
		params["maxReadyTime"] = strconv.Itoa(maxReadyTime)
	}
	if restrictions != nil {
		if restrictions.Diet != "" {
			params["diet"] = restrictions.Diet
		}
		if len(restrictions.Intolerances) > 0 {
			params["intolerances"] = strings.Join(restrictions.Intolerances, ",")
		}
	}

	var result struct {
		Results []wireRecipe `json:"results"`
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&result).
		Get("/recipes/complexSearch")
	if err != nil {
		return nil, fmt.Errorf("recipe search request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		common.LogError("食譜搜尋 API 回應異常",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()),
		)
		return nil, common.ErrRecipeAPIError
	}

	recipes := make([]CandidateRecipe, 0, len(result.Results))
	for i := range result.Results {
		recipes = append(recipes, result.Results[i].toCandidate())
	}
	return recipes, nil
}

// Details 取得單一食譜的完整資訊
func (c *SearchClient) Details(ctx context.Context, id string) (*CandidateRecipe, error) {
	var result wireRecipe
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("apiKey", c.config.APIKey).
		SetQueryParam("includeNutrition", "false").
		SetResult(&result).
		Get(fmt.Sprintf("/recipes/%s/information", id))
	if err != nil {
		return nil, fmt.Errorf("recipe details request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		common.LogError("食譜詳情 API 回應異常",
			zap.String("recipe_id", id),
			zap.Int("status", resp.StatusCode()),
		)
		return nil, common.ErrRecipeAPIError
	}

	candidate := result.toCandidate()
	return &candidate, nil
}

// Taste 取得單一食譜的味覺輪廓
func (c *SearchClient) Taste(ctx context.Context, id string) (*TasteProfile, error) {
	var profile TasteProfile
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("apiKey", c.config.APIKey).
		SetResult(&profile).
		Get(fmt.Sprintf("/recipes/%s/tasteWidget.json", id))
	if err != nil {
		return nil, fmt.Errorf("recipe taste request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		common.LogError("食譜味覺 API 回應異常",
			zap.String("recipe_id", id),
			zap.Int("status", resp.StatusCode()),
		)
		return nil, common.ErrRecipeAPIError
	}
	return &profile, nil
}
