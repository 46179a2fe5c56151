package recipe

import (
	"net/http"
	"strconv"

	recipeCore "pantry-chef/internal/core/recipe"
	"pantry-chef/internal/core/suggest"
	"pantry-chef/internal/core/user"
	"pantry-chef/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 查詢參數的預設值
const (
	defaultMaxIngredients = 20
	defaultUserID         = "alyssa"
)

// Handler 食譜推薦處理器
type Handler struct {
	suggestSvc *suggest.Service
	userSvc    *user.Service
}

// NewHandler 創建食譜推薦處理器
func NewHandler(suggestSvc *suggest.Service, userSvc *user.Service) *Handler {
	return &Handler{
		suggestSvc: suggestSvc,
		userSvc:    userSvc,
	}
}

// suggestRequest 推薦請求
type suggestRequest struct {
	UserID            string   `json:"user_id"`
	InventoryOverride []string `json:"inventory_override"`
	Simplified        bool     `json:"simplified"`
}

// simplifiedRecipe 輕量版輸出，只留清單頁要的欄位
type simplifiedRecipe struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	Image          string              `json:"image,omitempty"`
	ReadyInMinutes int                 `json:"readyInMinutes"`
	Servings       int                 `json:"servings"`
	FitScore       recipeCore.FitScore `json:"fit_score"`
	SourceURL      string              `json:"sourceUrl,omitempty"`
}

// HandleSuggestRecipes 處理食譜推薦請求
func (h *Handler) HandleSuggestRecipes(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		common.LogWarn("推薦請求解析失敗", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
			"code":  "INVALID_REQUEST",
		})
		return
	}
	if req.UserID == "" {
		req.UserID = defaultUserID
	}

	useAIFiltering := queryBool(c, "use_ai_filtering", true)
	maxIngredients := queryInt(c, "max_ingredients", defaultMaxIngredients)
	maxReadyTime := queryInt(c, "max_ready_time", 0)

	prefs := h.userSvc.RecipePreferences(c.Request.Context(), req.UserID)

	common.LogInfo("開始食譜推薦",
		zap.String("user_id", req.UserID),
		zap.Bool("use_ai_filtering", useAIFiltering),
		zap.Int("max_ingredients", maxIngredients),
		zap.Int("max_ready_time", maxReadyTime),
		zap.Int("override_count", len(req.InventoryOverride)),
	)

	recipes := h.suggestSvc.Suggest(c.Request.Context(), prefs, suggest.Options{
		InventoryOverride: req.InventoryOverride,
		UseAIFiltering:    useAIFiltering,
		MaxIngredients:    maxIngredients,
		MaxReadyTime:      maxReadyTime,
	})

	if req.Simplified {
		simplified := make([]simplifiedRecipe, 0, len(recipes))
		for _, r := range recipes {
			simplified = append(simplified, simplifiedRecipe{
				ID:             r.ID,
				Title:          r.Title,
				Image:          r.Image,
				ReadyInMinutes: r.ReadyInMinutes,
				Servings:       r.Servings,
				FitScore:       r.FitScore,
				SourceURL:      r.SourceURL,
			})
		}
		c.JSON(http.StatusOK, simplified)
		return
	}

	c.JSON(http.StatusOK, recipes)
}

func queryBool(c *gin.Context, name string, fallback bool) bool {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
