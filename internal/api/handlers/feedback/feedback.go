package feedback

import (
	"net/http"

	"pantry-chef/internal/core/feedback"
	"pantry-chef/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 評論回饋處理器
type Handler struct {
	feedbackSvc *feedback.Service
}

// NewHandler 創建評論回饋處理器
func NewHandler(feedbackSvc *feedback.Service) *Handler {
	return &Handler{feedbackSvc: feedbackSvc}
}

// submitRequest 評論提交請求
type submitRequest struct {
	UserID     string `json:"user_id"`
	RecipeID   string `json:"recipe_id"`
	Rating     int    `json:"rating"`
	ReviewText string `json:"review_text"`
}

// HandleSubmitFeedback 解析並儲存一筆用餐評論
func (h *Handler) HandleSubmitFeedback(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
			"code":  "INVALID_REQUEST",
		})
		return
	}
	if req.UserID == "" || req.RecipeID == "" || req.Rating == 0 || req.ReviewText == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Missing required fields.",
		})
		return
	}

	parsed, err := h.feedbackSvc.Submit(c.Request.Context(), req.UserID, req.RecipeID, req.Rating, req.ReviewText)
	if err != nil {
		common.LogError("評論提交失敗",
			zap.String("user_id", req.UserID),
			zap.String("recipe_id", req.RecipeID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to store feedback",
			"code":  "FEEDBACK_STORE_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"parsed": parsed,
	})
}
