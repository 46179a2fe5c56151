package admin

import (
	"net/http"

	"pantry-chef/internal/core/feedback"
	"pantry-chef/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 管理操作處理器
type Handler struct {
	aggregator *feedback.Aggregator
}

// NewHandler 創建管理操作處理器
func NewHandler(aggregator *feedback.Aggregator) *Handler {
	return &Handler{aggregator: aggregator}
}

// HandleRunAggregation 立即執行一輪偏好彙整，不等定時任務
func (h *Handler) HandleRunAggregation(c *gin.Context) {
	if err := h.aggregator.Run(c.Request.Context()); err != nil {
		common.LogError("偏好彙整執行失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to run preference aggregation",
			"code":  "AGGREGATION_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
	})
}
