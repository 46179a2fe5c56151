package user

import (
	"fmt"
	"net/http"

	"pantry-chef/internal/core/user"
	"pantry-chef/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 使用者處理器
type Handler struct {
	userSvc *user.Service
}

// NewHandler 創建使用者處理器
func NewHandler(userSvc *user.Service) *Handler {
	return &Handler{userSvc: userSvc}
}

// createRequest 創建使用者請求，偏好欄位都是選填
type createRequest struct {
	UserID string `json:"user_id"`
	user.Preferences
}

// HandleCreateUser 創建使用者
func (h *Handler) HandleCreateUser(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
			"code":  "INVALID_REQUEST",
		})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing required field: user_id",
			"code":  "MISSING_USER_ID",
		})
		return
	}

	prefs := user.DefaultPreferences()
	if req.TasteProfile != nil {
		prefs.TasteProfile = req.TasteProfile
	}
	if req.EffortTolerance != "" {
		prefs.EffortTolerance = req.EffortTolerance
	}
	if req.LikedIngredients != nil {
		prefs.LikedIngredients = req.LikedIngredients
	}
	if req.DislikedIngredients != nil {
		prefs.DislikedIngredients = req.DislikedIngredients
	}
	if req.PreferredDishTypes != nil {
		prefs.PreferredDishTypes = req.PreferredDishTypes
	}
	if req.DietaryRestrictions.Diet != "" || req.DietaryRestrictions.Intolerances != nil {
		prefs.DietaryRestrictions = req.DietaryRestrictions
	}

	if err := h.userSvc.Create(c.Request.Context(), req.UserID, prefs); err != nil {
		if err == common.ErrUserExists {
			c.JSON(http.StatusConflict, gin.H{
				"status":  "error",
				"message": fmt.Sprintf("User '%s' already exists", req.UserID),
			})
			return
		}
		common.LogError("創建使用者失敗", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create user",
			"code":  "USER_CREATE_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("User '%s' created successfully", req.UserID),
	})
}

// HandleListUsers 列出全部使用者
func (h *Handler) HandleListUsers(c *gin.Context) {
	users, err := h.userSvc.List(c.Request.Context())
	if err != nil {
		common.LogError("列出使用者失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list users",
			"code":  "USER_LIST_ERROR",
		})
		return
	}
	c.JSON(http.StatusOK, users)
}

// HandleGetPreferences 讀取使用者偏好
func (h *Handler) HandleGetPreferences(c *gin.Context) {
	userID := c.Param("user_id")
	prefs, err := h.userSvc.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		if err == common.ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error": fmt.Sprintf("User '%s' not found", userID),
				"code":  "USER_NOT_FOUND",
			})
			return
		}
		common.LogError("讀取偏好失敗", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to read preferences",
			"code":  "PREFERENCES_READ_ERROR",
		})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// HandleUpdatePreferences 更新使用者偏好
func (h *Handler) HandleUpdatePreferences(c *gin.Context) {
	userID := c.Param("user_id")
	var req user.Preferences
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
			"code":  "INVALID_REQUEST",
		})
		return
	}

	if err := h.userSvc.UpdatePreferences(c.Request.Context(), userID, &req); err != nil {
		if err == common.ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error": fmt.Sprintf("User '%s' not found", userID),
				"code":  "USER_NOT_FOUND",
			})
			return
		}
		common.LogError("更新偏好失敗", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update preferences",
			"code":  "PREFERENCES_UPDATE_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Preferences for user '%s' updated successfully", userID),
	})
}
