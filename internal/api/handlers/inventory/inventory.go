package inventory

import (
	"net/http"

	"pantry-chef/internal/core/inventory"
	"pantry-chef/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 庫存處理器
type Handler struct {
	inventorySvc *inventory.Service
	syncSvc      *inventory.SyncService
}

// NewHandler 創建庫存處理器
func NewHandler(inventorySvc *inventory.Service, syncSvc *inventory.SyncService) *Handler {
	return &Handler{
		inventorySvc: inventorySvc,
		syncSvc:      syncSvc,
	}
}

// HandleGetInventory 回傳目前的本地庫存
func (h *Handler) HandleGetInventory(c *gin.Context) {
	items, err := h.inventorySvc.GetInventory(c.Request.Context())
	if err != nil {
		common.LogError("讀取庫存失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to read inventory",
			"code":  "INVENTORY_READ_ERROR",
		})
		return
	}
	c.JSON(http.StatusOK, items)
}

// HandleSyncInventory 觸發一次與外部庫存系統的同步
func (h *Handler) HandleSyncInventory(c *gin.Context) {
	if h.syncSvc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Inventory sync is not configured",
			"code":  "SYNC_NOT_CONFIGURED",
		})
		return
	}

	changed, err := h.syncSvc.Sync(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Inventory sync failed",
			"code":  "SYNC_FAILED",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"synced": changed})
}
