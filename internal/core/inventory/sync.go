package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// GrocyClient 外部庫存系統（Grocy 相容 API）客戶端
type GrocyClient struct {
	config *config.GrocyConfig
	client *resty.Client
}

// NewGrocyClient 創建庫存系統客戶端
func NewGrocyClient(cfg *config.GrocyConfig) *GrocyClient {
	client := resty.New().
		SetBaseURL(cfg.APIURL).
		SetTimeout(cfg.Timeout).
		SetHeader("GROCY-API-KEY", cfg.APIKey)

	return &GrocyClient{
		config: cfg,
		client: client,
	}
}

// StockItem 庫存系統回傳的單筆存貨
type StockItem struct {
	ProductID      int64   `json:"product_id"`
	Amount         float64 `json:"amount"`
	BestBeforeDate string  `json:"best_before_date"`
	Product        struct {
		Name string `json:"name"`
	} `json:"product"`
}

// DBChangedTime 查詢庫存系統的最後變動時間
func (c *GrocyClient) DBChangedTime(ctx context.Context) (string, error) {
	var result struct {
		ChangedTime string `json:"changed_time"`
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/system/db-changed-time")
	if err != nil {
		return "", fmt.Errorf("failed to query db-changed-time: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("grocery API error (status %d)", resp.StatusCode())
	}
	return result.ChangedTime, nil
}

// Stock 拉取全部存貨
func (c *GrocyClient) Stock(ctx context.Context) ([]StockItem, error) {
	var items []StockItem
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&items).
		Get("/stock")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stock: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("grocery API error (status %d)", resp.StatusCode())
	}
	return items, nil
}

// SyncService 庫存同步服務：把外部系統的存貨鏡像進本地資料庫
type SyncService struct {
	db    *sql.DB
	grocy *GrocyClient
}

// NewSyncService 創建庫存同步服務
func NewSyncService(db *sql.DB, grocy *GrocyClient) *SyncService {
	return &SyncService{
		db:    db,
		grocy: grocy,
	}
}

// Sync 執行一次同步。回傳是否有變動。
// 變動時間沒變就跳過，省一次全量拉取。
func (s *SyncService) Sync(ctx context.Context) (bool, error) {
	changedTime, err := s.grocy.DBChangedTime(ctx)
	if err != nil {
		common.LogError("庫存同步失敗", zap.Error(err))
		return false, err
	}

	lastChanged, err := s.lastChangedTime(ctx)
	if err != nil {
		common.LogError("讀取同步紀錄失敗", zap.Error(err))
		return false, err
	}
	if lastChanged != "" && lastChanged == changedTime {
		common.LogInfo("庫存沒有變動，跳過同步")
		return false, nil
	}

	items, err := s.grocy.Stock(ctx)
	if err != nil {
		common.LogError("庫存同步失敗", zap.Error(err))
		return false, err
	}

	if err := s.replaceInventory(ctx, items); err != nil {
		common.LogError("寫入庫存失敗", zap.Error(err))
		return false, err
	}

	if err := s.recordChangedTime(ctx, changedTime); err != nil {
		common.LogError("寫入同步紀錄失敗", zap.Error(err))
		return false, err
	}

	common.LogInfo("庫存同步完成", zap.Int("item_count", len(items)))
	return true, nil
}

func (s *SyncService) lastChangedTime(ctx context.Context) (string, error) {
	var t string
	err := s.db.QueryRowContext(ctx,
		`SELECT last_changed_time FROM inventory_sync_metadata ORDER BY id DESC LIMIT 1`).Scan(&t)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return t, err
}

func (s *SyncService) recordChangedTime(ctx context.Context, changedTime string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO inventory_sync_metadata (last_changed_time) VALUES (?)`, changedTime)
	return err
}

// replaceInventory 更新或插入存貨，並刪掉外部系統已經不存在的品項
func (s *SyncService) replaceInventory(ctx context.Context, items []StockItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO inventory (product_id, name, amount, best_before_date, last_updated)
			VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (product_id) DO UPDATE SET
				name = excluded.name,
				amount = excluded.amount,
				best_before_date = excluded.best_before_date,
				last_updated = CURRENT_TIMESTAMP`,
			item.ProductID, item.Product.Name, item.Amount, item.BestBeforeDate); err != nil {
			return err
		}
		ids = append(ids, fmt.Sprintf("%d", item.ProductID))
	}

	// 清掉外部系統已經消失的品項
	if len(ids) > 0 {
		query := fmt.Sprintf(`DELETE FROM inventory WHERE product_id NOT IN (%s)`, strings.Join(ids, ","))
		res, err := tx.ExecContext(ctx, query)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			common.LogInfo("移除外部系統已不存在的庫存品項", zap.Int64("removed", n))
		}
	} else {
		if _, err := tx.ExecContext(ctx, `DELETE FROM inventory`); err != nil {
			return err
		}
		common.LogWarn("外部系統回傳空庫存，清空本地庫存表")
	}

	return tx.Commit()
}
