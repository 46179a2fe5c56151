package inventory

import (
	"context"
	"database/sql"
	"strings"

	"pantry-chef/internal/pkg/common"

	"go.uber.org/zap"
)

// Item 庫存品項
type Item struct {
	ProductID      int64   `json:"product_id"`
	Name           string  `json:"name"`
	Amount         float64 `json:"amount"`
	BestBeforeDate string  `json:"best_before_date,omitempty"`
	LastUpdated    string  `json:"last_updated,omitempty"`
}

// Service 庫存服務：管線的食材來源
type Service struct {
	db     *sql.DB
	filter *FoodFilter
}

// NewService 創建庫存服務
func NewService(db *sql.DB, filter *FoodFilter) *Service {
	return &Service{
		db:     db,
		filter: filter,
	}
}

// GetInventory 取得所有庫存品項（amount > 0）
func (s *Service) GetInventory(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, name, amount, COALESCE(best_before_date, ''), COALESCE(last_updated, '')
		FROM inventory
		WHERE amount > 0`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Amount, &item.BestBeforeDate, &item.LastUpdated); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// IngredientNames 取出可用食材名稱（小寫、amount > 0），
// 視需求先經過 AI 食品過濾。任何錯誤都回傳空清單，不讓管線失敗。
func (s *Service) IngredientNames(ctx context.Context, useAIFiltering bool, maxIngredients int) []string {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM inventory WHERE amount > 0`)
	if err != nil {
		common.LogError("讀取庫存食材失敗", zap.Error(err))
		return []string{}
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			common.LogError("讀取庫存食材失敗", zap.Error(err))
			return []string{}
		}
		names = append(names, strings.ToLower(name))
	}
	if err := rows.Err(); err != nil {
		common.LogError("讀取庫存食材失敗", zap.Error(err))
		return []string{}
	}

	if useAIFiltering && len(names) > 0 {
		common.LogInfo("對庫存品項套用食品過濾", zap.Int("item_count", len(names)))
		return s.filter.Filter(ctx, names, maxIngredients)
	}

	if maxIngredients > 0 && len(names) > maxIngredients {
		names = names[:maxIngredients]
	}
	return names
}
