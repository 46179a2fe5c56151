package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"time"

	"pantry-chef/internal/pkg/common"

	"go.uber.org/zap"
)

// 同票數時偏好的難度順序
var effortTieBreakOrder = []string{"moderate", "easy", "hard"}

// Aggregator 偏好彙整任務。把最近一天的正面評分
// 濃縮成難度偏好與平均味覺輪廓，回寫到使用者偏好。
type Aggregator struct {
	db *sql.DB
}

// NewAggregator 創建偏好彙整任務
func NewAggregator(db *sql.DB) *Aggregator {
	return &Aggregator{db: db}
}

// Run 對所有有評分紀錄的使用者跑一輪彙整
func (a *Aggregator) Run(ctx context.Context) error {
	rows, err := a.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM user_ratings`)
	if err != nil {
		return err
	}
	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		users = append(users, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, userID := range users {
		if err := a.aggregateUser(ctx, userID); err != nil {
			common.LogError("偏好彙整失敗", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

// aggregateUser 彙整單一使用者最近 24 小時的正面評分
func (a *Aggregator) aggregateUser(ctx context.Context, userID string) error {
	// timestamp 欄位由 CURRENT_TIMESTAMP 以文字寫入，比對條件用同一種格式
	since := time.Now().UTC().Add(-24 * time.Hour).Format("2006-01-02 15:04:05")
	rows, err := a.db.QueryContext(ctx, `
		SELECT effort_tag, sweetness, saltiness, sourness, bitterness, savoriness, fattiness
		FROM user_ratings
		WHERE user_id = ? AND timestamp > ? AND sentiment = 'positive'`,
		userID, since)
	if err != nil {
		return err
	}
	defer rows.Close()

	effortCounts := map[string]int{"easy": 0, "moderate": 0, "hard": 0}
	tasteSums := make(map[string]float64, len(tasteDimensions))
	tasteCounts := make(map[string]int, len(tasteDimensions))
	ratingCount := 0

	for rows.Next() {
		var effortTag sql.NullString
		scores := make([]sql.NullFloat64, len(tasteDimensions))
		dest := []interface{}{&effortTag}
		for i := range scores {
			dest = append(dest, &scores[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		ratingCount++

		if effortTag.Valid {
			if _, ok := effortCounts[effortTag.String]; ok {
				effortCounts[effortTag.String]++
			}
		}
		for i, dim := range tasteDimensions {
			if scores[i].Valid {
				tasteSums[dim] += scores[i].Float64
				tasteCounts[dim]++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if ratingCount == 0 {
		return nil
	}

	avgTaste := make(map[string]float64, len(tasteDimensions))
	for _, dim := range tasteDimensions {
		if tasteCounts[dim] > 0 {
			avgTaste[dim] = math.Round(tasteSums[dim] / float64(tasteCounts[dim]))
		} else {
			avgTaste[dim] = 50
		}
	}
	effortPref := preferredEffort(effortCounts)

	tasteJSON, err := json.Marshal(avgTaste)
	if err != nil {
		return err
	}
	_, err = a.db.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, taste_profile, effort_tolerance, last_updated)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET
			taste_profile = excluded.taste_profile,
			effort_tolerance = excluded.effort_tolerance,
			last_updated = CURRENT_TIMESTAMP`,
		userID, string(tasteJSON), effortPref)
	if err != nil {
		return err
	}

	common.LogInfo("使用者偏好已彙整",
		zap.String("user_id", userID),
		zap.Int("rating_count", ratingCount),
		zap.String("effort_tolerance", effortPref),
	)
	return nil
}

// preferredEffort 取票數最高的難度；同票依 moderate、easy、hard 的順序取
func preferredEffort(counts map[string]int) string {
	best := "moderate"
	bestCount := 0
	for _, level := range effortTieBreakOrder {
		if counts[level] > bestCount {
			best = level
			bestCount = counts[level]
		}
	}
	return best
}

// RunPeriodically 依固定間隔重複執行彙整，直到 ctx 取消
func (a *Aggregator) RunPeriodically(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	common.LogInfo("偏好彙整任務啟動", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			common.LogInfo("偏好彙整任務停止")
			return
		case <-ticker.C:
			if err := a.Run(ctx); err != nil {
				common.LogError("偏好彙整輪次失敗", zap.Error(err))
			}
		}
	}
}
