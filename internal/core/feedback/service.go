// Package feedback 解析使用者的用餐評論並累積成評分紀錄，
// 再由彙整任務把正面經驗回寫成偏好。
package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pantry-chef/internal/core/ai"
	"pantry-chef/internal/core/cache"
	"pantry-chef/internal/pkg/common"

	"go.uber.org/zap"
)

const reviewParsingPrompt = `You are a meal review interpreter.
Task: Parse a user's natural language review of a meal to extract:
- Effort perception: "easy", "moderate", or "hard"
- Overall sentiment: "positive", "neutral", or "negative"
- Estimated taste profile scores (0-100): sweetness, saltiness, sourness, bitterness, savoriness, fattiness.

Respond strictly in JSON format:
{
  "effort_tag": "...",
  "sentiment": "...",
  "taste_profile": {
    "sweetness": <0-100>,
    "saltiness": <0-100>,
    "sourness": <0-100>,
    "bitterness": <0-100>,
    "savoriness": <0-100>,
    "fattiness": <0-100>
  }
}

Review: %s`

// ParsedReview 評論解析結果。解析失敗時三個欄位都是零值。
type ParsedReview struct {
	EffortTag    string             `json:"effort_tag"`
	Sentiment    string             `json:"sentiment"`
	TasteProfile map[string]float64 `json:"taste_profile"`
}

// Valid 判斷解析結果是否完整可入庫
func (p *ParsedReview) Valid() bool {
	if p.EffortTag == "" || p.Sentiment == "" || len(p.TasteProfile) == 0 {
		return false
	}
	for _, dim := range tasteDimensions {
		if _, ok := p.TasteProfile[dim]; !ok {
			return false
		}
	}
	return true
}

var tasteDimensions = []string{"sweetness", "saltiness", "sourness", "bitterness", "savoriness", "fattiness"}

// Service 評論回饋服務
type Service struct {
	db    *sql.DB
	ai    ai.Completer
	cache cache.Store
	ttl   time.Duration
}

// NewService 創建評論回饋服務
func NewService(db *sql.DB, completer ai.Completer, store cache.Store, ttl time.Duration) *Service {
	return &Service{
		db:    db,
		ai:    completer,
		cache: store,
		ttl:   ttl,
	}
}

// ParseReview 用 AI 解析自然語言評論。
// AI 不可用或解析失敗時回傳空結果，不回傳錯誤。
func (s *Service) ParseReview(ctx context.Context, reviewText string) *ParsedReview {
	key := cache.Key(cache.StageReview, common.HashString(reviewText))
	var cached ParsedReview
	if cache.GetJSON(ctx, s.cache, key, &cached) && cached.Valid() {
		common.LogCacheHit(key)
		return &cached
	}

	if !s.ai.Available() {
		common.LogWarn("AI 不可用，無法解析評論")
		return &ParsedReview{}
	}

	response, err := s.ai.Complete(ctx, fmt.Sprintf(reviewParsingPrompt, reviewText), 0.2)
	if err != nil {
		common.LogError("評論解析失敗", zap.Error(err))
		return &ParsedReview{}
	}

	var parsed ParsedReview
	if err := ai.DecodeLenientObject(response, &parsed); err != nil || !parsed.Valid() {
		common.LogWarn("評論解析回應不完整", zap.Error(err))
		return &ParsedReview{}
	}

	cache.SetJSON(ctx, s.cache, key, &parsed, s.ttl)
	return &parsed
}

// Submit 解析並儲存一筆評論。解析結果不完整時只回傳解析結果、不入庫。
func (s *Service) Submit(ctx context.Context, userID, recipeID string, rating int, reviewText string) (*ParsedReview, error) {
	parsed := s.ParseReview(ctx, reviewText)
	if !parsed.Valid() {
		return parsed, nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_ratings
			(user_id, recipe_id, rating, review_text, effort_tag, sentiment,
			 sweetness, saltiness, sourness, bitterness, savoriness, fattiness)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, recipeID, rating, reviewText, parsed.EffortTag, parsed.Sentiment,
		parsed.TasteProfile["sweetness"],
		parsed.TasteProfile["saltiness"],
		parsed.TasteProfile["sourness"],
		parsed.TasteProfile["bitterness"],
		parsed.TasteProfile["savoriness"],
		parsed.TasteProfile["fattiness"],
	)
	if err != nil {
		common.LogError("評分寫入失敗",
			zap.String("user_id", userID),
			zap.String("recipe_id", recipeID),
			zap.Error(err),
		)
		return parsed, err
	}

	common.LogInfo("評分已儲存",
		zap.String("user_id", userID),
		zap.String("recipe_id", recipeID),
		zap.Int("rating", rating),
	)
	return parsed, nil
}
