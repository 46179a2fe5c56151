// Package user 管理使用者與其偏好設定。
package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"pantry-chef/internal/core/recipe"
	"pantry-chef/internal/core/scoring"
	"pantry-chef/internal/pkg/common"

	"go.uber.org/zap"
)

// User 系統中的使用者
type User struct {
	ID        string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Preferences 使用者偏好的完整形狀
type Preferences struct {
	TasteProfile        map[string]float64         `json:"taste_profile"`
	EffortTolerance     string                     `json:"effort_tolerance"`
	LikedIngredients    []string                   `json:"liked_ingredients"`
	DislikedIngredients []string                   `json:"disliked_ingredients"`
	PreferredDishTypes  []string                   `json:"preferred_dish_types"`
	DietaryRestrictions recipe.DietaryRestrictions `json:"dietary_restrictions"`
}

// DefaultPreferences 沒有任何偏好紀錄時的預設值
func DefaultPreferences() *Preferences {
	return &Preferences{
		TasteProfile:        map[string]float64{},
		EffortTolerance:     scoring.EffortModerate,
		LikedIngredients:    []string{},
		DislikedIngredients: []string{},
		PreferredDishTypes:  []string{},
	}
}

// Service 使用者服務
type Service struct {
	db *sql.DB
}

// NewService 創建使用者服務
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Create 創建使用者並寫入初始偏好。使用者已存在時回傳 ErrUserExists。
func (s *Service) Create(ctx context.Context, userID string, prefs *Preferences) error {
	var exists string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE id = ?`, userID).Scan(&exists)
	if err == nil {
		return common.ErrUserExists
	}
	if err != sql.ErrNoRows {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO users (id) VALUES (?)`, userID); err != nil {
		return err
	}
	if prefs == nil {
		prefs = DefaultPreferences()
	}
	if err := insertPreferences(ctx, tx, userID, prefs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	common.LogInfo("使用者已創建", zap.String("user_id", userID))
	return nil
}

// List 列出全部使用者
func (s *Service) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Exists 檢查使用者是否存在
func (s *Service) Exists(ctx context.Context, userID string) (bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE id = ?`, userID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetPreferences 讀取使用者偏好。
// 沒有偏好紀錄時回傳預設值（空味覺輪廓、moderate、無飲食限制）。
func (s *Service) GetPreferences(ctx context.Context, userID string) (*Preferences, error) {
	exists, err := s.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, common.ErrUserNotFound
	}

	var (
		tasteJSON, likedJSON, dislikedJSON, dishTypesJSON, dietaryJSON sql.NullString
		effort                                                         sql.NullString
	)
	err = s.db.QueryRowContext(ctx, `
		SELECT taste_profile, effort_tolerance, liked_ingredients,
		       disliked_ingredients, preferred_dish_types, dietary_restrictions
		FROM user_preferences WHERE user_id = ?`, userID).
		Scan(&tasteJSON, &effort, &likedJSON, &dislikedJSON, &dishTypesJSON, &dietaryJSON)
	if err == sql.ErrNoRows {
		return DefaultPreferences(), nil
	}
	if err != nil {
		return nil, err
	}

	prefs := DefaultPreferences()
	decodeJSONColumn(tasteJSON, &prefs.TasteProfile)
	decodeJSONColumn(likedJSON, &prefs.LikedIngredients)
	decodeJSONColumn(dislikedJSON, &prefs.DislikedIngredients)
	decodeJSONColumn(dishTypesJSON, &prefs.PreferredDishTypes)
	decodeJSONColumn(dietaryJSON, &prefs.DietaryRestrictions)
	if effort.Valid && effort.String != "" {
		prefs.EffortTolerance = effort.String
	}
	return prefs, nil
}

// UpdatePreferences 更新使用者偏好。nil 的欄位保留原值。
func (s *Service) UpdatePreferences(ctx context.Context, userID string, update *Preferences) error {
	exists, err := s.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return common.ErrUserNotFound
	}

	current, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return err
	}
	if update.TasteProfile != nil {
		current.TasteProfile = update.TasteProfile
	}
	if update.EffortTolerance != "" {
		current.EffortTolerance = update.EffortTolerance
	}
	if update.LikedIngredients != nil {
		current.LikedIngredients = update.LikedIngredients
	}
	if update.DislikedIngredients != nil {
		current.DislikedIngredients = update.DislikedIngredients
	}
	if update.PreferredDishTypes != nil {
		current.PreferredDishTypes = update.PreferredDishTypes
	}
	if update.DietaryRestrictions.Diet != "" || update.DietaryRestrictions.Intolerances != nil {
		current.DietaryRestrictions = update.DietaryRestrictions
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_preferences WHERE user_id = ?`, userID); err != nil {
		return err
	}
	if err := insertPreferences(ctx, tx, userID, current); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	common.LogInfo("使用者偏好已更新", zap.String("user_id", userID))
	return nil
}

// RecipePreferences 轉成推薦管線要的偏好形狀。
// 找不到使用者時回傳預設值，推薦不因偏好缺席而失敗。
func (s *Service) RecipePreferences(ctx context.Context, userID string) *recipe.UserPreferences {
	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		if err != common.ErrUserNotFound {
			common.LogWarn("讀取使用者偏好失敗，改用預設值",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
		prefs = DefaultPreferences()
	}
	return &recipe.UserPreferences{
		TasteProfile:        prefs.TasteProfile,
		EffortTolerance:     prefs.EffortTolerance,
		LikedIngredients:    prefs.LikedIngredients,
		DislikedIngredients: prefs.DislikedIngredients,
		PreferredDishTypes:  prefs.PreferredDishTypes,
		DietaryRestrictions: prefs.DietaryRestrictions,
	}
}

func insertPreferences(ctx context.Context, tx *sql.Tx, userID string, prefs *Preferences) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO user_preferences
			(user_id, taste_profile, effort_tolerance, liked_ingredients,
			 disliked_ingredients, preferred_dish_types, dietary_restrictions, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		userID,
		encodeJSONColumn(prefs.TasteProfile),
		prefs.EffortTolerance,
		encodeJSONColumn(prefs.LikedIngredients),
		encodeJSONColumn(prefs.DislikedIngredients),
		encodeJSONColumn(prefs.PreferredDishTypes),
		encodeJSONColumn(prefs.DietaryRestrictions),
	)
	return err
}

func encodeJSONColumn(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func decodeJSONColumn(col sql.NullString, v interface{}) {
	if !col.Valid || col.String == "" {
		return
	}
	if err := json.Unmarshal([]byte(col.String), v); err != nil {
		common.LogWarn("偏好欄位解析失敗，保留預設值", zap.Error(err))
	}
}
