package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"pantry-chef/internal/pkg/common"

	"go.uber.org/zap"
)

// Store 本地 SQLite 資料庫，存放使用者、偏好、庫存與評分
type Store struct {
	db   *sql.DB
	path string
}

// NewStore 開啟資料庫並初始化 schema
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	// WAL 模式改善並發讀寫
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	common.LogInfo("資料庫已初始化", zap.String("path", path))
	return s, nil
}

// NewMemoryStore 開啟純記憶體資料庫（測試用）
func NewMemoryStore() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &Store{db: db, path: ":memory:"}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// DB 取得底層連線
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close 關閉資料庫
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema 建立資料表
func (s *Store) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS user_preferences (
			user_id TEXT PRIMARY KEY REFERENCES users(id),
			taste_profile TEXT,
			effort_tolerance TEXT,
			liked_ingredients TEXT,
			disliked_ingredients TEXT,
			preferred_dish_types TEXT,
			dietary_restrictions TEXT,
			last_updated TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS inventory (
			product_id INTEGER PRIMARY KEY,
			name TEXT,
			amount REAL,
			best_before_date TEXT,
			last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS inventory_sync_metadata (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			last_changed_time TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS user_ratings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT,
			recipe_id TEXT,
			rating INTEGER,
			review_text TEXT,
			effort_tag TEXT,
			sentiment TEXT,
			sweetness INTEGER,
			saltiness INTEGER,
			sourness INTEGER,
			bitterness INTEGER,
			savoriness INTEGER,
			fattiness INTEGER,
			timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
