package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Store 快取後端介面。任何後端故障都以未命中呈現，不得讓呼叫端失敗。
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration)
}

// GetJSON 取出快取並解析到 v。存的值不是合法 JSON 時，
// 目標是字串就原樣交回，其餘型別無法承接原始字串，視為未命中。
func GetJSON(ctx context.Context, store Store, key string, v interface{}) bool {
	raw, ok := store.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		if s, isString := v.(*string); isString {
			*s = raw
			return true
		}
		common.LogWarn("快取內容無法解析，視為未命中",
			zap.String("鍵", key),
			zap.Error(err),
		)
		return false
	}
	return true
}

// SetJSON 序列化後寫入快取；序列化失敗只記錄，不回傳錯誤
func SetJSON(ctx context.Context, store Store, key string, v interface{}, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		common.LogWarn("快取序列化失敗",
			zap.String("鍵", key),
			zap.Error(err),
		)
		return
	}
	store.Set(ctx, key, string(data), ttl)
}

// Service Redis 快取服務
type Service struct {
	client *redis.Client
	config *config.CacheConfig
}

// NewService 創建 Redis 快取服務。
// 連不上 Redis 時回傳錯誤，由呼叫端決定要不要退回記憶體快取。
func NewService(cfg *config.Config) (*Service, error) {
	if !cfg.Cache.Enabled {
		return &Service{config: &cfg.Cache}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 快取已初始化",
		zap.String("addr", cfg.Redis.Addr),
		zap.Duration("search_ttl", cfg.Cache.SearchTTL),
		zap.Duration("ai_ttl", cfg.Cache.AITTL),
	)

	return &Service{
		client: client,
		config: &cfg.Cache,
	}, nil
}

// Get 獲取快取值。任何 Redis 故障都當成未命中。
func (s *Service) Get(ctx context.Context, key string) (string, bool) {
	if !s.config.Enabled || s.client == nil {
		return "", false
	}

	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			common.LogWarn("快取讀取失敗，視為未命中",
				zap.String("鍵", key),
				zap.Error(err),
			)
		}
		return "", false
	}
	return val, true
}

// Set 設置快取值。寫入失敗只記錄。
func (s *Service) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	if !s.config.Enabled || s.client == nil {
		return
	}

	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		common.LogWarn("快取寫入失敗",
			zap.String("鍵", key),
			zap.Error(err),
		)
	}
}

// Close 關閉 Redis 連線
func (s *Service) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
