package cache

import (
	"context"
	"sync"
	"time"

	"pantry-chef/internal/pkg/common"

	"go.uber.org/zap"
)

// Memory 進程內快取，Redis 不可用時的退路，介面與 Redis 版一致
type Memory struct {
	mu    sync.RWMutex
	store map[string]memoryEntry
	stats memoryStats
}

// memoryEntry 快取條目
type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// memoryStats 快取統計
type memoryStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewMemory 創建記憶體快取並啟動清理協程
func NewMemory(cleanupInterval time.Duration) *Memory {
	m := &Memory{
		store: make(map[string]memoryEntry),
	}

	if cleanupInterval > 0 {
		go m.startCleanup(cleanupInterval)
	}

	return m
}

// Get 獲取快取值
func (m *Memory) Get(ctx context.Context, key string) (string, bool) {
	m.mu.RLock()
	entry, exists := m.store[key]
	m.mu.RUnlock()

	if !exists {
		m.mu.Lock()
		m.stats.misses++
		m.mu.Unlock()
		return "", false
	}

	// 檢查是否過期
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.store, key)
		m.stats.evictions++
		m.stats.misses++
		m.mu.Unlock()
		return "", false
	}

	m.mu.Lock()
	m.stats.hits++
	m.mu.Unlock()
	return entry.value, true
}

// Set 設置快取值
func (m *Memory) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store[key] = memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// startCleanup 啟動清理過期快取的協程
func (m *Memory) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		m.cleanup()
	}
}

// cleanup 清理過期的快取
func (m *Memory) cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	count := 0
	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}

	if count > 0 {
		common.LogInfo("清理過期快取條目",
			zap.Int("count", count),
			zap.Int64("total_evictions", m.stats.evictions),
			zap.Int("remaining_size", len(m.store)),
		)
	}

	return count
}

// Stats 獲取快取統計信息
func (m *Memory) Stats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := m.stats.hits + m.stats.misses
	ratio := 0.0
	if total > 0 {
		ratio = float64(m.stats.hits) / float64(total)
	}
	return map[string]interface{}{
		"size":      len(m.store),
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
		"hit_ratio": ratio,
	}
}
