package ai

import (
	"context"
	"time"

	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/pkg/common"
)

// Completer 單輪補全介面。管線各階段靠它呼叫 AI，測試時用假實作替換。
type Completer interface {
	// Complete 送出 prompt，回傳模型文字輸出
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
	// Available 回報是否設定了可用的 AI 憑證；false 時呼叫端直接走啟發式
	Available() bool
}

// Service AI 補全服務
type Service struct {
	config *config.Config
	client *Client
}

// NewService 創建 AI 服務
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: NewClient(cfg),
	}
}

// Available 實現 Completer 介面
func (s *Service) Available() bool {
	return s.config.OpenAI.Available()
}

// Complete 實現 Completer 介面
func (s *Service) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	if !s.Available() {
		return "", common.ErrAIUnavailable
	}

	start := time.Now()
	content, err := s.client.Generate(ctx, prompt, temperature)
	common.LogAICall(prompt, time.Since(start), err, "")
	if err != nil {
		return "", err
	}
	return content, nil
}
