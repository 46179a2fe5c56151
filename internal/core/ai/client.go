package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client LLM 補全客戶端，走 OpenAI 相容的 chat completions 端點
type Client struct {
	config *config.Config
	client *resty.Client
}

// NewClient 創建 LLM 客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.OpenAI.BaseURL).
		SetTimeout(cfg.OpenAI.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.OpenAI.APIKey))

	return &Client{
		config: cfg,
		client: client,
	}
}

// Generate 送出單輪 prompt 並回傳模型文字輸出
func (c *Client) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	// 構建請求
	req := map[string]interface{}{
		"model": c.config.OpenAI.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"max_tokens":  c.config.OpenAI.MaxTokens,
		"temperature": temperature,
	}

	// 發送請求
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")

	if err != nil {
		return "", fmt.Errorf("failed to send request to AI service: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogError("AI service returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", c.config.OpenAI.Model),
		)
		return "", fmt.Errorf("AI service error (status %d): %s", resp.StatusCode(), resp.String())
	}

	// 解析回應
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse AI response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in AI response")
	}

	return result.Choices[0].Message.Content, nil
}
