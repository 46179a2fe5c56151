package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	OpenAI      OpenAIConfig      `mapstructure:"openai"`
	Spoonacular SpoonacularConfig `mapstructure:"spoonacular"`
	Grocy       GrocyConfig       `mapstructure:"grocy"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Storage     StorageConfig     `mapstructure:"storage"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
	Aggregate   AggregateConfig   `mapstructure:"aggregate"`
	LogLevel    string            `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// OpenAIConfig LLM 補全端點配置
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Available 回報是否具備可用的 AI 憑證。
// 預設值帶有 dummy 哨兵，測試環境不會誤打真實 API。
func (c OpenAIConfig) Available() bool {
	return c.APIKey != "" && !strings.Contains(c.APIKey, "dummy")
}

// SpoonacularConfig 食譜搜尋 API 配置
type SpoonacularConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// GrocyConfig 外部庫存系統配置
type GrocyConfig struct {
	APIURL  string        `mapstructure:"api_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RedisConfig 快取後端配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	SearchTTL time.Duration `mapstructure:"search_ttl"`
	AITTL     time.Duration `mapstructure:"ai_ttl"`
}

// StorageConfig 本地資料庫配置
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// PipelineConfig 食譜推薦管線配置
type PipelineConfig struct {
	MaxIngredients int `mapstructure:"max_ingredients"`
	SearchCount    int `mapstructure:"search_count"`
}

// AggregateConfig 偏好彙整任務配置
type AggregateConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件（不存在時略過）
	_ = godotenv.Load()

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("openai.model", "OPENAI_MODEL")
	viper.BindEnv("spoonacular.api_key", "SPOONACULAR_API_KEY")
	viper.BindEnv("spoonacular.base_url", "SPOONACULAR_API_URL")
	viper.BindEnv("grocy.api_url", "GROCY_API_URL")
	viper.BindEnv("grocy.api_key", "GROCY_API_KEY")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("storage.path", "STORAGE_PATH")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 添加調試日誌（logger 尚未初始化，改用 fmt.Println）
	fmt.Println("Loading configuration",
		"openai_api_key:", maskAPIKey(viper.GetString("openai.api_key")),
		"spoonacular_api_key:", maskAPIKey(viper.GetString("spoonacular.api_key")),
	)

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "pantry-chef")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// OpenAI 設定（dummy 哨兵讓測試環境不會打真實 API）
	viper.SetDefault("openai.api_key", "dummy_key_for_testing")
	viper.SetDefault("openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("openai.model", "gpt-4.1-nano-2025-04-14")
	viper.SetDefault("openai.max_tokens", 2048)
	viper.SetDefault("openai.timeout", "60s")

	// Spoonacular 設定
	viper.SetDefault("spoonacular.api_key", "dummy_key_for_testing")
	viper.SetDefault("spoonacular.base_url", "https://api.spoonacular.com")
	viper.SetDefault("spoonacular.timeout", "15s")

	// Grocy 設定
	viper.SetDefault("grocy.api_url", "")
	viper.SetDefault("grocy.timeout", "20s")

	// Redis 設定
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	// 快取設定
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.search_ttl", "1h")
	viper.SetDefault("cache.ai_ttl", "24h")

	// 資料庫設定
	viper.SetDefault("storage.path", "data/pantry-chef.db")

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// 管線設定
	viper.SetDefault("pipeline.max_ingredients", 20)
	viper.SetDefault("pipeline.search_count", 10)

	// 偏好彙整任務
	viper.SetDefault("aggregate.enabled", false)
	viper.SetDefault("aggregate.interval", "24h")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.SearchTTL <= 0 {
			return fmt.Errorf("invalid cache search ttl")
		}
		if config.Cache.AITTL <= 0 {
			return fmt.Errorf("invalid cache ai ttl")
		}
	}

	// 驗證管線設定
	if config.Pipeline.MaxIngredients <= 0 {
		return fmt.Errorf("invalid pipeline max ingredients")
	}
	if config.Pipeline.SearchCount <= 0 {
		return fmt.Errorf("invalid pipeline search count")
	}

	return nil
}
