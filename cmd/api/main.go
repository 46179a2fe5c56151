package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pantry-chef/internal/api"
	"pantry-chef/internal/core/cache"
	"pantry-chef/internal/core/feedback"
	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/infrastructure/storage"
	"pantry-chef/internal/pkg/common"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 載入 .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.Bool("ai_available", cfg.OpenAI.Available()),
		zap.String("model", cfg.OpenAI.Model),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	// 初始化快取：Redis 優先，連不上就退回行程內記憶體快取
	var cacheStore cache.Store
	redisCache, err := cache.NewService(cfg)
	if err != nil {
		common.LogWarn("Redis 連線失敗，改用記憶體快取", zap.Error(err))
		cacheStore = cache.NewMemory(10 * time.Minute)
	} else {
		cacheStore = redisCache
		defer redisCache.Close()
	}

	// 初始化本地資料庫
	db, err := storage.NewStore(cfg.Storage.Path)
	if err != nil {
		common.LogFatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// 設置路由
	router, err := api.SetupRouter(cfg, cacheStore, db)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 偏好彙整背景任務
	jobCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	if cfg.Aggregate.Enabled {
		go feedback.NewAggregator(db.DB()).RunPeriodically(jobCtx, cfg.Aggregate.Interval)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	// 實例識別碼，多實例部署時用來區分日誌來源
	instanceID := common.GenerateUUID()

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.String("instance_id", instanceID),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server",
				zap.Error(err),
			)
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")
	stopJobs()

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
		os.Exit(1)
	}

	common.LogInfo("Server exited")
}
