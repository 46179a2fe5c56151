package api

import (
	"context"
	"net/http"
	"time"

	adminHandler "pantry-chef/internal/api/handlers/admin"
	feedbackHandler "pantry-chef/internal/api/handlers/feedback"
	"pantry-chef/internal/api/handlers/health"
	inventoryHandler "pantry-chef/internal/api/handlers/inventory"
	recipeHandler "pantry-chef/internal/api/handlers/recipe"
	userHandler "pantry-chef/internal/api/handlers/user"
	"pantry-chef/internal/api/middleware"
	"pantry-chef/internal/core/ai"
	"pantry-chef/internal/core/cache"
	"pantry-chef/internal/core/feedback"
	"pantry-chef/internal/core/inventory"
	"pantry-chef/internal/core/recipe"
	"pantry-chef/internal/core/suggest"
	"pantry-chef/internal/core/user"
	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/infrastructure/storage"
	"pantry-chef/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置：推薦管線一輪會串多個外部呼叫
	timeoutDuration = 120 * time.Second
	// 請求體大小限制 (1MB)
	maxBodySize = 1 << 20
	// 推薦請求的去重時間窗
	dedupWindow = 2 * time.Second
)

// SetupRouter 設置路由並組裝全部服務
func SetupRouter(cfg *config.Config, store cache.Store, db *storage.Store) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 限流
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("ai_available", cfg.OpenAI.Available()),
		zap.String("model", cfg.OpenAI.Model),
	)

	// 組裝核心服務
	aiSvc := ai.NewService(cfg)
	foodFilter := inventory.NewFoodFilter(aiSvc, store, cfg.Cache.AITTL)
	inventorySvc := inventory.NewService(db.DB(), foodFilter)

	var syncSvc *inventory.SyncService
	if cfg.Grocy.APIURL != "" {
		syncSvc = inventory.NewSyncService(db.DB(), inventory.NewGrocyClient(&cfg.Grocy))
	}

	searchClient := recipe.NewSearchClient(&cfg.Spoonacular)
	combiner := recipe.NewCombiner(aiSvc, store, cfg.Cache.AITTL)
	generator := recipe.NewGenerator(aiSvc, store, cfg.Cache.AITTL)
	fetcher := recipe.NewFetcher(searchClient, combiner, generator, store, cfg.Cache.SearchTTL, cfg.Cache.AITTL)
	classifier := recipe.NewClassifier(aiSvc, store, cfg.Cache.AITTL)
	suggestSvc := suggest.NewService(inventorySvc, fetcher, classifier, generator, cfg.Pipeline.SearchCount)

	userSvc := user.NewService(db.DB())
	feedbackSvc := feedback.NewService(db.DB(), aiSvc, store, cfg.Cache.AITTL)

	// 全局中間件：設置超時與配置
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set("config", cfg)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
			})
			c.Abort()
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		recipeH := recipeHandler.NewHandler(suggestSvc, userSvc)
		inventoryH := inventoryHandler.NewHandler(inventorySvc, syncSvc)
		userH := userHandler.NewHandler(userSvc)
		feedbackH := feedbackHandler.NewHandler(feedbackSvc)
		adminH := adminHandler.NewHandler(feedback.NewAggregator(db.DB()))

		aiGroup := api.Group("/ai")
		{
			aiGroup.POST("/suggest-recipes", middleware.Deduplication(dedupWindow), recipeH.HandleSuggestRecipes)
		}

		inventoryGroup := api.Group("/inventory")
		{
			inventoryGroup.GET("", inventoryH.HandleGetInventory)
			inventoryGroup.POST("/sync", inventoryH.HandleSyncInventory)
		}

		userGroup := api.Group("/users")
		{
			userGroup.POST("/create", userH.HandleCreateUser)
			userGroup.GET("", userH.HandleListUsers)
			userGroup.GET("/:user_id/preferences", userH.HandleGetPreferences)
			userGroup.POST("/:user_id/preferences", userH.HandleUpdatePreferences)
		}

		feedbackGroup := api.Group("/feedback")
		{
			feedbackGroup.POST("/submit", feedbackH.HandleSubmitFeedback)
		}

		adminGroup := api.Group("/admin")
		{
			adminGroup.POST("/aggregate", adminH.HandleRunAggregation)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Bool("inventory_sync_enabled", syncSvc != nil),
		zap.Duration("timeout", timeoutDuration),
	)

	return router, nil
}
