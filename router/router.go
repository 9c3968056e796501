package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/raseed-labs/raseed-backend/config"
	_ "github.com/raseed-labs/raseed-backend/docs"
	"github.com/raseed-labs/raseed-backend/handlers"
	"github.com/raseed-labs/raseed-backend/middleware"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config          *config.Config
	RedisClient     redis.UniversalClient
	HealthHandler   *handlers.HealthHandler
	QueryHandler    *handlers.QueryHandler
	InsightsHandler *handlers.InsightsHandler
	ReceiptHandler  *handlers.ReceiptHandler
	Logger          *zap.SugaredLogger
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if !deps.Config.IsProduction() {
		r.Use(gin.Logger())
	}

	if err := r.SetTrustedProxies(deps.Config.Server.TrustedProxies); err != nil && deps.Logger != nil {
		deps.Logger.Warnw("Invalid trusted proxy configuration, ignoring forwarded headers", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))

	r.GET("/", deps.HealthHandler.Welcome)
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/v1")
	{
		queryRoutes := v1.Group("/query")
		if deps.RedisClient != nil && deps.Config.RateLimit.QueryRequestsPerMinute > 0 {
			window := time.Duration(deps.Config.RateLimit.WindowSeconds) * time.Second
			if window <= 0 {
				window = time.Minute
			}
			queryRoutes.Use(middleware.QueryRateLimiter(deps.RedisClient, deps.Config.RateLimit.QueryRequestsPerMinute, window))
		}
		queryRoutes.POST("", deps.QueryHandler.HandleQuery)

		v1.POST("/insights", deps.InsightsHandler.HandleInsights)

		receiptRoutes := v1.Group("/receipts")
		{
			receiptRoutes.POST("/upload", deps.ReceiptHandler.UploadReceipt)
			receiptRoutes.POST("/:id/wallet", deps.ReceiptHandler.AddToWallet)
		}
	}

	return r
}
