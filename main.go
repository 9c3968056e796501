// @title Raseed API
// @version 1.0
// @description Receipt ingestion, spending insights and a tool-calling assistant that answers questions about a user's receipts.
// @BasePath /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/raseed-labs/raseed-backend/config"
	"github.com/raseed-labs/raseed-backend/db"
	"github.com/raseed-labs/raseed-backend/handlers"
	"github.com/raseed-labs/raseed-backend/internal/analytics"
	"github.com/raseed-labs/raseed-backend/internal/assistant"
	"github.com/raseed-labs/raseed-backend/internal/insights"
	"github.com/raseed-labs/raseed-backend/internal/llm/gemini"
	"github.com/raseed-labs/raseed-backend/internal/ocr"
	"github.com/raseed-labs/raseed-backend/internal/receipts"
	"github.com/raseed-labs/raseed-backend/internal/storage"
	internal_store "github.com/raseed-labs/raseed-backend/internal/store"
	"github.com/raseed-labs/raseed-backend/internal/store/cache"
	"github.com/raseed-labs/raseed-backend/internal/store/postgres"
	"github.com/raseed-labs/raseed-backend/internal/tools"
	"github.com/raseed-labs/raseed-backend/internal/wallet"
	"github.com/raseed-labs/raseed-backend/logger"
	"github.com/raseed-labs/raseed-backend/router"
	"github.com/raseed-labs/raseed-backend/services"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if os.Getenv("SERVER_ENVIRONMENT") != string(config.EnvProduction) {
		// A missing .env is fine; the environment may already be populated.
		_ = godotenv.Load()
	}

	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalw("Failed to load config", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolConfig, err := config.ConfigurePostgresPool(&cfg.Database)
	if err != nil {
		log.Fatalw("Failed to configure database pool", "error", err)
	}
	dbClient := db.NewDatabaseClient(poolConfig)
	if err := dbClient.Connect(ctx); err != nil {
		log.Fatalw("Failed to connect to database", "error", err)
	}
	defer dbClient.Close()

	if cfg.Database.AutoMigrate {
		if err := db.RunMigrations(cfg.Database.URL()); err != nil {
			log.Fatalw("Failed to run migrations", "error", err)
		}
	}

	redisClient := redis.NewClient(config.ConfigureRedisOptions(&cfg.Redis))
	defer redisClient.Close()
	if err := config.TestRedisConnection(ctx, redisClient, 3, 2*time.Second); err != nil {
		// Redis only backs the cache and the rate limiter; both degrade without it.
		log.Warnw("Redis unavailable, continuing without it", "error", err)
	}

	pool := dbClient.GetPool()
	var receiptStore internal_store.ReceiptStore = postgres.NewReceiptStore(pool)
	if cfg.Cache.Enabled {
		receiptStore = cache.NewReceiptCache(receiptStore, redisClient, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	}
	passStore := postgres.NewPassStore(pool)
	queryLog := postgres.NewQueryLogStore(pool)

	issuer := newWalletIssuer(cfg, log)
	objects := newObjectStorage(ctx, cfg, log)

	modelOpts := []gemini.Option{gemini.WithBaseURL(cfg.LLM.BaseURL), gemini.WithTimeout(cfg.LLM.Timeout())}
	chatModel := gemini.New(cfg.LLM.APIKey, cfg.LLM.ChatModel, modelOpts...)
	shoppingModel := gemini.New(cfg.LLM.APIKey, cfg.LLM.ShoppingModel, modelOpts...)
	searchModel := gemini.New(cfg.LLM.APIKey, cfg.LLM.SearchModel, modelOpts...)
	ocrModel := gemini.New(cfg.LLM.APIKey, cfg.LLM.OCRModel, modelOpts...)

	fetcher := receipts.NewFetcher(receiptStore)
	analyzer := analytics.NewAnalyzer(fetcher)

	primary, shoppingSet, err := buildToolSets(analyzer, tools.NewSearcher(searchModel), issuer)
	if err != nil {
		log.Fatalw("Failed to build assistant tools", "error", err)
	}
	agent := assistant.New(chatModel, shoppingModel, primary, shoppingSet,
		assistant.WithMaxTurns(cfg.LLM.MaxTurns),
		assistant.WithTemperature(cfg.LLM.Temperature))

	insightOpts := []insights.Option{}
	if objects != nil {
		insightOpts = append(insightOpts, insights.WithStorage(objects))
	}
	if issuer != nil {
		insightOpts = append(insightOpts, insights.WithWallet(issuer))
	}
	generator := insights.NewGenerator(fetcher, insightOpts...)

	var receiptLinker services.ReceiptLinker
	if issuer != nil {
		receiptLinker = issuer
	}
	var receiptObjects storage.ObjectStorage
	if objects != nil {
		receiptObjects = objects
	}
	receiptService := services.NewReceiptService(ocr.NewExtractor(ocrModel), receiptStore, receiptObjects, receiptLinker)
	queryService := services.NewQueryService(agent, passStore, queryLog)
	healthService := services.NewHealthService(pool, redisClient, cfg.Server.Version)

	r := router.SetupRouter(router.Dependencies{
		Config:          cfg,
		RedisClient:     redisClient,
		HealthHandler:   handlers.NewHealthHandler(healthService, cfg.Server.Version),
		QueryHandler:    handlers.NewQueryHandler(queryService),
		InsightsHandler: handlers.NewInsightsHandler(generator),
		ReceiptHandler:  handlers.NewReceiptHandler(receiptService),
		Logger:          log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Starting server", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server shutdown failed", "error", err)
	}
}

// buildToolSets returns the primary tool registry offered on every round
// trip and the registry used by the shopping list pass.
func buildToolSets(analyzer *analytics.Analyzer, searcher *tools.Searcher, issuer *wallet.Issuer) (*tools.Registry, *tools.Registry, error) {
	primaryTools, err := tools.AnalyticsTools(analyzer)
	if err != nil {
		return nil, nil, err
	}
	search, err := tools.SearchTool(searcher)
	if err != nil {
		return nil, nil, err
	}
	primary, err := tools.NewRegistry(append(primaryTools, search)...)
	if err != nil {
		return nil, nil, err
	}

	var linker tools.ShoppingListLinker
	if issuer != nil {
		linker = issuer
	}
	shoppingTool, err := tools.ShoppingListPassTool(linker)
	if err != nil {
		return nil, nil, err
	}
	shoppingSet, err := tools.NewRegistry(shoppingTool)
	if err != nil {
		return nil, nil, err
	}
	return primary, shoppingSet, nil
}

func newWalletIssuer(cfg *config.Config, log *zap.SugaredLogger) *wallet.Issuer {
	if !cfg.Wallet.Enabled() {
		log.Warn("Wallet issuer not configured, save links are disabled")
		return nil
	}
	sa, err := wallet.LoadServiceAccount(cfg.Wallet.ServiceAccountFile)
	if err != nil {
		log.Fatalw("Failed to load wallet service account", "error", err)
	}
	issuer, err := wallet.NewIssuer(cfg.Wallet.IssuerID, sa,
		wallet.WithOrigins(cfg.Wallet.Origins...),
		wallet.WithLogoURI(cfg.Wallet.LogoURI))
	if err != nil {
		log.Fatalw("Failed to create wallet issuer", "error", err)
	}
	return issuer
}

func newObjectStorage(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) *storage.S3Storage {
	if !cfg.Storage.Enabled {
		log.Info("Object storage disabled, receipt images and insight charts are not kept")
		return nil
	}
	objects, err := storage.NewS3Storage(ctx, &cfg.Storage)
	if err != nil {
		log.Fatalw("Failed to create object storage client", "error", err)
	}
	return objects
}
