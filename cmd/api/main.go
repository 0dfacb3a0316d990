package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/promptlab-api/internal/adapter"
	"github.com/noah-isme/promptlab-api/internal/benchmark"
	"github.com/noah-isme/promptlab-api/internal/config"
	"github.com/noah-isme/promptlab-api/internal/database"
	"github.com/noah-isme/promptlab-api/internal/handler"
	"github.com/noah-isme/promptlab-api/internal/middleware"
	"github.com/noah-isme/promptlab-api/internal/observability"
	"github.com/noah-isme/promptlab-api/internal/ratelimit"
	"github.com/noah-isme/promptlab-api/internal/repository"
	"github.com/noah-isme/promptlab-api/internal/rewrite"
	"github.com/noah-isme/promptlab-api/internal/router"
	"github.com/noah-isme/promptlab-api/internal/service"
	"github.com/noah-isme/promptlab-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()
	observability.RegisterMetrics()

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("%v", err)
		}
	} else {
		logger.Warn().Msg("database url not set, analysis history and benchmark runs will not be stored")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not set, using in-memory rate limits without analysis cache")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, benchmark events use redis only")
		} else {
			defer natsConn.Drain()
		}
	}

	invoker, err := ai.NewInvoker(ai.ProviderConfig{
		Provider:        cfg.AIProvider,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIBaseURL:   cfg.OpenAIBaseURL,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		DefaultModel:    cfg.RewriteModel,
		Logger:          logger,
	})
	if err != nil {
		log.Fatalf("failed to create model invoker: %v", err)
	}
	if invoker == nil {
		logger.Warn().Str("provider", cfg.AIProvider).Msg("no model credentials configured, benchmarks are disabled and rewrites are deterministic")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	registry := adapter.DefaultRegistry()

	var store ratelimit.Store = ratelimit.NewMemoryStore()
	if redisClient != nil {
		store = ratelimit.NewRedisStore(redisClient, "ratelimit")
	}
	analyzeLimiter := ratelimit.NewLimiter(store, ratelimit.Config{Scope: "analyze", Max: cfg.AnalyzeRateLimitMax, Window: cfg.RateLimitWindow}, logger)
	enhanceLimiter := ratelimit.NewLimiter(store, ratelimit.Config{Scope: "enhance", Max: cfg.RateLimitMax, Window: cfg.RateLimitWindow}, logger)
	benchmarkLimiter := ratelimit.NewLimiter(store, ratelimit.Config{Scope: "benchmark", Max: cfg.RateLimitMax, Window: cfg.RateLimitWindow}, logger)

	var analysisRepo repository.AnalysisRepository
	var benchmarkRepo repository.BenchmarkRepository
	if db != nil {
		analysisRepo = repository.NewAnalysisRepository(db)
		benchmarkRepo = repository.NewBenchmarkRepository(db)
	}

	executor := benchmark.NewExecutor(invoker, registry, logger,
		benchmark.WithTimeout(cfg.InvocationTimeout),
		benchmark.WithObserver(service.InvocationObserver()),
	)
	rewriter := rewrite.NewRewriter(invoker, rewrite.Config{Model: cfg.RewriteModel, Timeout: cfg.InvocationTimeout}, logger)

	analysisService := service.NewPromptAnalysisService(analysisRepo, redisClient, cfg.AnalysisCacheTTL, validate, logger)
	enhancementService := service.NewEnhancementService(analysisService, rewriter, enhanceLimiter, validate, logger)
	benchmarkService := service.NewBenchmarkService(service.BenchmarkServiceConfig{
		Executor:           executor,
		Registry:           registry,
		Repository:         benchmarkRepo,
		Limiter:            benchmarkLimiter,
		Events:             service.NewBenchmarkEventPublisher(redisClient, cfg.EventsChannel, natsConn, logger),
		Validator:          validate,
		ExposeInstructions: cfg.BenchmarkExposeInstructions,
	}, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
		JWTSecret:    cfg.JWTSecret,
		AccessLog:    cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		PromptHandler:    handler.NewPromptHandler(analysisService, enhancementService, analyzeLimiter, logger),
		BenchmarkHandler: handler.NewBenchmarkHandler(benchmarkService, logger),
		ModelHandler:     handler.NewModelHandler(registry),
		Health: handler.HealthComponents{
			Database: db != nil,
			Redis:    redisClient != nil,
			NATS:     natsConn != nil,
			Invoker:  invoker != nil,
		},
	})

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress()).Msg("starting http server")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
