// @title SmartQ API
// @version 1.0
// @description Structured quiz generation and answer evaluation backed by a local LLM.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8000
// @BasePath /api
// @schemes http https
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "smartq/cmd/api/docs"
	"smartq/internal/adapter"
	"smartq/internal/adapter/llm"
	"smartq/internal/cache"
	"smartq/internal/config"
	"smartq/internal/domain"
	"smartq/internal/handler"
	"smartq/internal/logger"
	"smartq/internal/middleware"
	"smartq/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	transport, err := llm.NewTransport(cfg.LLM, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create LLM transport", zap.Error(err))
	}
	appLogger.Info("LLM transport initialized",
		zap.String("transport", cfg.LLM.Transport),
		zap.String("server", cfg.LLM.Server),
		zap.String("model", cfg.LLM.Model),
	)

	// Redis is optional; without it every evaluation reaches the model.
	var cacheAdapter domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			appLogger.Warn("Redis unavailable, evaluation cache disabled", zap.Error(err))
		} else {
			defer func() { _ = redisClient.Close() }()
			cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
			appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
		}
	}

	evalCache := service.NewEvaluationCache(cacheAdapter, cfg.Cache.EvaluationTTL, appLogger)
	quizService := service.NewQuizService(transport, evalCache, appLogger)
	quizHandler := handler.NewQuizHandler(quizService, transport.Model(), cfg.LLM.Timeout, cacheAdapter, appLogger)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(appLogger),
	})
	registerRoutes(app, quizHandler, appLogger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		return app.Listen(":" + strconv.Itoa(cfg.Server.Port))
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Fatal("Server stopped with error", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}

func registerRoutes(app *fiber.App, quizHandler *handler.QuizHandler, l *zap.Logger) {
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(l))
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID", MaxAge: 300}))

	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")
	api.Get("/health", quizHandler.Health)
	api.Post("/generate", middleware.RequireJSON(), quizHandler.GenerateQuiz)
	api.Post("/evaluate", middleware.RequireJSON(), quizHandler.EvaluateAnswer)
}
