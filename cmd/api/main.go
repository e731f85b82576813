package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bigfive-insight/internal/config"
	"bigfive-insight/internal/db"
	apihttp "bigfive-insight/internal/http"
	"bigfive-insight/internal/llm"
	"bigfive-insight/internal/repository"
	"bigfive-insight/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var resultRepo repository.ResultRepository
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal("db schema", zap.Error(err))
		}
		resultRepo = repository.NewPgResultRepository(pool)
	} else {
		logger.Info("DATABASE_URL not set, results will not be persisted")
	}

	var admission service.AdmissionController = service.NewSlidingWindowLimiter(cfg.RateLimitMaxIdentities)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory rate limiter", zap.Error(err))
		} else {
			admission = service.NewRedisSlidingWindowLimiter(redisClient, logger)
			logger.Info("using redis rate limiter", zap.String("addr", cfg.RedisAddr))
		}
		cancel()
	}

	provider := llm.NewProvider(llm.ProviderConfig{
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
		APIKey:       cfg.LLMAPIKey,
		BaseURL:      cfg.LLMBaseURL,
		Model:        cfg.LLMModel,
		Generation:   llm.DefaultGenerationConfig(),
	}, logger)
	defer provider.Close()

	insightSvc := service.NewInsightService(provider, service.InsightConfig{
		MaxRetries:  cfg.InsightMaxRetries,
		Timeout:     cfg.InsightTimeout,
		BackoffBase: cfg.InsightBackoffBase,
	}, logger)
	personalitySvc := service.NewPersonalityService(
		admission,
		service.AdmissionPolicy{Limit: cfg.RateLimitLimit, Window: cfg.RateLimitWindow},
		service.NewTraitScorer(nil),
		insightSvc,
		resultRepo,
		logger,
	)

	personalityHandler := apihttp.NewPersonalityHandler(logger, personalitySvc)
	router := apihttp.NewRouter(logger, personalityHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("llm_provider", provider.Name()),
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}
