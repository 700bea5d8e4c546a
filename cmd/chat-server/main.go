// cmd/chat-server/main.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"chatfood-service/internal/chat/genai"
	"chatfood-service/internal/chat/menu"
	"chatfood-service/internal/chat/orchestrator"
	"chatfood-service/internal/chat/recommend"
	"chatfood-service/internal/chat/session"
	"chatfood-service/internal/common/config"
	"chatfood-service/internal/common/database"
	"chatfood-service/internal/common/logger"
	"chatfood-service/internal/common/observability"
	"chatfood-service/internal/profile"
	"chatfood-service/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting chat server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry (session backend and/or profile cache) ---
	var redis *database.RedisClient
	if cfg.Session.Backend == "redis" || cfg.Chat.ProfileCacheTTL > 0 {
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		zapLog.Info("Redis connected successfully")
	}

	// --- Session store ---
	var store session.Store
	if cfg.Session.Backend == "redis" {
		store = session.NewRedisStore(redis.Client, time.Duration(cfg.Session.IdleTTL)*time.Second)
	} else {
		store = session.NewMemoryStore(cfg.Session.MaxSessions, time.Duration(cfg.Session.IdleTTL)*time.Second)
	}
	zapLog.Info("Session store initialized", zap.String("backend", cfg.Session.Backend))

	// --- Providers ---
	generative := genai.NewClient(genai.LoadConfig(cfg.GenAI), log)
	recommender := recommend.NewClient(recommend.LoadConfig(cfg.Recommender), log)

	profiles := buildProfileSource(cfg, pg.DB, redis, log)

	var extractor menu.Extractor
	if cfg.Chat.ExtractionStrategy == "delegated" {
		extractor = menu.NewDelegatedExtractor(generative, log)
	} else {
		extractor = menu.NewVocabularyExtractor()
	}
	zapLog.Info("Menu extractor initialized", zap.String("strategy", cfg.Chat.ExtractionStrategy))

	engine := orchestrator.New(
		&orchestrator.Config{HistoryWindow: cfg.Chat.HistoryWindow},
		store, generative, recommender, profiles, extractor, obs, log,
	)

	// --- HTTP server ---
	mux := http.NewServeMux()
	server.NewHandler(engine, log).Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("Shutting down chat server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http shutdown failed", zap.Error(err))
	}

	zapLog.Info("Chat server stopped")
}

func buildProfileSource(cfg *config.Config, db *sql.DB, redis *database.RedisClient, log logger.Logger) profile.Source {
	repo := profile.NewRepository(db, log)
	if cfg.Chat.ProfileCacheTTL <= 0 || redis == nil {
		return repo
	}
	return profile.NewCachedSource(repo, redis.Client, time.Duration(cfg.Chat.ProfileCacheTTL)*time.Second, log)
}
