package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/eduainexus/internal/ai"
	"anoa.com/eduainexus/internal/bootstrap"
	"anoa.com/eduainexus/internal/config"
	"anoa.com/eduainexus/internal/server"
	"anoa.com/eduainexus/pkg/database"
	"anoa.com/eduainexus/pkg/logger"
	"anoa.com/eduainexus/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		appLog.Fatal("failed to connect to database", "error", err)
	}
	if err := bootstrap.Migrate(db); err != nil {
		appLog.Fatal("migration failed", "error", err)
	}
	if _, err := bootstrap.SeedSamplePrompts(db, appLog); err != nil {
		appLog.Fatal("failed to seed sample prompts", "error", err)
	}

	deps := server.Deps{DB: db}

	deps.Redis, err = database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		appLog.Fatal("failed to connect to redis", "error", err)
	}
	if deps.Redis == nil {
		appLog.Warn("REDIS_URL not set; rate limits and token revocation are disabled")
	} else {
		defer deps.Redis.Close()
	}

	if host := server.MeiliHost(cfg.MeiliSearchHost); host != "" {
		deps.Meili = meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	} else {
		appLog.Warn("MEILISEARCH_HOST not set; prompt search falls back to substring matching")
	}

	deps.Images, err = storage.NewCloudinaryStorage(cfg.Cloudinary)
	if err != nil {
		appLog.Fatal("failed to initialize cloudinary storage", "error", err)
	}

	if provider, err := ai.NewGeminiProvider(ctx, cfg.GeminiAPIKey); err != nil {
		appLog.Warn("AI provider unavailable; AI features answer with fallbacks", "error", err)
	} else {
		deps.Provider = provider
	}

	srv, err := server.NewServer(cfg, appLog, deps)
	if err != nil {
		appLog.Fatal("failed to build server", "error", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			appLog.Fatal("server exited with error", "error", err)
		}
		return
	case <-ctx.Done():
	}

	appLog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("graceful shutdown failed", "error", err)
	}
}
