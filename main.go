package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"docextract/internal/cache"
	"docextract/internal/config"
	"docextract/internal/credential"
	"docextract/internal/db"
	"docextract/internal/extract"
	"docextract/internal/handlers"
	"docextract/internal/logging"
	"docextract/internal/router"
	"docextract/internal/upload"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := credential.NewStore(cfg.Credential.EnvFile, cfg.Credential.Key, cfg.Credential.Override)
	if err != nil {
		return fmt.Errorf("credential store: %w", err)
	}
	if store.Configured() {
		logger.Info("API key loaded successfully")
	} else {
		logger.Warn("No API key found in environment", zap.String("env_file", store.Path()))
	}

	gemini := extract.NewGeminiClient(store, cfg.Gemini.Model, cfg.Gemini.Timeout)
	var extractor extract.Extractor = gemini
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.Cache.RedisURL, "docextract")
		if err != nil {
			return fmt.Errorf("reply cache: %w", err)
		}
		defer rc.Close()
		extractor = extract.Cached(gemini, rc, gemini.Model(), cfg.Cache.TTL, logger)
		logger.Info("reply cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
	}

	validator := upload.NewValidator(cfg.Upload.AllowedExtensions, cfg.Upload.MaxBytes)
	h := handlers.New(store, validator, extractor, gemini.Model(), logger)

	if cfg.Audit.DSN != "" {
		gdb, err := db.Open(cfg.Audit.DSN)
		if err != nil {
			return fmt.Errorf("audit db: %w", err)
		}
		repo := db.NewAuditRepo(gdb)
		defer repo.Close()
		h.WithRecorder(repo)
		logger.Info("extraction audit log enabled")
	}

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router.RegisterRouter(h, []byte(cfg.Admin.JWTSecret), logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("model", gemini.Model()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
