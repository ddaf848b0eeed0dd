package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"houseoflove/internal/catalog"
	"houseoflove/internal/notify"
	"houseoflove/internal/storage"
	"houseoflove/pkg/database"
	"houseoflove/pkg/logger"
	"houseoflove/pkg/utils"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg, err := utils.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	defer func() { _ = log.Sync() }()

	dbCfg := database.ConfigFor(cfg.Storage.DBPath)
	db, err := database.Open(dbCfg)
	if err != nil {
		log.Fatal("open db failed", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatal("db migrate failed", zap.Error(err))
	}

	local, closeStorage, err := openStorage(cfg.Storage, db)
	if err != nil {
		log.Fatal("open storage failed", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	defer closeStorage()

	var dispatcher *notify.Dispatcher
	if cfg.Notify.Configured() {
		dispatcher, err = notify.New(notify.ConfigFrom(cfg.Notify), log.Named("notify"))
		if err != nil {
			log.Fatal("notify config invalid", zap.Error(err))
		}
	} else {
		log.Warn("notification providers not configured, order messages are only logged")
		dispatcher = notify.NewLogOnly(log.Named("notify"))
	}

	app := &App{
		Config:   cfg,
		DB:       db,
		DBPath:   dbCfg.Path,
		Storage:  local,
		Catalog:  catalog.MustLoad(),
		Notifier: dispatcher,
		Log:      log,
	}
	router := app.Router()

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP API server listening", zap.String("addr", cfg.HTTP.Addr), zap.String("storage", cfg.Storage.Backend))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	app.Hub().Close()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", zap.Error(err))
	}
	log.Info("server stopped")
}

// openStorage picks the profile storage backend.
func openStorage(cfg utils.StorageConfig, db *sql.DB) (storage.LocalStorage, func(), error) {
	switch cfg.Backend {
	case "memory":
		return storage.NewMemory(), func() {}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		return storage.NewRedis(client), func() { _ = client.Close() }, nil
	default:
		return storage.NewSQLite(db), func() {}, nil
	}
}
