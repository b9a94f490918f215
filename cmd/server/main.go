package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"

	"todo_backend/internal/app/config"
	"todo_backend/internal/app/di"
	"todo_backend/internal/app/router"
	authhandler "todo_backend/internal/feature/auth/transport/handler"
	taskshandler "todo_backend/internal/feature/tasks/transport/handler"
	tasksusecase "todo_backend/internal/feature/tasks/usecase"
	infradb "todo_backend/internal/platform/db"
	healthhandler "todo_backend/internal/platform/http/handler"
	infraredis "todo_backend/internal/platform/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	// db
	db, err := infradb.Open(ctx, infradb.Config{
		URL:            cfg.DatabaseURL,
		ConnectTimeout: cfg.DBConnectTimeout,
		RunMigrations:  cfg.RunMigrations,
	})
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer func() {
			if err := sqlDB.Close(); err != nil {
				slog.Error("failed to close database", "error", err)
			}
		}()
	}

	checks := map[string]healthhandler.Check{"database": healthhandler.DatabaseCheck(db)}

	// Redis
	var rdb *redisv9.Client
	if cfg.CacheEnabled() {
		tmp, err := infraredis.NewRedisClient(ctx, infraredis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			slog.Warn("redis unavailable, running without cache", "error", err)
		} else {
			rdb = tmp
			checks["redis"] = healthhandler.RedisCheck(rdb)
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close redis client", "error", err)
				}
			}()
		}
	}

	// Usecase
	authUC, err := di.NewAuthUsecase(cfg, db)
	if err != nil {
		return err
	}
	tasksUC := tasksusecase.NewTasksUsecase(di.NewTaskRepository(db, rdb, cfg.CacheTTL))

	// ルータ生成
	r := router.NewRouter(router.Handlers{
		Auth:   authhandler.NewAuthHandler(authUC),
		Tasks:  taskshandler.NewTasksHandler(tasksUC),
		Health: healthhandler.NewHealthHandler(checks),
	}, authUC, cfg.CORSAllowedOrigins)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.HTTPAddr)
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

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
