package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/chirper/chirper/internal/app"
	"github.com/chirper/chirper/internal/audit"
	"github.com/chirper/chirper/internal/auth"
	"github.com/chirper/chirper/internal/observability"
	"github.com/chirper/chirper/internal/platform/db"
	"github.com/chirper/chirper/internal/rbac"
	"github.com/chirper/chirper/internal/tweets"
	"github.com/chirper/chirper/internal/users"
	"github.com/chirper/chirper/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	signingKey, err := auth.DeriveSigningKey(cfg.JWTSecret)
	if err != nil {
		logger.Error("derive signing key", slog.Any("error", err))
		os.Exit(1)
	}
	codec := auth.NewTokenCodec(signingKey, cfg.JWTTTL.Duration())

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	recorder := audit.NewRecorder()

	rbacRepo := rbac.NewRepository(pool)
	rbacService := rbac.NewService(rbacRepo)
	rbacHandler := rbac.NewHandler(logger, rbacService)

	credentialStore := auth.NewCredentialStore(pool)
	authService := auth.NewService(credentialStore, rbacService, codec, metrics)
	authHandler := auth.NewHandler(logger, authService)

	usersRepo := users.NewPGRepository(pool)
	usersService := users.NewService(pool, usersRepo, recorder)
	usersHandler := users.NewHandler(logger, usersService)

	tweetsRepo := tweets.NewPGRepository(pool)
	tweetsService := tweets.NewService(pool, tweetsRepo, recorder)
	tweetsHandler := tweets.NewHandler(logger, tweetsService)

	auditRepo := audit.NewTimelineRepository(pool)
	auditService := audit.NewService(auditRepo)
	auditHandler := audit.NewHandler(logger, auditService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		Codec:         codec,
		AuthHandler:   authHandler,
		UsersHandler:  usersHandler,
		TweetsHandler: tweetsHandler,
		RBACHandler:   rbacHandler,
		AuditHandler:  auditHandler,
		JobHandler:    jobHandler,
		Metrics:       metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
